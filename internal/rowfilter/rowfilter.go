// Package rowfilter narrows rows to those matching a search term.
package rowfilter

import (
	"strings"

	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/model"
)

// Matcher tests rows against a normalized search term over a fixed set of
// column behaviours.
type Matcher struct {
	term      string
	behaviors []coltype.Behavior
}

// NewMatcher resolves every searchable column up front. An unknown column
// type fails the whole matcher.
func NewMatcher(term string, columns []model.Column, reg *coltype.Registry) (*Matcher, error) {
	behaviors, err := reg.ResolveAll(columns)
	if err != nil {
		return nil, err
	}
	return &Matcher{term: strings.ToUpper(term), behaviors: behaviors}, nil
}

// Match reports whether any column's search text contains the term,
// ignoring case.
func (m *Matcher) Match(row model.Row) bool {
	for _, b := range m.behaviors {
		if strings.Contains(strings.ToUpper(b.TextOf(row)), m.term) {
			return true
		}
	}
	return false
}

// Filter returns the rows matching term in any of columns, in input order.
// With an empty term or no columns the input slice is returned as is.
func Filter(rows []model.Row, term string, columns []model.Column, reg *coltype.Registry) ([]model.Row, error) {
	if term == "" || len(columns) == 0 {
		return rows, nil
	}
	m, err := NewMatcher(term, columns, reg)
	if err != nil {
		return nil, err
	}
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		if m.Match(row) {
			out = append(out, row)
		}
	}
	return out, nil
}
