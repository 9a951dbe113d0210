// Package view prepares visible columns and rendered cells for presentation.
package view

import (
	"slices"
	"strconv"

	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
)

// Header is a visible column annotated with its sort state.
type Header struct {
	Column    model.Column
	Direction orderby.Direction
	// Priority is the 1-based sort priority, set only when more than one
	// column is ordered.
	Priority int
}

// Indicator returns the sort marker shown next to the header title.
func (h Header) Indicator() string {
	var arrow string
	switch h.Direction {
	case orderby.Ascend:
		arrow = "▲"
	case orderby.Descend:
		arrow = "▼"
	default:
		return ""
	}
	if h.Priority > 0 {
		return arrow + strconv.Itoa(h.Priority)
	}
	return arrow
}

// Title returns the column label followed by its indicator, if any.
func (h Header) Title() string {
	if ind := h.Indicator(); ind != "" {
		return h.Column.Label() + " " + ind
	}
	return h.Column.Label()
}

// Headers keeps the visible columns, orders them by Column.Order (stable)
// and attaches the sort state from spec.
func Headers(columns []model.Column, spec orderby.Spec) []Header {
	visible := make([]model.Column, 0, len(columns))
	for _, c := range columns {
		if c.Visible {
			visible = append(visible, c)
		}
	}
	slices.SortStableFunc(visible, func(a, b model.Column) int {
		return a.Order - b.Order
	})

	info := spec.Info()
	multi := spec.Multi()
	headers := make([]Header, len(visible))
	for i, c := range visible {
		h := Header{Column: c}
		if in, ok := info[c.Name]; ok {
			h.Direction = in.Direction
			if multi {
				h.Priority = in.Priority
			}
		}
		headers[i] = h
	}
	return headers
}

// Columns returns the columns behind headers.
func Columns(headers []Header) []model.Column {
	out := make([]model.Column, len(headers))
	for i, h := range headers {
		out[i] = h.Column
	}
	return out
}

// Cells renders every row through the behaviour of each header's column.
func Cells(headers []Header, rows []model.Row, reg *coltype.Registry) ([][]coltype.Cell, error) {
	behaviors, err := reg.ResolveAll(Columns(headers))
	if err != nil {
		return nil, err
	}
	out := make([][]coltype.Cell, len(rows))
	for i, row := range rows {
		cells := make([]coltype.Cell, len(behaviors))
		for j, b := range behaviors {
			cells[j] = b.Render(row)
		}
		out[i] = cells
	}
	return out, nil
}

// Texts flattens cells to their display text.
func Texts(cells [][]coltype.Cell) [][]string {
	out := make([][]string, len(cells))
	for i, row := range cells {
		texts := make([]string, len(row))
		for j, c := range row {
			texts[j] = c.Text
		}
		out[i] = texts
	}
	return out
}
