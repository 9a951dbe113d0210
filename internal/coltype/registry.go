// Package coltype maps a column's display kind to the behaviour used to
// search and render its values.
package coltype

import (
	"fmt"

	"github.com/oakwood-commons/tblx/internal/model"
)

// ErrUnknownColumnType is matched by errors returned from Resolve for a
// display kind without a registered factory.
var ErrUnknownColumnType = model.ErrUnknownColumnType

// UnknownColumnTypeError carries the column and kind that failed to resolve.
type UnknownColumnTypeError = model.UnknownColumnTypeError

// Cell is the presentation projection of one value.
type Cell struct {
	Text   string
	Href   string
	Title  string
	Align  model.Alignment
	Class  string
	NewTab bool
}

// Behavior is the per-kind behaviour bundle of a column.
type Behavior interface {
	Kind() model.DisplayAs
	// TextOf returns the projection of the row's value used for search
	// matching.
	TextOf(row model.Row) string
	// Render returns the projection used for display.
	Render(row model.Row) Cell
}

// Factory builds the behaviour for a column.
type Factory func(column model.Column) Behavior

// Registry resolves columns to behaviours. Build one with New and pass it to
// the components that need it.
type Registry struct {
	factories map[model.DisplayAs]Factory
}

// Option configures a Registry.
type Option func(*Registry)

// WithFactory registers f for kind, replacing any built-in.
func WithFactory(kind model.DisplayAs, f Factory) Option {
	return func(r *Registry) {
		r.factories[kind] = f
	}
}

// WithoutBuiltins drops every built-in factory; only WithFactory entries
// remain.
func WithoutBuiltins() Option {
	return func(r *Registry) {
		r.factories = map[model.DisplayAs]Factory{}
	}
}

// New returns a Registry holding a factory for every supported display kind.
// Options are applied in order after the built-ins are installed.
func New(opts ...Option) *Registry {
	r := &Registry{factories: make(map[model.DisplayAs]Factory, len(model.AllDisplayAs))}
	for _, kind := range model.AllDisplayAs {
		r.factories[kind] = builtin(kind)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the behaviour for column. An alias kind ("structured")
// uses its canonical factory unless one is registered under the alias.
func (r *Registry) Resolve(column model.Column) (Behavior, error) {
	f, ok := r.factories[column.DisplayAs]
	if !ok {
		f, ok = r.factories[column.DisplayAs.Canonical()]
	}
	if !ok || f == nil {
		return nil, &UnknownColumnTypeError{Column: column.Name, DisplayAs: string(column.DisplayAs)}
	}
	return f(column), nil
}

// ResolveAll resolves every column, failing on the first unknown kind.
func (r *Registry) ResolveAll(columns []model.Column) ([]Behavior, error) {
	out := make([]Behavior, len(columns))
	for i, col := range columns {
		b, err := r.Resolve(col)
		if err != nil {
			return nil, fmt.Errorf("resolve column %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

func builtin(kind model.DisplayAs) Factory {
	switch kind {
	case model.DisplayText:
		return func(c model.Column) Behavior { return textColumn{base: newBase(c)} }
	case model.DisplayNumber:
		return func(c model.Column) Behavior { return newNumberColumn(c) }
	case model.DisplayDateTime:
		return func(c model.Column) Behavior { return newDateTimeColumn(c) }
	case model.DisplayBoolean:
		return func(c model.Column) Behavior { return newBooleanColumn(c) }
	case model.DisplayLink:
		return func(c model.Column) Behavior { return newLinkColumn(c) }
	case model.DisplayImage:
		return func(c model.Column) Behavior { return newImageColumn(c) }
	case model.DisplayJSON:
		return func(c model.Column) Behavior { return jsonColumn{base: newBase(c)} }
	}
	panic(fmt.Sprintf("coltype: no built-in behaviour for %q", kind))
}
