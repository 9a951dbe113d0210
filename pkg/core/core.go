// Package core wires column typing, expression filtering, search and
// ordering into a single table preparation pipeline.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tblx/internal/cel"
	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
	"github.com/oakwood-commons/tblx/internal/rowfilter"
	"github.com/oakwood-commons/tblx/internal/rowsort"
	"github.com/oakwood-commons/tblx/internal/view"
	"github.com/oakwood-commons/tblx/pkg/logger"
)

// ErrUnknownColumn is returned when a request names a column that is not
// defined.
var ErrUnknownColumn = errors.New("unknown column")

// Engine prepares tables for display.
type Engine struct {
	Registry  *coltype.Registry
	Evaluator *cel.Evaluator
	// Logger overrides the logger carried by the context.
	Logger *logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithRegistry sets the column type registry.
func WithRegistry(r *coltype.Registry) Option {
	return func(e *Engine) {
		e.Registry = r
	}
}

// WithEvaluator sets the CEL evaluator used for where expressions.
func WithEvaluator(ev *cel.Evaluator) Option {
	return func(e *Engine) {
		e.Evaluator = ev
	}
}

// WithLogger sets a logger that takes precedence over the context logger.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.Logger = &lgr
	}
}

// New creates an Engine with the built-in column types and a default CEL
// evaluator unless options supply them.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Registry == nil {
		engine.Registry = coltype.New()
	}
	if engine.Evaluator == nil {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = ev
	}
	return engine, nil
}

func (e *Engine) log(ctx context.Context) *logr.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.FromContext(ctx)
}

// Request is one table preparation.
type Request struct {
	Columns []model.Column
	Rows    []model.Row
	OrderBy orderby.Spec
	// Search is matched case-insensitively against the searchable columns.
	Search string
	// SearchColumns names the columns to search. Empty means every column
	// with AllowSearch set.
	SearchColumns []string
	// Where is an optional CEL predicate over `row`.
	Where string
}

// Result holds the visible headers, the surviving rows in display order and
// their rendered cells.
type Result struct {
	Headers []view.Header
	Rows    []model.Row
	Cells   [][]coltype.Cell
}

// Prepare validates the request, then applies the where expression, the
// search term and the ordering, in that order, and renders the result.
// Input rows are never modified.
func (e *Engine) Prepare(ctx context.Context, req Request) (*Result, error) {
	lgr := e.log(ctx)

	if err := model.ValidateColumns(req.Columns); err != nil {
		return nil, err
	}
	if err := req.OrderBy.Validate(); err != nil {
		return nil, err
	}
	searchCols, err := e.searchColumns(req)
	if err != nil {
		return nil, err
	}

	rows := req.Rows
	if req.Where != "" {
		pred, err := e.Evaluator.Compile(req.Where)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		if rows, err = cel.Where(rows, pred); err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		lgr.V(1).Info("applied where expression", "expr", req.Where, logger.RowsKey, len(rows))
	}

	if rows, err = rowfilter.Filter(rows, req.Search, searchCols, e.Registry); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if req.Search != "" {
		lgr.V(1).Info("applied search", "term", req.Search, "columns", len(searchCols), logger.RowsKey, len(rows))
	}

	rows = rowsort.Sort(rows, req.OrderBy)

	headers := view.Headers(req.Columns, req.OrderBy)
	cells, err := view.Cells(headers, rows, e.Registry)
	if err != nil {
		return nil, err
	}
	lgr.V(1).Info("prepared table", logger.RowsKey, len(rows), logger.OrderByKey, req.OrderBy.String())
	return &Result{Headers: headers, Rows: rows, Cells: cells}, nil
}

func (e *Engine) searchColumns(req Request) ([]model.Column, error) {
	if len(req.SearchColumns) == 0 {
		return SearchColumns(req.Columns), nil
	}
	byName := make(map[string]model.Column, len(req.Columns))
	for _, c := range req.Columns {
		byName[c.Name] = c
	}
	out := make([]model.Column, 0, len(req.SearchColumns))
	for _, name := range req.SearchColumns {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("search: %w %q", ErrUnknownColumn, name)
		}
		out = append(out, c)
	}
	return out, nil
}

// SearchColumns returns the columns with AllowSearch set, in input order.
func SearchColumns(columns []model.Column) []model.Column {
	out := make([]model.Column, 0, len(columns))
	for _, c := range columns {
		if c.AllowSearch {
			out = append(out, c)
		}
	}
	return out
}

// Toggle applies one header activation to spec. multi mirrors the modifier
// key: it extends the ordering instead of replacing it.
func (e *Engine) Toggle(ctx context.Context, name string, spec orderby.Spec, multi bool) orderby.Spec {
	next := orderby.Toggle(name, spec, multi)
	e.log(ctx).V(1).Info("toggled ordering", logger.ColumnKey, name, "multi", multi,
		"from", spec.String(), logger.OrderByKey, next.String())
	return next
}

// HasColumn reports whether columns defines name.
func HasColumn(columns []model.Column, name string) bool {
	for _, c := range columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
