// Package tui exposes the tblx table to host applications: the interactive
// bubbletea table and a static rendering of the same pipeline.
package tui

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/tblx/internal/formatter"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
	"github.com/oakwood-commons/tblx/internal/ui/table"
	"github.com/oakwood-commons/tblx/pkg/core"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// Config describes one table for Run and RenderTable.
type Config struct {
	Columns       []model.Column
	Rows          []model.Row
	OrderBy       orderby.Spec
	Search        string
	SearchColumns []string
	Where         string

	// Width and Height default to the detected terminal size.
	Width          int
	Height         int
	MaxColumnWidth int
	// Separator goes between columns of the static table.
	Separator string
	NoColor   bool

	// HeaderColor and SelectedColor are hex or ANSI color codes.
	HeaderColor   string
	SelectedColor string
}

func (c Config) request() core.Request {
	return core.Request{
		Columns:       c.Columns,
		Rows:          c.Rows,
		OrderBy:       c.OrderBy,
		Search:        c.Search,
		SearchColumns: c.SearchColumns,
		Where:         c.Where,
	}
}

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
// If detection fails completely, returns generous defaults (120, 24) to avoid
// overly narrow output in CI or non-TTY environments.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

func withEngine(engine *core.Engine) (*core.Engine, error) {
	if engine != nil {
		return engine, nil
	}
	return core.New()
}

// NewModel builds the interactive table model without starting a program,
// for hosts that embed it in their own bubbletea application. A nil engine
// uses core defaults.
func NewModel(ctx context.Context, engine *core.Engine, cfg Config) (*table.Model, error) {
	engine, err := withEngine(engine)
	if err != nil {
		return nil, err
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		w, h := DetectTerminalSize()
		if width <= 0 {
			width = w
		}
		if height <= 0 {
			height = h
		}
	}
	req := cfg.request()
	return table.New(ctx, engine, table.Options{
		Columns:        req.Columns,
		Rows:           req.Rows,
		OrderBy:        req.OrderBy,
		Search:         req.Search,
		SearchColumns:  req.SearchColumns,
		Where:          req.Where,
		Width:          width,
		Height:         height,
		MaxColumnWidth: cfg.MaxColumnWidth,
		NoColor:        cfg.NoColor,
		HeaderColor:    formatter.ColorFromString(cfg.HeaderColor),
		SelectedColor:  formatter.ColorFromString(cfg.SelectedColor),
	})
}

// Run starts the interactive table and returns the ordering in effect when
// the user quits. Host applications can pass tea.ProgramOption values to
// control IO.
func Run(ctx context.Context, engine *core.Engine, cfg Config, opts ...tea.ProgramOption) (orderby.Spec, error) {
	m, err := NewModel(ctx, engine, cfg)
	if err != nil {
		return nil, err
	}
	return table.Run(m, opts...)
}

// RenderTable runs the table pipeline once and returns the columnar text.
func RenderTable(ctx context.Context, engine *core.Engine, cfg Config) (string, error) {
	engine, err := withEngine(engine)
	if err != nil {
		return "", err
	}
	res, err := engine.Prepare(ctx, cfg.request())
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	err = formatter.Render(&b, formatter.FormatTable, res.Headers, res.Cells, formatter.ColumnarOptions{
		NoColor:        cfg.NoColor,
		TotalWidth:     cfg.Width,
		MaxColumnWidth: cfg.MaxColumnWidth,
		Separator:      cfg.Separator,
	})
	return b.String(), err
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
