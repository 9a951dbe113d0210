// Package table is the interactive bubbletea table: headers toggle the
// ordering and a search line narrows the rows.
package table

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	bubtable "charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
	"github.com/oakwood-commons/tblx/internal/view"
	"github.com/oakwood-commons/tblx/pkg/core"
)

const (
	defaultMaxColumnWidth = 40
	focusMarker           = "› "
	chromeHeight          = 4 // search line, header border, status line, spacing
)

// Options configures a Model.
type Options struct {
	Columns       []model.Column
	Rows          []model.Row
	OrderBy       orderby.Spec
	Search        string
	SearchColumns []string
	Where         string

	Width          int
	Height         int
	MaxColumnWidth int
	NoColor        bool

	HeaderColor   color.Color
	SelectedColor color.Color
}

// Model is the interactive table. It owns the ordering and the search term;
// every change re-runs the engine over the original rows.
type Model struct {
	ctx    context.Context
	engine *core.Engine
	opts   Options

	order  orderby.Spec
	search string

	result  *core.Result
	focus   int
	errText string

	table     bubtable.Model
	styles    bubtable.Styles
	input     textinput.Model
	searching bool
	// searchBefore restores the term when editing is cancelled.
	searchBefore string

	width  int
	height int
}

// New builds a Model and prepares the initial table. Errors from the
// initial preparation are returned; later ones are shown in the status line.
func New(ctx context.Context, engine *core.Engine, opts Options) (*Model, error) {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = defaultMaxColumnWidth
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 200
	ti.SetWidth(opts.Width - 2)
	ti.SetValue(opts.Search)

	m := &Model{
		ctx:    ctx,
		engine: engine,
		opts:   opts,
		order:  opts.OrderBy,
		search: opts.Search,
		input:  ti,
		width:  opts.Width,
		height: opts.Height,
		table: bubtable.New(
			bubtable.WithFocused(true),
			bubtable.WithHeight(max(1, opts.Height-chromeHeight)),
		),
	}
	m.initStyles()
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) initStyles() {
	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		PaddingLeft(0).
		PaddingRight(1)
	s.Cell = lipgloss.NewStyle().PaddingLeft(0).PaddingRight(1)
	s.Selected = s.Selected.PaddingLeft(0).PaddingRight(0)

	if m.opts.NoColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.opts.HeaderColor != nil {
			s.Header = s.Header.Foreground(m.opts.HeaderColor)
		}
		if m.opts.SelectedColor != nil {
			s.Selected = s.Selected.Foreground(m.opts.SelectedColor)
		}
	}
	m.styles = s
	m.table.SetStyles(s)
}

// refresh re-runs the engine with the current ordering and search term.
func (m *Model) refresh() error {
	res, err := m.engine.Prepare(m.ctx, core.Request{
		Columns:       m.opts.Columns,
		Rows:          m.opts.Rows,
		OrderBy:       m.order,
		Search:        m.search,
		SearchColumns: m.opts.SearchColumns,
		Where:         m.opts.Where,
	})
	if err != nil {
		return err
	}
	m.result = res
	if m.focus >= len(res.Headers) {
		m.focus = max(0, len(res.Headers)-1)
	}
	m.syncTable()
	return nil
}

func (m *Model) syncTable() {
	texts := view.Texts(m.result.Cells)
	cols := make([]bubtable.Column, len(m.result.Headers))
	for i, h := range m.result.Headers {
		title := h.Title()
		if i == m.focus {
			title = focusMarker + title
		}
		width := runewidth.StringWidth(title)
		for _, row := range texts {
			width = max(width, runewidth.StringWidth(row[i]))
		}
		cols[i] = bubtable.Column{Title: title, Width: min(width, m.opts.MaxColumnWidth)}
	}
	rows := make([]bubtable.Row, len(texts))
	for i, row := range texts {
		rows[i] = bubtable.Row(row)
	}

	// Columns first: rows are rendered against the current column count.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.MoveFocus(-1)
			return m, nil
		case "right", "l":
			m.MoveFocus(1)
			return m, nil
		case "s", "enter":
			m.ToggleFocused(false)
			return m, nil
		case "S", "shift+s", "ctrl+s":
			m.ToggleFocused(true)
			return m, nil
		case "/":
			m.searching = true
			m.searchBefore = m.search
			m.input.SetValue(m.search)
			m.input.SetCursor(len(m.search))
			return m, m.input.Focus()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.input.Blur()
		m.SetSearch(m.searchBefore)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.search {
		m.SetSearch(v)
	}
	return m, cmd
}

// SetSize resizes the table to the window.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(1, height-chromeHeight))
	m.input.SetWidth(max(1, width-2))
}

// MoveFocus moves the focused column by delta, clamped to the visible
// columns.
func (m *Model) MoveFocus(delta int) {
	n := len(m.result.Headers)
	if n == 0 {
		return
	}
	m.focus = min(max(m.focus+delta, 0), n-1)
	m.syncTable()
}

// ToggleFocused activates the focused column header. multi extends the
// current ordering instead of replacing it.
func (m *Model) ToggleFocused(multi bool) {
	if len(m.result.Headers) == 0 {
		return
	}
	name := m.result.Headers[m.focus].Column.Name
	prev := m.order
	m.order = m.engine.Toggle(m.ctx, name, m.order, multi)
	if err := m.refresh(); err != nil {
		m.order = prev
		m.errText = err.Error()
		return
	}
	m.errText = ""
}

// SetSearch replaces the search term and re-filters.
func (m *Model) SetSearch(term string) {
	prev := m.search
	m.search = term
	if err := m.refresh(); err != nil {
		m.search = prev
		m.errText = err.Error()
		return
	}
	m.errText = ""
}

// Order returns the current ordering.
func (m *Model) Order() orderby.Spec { return m.order }

// Search returns the current search term.
func (m *Model) Search() string { return m.search }

// Result returns the currently displayed table.
func (m *Model) Result() *core.Result { return m.result }

// FocusedColumn returns the name of the focused column, or "".
func (m *Model) FocusedColumn() string {
	if len(m.result.Headers) == 0 {
		return ""
	}
	return m.result.Headers[m.focus].Column.Name
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	var b strings.Builder
	switch {
	case m.searching:
		b.WriteString(m.input.View())
	case m.search != "":
		b.WriteString("/" + m.search)
	default:
		b.WriteString(m.dim("/ to search"))
	}
	b.WriteByte('\n')
	b.WriteString(m.table.View())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) statusLine() string {
	if m.errText != "" {
		if m.opts.NoColor {
			return "error: " + m.errText
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("error: " + m.errText)
	}
	order := m.order.String()
	if order == "" {
		order = "none"
	}
	line := fmt.Sprintf("order: %s  rows: %d/%d", order, len(m.result.Rows), len(m.opts.Rows))
	keys := "←/→ column  s sort  S add sort  / search  q quit"
	return line + "  " + m.dim(keys)
}

func (m *Model) dim(s string) string {
	if m.opts.NoColor {
		return s
	}
	return lipgloss.NewStyle().Faint(true).Render(s)
}

// Run starts the interactive table and returns the ordering in effect when
// the user quits.
func Run(m *Model, opts ...tea.ProgramOption) (orderby.Spec, error) {
	opts = append(opts, tea.WithWindowSize(m.width, m.height))
	prog := tea.NewProgram(m, opts...)
	final, err := prog.Run()
	if err != nil {
		return m.order, err
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm.order, nil
	}
	return m.order, nil
}
