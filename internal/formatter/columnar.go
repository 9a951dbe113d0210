package formatter

import (
	"strconv"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/view"
)

const (
	defaultSeparator      = "  "
	defaultMaxColumnWidth = 40
	minColWidth           = 3
)

// ColumnarOptions configures columnar table rendering.
type ColumnarOptions struct {
	NoColor bool

	// TotalWidth is the total available width. If 0, uses terminal width.
	TotalWidth int

	// MaxColumnWidth caps columns when the table does not fit. 0 means 40.
	MaxColumnWidth int

	// Separator goes between columns. Empty means two spaces.
	Separator string

	// RowNumbers adds a leading 1-based row number column.
	RowNumbers bool
}

// RenderColumnarTable renders headers and their cells as a multi-column
// table. Sorted columns show their direction indicator and, when several
// columns are sorted, their priority.
func RenderColumnarTable(headers []view.Header, cells [][]coltype.Cell, opts ColumnarOptions) string {
	if len(headers) == 0 {
		return ""
	}

	titles := make([]string, len(headers))
	for i, h := range headers {
		titles[i] = flatten(h.Title())
	}
	texts := make([][]string, len(cells))
	for i, row := range cells {
		texts[i] = make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				texts[i][j] = flatten(row[j].Text)
			}
		}
	}

	totalWidth := opts.TotalWidth
	if totalWidth <= 0 {
		totalWidth = getTerminalWidth()
	}
	sep := opts.Separator
	if sep == "" {
		sep = defaultSeparator
	}
	sepWidth := runewidth.StringWidth(sep)
	maxColWidth := opts.MaxColumnWidth
	if maxColWidth <= 0 {
		maxColWidth = defaultMaxColumnWidth
	}

	rowNumWidth := 0
	if opts.RowNumbers {
		rowNumWidth = max(len(strconv.Itoa(len(cells))), 1)
	}
	available := totalWidth
	if opts.RowNumbers {
		available -= rowNumWidth + sepWidth
	}
	widths := calculateColumnWidths(titles, texts, available, sepWidth, maxColWidth)

	renderedSep := sep
	if !opts.NoColor {
		renderedSep = separatorStyle.Render(sep)
	}

	var b strings.Builder
	b.WriteString(renderHeader(headers, titles, widths, rowNumWidth, renderedSep, opts))
	b.WriteByte('\n')

	lineWidth := rowNumWidth
	if opts.RowNumbers {
		lineWidth += sepWidth
	}
	for i, w := range widths {
		lineWidth += w
		if i < len(widths)-1 {
			lineWidth += sepWidth
		}
	}
	line := strings.Repeat("─", lineWidth)
	if !opts.NoColor {
		line = separatorStyle.Render(line)
	}
	b.WriteString(line)
	b.WriteByte('\n')

	for i, row := range texts {
		b.WriteString(renderDataRow(i, row, headers, cells[i], widths, rowNumWidth, renderedSep, opts))
		b.WriteByte('\n')
	}
	return b.String()
}

// calculateColumnWidths sizes each column to its widest value. When the
// table exceeds availableWidth, columns are capped at maxColWidth and then
// shrunk proportionally, never below minColWidth.
func calculateColumnWidths(titles []string, rows [][]string, availableWidth, sepWidth, maxColWidth int) []int {
	numCols := len(titles)
	if numCols == 0 {
		return nil
	}
	widths := make([]int, numCols)
	for i, t := range titles {
		widths[i] = runewidth.StringWidth(t)
	}
	for _, row := range rows {
		for i, val := range row {
			if w := runewidth.StringWidth(val); i < numCols && w > widths[i] {
				widths[i] = w
			}
		}
	}

	usable := availableWidth - (numCols-1)*sepWidth
	if usable <= 0 || sum(widths) <= usable {
		return widths
	}

	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}
	if total := sum(widths); total > usable {
		for i := range widths {
			widths[i] = max(minColWidth, widths[i]*usable/total)
		}
		// Rounding up to minColWidth can still overshoot; trim the widest.
		for sum(widths) > usable {
			widest := 0
			for i := 1; i < numCols; i++ {
				if widths[i] > widths[widest] {
					widest = i
				}
			}
			if widths[widest] <= minColWidth {
				break
			}
			widths[widest]--
		}
	}
	return widths
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func renderHeader(headers []view.Header, titles []string, widths []int, rowNumWidth int, sep string, opts ColumnarOptions) string {
	parts := make([]string, 0, len(headers)+1)
	if opts.RowNumbers {
		h := padRight("#", rowNumWidth)
		if !opts.NoColor {
			h = headerStyle.Render(h)
		}
		parts = append(parts, h)
	}
	for i, h := range headers {
		text := pad(titles[i], widths[i], h.Column.AlignContent)
		if !opts.NoColor {
			if h.Indicator() != "" {
				text = sortedStyle.Render(text)
			} else {
				text = headerStyle.Render(text)
			}
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, sep)
}

func renderDataRow(rowIndex int, values []string, headers []view.Header, cells []coltype.Cell, widths []int, rowNumWidth int, sep string, opts ColumnarOptions) string {
	parts := make([]string, 0, len(values)+1)
	if opts.RowNumbers {
		num := padLeft(strconv.Itoa(rowIndex+1), rowNumWidth)
		if !opts.NoColor {
			num = rowNumStyle.Render(num)
		}
		parts = append(parts, num)
	}
	for i, val := range values {
		align := headers[i].Column.AlignContent
		if i < len(cells) && cells[i].Align != "" {
			align = cells[i].Align
		}
		text := pad(val, widths[i], align)
		if !opts.NoColor {
			text = valueStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, sep)
}
