// Package formatter renders prepared headers and cells as a terminal table
// or as a machine-readable document.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/oakwood-commons/tblx/internal/model"
)

const ellipsis = "..."

var (
	defaultHeaderFG    = lipgloss.Color("12")
	defaultSortedFG    = lipgloss.Color("205")
	defaultRowNumFG    = lipgloss.Color("14")
	defaultValueColor  = lipgloss.Color("248")
	defaultSeparatorFG = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	sortedStyle    lipgloss.Style
	rowNumStyle    lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors of the columnar table. Nil
// fields fall back to ANSI 256 defaults.
type TableColors struct {
	Header    color.Color
	Sorted    color.Color
	RowNumber color.Color
	Value     color.Color
	Separator color.Color
}

func applyTableTheme(tc TableColors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(pick(tc.Header, defaultHeaderFG))
	sortedStyle = lipgloss.NewStyle().Bold(true).Foreground(pick(tc.Sorted, defaultSortedFG))
	rowNumStyle = lipgloss.NewStyle().Foreground(pick(tc.RowNumber, defaultRowNumFG))
	valueStyle = lipgloss.NewStyle().Foreground(pick(tc.Value, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(tc.Separator, defaultSeparatorFG))
}

// SetTableTheme overrides the package table styles.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

// ColorFromString returns a lipgloss color for a hex or ANSI code, or nil
// for an empty string.
func ColorFromString(s string) color.Color {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lipgloss.Color(s)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// flatten keeps table rows single-line by rendering line breaks as "\n".
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return strings.ReplaceAll(s, "\t", " ")
}

// truncate shortens s to maxLen display cells, ending in an ellipsis when
// there is room for one.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < len(ellipsis) {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, ellipsis)
}

func padRight(s string, width int) string {
	s = truncate(s, width)
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}

func padLeft(s string, width int) string {
	s = truncate(s, width)
	return strings.Repeat(" ", max(0, width-runewidth.StringWidth(s))) + s
}

func padCenter(s string, width int) string {
	s = truncate(s, width)
	gap := max(0, width-runewidth.StringWidth(s))
	return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
}

func pad(s string, width int, align model.Alignment) string {
	switch align {
	case model.AlignRight:
		return padLeft(s, width)
	case model.AlignCenter:
		return padCenter(s, width)
	default:
		return padRight(s, width)
	}
}

// getTerminalWidth returns the terminal width, or a default if detection fails.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
