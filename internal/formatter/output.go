package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/view"
)

// Format names an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML, FormatCSV, FormatMarkdown, FormatHTML}

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat normalizes s into a Format. "md" and "yml" are accepted.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatTable, FormatJSON, FormatYAML, FormatTOML, FormatCSV, FormatMarkdown, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Render writes headers and cells to w in the given format. Machine formats
// emit one record per row keyed by column name, holding the rendered text.
func Render(w io.Writer, format Format, headers []view.Header, cells [][]coltype.Cell, opts ColumnarOptions) error {
	var (
		out string
		err error
	)
	switch format {
	case FormatTable:
		out = RenderColumnarTable(headers, cells, opts)
	case FormatJSON:
		out, err = renderJSON(headers, cells)
	case FormatYAML:
		out, err = renderYAML(headers, cells)
	case FormatTOML:
		out, err = renderTOML(headers, cells)
	case FormatCSV:
		return renderCSV(w, headers, cells)
	case FormatMarkdown:
		out = RenderMarkdown(headers, cells)
	case FormatHTML:
		out = RenderHTML(headers, cells)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func cellText(cells []coltype.Cell, i int) string {
	if i < len(cells) {
		return cells[i].Text
	}
	return ""
}

// renderJSON keeps keys in column order, which encoding a map would not.
func renderJSON(headers []view.Header, cells [][]coltype.Cell) (string, error) {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, row := range cells {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for j, h := range headers {
			if j > 0 {
				compact.WriteByte(',')
			}
			key, err := json.Marshal(h.Column.Name)
			if err != nil {
				return "", err
			}
			val, err := json.Marshal(cellText(row, j))
			if err != nil {
				return "", err
			}
			compact.Write(key)
			compact.WriteByte(':')
			compact.Write(val)
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	out.WriteByte('\n')
	return out.String(), nil
}

func renderYAML(headers []view.Header, cells [][]coltype.Cell) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range cells {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for j, h := range headers {
			val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cellText(row, j)}
			if strings.Contains(val.Value, "\n") {
				val.Style = yaml.LiteralStyle
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Column.Name},
				val,
			)
		}
		seq.Content = append(seq.Content, m)
	}
	if len(seq.Content) == 0 {
		seq.Style = yaml.FlowStyle
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderTOML wraps the records in a "rows" array of tables, the shape the
// loader reads back.
func renderTOML(headers []view.Header, cells [][]coltype.Cell) (string, error) {
	rows := make([]map[string]string, len(cells))
	for i, row := range cells {
		rec := make(map[string]string, len(headers))
		for j, h := range headers {
			rec[h.Column.Name] = cellText(row, j)
		}
		rows[i] = rec
	}
	data, err := toml.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func renderCSV(w io.Writer, headers []view.Header, cells [][]coltype.Cell) error {
	cw := csv.NewWriter(w)
	record := make([]string, len(headers))
	for i, h := range headers {
		record[i] = h.Column.Label()
	}
	if err := cw.Write(record); err != nil {
		return err
	}
	for _, row := range cells {
		for j := range headers {
			record[j] = cellText(row, j)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMarkdown renders a GitHub-flavored markdown table. Headers carry
// their sort indicators; links and images become markdown links and images.
func RenderMarkdown(headers []view.Header, cells [][]coltype.Cell) string {
	if len(headers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("|")
	for _, h := range headers {
		b.WriteString(" " + escapeMarkdown(h.Title()) + " |")
	}
	b.WriteString("\n|")
	for _, h := range headers {
		switch h.Column.AlignContent {
		case model.AlignRight:
			b.WriteString(" ---: |")
		case model.AlignCenter:
			b.WriteString(" :---: |")
		default:
			b.WriteString(" --- |")
		}
	}
	b.WriteByte('\n')
	for _, row := range cells {
		b.WriteString("|")
		for j, h := range headers {
			var c coltype.Cell
			if j < len(row) {
				c = row[j]
			}
			b.WriteString(" " + markdownCell(h.Column.DisplayAs, c) + " |")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func markdownCell(kind model.DisplayAs, c coltype.Cell) string {
	text := escapeMarkdown(c.Text)
	if c.Href == "" {
		return text
	}
	href := strings.ReplaceAll(c.Href, " ", "%20")
	title := ""
	if c.Title != "" && c.Title != c.Text {
		title = ` "` + strings.ReplaceAll(escapeMarkdown(c.Title), `"`, `\"`) + `"`
	}
	if kind == model.DisplayImage {
		return "![" + text + "](" + href + title + ")"
	}
	return "[" + text + "](" + href + title + ")"
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "[", `\[`, "]", `\]`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(flatten(s))
}

// RenderHTML renders the markdown table as an HTML fragment.
func RenderHTML(headers []view.Header, cells [][]coltype.Cell) string {
	md := RenderMarkdown(headers, cells)
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.Render(doc, renderer))
}
