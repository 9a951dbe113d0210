package loader

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/internal/model"
)

const (
	defaultIntegerFormat  = "0,0"
	defaultFloatFormat    = "0,0.00"
	defaultDateFormat     = "DD/MM/YY"
	defaultDateTimeFormat = "DD/MM/YY HH:mm"
)

// ParseColumns decodes a YAML or JSON list of column definitions, or an
// object holding one under "columns". Missing fields default to visible,
// left aligned text. Display kind aliases are normalized; unknown kinds are
// kept so that they fail when the column is resolved.
func ParseColumns(data []byte) ([]model.Column, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		var wrapped struct {
			Columns []yaml.Node `yaml:"columns"`
		}
		if werr := yaml.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("invalid column definitions: %w", err)
		}
		nodes = wrapped.Columns
	}

	columns := make([]model.Column, 0, len(nodes))
	for i := range nodes {
		var col model.Column
		if err := nodes[i].Decode(&col); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		// visible defaults to true, which the zero value cannot express.
		var presence struct {
			Visible *bool `yaml:"visible"`
		}
		if err := nodes[i].Decode(&presence); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		if col.Name == "" {
			return nil, fmt.Errorf("column %d: missing name", i)
		}
		col.Visible = presence.Visible == nil || *presence.Visible
		if col.AlignContent == "" {
			col.AlignContent = model.AlignLeft
		}
		if col.DisplayAs == "" {
			col.DisplayAs = model.DisplayText
		} else if d, err := model.ParseDisplayAs(string(col.DisplayAs)); err == nil {
			col.DisplayAs = d
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// LoadColumnsFile reads column definitions from path.
func LoadColumnsFile(path string) ([]model.Column, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	columns, err := ParseColumns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return columns, nil
}

// InferColumns builds column definitions for doc. Declared columns are used
// in their declared order; otherwise every key found in the rows becomes a
// column, sorted by name, typed from the shape of its values. All inferred
// columns are visible and searchable.
func InferColumns(doc *Document) []model.Column {
	if doc == nil {
		return nil
	}
	if len(doc.Declared) > 0 {
		columns := make([]model.Column, len(doc.Declared))
		for i, dc := range doc.Declared {
			col := newColumn(dc.Name, i)
			col.Title = dc.FriendlyName
			applyDeclaredType(&col, dc.Type)
			columns[i] = col
		}
		return columns
	}

	values := map[string][]any{}
	for _, row := range doc.Rows {
		for k, v := range row {
			values[k] = append(values[k], v)
		}
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	slices.Sort(names)

	columns := make([]model.Column, len(names))
	for i, name := range names {
		col := newColumn(name, i)
		applyDeclaredType(&col, shapeOf(values[name]))
		columns[i] = col
	}
	return columns
}

func newColumn(name string, order int) model.Column {
	return model.Column{
		Name:         name,
		DisplayAs:    model.DisplayText,
		Order:        order,
		Visible:      true,
		AlignContent: model.AlignLeft,
		AllowSearch:  true,
	}
}

func applyDeclaredType(col *model.Column, typ string) {
	switch strings.ToLower(typ) {
	case "integer":
		col.DisplayAs = model.DisplayNumber
		col.NumberFormat = defaultIntegerFormat
		col.AlignContent = model.AlignRight
	case "float":
		col.DisplayAs = model.DisplayNumber
		col.NumberFormat = defaultFloatFormat
		col.AlignContent = model.AlignRight
	case "boolean":
		col.DisplayAs = model.DisplayBoolean
	case "date":
		col.DisplayAs = model.DisplayDateTime
		col.DateTimeFormat = defaultDateFormat
	case "datetime":
		col.DisplayAs = model.DisplayDateTime
		col.DateTimeFormat = defaultDateTimeFormat
	case "link":
		col.DisplayAs = model.DisplayLink
	case "json":
		col.DisplayAs = model.DisplayJSON
	}
}

// shapeOf names the declared type that fits every non-nil value, or ""
// for text.
func shapeOf(values []any) string {
	shape := ""
	for _, v := range values {
		s := valueShape(v)
		switch {
		case s == "":
			continue
		case shape == "":
			shape = s
		case shape == "integer" && s == "float", shape == "float" && s == "integer":
			shape = "float"
		case shape != s:
			return "text"
		}
	}
	return shape
}

func valueShape(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32:
		return floatShape(float64(x))
	case float64:
		return floatShape(x)
	case time.Time:
		return "datetime"
	case map[string]any, map[any]any, []any:
		return "json"
	case string:
		if strings.HasPrefix(x, "http://") || strings.HasPrefix(x, "https://") {
			return "link"
		}
		if _, err := time.Parse(time.RFC3339, x); err == nil {
			return "datetime"
		}
		if _, err := time.Parse(time.DateOnly, x); err == nil {
			return "date"
		}
	}
	return "text"
}

// floatShape treats whole floats (as decoded from JSON) as integers.
func floatShape(f float64) string {
	if f == float64(int64(f)) {
		return "integer"
	}
	return "float"
}
