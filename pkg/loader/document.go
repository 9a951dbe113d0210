package loader

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/tblx/internal/model"
)

// ErrNotARow is returned when a record in the input is not an object.
var ErrNotARow = errors.New("record is not an object")

// DeclaredColumn is a column announced by the input itself, as in query
// result documents of the form {"columns": [...], "rows": [...]}.
type DeclaredColumn struct {
	Name         string
	FriendlyName string
	// Type is the source's result type: integer, float, boolean, string,
	// date or datetime.
	Type string
}

// Document is parsed row data plus any columns it declares.
type Document struct {
	Rows     []model.Row
	Declared []DeclaredColumn
}

// documentFrom normalizes parsed documents into rows. Accepted shapes:
//   - several documents (NDJSON, multi-document YAML), one row each
//   - a single array of objects
//   - a single object with a "rows" array, optionally with "columns",
//     also nested under "query_result.data"
//   - a single object, which becomes one row
func documentFrom(docs []any) (*Document, error) {
	if len(docs) != 1 {
		rows, err := toRows(docs)
		if err != nil {
			return nil, err
		}
		return &Document{Rows: rows}, nil
	}

	switch v := docs[0].(type) {
	case []any:
		rows, err := toRows(v)
		if err != nil {
			return nil, err
		}
		return &Document{Rows: rows}, nil
	case nil:
		return &Document{Rows: []model.Row{}}, nil
	}

	obj, ok := asObject(docs[0])
	if !ok {
		return nil, fmt.Errorf("row 0: %w", ErrNotARow)
	}
	if qr, ok := asObject(obj["query_result"]); ok {
		if data, ok := asObject(qr["data"]); ok {
			obj = data
		}
	}
	rawRows, hasRows := obj["rows"].([]any)
	if !hasRows {
		return &Document{Rows: []model.Row{obj}}, nil
	}

	rows, err := toRows(rawRows)
	if err != nil {
		return nil, err
	}
	declared, err := declaredColumns(obj["columns"])
	if err != nil {
		return nil, err
	}
	return &Document{Rows: rows, Declared: declared}, nil
}

func toRows(items []any) ([]model.Row, error) {
	rows := make([]model.Row, 0, len(items))
	for i, item := range items {
		obj, ok := asObject(item)
		if !ok {
			return nil, fmt.Errorf("row %d: %w", i, ErrNotARow)
		}
		rows = append(rows, obj)
	}
	return rows, nil
}

// asObject accepts both string-keyed maps and the map[any]any YAML produces
// for non-string keys.
func asObject(v any) (model.Row, bool) {
	switch m := v.(type) {
	case model.Row:
		return m, true
	case map[string]any:
		return model.Row(m), true
	case map[any]any:
		out := make(model.Row, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func declaredColumns(v any) ([]DeclaredColumn, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("columns: expected a list, got %T", v)
	}
	out := make([]DeclaredColumn, 0, len(list))
	for i, item := range list {
		obj, ok := asObject(item)
		if !ok {
			return nil, fmt.Errorf("columns[%d]: %w", i, ErrNotARow)
		}
		name, _ := obj["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("columns[%d]: missing name", i)
		}
		friendly, _ := obj["friendly_name"].(string)
		typ, _ := obj["type"].(string)
		out = append(out, DeclaredColumn{Name: name, FriendlyName: friendly, Type: typ})
	}
	return out, nil
}
