package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/internal/model"
)

func TestLoadRowsFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Row
	}{
		{
			name:  "json array",
			input: `[{"name": "Amy", "age": 25}, {"name": "Bob", "age": 30}]`,
			want:  []model.Row{{"name": "Amy", "age": float64(25)}, {"name": "Bob", "age": float64(30)}},
		},
		{
			name:  "single json object",
			input: `{"name": "Amy"}`,
			want:  []model.Row{{"name": "Amy"}},
		},
		{
			name:  "ndjson",
			input: "{\"name\": \"Amy\"}\n{\"name\": \"Bob\"}\n",
			want:  []model.Row{{"name": "Amy"}, {"name": "Bob"}},
		},
		{
			name:  "yaml list",
			input: "- name: Amy\n  age: 25\n- name: Bob\n  age: 30\n",
			want:  []model.Row{{"name": "Amy", "age": 25}, {"name": "Bob", "age": 30}},
		},
		{
			name:  "multi-document yaml",
			input: "name: Amy\n---\nname: Bob\n",
			want:  []model.Row{{"name": "Amy"}, {"name": "Bob"}},
		},
		{
			name:  "toml rows",
			input: "[[rows]]\nname = \"Amy\"\nage = 25\n\n[[rows]]\nname = \"Bob\"\nage = 30\n",
			want:  []model.Row{{"name": "Amy", "age": int64(25)}, {"name": "Bob", "age": int64(30)}},
		},
		{
			name:  "csv",
			input: "name,age,zip,active\nAmy,25,007,true\nBob,,10115,false\n",
			want: []model.Row{
				{"name": "Amy", "age": int64(25), "zip": "007", "active": true},
				{"name": "Bob", "age": nil, "zip": int64(10115), "active": false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadRows(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Rows)
			assert.Empty(t, doc.Declared)
		})
	}
}

func TestLoadRowsQueryResult(t *testing.T) {
	input := `{
  "columns": [
    {"name": "name", "friendly_name": "Name", "type": "string"},
    {"name": "age", "friendly_name": "Age", "type": "integer"}
  ],
  "rows": [{"name": "Amy", "age": 25}]
}`
	doc, err := LoadRows(input)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, []DeclaredColumn{
		{Name: "name", FriendlyName: "Name", Type: "string"},
		{Name: "age", FriendlyName: "Age", Type: "integer"},
	}, doc.Declared)

	nested, err := LoadRows(`{"query_result": {"data": {"columns": [{"name": "x"}], "rows": [{"x": 1}]}}}`)
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"x": float64(1)}}, nested.Rows)
	assert.Equal(t, "x", nested.Declared[0].Name)
}

func TestLoadRowsErrors(t *testing.T) {
	_, err := LoadRows("   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = LoadRows(`[1, 2, 3]`)
	assert.ErrorIs(t, err, ErrNotARow)
	assert.Contains(t, err.Error(), "row 0")

	_, err = LoadRows("{\"a\": 1}\n{broken\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = LoadRows(`{"columns": "nope", "rows": []}`)
	require.Error(t, err)
}

func TestLoadRowsFile(t *testing.T) {
	dir := t.TempDir()

	tsv := filepath.Join(dir, "people.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("name\tage\nAmy\t25\n"), 0o600))
	doc, err := LoadRowsFile(tsv)
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"name": "Amy", "age": int64(25)}}, doc.Rows)

	csvPath := filepath.Join(dir, "one.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name\nAmy\n"), 0o600))
	doc, err = LoadRowsFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"name": "Amy"}}, doc.Rows)

	_, err = LoadRowsFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRowsReader(t *testing.T) {
	doc, err := LoadRowsReader(strings.NewReader(`[{"a": "b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"a": "b"}}, doc.Rows)
}

func TestFormatHeuristics(t *testing.T) {
	assert.True(t, isLikelyNDJSON([]string{`{"a":1}`, `{"a":2}`}))
	assert.False(t, isLikelyNDJSON([]string{"- a", "- b"}))

	assert.True(t, isLikelyTOML([]string{"[[rows]]", `name = "x"`}))
	assert.False(t, isLikelyTOML([]string{"[1, 2, 3]"}))

	assert.True(t, isLikelyCSV([]string{"a,b", "1,2"}))
	assert.False(t, isLikelyCSV([]string{"a: 1,2", "b: 3"}))
	assert.False(t, isLikelyCSV([]string{"a,b"}))
	assert.False(t, isLikelyCSV([]string{"a,b", "1,2,3"}))
}

func TestCSVValue(t *testing.T) {
	assert.Nil(t, csvValue(""))
	assert.Equal(t, true, csvValue("TRUE"))
	assert.Equal(t, int64(-3), csvValue("-3"))
	assert.Equal(t, "007", csvValue("007"))
	assert.Equal(t, 1.5, csvValue("1.5"))
	assert.Equal(t, "NaN", csvValue("NaN"))
	assert.Equal(t, "Amy", csvValue("Amy"))
}
