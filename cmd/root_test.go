package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/internal/formatter"
	"github.com/oakwood-commons/tblx/internal/limiter"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
	"github.com/oakwood-commons/tblx/pkg/core"
	"github.com/oakwood-commons/tblx/pkg/tui"
)

const peopleJSON = `[
  {"name": "Bob", "age": 30, "city": "Oslo"},
  {"name": "Amy", "age": 25, "city": "Lima"},
  {"name": "Cid", "age": 25, "city": "Rome"}
]`

// execute runs a fresh root command with stdin and an isolated config dir.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeJSONRows(t *testing.T, out string) []map[string]string {
	t.Helper()
	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func TestRootJSONOrdered(t *testing.T) {
	out, err := execute(t, peopleJSON, "--order", "age,-name", "-o", "json")
	require.NoError(t, err)

	rows := decodeJSONRows(t, out)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Cid", "Amy", "Bob"}, []string{rows[0]["name"], rows[1]["name"], rows[2]["name"]})
	assert.Equal(t, "25", rows[0]["age"])
	assert.True(t, strings.Index(out, `"age"`) < strings.Index(out, `"city"`), "keys follow column order")
}

func TestRootWhereAndSearch(t *testing.T) {
	out, err := execute(t, peopleJSON, "--where", "row.age < 30.0", "--search", "LI", "-o", "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"age", "city", "name"}, {"25", "Lima", "Amy"}}, records)
}

func TestRootLimitAndTail(t *testing.T) {
	out, err := execute(t, peopleJSON, "--order", "name", "--limit", "2", "-o", "json")
	require.NoError(t, err)
	rows := decodeJSONRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Amy", rows[0]["name"])
	assert.Equal(t, "Bob", rows[1]["name"])

	out, err = execute(t, peopleJSON, "--order", "name", "--tail", "1", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "age,city,name\n25,Rome,Cid\n", out)
}

func TestRootSearchColumns(t *testing.T) {
	out, err := execute(t, peopleJSON, "--search", "o", "--search-columns", "city", "-o", "json")
	require.NoError(t, err)
	rows := decodeJSONRows(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[0]["name"])
	assert.Equal(t, "Cid", rows[1]["name"])
}

func TestRootFileAndColumns(t *testing.T) {
	rows := writeFile(t, "people.csv", "name,age\nBob,30\nAmy,25\n")
	columns := writeFile(t, "columns.yaml", `
- name: name
  title: Person
  allowSearch: true
- name: age
  displayAs: number
  visible: false
`)
	out, err := execute(t, "", rows, "--columns", columns, "--order", "-age", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Person\nBob\nAmy\n", out)
}

func TestRootTableUsesConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "output:\n  noColor: true\ntable:\n  separator: \" | \"\n")
	out, err := execute(t, peopleJSON, "--config-file", cfg, "--order", "name", "--width", "80")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lines[0], " | ")
	assert.Contains(t, lines[0], "name ▲")
	assert.NotContains(t, out, "\x1b[", "noColor from config disables styling")
	assert.Contains(t, lines[2], "Amy")
}

func TestRootOutputFromConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "output:\n  format: markdown\n")
	out, err := execute(t, peopleJSON, "--config-file", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "| age"), out)

	out, err = execute(t, peopleJSON, "--config-file", cfg, "-o", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestRootErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		target   error
	}{
		{"unknown format", []string{"-o", "xml"}, 2, formatter.ErrUnknownFormat},
		{"malformed order", []string{"--order", "age:sideways"}, 2, nil},
		{"duplicate order", []string{"--order", "age,age"}, 2, nil},
		{"limit and tail", []string{"--limit", "1", "--tail", "1"}, 2, limiter.ErrInvalidLimit},
		{"too many args", []string{"a.json", "b.json"}, 2, nil},
		{"unknown flag", []string{"--nope"}, 2, nil},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.json")}, 1, os.ErrNotExist},
		{"unknown search column", []string{"--search", "x", "--search-columns", "zip"}, 1, core.ErrUnknownColumn},
		{"bad where", []string{"--where", "row.age +"}, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, peopleJSON, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, ExitCode(err))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestRootBadConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "table:\n  maxColumnWidth: -1\n")
	_, err := execute(t, peopleJSON, "--config-file", cfg)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, err.Error(), "load config")
}

func TestRootInteractive(t *testing.T) {
	var got tui.Config
	orig := runTUI
	runTUI = func(ctx context.Context, engine *core.Engine, cfg tui.Config) (orderby.Spec, error) {
		got = cfg
		m, err := tui.NewModel(ctx, engine, cfg)
		if err != nil {
			return nil, err
		}
		require.Len(t, m.Result().Rows, 2)
		assert.Equal(t, "Bob", m.Result().Rows[0]["name"])
		return m.Order(), nil
	}
	defer func() { runTUI = orig }()

	_, err := execute(t, peopleJSON, "-i", "--order", "age:desc", "--search", "o", "--width", "70")
	require.NoError(t, err)
	assert.Equal(t, orderby.Spec{{Name: "age", Direction: orderby.Descend}}, got.OrderBy)
	assert.Equal(t, "o", got.Search)
	assert.Equal(t, 70, got.Width)
	assert.Len(t, got.Columns, 3)

	runTUI = func(context.Context, *core.Engine, tui.Config) (orderby.Spec, error) {
		return nil, errors.New("no tty")
	}
	_, err = execute(t, peopleJSON, "-i")
	assert.ErrorContains(t, err, "interactive table: no tty")
}

func TestColumnsCommand(t *testing.T) {
	out, err := execute(t, peopleJSON, "columns")
	require.NoError(t, err)

	var columns []model.Column
	require.NoError(t, yaml.Unmarshal([]byte(out), &columns))
	require.Len(t, columns, 3)
	assert.Equal(t, "age", columns[0].Name)
	assert.Equal(t, model.DisplayNumber, columns[0].DisplayAs)
	assert.Equal(t, model.AlignRight, columns[0].AlignContent)
	assert.Equal(t, "city", columns[1].Name)
	assert.Equal(t, model.DisplayText, columns[1].DisplayAs)
	assert.True(t, columns[2].Visible)
}

func TestToggleCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--column", "age"}, "age:asc"},
		{[]string{"--order", "age", "--column", "age"}, "age:desc"},
		{[]string{"--order", "age:desc", "--column", "age"}, ""},
		{[]string{"--order", "age", "--column", "name"}, "name:asc"},
		{[]string{"--order", "age", "--column", "name", "--multi"}, "age:asc,name:asc"},
		{[]string{"--order", "age,name:desc", "--column", "name", "--multi"}, "age:asc"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := execute(t, "", append([]string{"toggle"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	_, err := execute(t, "", "toggle", "--order", "age")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tblx "))
	assert.Contains(t, out, "commit ")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(newUsageError(errors.New("bad flag"))))
	assert.Nil(t, newUsageError(nil))
}
