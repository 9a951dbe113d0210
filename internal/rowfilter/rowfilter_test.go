package rowfilter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/internal/coltype"
	"github.com/oakwood-commons/tblx/internal/model"
)

func TestFilterCaseInsensitiveOrderPreserving(t *testing.T) {
	rows := []model.Row{{"n": "Foo"}, {"n": "bar"}, {"n": "food"}}
	cols := []model.Column{{Name: "n", DisplayAs: model.DisplayText}}

	got, err := Filter(rows, "foo", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"n": "Foo"}, {"n": "food"}}, got)
}

func TestFilterPassthrough(t *testing.T) {
	rows := []model.Row{{"n": "Foo"}, {"n": "bar"}}
	cols := []model.Column{{Name: "n", DisplayAs: model.DisplayText}}

	got, err := Filter(rows, "", cols, coltype.New())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Same(t, &rows[0], &got[0])

	got, err = Filter(rows, "zzz", nil, coltype.New())
	require.NoError(t, err)
	assert.Same(t, &rows[0], &got[0])
}

func TestFilterAnyColumnMatches(t *testing.T) {
	rows := []model.Row{
		{"name": "Amy", "city": "Oslo"},
		{"name": "Bob", "city": "Amsterdam"},
		{"name": "Cid", "city": "Bern"},
	}
	cols := []model.Column{
		{Name: "name", DisplayAs: model.DisplayText},
		{Name: "city", DisplayAs: model.DisplayText},
	}
	got, err := Filter(rows, "am", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{rows[0], rows[1]}, got)

	got, err = Filter(rows, "nobody", cols, coltype.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterUsesTypeSpecificText(t *testing.T) {
	rows := []model.Row{{"ok": true}, {"ok": false}}
	cols := []model.Column{{Name: "ok", DisplayAs: model.DisplayBoolean, BooleanValues: []string{"Inactive", "Active"}}}

	got, err := Filter(rows, "inactive", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"ok": false}}, got)

	numbers := []model.Row{{"v": 1234567}, {"v": 12}}
	numCols := []model.Column{{Name: "v", DisplayAs: model.DisplayNumber}}
	got, err = Filter(numbers, "1,234", numCols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"v": 1234567}}, got)
}

func TestFilterNonFiniteNumbers(t *testing.T) {
	rows := []model.Row{
		{"n": "NaN"},
		{"n": "Inf"},
		{"n": math.Inf(1)},
		{"n": math.NaN()},
		{"n": 1500},
	}
	cols := []model.Column{{Name: "n", DisplayAs: model.DisplayNumber}}

	got, err := Filter(rows, "x", cols, coltype.New())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Filter(rows, "inf", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{rows[1], rows[2]}, got)

	got, err = Filter(rows, "1,5", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{rows[4]}, got)
}

func TestFilterStructuredAlias(t *testing.T) {
	rows := []model.Row{{"j": map[string]any{"tag": "blue"}}, {"j": map[string]any{"tag": "red"}}}
	cols := []model.Column{{Name: "j", DisplayAs: "structured"}}

	got, err := Filter(rows, "BLUE", cols, coltype.New())
	require.NoError(t, err)
	assert.Equal(t, []model.Row{rows[0]}, got)
}

func TestFilterUnknownColumnType(t *testing.T) {
	rows := []model.Row{{"n": "Foo"}}
	_, err := Filter(rows, "foo", []model.Column{{Name: "n", DisplayAs: "chart"}}, coltype.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, coltype.ErrUnknownColumnType))
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher("åR", []model.Column{{Name: "n", DisplayAs: model.DisplayText}}, coltype.New())
	require.NoError(t, err)
	assert.True(t, m.Match(model.Row{"n": "Fjellår"}))
	assert.False(t, m.Match(model.Row{}))
}
