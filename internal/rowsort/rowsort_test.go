package rowsort

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
)

func asc(name string) orderby.Item  { return orderby.Item{Name: name, Direction: orderby.Ascend} }
func desc(name string) orderby.Item { return orderby.Item{Name: name, Direction: orderby.Descend} }

func names(rows []model.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["name"]
	}
	return out
}

func TestSortEmptyPassthrough(t *testing.T) {
	rows := []model.Row{{"x": 2}, {"x": 1}}

	got := Sort(rows, orderby.Spec{})
	require.Len(t, got, 2)
	assert.Same(t, &rows[0], &got[0])

	var none []model.Row
	assert.Nil(t, Sort(none, orderby.Spec{asc("x")}))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	rows := []model.Row{{"x": 3}, {"x": 1}, {"x": 2}}
	got := Sort(rows, orderby.Spec{asc("x")})

	assert.Equal(t, []model.Row{{"x": 1}, {"x": 2}, {"x": 3}}, got)
	assert.Equal(t, []model.Row{{"x": 3}, {"x": 1}, {"x": 2}}, rows)
}

func TestSortNilHandling(t *testing.T) {
	rows := []model.Row{{"x": nil}, {"x": 1}, {"x": 2}}

	got := Sort(rows, orderby.Spec{asc("x")})
	assert.Equal(t, []model.Row{{"x": nil}, {"x": 1}, {"x": 2}}, got)

	got = Sort(rows, orderby.Spec{desc("x")})
	assert.Equal(t, []model.Row{{"x": 2}, {"x": 1}, {"x": nil}}, got)
}

func TestSortMissingKeyIsNil(t *testing.T) {
	rows := []model.Row{{"x": 5}, {}, {"x": 1}}
	got := Sort(rows, orderby.Spec{asc("x")})
	assert.Equal(t, []model.Row{{}, {"x": 1}, {"x": 5}}, got)
}

func TestSortNilsKeepInputOrder(t *testing.T) {
	rows := []model.Row{
		{"name": "a", "x": nil},
		{"name": "b", "x": 1},
		{"name": "c", "x": nil},
		{"name": "d"},
	}
	got := Sort(rows, orderby.Spec{asc("x")})
	assert.Equal(t, []any{"a", "c", "d", "b"}, names(got))

	got = Sort(rows, orderby.Spec{desc("x")})
	assert.Equal(t, []any{"b", "a", "c", "d"}, names(got))
}

func TestSortStableAndMultiKey(t *testing.T) {
	rows := []model.Row{
		{"name": "Bob", "age": 30, "team": "red"},
		{"name": "Amy", "age": 25, "team": "blue"},
		{"name": "Cid", "age": 25, "team": "red"},
		{"name": "Dee", "age": 30, "team": "blue"},
		{"name": "Eve", "age": 25, "team": "blue"},
	}

	got := Sort(rows, orderby.Spec{asc("age")})
	assert.Equal(t, []any{"Amy", "Cid", "Eve", "Bob", "Dee"}, names(got))

	got = Sort(rows, orderby.Spec{desc("age"), asc("team")})
	assert.Equal(t, []any{"Dee", "Bob", "Amy", "Eve", "Cid"}, names(got))

	got = Sort(rows, orderby.Spec{asc("team"), desc("name")})
	assert.Equal(t, []any{"Eve", "Dee", "Amy", "Cid", "Bob"}, names(got))
}

func TestSortIdempotent(t *testing.T) {
	rows := []model.Row{
		{"name": "a", "v": 3.5},
		{"name": "b", "v": nil},
		{"name": "c", "v": 1},
		{"name": "d", "v": nil},
		{"name": "e", "v": 3.5},
	}
	for _, spec := range []orderby.Spec{{asc("v")}, {desc("v")}, {desc("v"), desc("name")}} {
		once := Sort(rows, spec)
		twice := Sort(once, spec)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("sort %s is not idempotent (-once +twice):\n%s", spec, diff)
		}
	}
}

func TestSortLargeInputStable(t *testing.T) {
	rows := make([]model.Row, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, model.Row{"bucket": i % 3, "seq": i})
	}
	got := Sort(rows, orderby.Spec{asc("bucket")})
	last := map[any]int{}
	for _, r := range got {
		seq := r["seq"].(int)
		prev, seen := last[r["bucket"]]
		if seen {
			require.Greater(t, seq, prev, "bucket %v lost input order", r["bucket"])
		}
		last[r["bucket"]] = seq
	}
	assert.Equal(t, 0, got[0]["bucket"])
	assert.Equal(t, 2, got[len(got)-1]["bucket"])
}

func TestSortValueKinds(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		rows []model.Row
		want []model.Row
	}{
		{
			name: "strings bytewise",
			rows: []model.Row{{"v": "b"}, {"v": "B"}, {"v": "a"}},
			want: []model.Row{{"v": "B"}, {"v": "a"}, {"v": "b"}},
		},
		{
			name: "mixed numeric kinds",
			rows: []model.Row{{"v": 2.5}, {"v": int64(1)}, {"v": uint8(2)}},
			want: []model.Row{{"v": int64(1)}, {"v": uint8(2)}, {"v": 2.5}},
		},
		{
			name: "large integers stay exact",
			rows: []model.Row{{"v": int64(9007199254740993)}, {"v": int64(9007199254740992)}},
			want: []model.Row{{"v": int64(9007199254740992)}, {"v": int64(9007199254740993)}},
		},
		{
			name: "large unsigned integers stay exact",
			rows: []model.Row{{"v": uint64(18446744073709551615)}, {"v": uint64(18446744073709551614)}},
			want: []model.Row{{"v": uint64(18446744073709551614)}, {"v": uint64(18446744073709551615)}},
		},
		{
			name: "signed against unsigned",
			rows: []model.Row{{"v": uint64(9007199254740993)}, {"v": int64(9007199254740992)}, {"v": -1}},
			want: []model.Row{{"v": -1}, {"v": int64(9007199254740992)}, {"v": uint64(9007199254740993)}},
		},
		{
			name: "bools",
			rows: []model.Row{{"v": true}, {"v": false}},
			want: []model.Row{{"v": false}, {"v": true}},
		},
		{
			name: "times",
			rows: []model.Row{{"v": late}, {"v": early}},
			want: []model.Row{{"v": early}, {"v": late}},
		},
		{
			name: "cross type is equal",
			rows: []model.Row{{"v": "10"}, {"v": 2}},
			want: []model.Row{{"v": "10"}, {"v": 2}},
		},
		{
			name: "unordered kinds are equal",
			rows: []model.Row{{"v": map[string]any{"a": 1}}, {"v": []any{1}}},
			want: []model.Row{{"v": map[string]any{"a": 1}}, {"v": []any{1}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sort(tt.rows, orderby.Spec{asc("v")}))
		})
	}
}

func TestCompare(t *testing.T) {
	spec := orderby.Spec{asc("x")}
	assert.Equal(t, -1, Compare(model.Row{"x": nil}, model.Row{"x": 1}, spec))
	assert.Equal(t, 1, Compare(model.Row{"x": 1}, model.Row{"x": nil}, spec))
	assert.Equal(t, 0, Compare(model.Row{"x": nil}, model.Row{}, spec))
	assert.Equal(t, 0, Compare(model.Row{"x": 1}, model.Row{"x": 1.0}, spec))
	assert.Equal(t, -1, Compare(model.Row{"x": int64(1) << 53}, model.Row{"x": int64(1)<<53 + 1}, spec))
	assert.Equal(t, 1, Compare(model.Row{"x": uint64(1)<<63 + 1}, model.Row{"x": int64(-5)}, spec))

	spec = orderby.Spec{desc("x")}
	assert.Equal(t, 1, Compare(model.Row{"x": nil}, model.Row{"x": 1}, spec))
	assert.Equal(t, -1, Compare(model.Row{"x": 1}, model.Row{"x": nil}, spec))

	var typedNil map[string]any
	assert.Equal(t, -1, Compare(model.Row{"x": typedNil}, model.Row{"x": 1}, orderby.Spec{asc("x")}))
}

func TestSortEndToEndAges(t *testing.T) {
	rows := []model.Row{
		{"name": "Bob", "age": 30},
		{"name": "Amy", "age": 25},
		{"name": "Cid", "age": 25},
	}
	got := Sort(rows, orderby.Spec{asc("age")})
	assert.Equal(t, []any{"Amy", "Cid", "Bob"}, names(got))
}
