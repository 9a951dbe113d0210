// Package rowsort orders rows by an orderby.Spec.
package rowsort

import (
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
)

// Sort returns rows stably ordered by spec. The input slice and its rows are
// left untouched. When spec or rows is empty the input slice itself is
// returned.
func Sort(rows []model.Row, spec orderby.Spec) []model.Row {
	if len(spec) == 0 || len(rows) == 0 {
		return rows
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b model.Row) int {
		return Compare(a, b, spec)
	})
	return sorted
}

// Compare orders a against b using the items of spec in priority order.
//
// A nil value on the left sorts before the right value under ascend; a nil
// on the right sorts before the left value. Two nils compare equal and the
// next item decides; returning -sign there would make the comparator
// inconsistent and reverse runs of nils under slices.SortStableFunc.
func Compare(a, b model.Row, spec orderby.Spec) int {
	for _, item := range spec {
		va, vb := a[item.Name], b[item.Name]
		aNil, bNil := isNil(va), isNil(vb)
		if aNil && bNil {
			continue
		}
		sign := item.Direction.Sign()
		if aNil || less(va, vb) {
			return -sign
		}
		if bNil || less(vb, va) {
			return sign
		}
	}
	return 0
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// less implements the natural ordering of like-typed values. Values of
// different or unordered types are never less than one another.
func less(a, b any) bool {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na.less(nb)
		}
		return false
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv) < 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return !av && bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case time.Duration:
		if bv, ok := b.(time.Duration); ok {
			return av < bv
		}
	}
	return false
}

type numberKind int

const (
	signedKind numberKind = iota
	unsignedKind
	floatKind
)

// number keeps integers exact so values beyond 2^53 still order correctly.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func (n number) float() float64 {
	switch n.kind {
	case signedKind:
		return float64(n.i)
	case unsignedKind:
		return float64(n.u)
	}
	return n.f
}

func (n number) less(o number) bool {
	switch {
	case n.kind == signedKind && o.kind == signedKind:
		return n.i < o.i
	case n.kind == unsignedKind && o.kind == unsignedKind:
		return n.u < o.u
	case n.kind == signedKind && o.kind == unsignedKind:
		return n.i < 0 || uint64(n.i) < o.u
	case n.kind == unsignedKind && o.kind == signedKind:
		return o.i >= 0 && n.u < uint64(o.i)
	}
	return n.float() < o.float()
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{kind: signedKind, i: int64(n)}, true
	case int8:
		return number{kind: signedKind, i: int64(n)}, true
	case int16:
		return number{kind: signedKind, i: int64(n)}, true
	case int32:
		return number{kind: signedKind, i: int64(n)}, true
	case int64:
		return number{kind: signedKind, i: n}, true
	case uint:
		return number{kind: unsignedKind, u: uint64(n)}, true
	case uint8:
		return number{kind: unsignedKind, u: uint64(n)}, true
	case uint16:
		return number{kind: unsignedKind, u: uint64(n)}, true
	case uint32:
		return number{kind: unsignedKind, u: uint64(n)}, true
	case uint64:
		return number{kind: unsignedKind, u: n}, true
	case float32:
		return number{kind: floatKind, f: float64(n)}, true
	case float64:
		return number{kind: floatKind, f: n}, true
	}
	return number{}, false
}
