package coltype

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/shopspring/decimal"
)

const (
	defaultNumberFormat   = "0,0[.]00"
	defaultDateTimeFormat = "DD/MM/YY HH:mm"
	defaultTemplate       = "{{ @ }}"
)

// numberFormat is the supported subset of numeral.js format strings:
// grouping ("0,0"), fixed decimals ("0.00"), optional decimal point
// ("0[.]00"), optional trailing decimals ("0.[00]"), percent ("0%") and
// byte sizes ("0b", "0ib").
type numberFormat struct {
	group       bool
	decimals    int32
	optionalDot bool
	trimZeros   bool
	percent     bool
	bytes       bool
	binary      bool
}

func parseNumberFormat(f string) numberFormat {
	if strings.TrimSpace(f) == "" {
		f = defaultNumberFormat
	}
	nf := numberFormat{
		group:   strings.Contains(f, ","),
		percent: strings.HasSuffix(f, "%"),
		bytes:   strings.Contains(f, "b"),
		binary:  strings.Contains(f, "ib"),
	}
	dot := strings.Index(f, ".")
	if dot < 0 {
		return nf
	}
	nf.optionalDot = strings.Contains(f, "[.]")
	frac := f[dot+1:]
	if strings.HasPrefix(frac, "]") {
		frac = frac[1:]
	}
	if strings.HasPrefix(frac, "[") {
		nf.trimZeros = true
	}
	for _, r := range frac {
		switch r {
		case '0':
			nf.decimals++
		case '[', ']':
		default:
			return nf
		}
	}
	return nf
}

// Format renders v according to the format.
func (nf numberFormat) Format(v float64) string {
	if nf.bytes {
		if nf.binary {
			return units.BytesSize(v)
		}
		return units.HumanSize(v)
	}
	d := decimal.NewFromFloat(v)
	if nf.percent {
		d = d.Mul(decimal.NewFromInt(100))
	}
	d = d.Round(nf.decimals)

	var s string
	switch {
	case nf.optionalDot && d.Equal(d.Truncate(0)):
		s = d.StringFixed(0)
	case nf.trimZeros:
		s = d.StringFixed(nf.decimals)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
	default:
		s = d.StringFixed(nf.decimals)
	}
	if nf.group {
		s = groupThousands(s)
	}
	if nf.percent {
		s += "%"
	}
	return s
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// toNumber reports finite numeric values only. NaN and the infinities fall
// back to their plain text.
func toNumber(v any) (float64, bool) {
	f, ok := numberOf(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// momentTokens is ordered so longer tokens win. Go has no unpadded 24-hour
// layout, so "H" renders like "HH".
var momentTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "-07:00"},
}

// MomentLayout converts a moment.js style format ("DD/MM/YYYY HH:mm") to a
// Go time layout. Text inside square brackets is copied literally.
func MomentLayout(format string) string {
	if strings.TrimSpace(format) == "" {
		format = defaultDateTimeFormat
	}
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i:], ']'); end > 0 {
				b.WriteString(format[i+1 : i+end])
				i += end + 1
				continue
			}
		}
		matched := false
		for _, t := range momentTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case bool, nil:
		return time.Time{}, false
	}
	if ms, ok := toNumber(v); ok && ms >= math.MinInt64 && ms < math.MaxInt64 {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// template is a simple "{{ name }}" substitution template. "{{ @ }}" stands
// for the column's own value.
type template struct {
	src string
}

func parseTemplate(src, fallback string) template {
	if strings.TrimSpace(src) == "" {
		src = fallback
	}
	return template{src: src}
}

// Execute substitutes placeholders using value for "@" and row for other
// names. Unknown names render as empty text.
func (t template) Execute(value any, row map[string]any) string {
	if t.src == "" {
		return ""
	}
	return placeholderPattern.ReplaceAllStringFunc(t.src, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if name == "@" {
			return Stringify(value)
		}
		return Stringify(row[name])
	})
}
