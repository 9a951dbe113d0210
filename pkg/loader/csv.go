package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// isLikelyCSV reports whether lines look like a header plus records with a
// consistent, comma-separated field count. YAML mappings and lists do not
// qualify.
func isLikelyCSV(lines []string) bool {
	var nonEmpty []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") || strings.Contains(trimmed, ": ") || strings.HasSuffix(trimmed, ":") {
			return false
		}
		nonEmpty = append(nonEmpty, line)
	}
	if len(nonEmpty) < 2 || !strings.Contains(nonEmpty[0], ",") {
		return false
	}
	r := csv.NewReader(strings.NewReader(strings.Join(nonEmpty, "\n")))
	records, err := r.ReadAll()
	return err == nil && len(records) > 1 && len(records[0]) > 1
}

func loadCSV(r io.Reader) ([]any, error) {
	return loadDelimited(r, ',')
}

// loadDelimited reads a header record followed by data records. Each data
// record becomes a map keyed by header name, with values coerced by
// csvValue.
func loadDelimited(r io.Reader, comma rune) ([]any, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []any
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			row[name] = csvValue(record[i])
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = []any{}
	}
	return rows, nil
}

// csvValue converts a CSV field to nil, bool, int64 or float64 when it
// unambiguously is one; anything else stays a string. Integers must round
// trip so that values like "007" keep their leading zeros.
func csvValue(s string) any {
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if strconv.FormatInt(i, 10) == s {
			return i
		}
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}
