// Package orderby computes orderings from repeated column header
// activations. Every function returns a fresh Spec; the caller owns the
// stored value.
package orderby

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the explicit ordering of one column. The zero value means no
// explicit ordering.
type Direction string

const (
	None    Direction = ""
	Ascend  Direction = "ascend"
	Descend Direction = "descend"
)

// Next advances the three-state cycle none -> ascend -> descend -> none.
func (d Direction) Next() Direction {
	switch d {
	case Ascend:
		return Descend
	case Descend:
		return None
	default:
		return Ascend
	}
}

// Sign is 1 for ascend and -1 for descend.
func (d Direction) Sign() int {
	if d == Descend {
		return -1
	}
	return 1
}

// Valid reports whether d may appear in a Spec.
func (d Direction) Valid() bool {
	return d == Ascend || d == Descend
}

// Item is the ordering of one column.
type Item struct {
	Name      string    `json:"name" yaml:"name"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Spec is an ordered list of items; the first item is the primary key.
type Spec []Item

// ErrMalformedOrderBy indicates duplicate column names or an invalid
// direction in a Spec.
var ErrMalformedOrderBy = errors.New("malformed order by")

// Index returns the position of name in s, or -1.
func (s Spec) Index(name string) int {
	for i, item := range s {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Multi reports whether more than one column is ordered.
func (s Spec) Multi() bool {
	return len(s) > 1
}

// Toggle returns the ordering that results from activating the header
// of column name. In single mode the result only ever orders that column; in
// multi mode other items keep their positions.
func Toggle(name string, s Spec, multi bool) Spec {
	index := s.Index(name)
	current := None
	if index >= 0 {
		current = s[index].Direction
	}
	next := current.Next()

	if !multi {
		if next == None {
			return Spec{}
		}
		return Spec{{Name: name, Direction: next}}
	}

	if next == None {
		result := make(Spec, 0, len(s))
		for _, item := range s {
			if item.Name != name {
				result = append(result, item)
			}
		}
		return result
	}

	result := make(Spec, len(s), len(s)+1)
	copy(result, s)
	if index >= 0 {
		result[index] = Item{Name: name, Direction: next}
		return result
	}
	return append(result, Item{Name: name, Direction: next})
}

// Info describes how a single column participates in a Spec.
type Info struct {
	Direction Direction
	// Priority is the 1-based position of the column in the Spec.
	Priority int
}

// Info indexes s by column name.
func (s Spec) Info() map[string]Info {
	result := make(map[string]Info, len(s))
	for i, item := range s {
		result[item.Name] = Info{Direction: item.Direction, Priority: i + 1}
	}
	return result
}

// Validate reports ErrMalformedOrderBy when s repeats a name or carries a
// direction other than ascend or descend.
func (s Spec) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, item := range s {
		if !item.Direction.Valid() {
			return fmt.Errorf("%w: column %q has direction %q", ErrMalformedOrderBy, item.Name, item.Direction)
		}
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("%w: column %q appears more than once", ErrMalformedOrderBy, item.Name)
		}
		seen[item.Name] = struct{}{}
	}
	return nil
}

// String renders s in the syntax accepted by Parse.
func (s Spec) String() string {
	parts := make([]string, len(s))
	for i, item := range s {
		if item.Direction == Descend {
			parts[i] = item.Name + ":desc"
		} else {
			parts[i] = item.Name + ":asc"
		}
	}
	return strings.Join(parts, ",")
}

// Parse reads a comma separated list of column names. Each name may carry a
// ":asc"/":desc" (or ":ascend"/":descend") suffix, or a leading "-" for
// descending order. The result is validated.
func Parse(input string) (Spec, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Spec{}, nil
	}
	parts := strings.Split(input, ",")
	spec := make(Spec, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item := Item{Name: part, Direction: Ascend}
		if i := strings.LastIndex(part, ":"); i >= 0 {
			dir, err := parseDirection(part[i+1:])
			if err != nil {
				return nil, err
			}
			item = Item{Name: part[:i], Direction: dir}
		} else if strings.HasPrefix(part, "-") {
			item = Item{Name: part[1:], Direction: Descend}
		}
		spec = append(spec, item)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascend", "ascending":
		return Ascend, nil
	case "desc", "descend", "descending":
		return Descend, nil
	}
	return None, fmt.Errorf("%w: unknown direction %q", ErrMalformedOrderBy, s)
}
