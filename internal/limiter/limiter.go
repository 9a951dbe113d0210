// Package limiter truncates rendered output to the first or last N rows.
package limiter

import (
	"errors"
	"fmt"
)

// ErrInvalidLimit is wrapped by every Validate failure.
var ErrInvalidLimit = errors.New("invalid record limit")

// Config holds the record-limiting parameters.
type Config struct {
	Limit int // Show only the first N records (0 = unlimited)
	Tail  int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Rules:
// - Limit and Tail are mutually exclusive
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("%w: --limit must be non-negative, got %d", ErrInvalidLimit, c.Limit)
	}
	if c.Tail < 0 {
		return fmt.Errorf("%w: --tail must be non-negative, got %d", ErrInvalidLimit, c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("%w: --limit and --tail are mutually exclusive", ErrInvalidLimit)
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Tail > 0
}

// Bounds returns the half-open window [start, end) of a sequence of length n.
func (c Config) Bounds(n int) (start, end int) {
	switch {
	case c.Tail > 0:
		return max(n-c.Tail, 0), n
	case c.Limit > 0:
		return 0, min(c.Limit, n)
	}
	return 0, n
}

// Apply returns the items selected by c. The result shares the backing
// array of items; an inactive config returns items unchanged.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}
