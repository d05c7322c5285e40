package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PositionCount is the number of ranked positions in a draw result.
const PositionCount = 10

// DrawResult holds the drawn number for each of the ten ranked positions.
// Index 0 is first place. A valid result is a permutation of 1..10.
type DrawResult [PositionCount]int

// At returns the drawn number at a 1-based position.
func (r DrawResult) At(position int) int {
	return r[position-1]
}

// Validate checks that the result is a true permutation of 1..10.
func (r DrawResult) Validate() error {
	var seen [PositionCount + 1]bool
	for i, n := range r {
		if n < 1 || n > PositionCount {
			return fmt.Errorf("%w: value %d at position %d", ErrInvalidDrawResult, n, i+1)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate value %d", ErrInvalidDrawResult, n)
		}
		seen[n] = true
	}
	return nil
}

// SumValue returns the sum of the first and second position numbers (range 3..19).
func (r DrawResult) SumValue() int {
	return r[0] + r[1]
}

func (r DrawResult) String() string {
	parts := make([]string, PositionCount)
	for i, n := range r {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ParseDrawResult parses the comma-separated form produced by String.
func ParseDrawResult(s string) (DrawResult, error) {
	var r DrawResult
	parts := strings.Split(s, ",")
	if len(parts) != PositionCount {
		return r, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidDrawResult, PositionCount, len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return r, fmt.Errorf("%w: %q is not a number", ErrInvalidDrawResult, p)
		}
		r[i] = n
	}
	return r, r.Validate()
}
