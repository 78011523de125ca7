package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuantity converts raw user input into a sale quantity.
// Only positive whole numbers are accepted.
func ParseQuantity(raw string) (int, error) {
	q, err := parseWhole(raw)
	if err != nil {
		return 0, err
	}
	if q <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidQuantity, raw)
	}
	return q, nil
}

// ParseCandidateQuantity is ParseQuantity for availability checks, where zero is allowed.
func ParseCandidateQuantity(raw string) (int, error) {
	q, err := parseWhole(raw)
	if err != nil {
		return 0, err
	}
	if q < 0 {
		return 0, fmt.Errorf("%w: %q must not be negative", ErrInvalidQuantity, raw)
	}
	return q, nil
}

func parseWhole(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidQuantity)
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidQuantity, raw)
	}
	return q, nil
}
