// Package utils holds query-string helpers shared by the HTTP handlers.
package utils

import (
	"strconv"
	"strings"
)

// IntInRange parses s and clamps the result to [lo, hi]. Empty or malformed
// input yields def, which is clamped as well. hi <= 0 means no upper bound.
func IntInRange(s string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		n = def
	}
	if n < lo {
		n = lo
	}
	if hi > 0 && n > hi {
		n = hi
	}
	return n
}

// PositiveOr parses s as a positive int, returning def for anything else.
func PositiveOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
