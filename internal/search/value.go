package search

import (
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// compareValues applies a comparison operator between a stored attribute
// value and the value from the query. Label values are untyped strings;
// interpretation is lazy and decided by the operator here, not by the
// storage layer: numeric when both sides parse as numbers, temporal when
// both parse as dates, case-insensitive lexical otherwise.
func compareValues(actual, op, expected string) bool {
	if op == "*=*" {
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	}

	if an, err := strconv.ParseFloat(actual, 64); err == nil {
		if en, err := strconv.ParseFloat(expected, 64); err == nil {
			return compareFloats(an, op, en)
		}
	}

	if at, err := dateparse.ParseAny(actual); err == nil {
		if et, err := dateparse.ParseAny(expected); err == nil {
			switch op {
			case "=":
				return at.Equal(et)
			case "!=":
				return !at.Equal(et)
			case ">":
				return at.After(et)
			case ">=":
				return !at.Before(et)
			case "<":
				return at.Before(et)
			case "<=":
				return !at.After(et)
			}
			return false
		}
	}

	la, le := strings.ToLower(actual), strings.ToLower(expected)
	switch op {
	case "=":
		return la == le
	case "!=":
		return la != le
	case ">":
		return la > le
	case ">=":
		return la >= le
	case "<":
		return la < le
	case "<=":
		return la <= le
	}
	return false
}

func compareFloats(a float64, op string, b float64) bool {
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "<":
		return a < b
	case "<=":
		return a <= b
	}
	return false
}
