// Package infer picks a column type from the raw values observed for it
package infer

import (
	"math"
	"strconv"
)

// Type is an inferred column type
type Type int

const (
	Text Type = iota
	Integer
	Real
	Boolean
)

// String returns the display name of the type
func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// SQL returns the relational column type. Booleans are stored as integers.
func (t Type) SQL() string {
	switch t {
	case Integer, Boolean:
		return "INTEGER"
	case Real:
		return "REAL"
	default:
		return "TEXT"
	}
}

// TypeScript returns the declaration type
func (t Type) TypeScript() string {
	switch t {
	case Integer, Real:
		return "number"
	case Boolean:
		return "boolean"
	default:
		return "string"
	}
}

// ParseNumber parses s as a finite number with nothing left over
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	return f, true
}

// IsNumeric reports whether s is a purely numeric literal
func IsNumeric(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// Infer decides a single type for a whole column. The result does not
// depend on the order of values.
func Infer(values []string) Type {
	if len(values) == 0 {
		return Text
	}

	binary := len(values) > 1
	integral := true

	for _, v := range values {
		f, ok := ParseNumber(v)
		if !ok {
			return Text
		}

		if v != "0" && v != "1" {
			binary = false
		}

		if f != math.Trunc(f) {
			integral = false
		}
	}

	switch {
	case binary:
		return Boolean
	case integral:
		return Integer
	default:
		return Real
	}
}
