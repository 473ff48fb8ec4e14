// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Number is a numeric value that remembers whether the upstream literal was
// integral ("12") or fractional ("1.50"). Formatting rules differ between the two.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an integral Number.
func Int(v int64) Number { return Number{i: v, f: float64(v)} }

// Float returns a fractional Number.
func Float(v float64) Number { return Number{f: v, isFloat: true} }

// IsFloat reports whether the value came from a fractional literal.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns the value truncated to an integer.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the value as a float.
func (n Number) Float64() float64 { return n.f }

// IsZero reports whether the value is zero.
func (n Number) IsZero() bool { return n.f == 0 && n.i == 0 }

// Compare returns -1, 0 or 1.
func (n Number) Compare(o Number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	switch {
	case n.f < o.f:
		return -1
	case n.f > o.f:
		return 1
	}
	return 0
}

// String renders the value without grouping.
func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'f', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// ParseNumber parses a JSON number literal. Quoted numbers are accepted;
// anything else (null, objects, words) reports false.
func ParseNumber(raw []byte) (Number, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if len(raw) == 0 {
		return Number{}, false
	}

	s := string(raw)
	if !bytes.ContainsAny(raw, ".eE") {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(v), true
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(v), true
	}
	return Number{}, false
}

// UnmarshalJSON implements json.Unmarshaler. Non-numeric input decodes as zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	v, _ := ParseNumber(data)
	*n = v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.isFloat {
		return json.Marshal(n.f)
	}
	return json.Marshal(n.i)
}
