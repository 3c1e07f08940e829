package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the coerced forms a set cell can take.
type ValueKind int

const (
	// Empty means the cell was left blank (or held the grid's NaN marker).
	Empty ValueKind = iota
	// Int is a whole-number value.
	Int
	// Decimal is a fractional value. Reps cells never take this kind.
	Decimal
	// Text is unparseable input preserved verbatim so that malformed cells
	// surface in the saved record instead of silently vanishing.
	Text
)

// Value is one coerced set cell: an integer, a decimal, preserved raw text,
// or empty. The zero Value is Empty.
type Value struct {
	Kind ValueKind
	Int  int64
	Dec  float64
	Text string
}

// EmptyValue returns the empty cell value.
func EmptyValue() Value { return Value{} }

// IntValue returns a whole-number cell value.
func IntValue(n int64) Value { return Value{Kind: Int, Int: n} }

// DecimalValue returns a fractional cell value.
func DecimalValue(f float64) Value { return Value{Kind: Decimal, Dec: f} }

// TextValue returns a preserved-as-is cell value.
func TextValue(s string) Value { return Value{Kind: Text, Text: s} }

// IsEmpty reports whether the cell holds no value.
func (v Value) IsEmpty() bool { return v.Kind == Empty }

// String renders the cell the way it is written into CSV output: empty cells
// render as the empty string, numbers in their shortest form, text verbatim.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Decimal:
		return strconv.FormatFloat(v.Dec, 'f', -1, 64)
	case Text:
		return v.Text
	default:
		return ""
	}
}

// MarshalJSON encodes Empty as null, numbers as JSON numbers and preserved
// text as a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Int:
		return strconv.AppendInt(nil, v.Int, 10), nil
	case Decimal:
		return strconv.AppendFloat(nil, v.Dec, 'f', -1, 64), nil
	case Text:
		return strconv.AppendQuote(nil, v.Text), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON. A number token with no
// fractional part decodes as Int, otherwise Decimal; strings decode as Text
// and null as Empty.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*v = Value{}
		return nil
	case data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("decoding cell string: %w", err)
		}
		if s == "" {
			*v = Value{}
		} else {
			*v = TextValue(s)
		}
		return nil
	default:
		tok := string(data)
		if !strings.ContainsAny(tok, ".eE") {
			n, err := strconv.ParseInt(tok, 10, 64)
			if err == nil {
				*v = IntValue(n)
				return nil
			}
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("decoding cell number %q: %w", tok, err)
		}
		*v = DecimalValue(f)
		return nil
	}
}
