package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a cell.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing returns an absent cell.
func Missing() Value { return Value{} }

// Number returns a numeric cell. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	if f == 0 {
		f = 0 // fold -0
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Kind returns the cell kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value of the cell. Text cells that parse as a
// finite number count as numbers, so numeric-ness does not depend on how the
// table was loaded.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the cell for reports.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return "<NA>"
	}
}

// Equal reports whether two cells hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.text == o.text
}

// ParseCell converts raw cell text into a Value. Texts listed in
// missingTokens are missing; texts that parse as finite numbers are numbers.
func ParseCell(s string, missingTokens []string) Value {
	trimmed := strings.TrimSpace(s)
	for _, tok := range missingTokens {
		if trimmed == tok {
			return Missing()
		}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(s)
}

// FromAny converts a Go or database/sql driver value into a Value.
// Supports nil, all integer and float types, bool, string, []byte and time.Time.
func FromAny(v interface{}) Value {
	switch i := v.(type) {
	case nil:
		return Missing()
	case Value:
		return i
	case float64:
		return Number(i)
	case float32:
		return Number(float64(i))
	case int64:
		return Number(float64(i))
	case int:
		return Number(float64(i))
	case int32:
		return Number(float64(i))
	case int16:
		return Number(float64(i))
	case int8:
		return Number(float64(i))
	case uint:
		return Number(float64(i))
	case uint64:
		return Number(float64(i))
	case uint32:
		return Number(float64(i))
	case uint16:
		return Number(float64(i))
	case uint8:
		return Number(float64(i))
	case bool:
		if i {
			return Number(1)
		}
		return Number(0)
	case []byte:
		return ParseCell(string(i), nil)
	case string:
		return ParseCell(i, nil)
	case time.Time:
		return Text(i.Format(time.RFC3339))
	default:
		return Missing()
	}
}

// Values converts its arguments with FromAny. Handy for building rows.
func Values(vs ...interface{}) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = FromAny(v)
	}
	return out
}
