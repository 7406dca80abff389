// Package measure holds the optional numeric value used for every derived
// ratio and statistic in the pipeline.
//
// A Value is either a finite float64 or NA ("not applicable"). Zero
// denominators, missing joins and empty samples produce NA; callers check
// Valid before doing arithmetic. NaN never leaves this package.
package measure

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NAString is the rendering of NA in tables and text exports.
const NAString = "N/A"

// Value is an optional float64.
type Value struct {
	v  float64
	ok bool
}

// NA is the "not applicable" value.
var NA = Value{}

// Of wraps f. NaN and infinities become NA.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NA
	}
	return Value{v: f, ok: true}
}

// Ratio returns num/den, or NA when den is zero.
func Ratio(num, den int) Value {
	if den == 0 {
		return NA
	}
	return Of(float64(num) / float64(den))
}

// FromPtr converts a nullable float (as stored in SQL or Parquet) to a Value.
func FromPtr(p *float64) Value {
	if p == nil {
		return NA
	}
	return Of(*p)
}

// Valid reports whether v carries a number.
func (v Value) Valid() bool { return v.ok }

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Or returns the number, or def when v is NA.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// Ptr returns a pointer to a copy of the number, or nil for NA.
func (v Value) Ptr() *float64 {
	if !v.ok {
		return nil
	}
	f := v.v
	return &f
}

// String renders the shortest exact decimal form, or "N/A".
func (v Value) String() string {
	if !v.ok {
		return NAString
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}

// Format renders with a fixed number of decimals, or "N/A".
func (v Value) Format(prec int) string {
	if !v.ok {
		return NAString
	}
	return strconv.FormatFloat(v.v, 'f', prec, 64)
}

// MarshalJSON encodes NA as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts null or a number.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = NA
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// Parse reads the text form produced by String. Empty input and "N/A" give NA.
func Parse(s string) (Value, error) {
	if s == "" || s == NAString {
		return NA, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA, err
	}
	return Of(f), nil
}

// Floats returns the present numbers of vals, in order.
func Floats(vals []Value) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v.ok {
			out = append(out, v.v)
		}
	}
	return out
}
