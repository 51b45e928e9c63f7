// Package metrics derives ratio metrics and aggregate statistics from raw
// equipment readings.
package metrics

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a derived number that may be undefined. A measured zero and an
// undefined value are distinct; callers decide how to render the latter.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the value of a metric that could not be computed.
var Undefined = Value{}

// Defined wraps f. Non-finite input yields Undefined.
func Defined(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Value{v: f, ok: true}
}

// Get returns the number and whether it is defined.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

func (v Value) IsDefined() bool { return v.ok }

// OrZero renders an undefined value as 0.
func (v Value) OrZero() float64 {
	if !v.ok {
		return 0
	}
	return v.v
}

// Format renders the value with prec decimals, or "N/A" when undefined.
func (v Value) Format(prec int) string {
	if !v.ok {
		return "N/A"
	}
	return strconv.FormatFloat(v.v, 'f', prec, 64)
}

func (v Value) String() string { return v.Format(3) }

// MarshalJSON encodes an undefined value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

// Ptr converts an optional reading into a Value.
func Ptr(f *float64) Value {
	if f == nil {
		return Undefined
	}
	return Defined(*f)
}

// ratio divides num by den; undefined when either side is missing or den is 0.
func ratio(num, den Value) Value {
	n, ok := num.Get()
	if !ok {
		return Undefined
	}
	d, ok := den.Get()
	if !ok || d == 0 {
		return Undefined
	}
	return Defined(n / d)
}
