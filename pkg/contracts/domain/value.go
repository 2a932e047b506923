package domain

import (
	"encoding/json"
	"strconv"
)

// Value is an optional numeric cell. The zero Value is empty, which is
// distinct from a valid zero.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Empty returns the absent-value marker.
func Empty() Value {
	return Value{}
}

// IsEmpty reports whether v carries no number.
func (v Value) IsEmpty() bool {
	return !v.Valid
}

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.Float, v.Valid
}

// String renders an empty value as "" and a number with the shortest
// representation that round-trips.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// MarshalJSON encodes empty as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null as empty.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Empty()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
