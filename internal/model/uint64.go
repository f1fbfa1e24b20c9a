package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Uint64 is a uint64 that decodes from either a JSON number or a decimal string.
// The node encodes 64-bit quantities as strings to survive JSON number precision.
type Uint64 uint64

// UnmarshalJSON parses a JSON number or a JSON string holding a decimal number.
func (u *Uint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse uint64 %q: %w", s, err)
	}
	*u = Uint64(v)
	return nil
}

// MarshalJSON encodes the value as a decimal string.
func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}
