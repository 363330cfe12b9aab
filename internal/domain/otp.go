package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OTPCode is a one-time numeric code. It decodes from either a JSON number or
// a numeric string so clients can echo the code the way they received it.
type OTPCode int

func (o *OTPCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("otp must be numeric: %w", ErrBadRequest)
	}
	*o = OTPCode(n)
	return nil
}
