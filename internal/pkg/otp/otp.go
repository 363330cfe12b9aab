// Package otp generates the numeric one-time codes sent for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Min = 100000
	Max = 999999
)

// Generate returns a uniformly distributed 6-digit code in [Min, Max].
func Generate() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(Max-Min+1))
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	return int(n.Int64()) + Min, nil
}
