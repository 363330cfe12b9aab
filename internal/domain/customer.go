package domain

import (
	"fmt"
	"time"
)

// Customer is a self-registered principal. A customer starts unverified with a
// pending OTP; verification clears the OTP and flips IsVerified.
type Customer struct {
	CustomerID   string     `json:"id" dynamodbav:"customer_id"`
	FirstName    string     `json:"first_name" dynamodbav:"first_name"`
	LastName     string     `json:"last_name" dynamodbav:"last_name"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	PhoneNo      string     `json:"phone_no" dynamodbav:"phone_no"`
	Address      string     `json:"address" dynamodbav:"address"`
	OTP          *int       `json:"-" dynamodbav:"otp,omitempty"`
	OTPIssuedAt  *time.Time `json:"-" dynamodbav:"otp_issued_at,omitempty"`
	OTPAttempts  int        `json:"-" dynamodbav:"otp_attempts"`
	IsVerified   bool       `json:"is_verified" dynamodbav:"is_verified"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasPendingOTP reports whether the customer holds an unconsumed OTP.
func (c *Customer) HasPendingOTP() bool {
	return c.OTP != nil && !c.IsVerified
}

// OTPExpired reports whether the pending OTP is older than ttl at now.
func (c *Customer) OTPExpired(now time.Time, ttl time.Duration) bool {
	if c.OTPIssuedAt == nil {
		return true
	}
	return now.After(c.OTPIssuedAt.Add(ttl))
}

// OTPCheck holds the limits a store enforces in the same write that consumes
// or rejects an OTP.
type OTPCheck struct {
	MaxAttempts int
	// IssuedSince is the oldest issue time still accepted.
	IssuedSince time.Time
}

// RejectOTP reports why code cannot be consumed under check, or nil when it
// can. Stores use it to explain a failed conditional write.
func (c *Customer) RejectOTP(code int, check OTPCheck) error {
	switch {
	case !c.HasPendingOTP():
		return fmt.Errorf("no pending otp: %w", ErrInvalidOTP)
	case c.OTPAttempts >= check.MaxAttempts:
		return fmt.Errorf("%d failed attempts: %w", c.OTPAttempts, ErrTooManyAttempts)
	case c.OTPIssuedAt == nil || c.OTPIssuedAt.Before(check.IssuedSince):
		return fmt.Errorf("otp issued before %s: %w", check.IssuedSince.Format(time.RFC3339), ErrOTPExpired)
	case *c.OTP != code:
		return fmt.Errorf("otp mismatch: %w", ErrInvalidOTP)
	}
	return nil
}

type RegisterCustomerRequest struct {
	FirstName string `json:"f_name" validate:"required"`
	LastName  string `json:"l_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	PhoneNo   string `json:"phone_no" validate:"omitempty,max=20"`
	Address   string `json:"address"`
}

type VerifyEmailRequest struct {
	Email string  `json:"email" validate:"required,email"`
	OTP   OTPCode `json:"otp" validate:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
