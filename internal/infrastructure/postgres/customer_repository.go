package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `customer_id, first_name, last_name, email, password_hash, phone_no, address,
	otp, otp_issued_at, otp_attempts, is_verified, created_at, updated_at`

// CustomerRepo persists customers in PostgreSQL.
type CustomerRepo struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.pool.Exec(ctx, query,
		c.CustomerID, c.FirstName, c.LastName, c.Email, c.PasswordHash, c.PhoneNo, c.Address,
		c.OTP, c.OTPIssuedAt, c.OTPAttempts, c.IsVerified, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer email taken: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, customerID)
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

// SetOTP stores a fresh code for the customer and resets the attempt counter.
func (r *CustomerRepo) SetOTP(ctx context.Context, customerID string, code int, issuedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET otp = $2, otp_issued_at = $3, otp_attempts = 0, updated_at = now()
		WHERE customer_id = $1`, customerID, code, issuedAt.UTC())
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer: %w", domain.ErrNotFound)
	}
	return nil
}

// The OTP writes carry their guards in the WHERE clause so the attempt limit
// and expiry hold under concurrent requests.
const (
	recordFailedOTPQuery = `
		UPDATE customers SET otp_attempts = otp_attempts + 1, updated_at = now()
		WHERE customer_id = $1 AND otp_attempts < $2`

	consumeOTPQuery = `
		UPDATE customers
		SET is_verified = TRUE, otp = NULL, otp_issued_at = NULL, updated_at = now()
		WHERE customer_id = $1
			AND otp = $2
			AND NOT is_verified
			AND otp_attempts < $3
			AND otp_issued_at >= $4`
)

// RecordFailedOTP increments the failed attempt counter while it is below
// maxAttempts. A full counter yields domain.ErrTooManyAttempts.
func (r *CustomerRepo) RecordFailedOTP(ctx context.Context, customerID string, maxAttempts int) error {
	tag, err := r.pool.Exec(ctx, recordFailedOTPQuery, customerID, maxAttempts)
	if err != nil {
		return fmt.Errorf("record otp attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, customerID); err != nil {
			return err
		}
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrTooManyAttempts)
	}
	return nil
}

// ConsumeOTP verifies the customer and clears the OTP only while the stored
// code equals code and check still holds. When no row changes, the current
// record explains why.
func (r *CustomerRepo) ConsumeOTP(ctx context.Context, customerID string, code int, check domain.OTPCheck) error {
	tag, err := r.pool.Exec(ctx, consumeOTPQuery, customerID, code, check.MaxAttempts, check.IssuedSince.UTC())
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	c, err := r.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if err := c.RejectOTP(code, check); err != nil {
		return err
	}
	return fmt.Errorf("otp changed during consume: %w", domain.ErrInvalidOTP)
}

func (r *CustomerRepo) findOne(ctx context.Context, query string, arg string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.CustomerID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.PhoneNo, &c.Address,
		&c.OTP, &c.OTPIssuedAt, &c.OTPAttempts, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
