package http

import (
	"context"
	"io"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	jwtinfra "github.com/go-auth-onboarding/internal/infrastructure/jwt"
)

// CustomerRepository is the minimal interface the router requires from a customer store.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	// SetOTP replaces the pending code and resets the failed attempt counter.
	SetOTP(ctx context.Context, customerID string, code int, issuedAt time.Time) error
	// RecordFailedOTP counts a wrong guess while fewer than maxAttempts are
	// recorded, returning domain.ErrTooManyAttempts once the counter is full.
	RecordFailedOTP(ctx context.Context, customerID string, maxAttempts int) error
	// ConsumeOTP marks the customer verified only while the stored code equals
	// code and check holds in the same write.
	ConsumeOTP(ctx context.Context, customerID string, code int, check domain.OTPCheck) error
}

// AdminRepository is the minimal interface the router requires from an admin store.
type AdminRepository interface {
	Create(ctx context.Context, a *domain.Admin) error
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// ServiceRepository is the minimal interface the router requires from a service store.
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	Get(ctx context.Context, serviceID string) (*domain.Service, error)
	Activate(ctx context.Context, serviceID string, at time.Time) error
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
}

// DocumentRepository is the minimal interface the router requires from a document metadata store.
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Document, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// TokenProvider signs and verifies bearer tokens.
type TokenProvider interface {
	Sign(identityID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}
