package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-auth-onboarding/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Service registers and authenticates administrators. Admins have no OTP
// step and may log in right after registration.
type Service interface {
	Register(ctx context.Context, req domain.RegisterAdminRequest) (*domain.Admin, error)
	Login(ctx context.Context, req domain.LoginRequest) (string, error)
}

type adminStore interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type jwtSigner interface {
	Sign(identityID string) (string, error)
}

type service struct {
	repo        adminStore
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	AdminRepo   adminStore
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.AdminRepo, jwtProvider: deps.JWTProvider}
}

func (s *service) Register(ctx context.Context, req domain.RegisterAdminRequest) (*domain.Admin, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("admin already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &domain.Admin{
		AdminID:      id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("unknown admin email: %w", domain.ErrInvalidCredentials)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return "", fmt.Errorf("admin password mismatch: %w", domain.ErrInvalidCredentials)
	}
	return s.jwtProvider.Sign(a.AdminID)
}
