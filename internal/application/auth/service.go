package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-auth-onboarding/internal/pkg/id"
	"github.com/go-auth-onboarding/internal/pkg/otp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// RegisterResult is what a successful customer registration hands back.
type RegisterResult struct {
	CustomerID string
	Token      string
}

// Service covers the customer side of onboarding: signup, email
// verification by OTP, OTP resend and login.
type Service interface {
	Register(ctx context.Context, req domain.RegisterCustomerRequest) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) (customerID string, err error)
	ResendOTP(ctx context.Context, req domain.ResendOTPRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (token string, err error)
}

type customerStore interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	SetOTP(ctx context.Context, customerID string, code int, issuedAt time.Time) error
	// RecordFailedOTP counts a wrong guess only while fewer than maxAttempts
	// have been recorded, answering domain.ErrTooManyAttempts otherwise.
	RecordFailedOTP(ctx context.Context, customerID string, maxAttempts int) error
	// ConsumeOTP verifies the customer only while code matches and check
	// holds at write time.
	ConsumeOTP(ctx context.Context, customerID string, code int, check domain.OTPCheck) error
}

type otpSender interface {
	SendOTP(ctx context.Context, c *domain.Customer, code int) error
}

type jwtSigner interface {
	Sign(identityID string) (string, error)
}

type service struct {
	repo        customerStore
	sender      otpSender
	jwtProvider jwtSigner
	otpTTL      time.Duration
	maxAttempts int
	generateOTP func() (int, error)
	now         func() time.Time
}

type ServiceDeps struct {
	CustomerRepo   customerStore
	OTPSender      otpSender
	JWTProvider    jwtSigner
	OTPTTL         time.Duration
	OTPMaxAttempts int
	// GenerateOTP and Now default to otp.Generate and time.Now.
	GenerateOTP func() (int, error)
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:        deps.CustomerRepo,
		sender:      deps.OTPSender,
		jwtProvider: deps.JWTProvider,
		otpTTL:      deps.OTPTTL,
		maxAttempts: deps.OTPMaxAttempts,
		generateOTP: deps.GenerateOTP,
		now:         deps.Now,
	}
	if s.generateOTP == nil {
		s.generateOTP = otp.Generate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterCustomerRequest) (*RegisterResult, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("customer already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := s.generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	c := &domain.Customer{
		CustomerID:   id.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		PhoneNo:      strings.TrimSpace(req.PhoneNo),
		Address:      req.Address,
		OTP:          &code,
		OTPIssuedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	// The record stays when delivery fails; the customer can ask for a resend.
	if err := s.sender.SendOTP(ctx, c, code); err != nil {
		return nil, fmt.Errorf("send otp to customer %s: %w", c.CustomerID, err)
	}

	token, err := s.jwtProvider.Sign(c.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("customer_id", c.CustomerID).Msg("customer registered")
	return &RegisterResult{CustomerID: c.CustomerID, Token: token}, nil
}

func (s *service) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) (string, error) {
	c, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return "", err
	}
	now := s.now()
	if !c.HasPendingOTP() {
		return "", fmt.Errorf("no pending otp: %w", domain.ErrInvalidOTP)
	}
	if c.OTPAttempts >= s.maxAttempts {
		return "", fmt.Errorf("%d failed attempts: %w", c.OTPAttempts, domain.ErrTooManyAttempts)
	}
	if c.OTPExpired(now, s.otpTTL) {
		return "", fmt.Errorf("otp issued at %s: %w", c.OTPIssuedAt, domain.ErrOTPExpired)
	}

	// The checks above ran on a snapshot; the store repeats them in the write
	// so concurrent guesses cannot outrun the attempt limit.
	submitted := int(req.OTP)
	if submitted != *c.OTP {
		if err := s.repo.RecordFailedOTP(ctx, c.CustomerID, s.maxAttempts); err != nil {
			return "", fmt.Errorf("record failed otp: %w", err)
		}
		return "", fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOTP)
	}
	check := domain.OTPCheck{MaxAttempts: s.maxAttempts, IssuedSince: now.Add(-s.otpTTL)}
	if err := s.repo.ConsumeOTP(ctx, c.CustomerID, submitted, check); err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().Str("customer_id", c.CustomerID).Msg("customer email verified")
	return c.CustomerID, nil
}

func (s *service) ResendOTP(ctx context.Context, req domain.ResendOTPRequest) error {
	c, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if c.IsVerified {
		return fmt.Errorf("customer already verified: %w", domain.ErrConflict)
	}
	code, err := s.generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.repo.SetOTP(ctx, c.CustomerID, code, s.now().UTC()); err != nil {
		return err
	}
	if err := s.sender.SendOTP(ctx, c, code); err != nil {
		return fmt.Errorf("send otp to customer %s: %w", c.CustomerID, err)
	}
	return nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password so callers cannot probe which addresses are registered.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	c, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("unknown email: %w", domain.ErrInvalidCredentials)
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(req.Password)); err != nil {
		return "", fmt.Errorf("password mismatch: %w", domain.ErrInvalidCredentials)
	}
	if !c.IsVerified {
		return "", fmt.Errorf("customer %s: %w", c.CustomerID, domain.ErrUnverified)
	}
	return s.jwtProvider.Sign(c.CustomerID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
