package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-onboarding/internal/domain"
	"github.com/rs/zerolog"
)

const otpSubject = "Email Verification OTP"

// Service delivers verification codes to customers.
type Service interface {
	SendOTP(ctx context.Context, c *domain.Customer, code int) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	mailer mailer
	sms    smsSender
	otpTTL time.Duration
}

type ServiceDeps struct {
	Mailer mailer
	// SMSSender is optional; when nil only email is sent.
	SMSSender smsSender
	OTPTTL    time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{mailer: deps.Mailer, sms: deps.SMSSender, otpTTL: deps.OTPTTL}
}

// SendOTP emails the code and, when SMS is configured and the customer has a
// phone number, also texts it. Only the email must succeed.
func (s *service) SendOTP(ctx context.Context, c *domain.Customer, code int) error {
	body := otpMessage(code, s.otpTTL)
	if err := s.mailer.SendEmail(c.Email, otpSubject, body); err != nil {
		return fmt.Errorf("email otp: %w", err)
	}
	if s.sms != nil && c.PhoneNo != "" {
		if err := s.sms.SendSMS(ctx, c.PhoneNo, body); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("customer_id", c.CustomerID).Msg("sms otp delivery failed")
		}
	}
	return nil
}

func otpMessage(code int, ttl time.Duration) string {
	return fmt.Sprintf("Your OTP for email verification is %06d. It expires in %d minutes.", code, int(ttl.Minutes()))
}
