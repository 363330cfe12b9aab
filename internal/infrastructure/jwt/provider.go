package jwtinfra

import (
	"errors"
	"time"

	"github.com/go-auth-onboarding/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload. Only the identity id is carried; callers
// resolve anything else (customer vs admin) against the store.
type Claims struct {
	IdentityID string `json:"id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with the server secret.
type Provider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	expiry := cfg.JWTExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Provider{secret: []byte(cfg.JWTSecret), expiry: expiry, now: time.Now}, nil
}

func (p *Provider) Sign(identityID string) (string, error) {
	now := p.now()
	claims := Claims{
		IdentityID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.IdentityID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
