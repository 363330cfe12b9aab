package jwtinfra

import (
	"testing"
	"time"

	"github.com/go-auth-onboarding/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, secret string) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{JWTSecret: secret, JWTExpiry: time.Hour})
	require.NoError(t, err)
	return p
}

func TestNewProvider_EmptySecret(t *testing.T) {
	_, err := NewProvider(&config.Config{})
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, "s3cret")

	signed, err := p.Sign("01HZXCUSTOMER")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "01HZXCUSTOMER", claims.IdentityID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := newTestProvider(t, "one").Sign("c1")
	require.NoError(t, err)

	_, err = newTestProvider(t, "two").Verify(signed)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, "s3cret")
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	signed, err := p.Sign("c1")
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		IdentityID:       "c1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestProvider(t, "s3cret").Verify(signed)
	assert.Error(t, err)
}
