package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "identity_emails", cfg.DynamoTables.Emails)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "DYNAMO")
	t.Setenv("OTP_TTL", "2m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverDynamo, cfg.StoreDriver)
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{JWTSecret: "x", StoreDriver: "mongo", JWTExpiry: time.Hour, OTPTTL: time.Minute, OTPMaxAttempts: 1}
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
	}, cfg.TrustedProxies)
}

func TestLoad_TrustedProxiesInvalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TRUSTED_PROXIES", "not-an-ip")

	_, err := Load()
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
