package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_PATH", "JWT_SECRET", "JWT_TTL", "CORS_ORIGINS", "EMAIL_PROVIDER", "APP_ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "storefront.db", cfg.DatabasePath)
	assert.Equal(t, []byte(devJWTSecret), cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.EmailProvider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://shop.example.com")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://shop.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "sendgrid", cfg.EmailProvider)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("production requires a secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("JWT_TTL", "forever")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_TTL")
	})

	t.Run("unknown email provider", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("JWT_TTL", "")
		t.Setenv("EMAIL_PROVIDER", "pigeon")
		_, err := Load()
		assert.ErrorContains(t, err, "EMAIL_PROVIDER")
	})
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STOREFRONT_TEST_VALUE") })

	LoadEnvFile(path)
	assert.Equal(t, "from-file", os.Getenv("STOREFRONT_TEST_VALUE"))

	// missing file only logs
	LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
}
