package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DB_DRIVER", "DATABASE_DSN", "AUTH_RATE_LIMIT", "MAIL_HOST", "CONFIG_FILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "20-M", cfg.AuthRateLimit)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DATABASE_DSN", "user:pass@tcp(localhost:3306)/promos?parseTime=true")
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_PORT", "465")
	t.Setenv("MAIL_SECURE", "true")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.True(t, cfg.Mail.Secure)
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidMailPort(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_PORT", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestTokenConfigFallsBackToEphemeralSecrets(t *testing.T) {
	tc, err := JWTConfig{AccessSecret: "fixed"}.TokenConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []byte("fixed"), tc.AccessSecret)
	assert.Len(t, tc.RefreshSecret, 32)

	other, err := JWTConfig{}.TokenConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.NotEqual(t, other.AccessSecret, other.RefreshSecret)
}
