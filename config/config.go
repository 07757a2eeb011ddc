// Package config loads process settings from the environment, an optional
// .env file and an optional CONFIG_FILE, and builds the shared infrastructure
// handles (database, logger, redis) from them.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"

	"promo-restaurant-api/mail"
	"promo-restaurant-api/security"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	Port       string
	CORSOrigin string

	Database DatabaseConfig
	JWT      JWTConfig
	Mail     mail.Config
	Admin    AdminConfig

	PasswordResetURL string
	RedisURL         string
	AuthRateLimit    string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (when present) and the environment. It never fails on a
// missing optional setting; only malformed values are errors.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "4000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "promo_restaurant.db")
	v.SetDefault("PASSWORD_RESET_URL", "http://localhost:5173/reset-password")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("AUTH_RATE_LIMIT", "20-M")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("ADMIN_NAME", "Administrador")

	cfg := &Config{
		Env:        strings.ToLower(v.GetString("APP_ENV")),
		Port:       v.GetString("PORT"),
		CORSOrigin: v.GetString("CORS_ORIGIN"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		},
		Mail: mail.Config{
			Host:     v.GetString("MAIL_HOST"),
			Port:     v.GetInt("MAIL_PORT"),
			Username: v.GetString("MAIL_USER"),
			Password: v.GetString("MAIL_PASS"),
			From:     v.GetString("MAIL_FROM"),
			Secure:   v.GetBool("MAIL_SECURE"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			Name:     v.GetString("ADMIN_NAME"),
		},
		PasswordResetURL: v.GetString("PASSWORD_RESET_URL"),
		RedisURL:         v.GetString("REDIS_URL"),
		AuthRateLimit:    v.GetString("AUTH_RATE_LIMIT"),
	}

	switch cfg.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite, mysql or postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Mail.Host != "" && cfg.Mail.Port <= 0 {
		return nil, fmt.Errorf("MAIL_PORT must be a positive number")
	}
	return cfg, nil
}

// TokenConfig returns the signing secrets. A missing secret is replaced by a
// random one for this process only, so tokens stop verifying after a restart.
func (c JWTConfig) TokenConfig(log zerolog.Logger) (security.TokenConfig, error) {
	access, err := secretOrEphemeral("JWT_ACCESS_SECRET", c.AccessSecret, log)
	if err != nil {
		return security.TokenConfig{}, err
	}
	refresh, err := secretOrEphemeral("JWT_REFRESH_SECRET", c.RefreshSecret, log)
	if err != nil {
		return security.TokenConfig{}, err
	}
	return security.TokenConfig{AccessSecret: access, RefreshSecret: refresh}, nil
}

func secretOrEphemeral(name, value string, log zerolog.Logger) ([]byte, error) {
	if value != "" {
		return []byte(value), nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	log.Warn().Str("key", name).Msg("secret not set; using an ephemeral one, tokens will not survive a restart")
	return b, nil
}
