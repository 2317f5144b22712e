// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads oLib settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver      string `env:"OLIB_DB_DRIVER" envDefault:"sqlite"`
	DBDSN         string `env:"OLIB_DB_DSN" envDefault:"./data/olib.db"`
	SessionSecret string `env:"OLIB_SESSION_SECRET,required"`
	ServerHost    string `env:"OLIB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OLIB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OLIB_ENV" envDefault:"development"`
	LogLevel      string `env:"OLIB_LOG_LEVEL" envDefault:"info"`
	BaseURL       string `env:"OLIB_BASE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration
	RedisURL       string `env:"OLIB_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix    string `env:"OLIB_CACHE_PREFIX" envDefault:"olib:"`   // Redis key prefix
	CacheTTL       int    `env:"OLIB_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize   int    `env:"OLIB_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries
	ViewDedupeTTL  int    `env:"OLIB_VIEW_DEDUPE_TTL" envDefault:"1800"` // Seconds a repeat view is ignored
	EventRetention int    `env:"OLIB_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Background jobs
	JobWorkers int `env:"OLIB_JOB_WORKERS" envDefault:"2"`

	// Outbound mail
	SMTPHost     string `env:"OLIB_SMTP_HOST"`
	SMTPPort     int    `env:"OLIB_SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"OLIB_SMTP_USER"`
	SMTPPassword string `env:"OLIB_SMTP_PASSWORD"`
	SMTPFrom     string `env:"OLIB_SMTP_FROM" envDefault:"no-reply@localhost"`
	ContactEmail string `env:"OLIB_CONTACT_EMAIL"` // Staff address copied on contact messages

	// Meta tag suggestions
	OpenAIAPIKey string `env:"OLIB_OPENAI_API_KEY"`
	OpenAIModel  string `env:"OLIB_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Downloadable files are served from this directory
	FilesDir string `env:"OLIB_FILES_DIR" envDefault:"./data/files"`

	// GeoIP configuration
	GeoIPDBPath string `env:"OLIB_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// API protection
	APIRateLimit   float64  `env:"OLIB_API_RATE_LIMIT" envDefault:"10"` // Requests per second per client
	APIRateBurst   int      `env:"OLIB_API_RATE_BURST" envDefault:"30"`
	TrustedOrigins []string `env:"OLIB_TRUSTED_ORIGINS" envSeparator:","`

	// Seeding configuration
	DoSeed bool `env:"OLIB_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SMTPEnabled returns true if outbound mail is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// OpenAIEnabled returns true if AI meta suggestions are configured.
func (c Config) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// ViewDedupeWindow returns the view deduplication window.
func (c Config) ViewDedupeWindow() time.Duration {
	return time.Duration(c.ViewDedupeTTL) * time.Second
}

// CacheDefaultTTL returns the default cache TTL.
func (c Config) CacheDefaultTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("OLIB_DB_DRIVER must be sqlite or mysql, got %q", cfg.DBDriver)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("OLIB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("OLIB_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OLIB_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.JobWorkers < 1 {
		cfg.JobWorkers = 1
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
