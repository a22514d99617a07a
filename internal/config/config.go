package config

import (
	"fmt"
	"log"
	"os"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	DatabaseURL           string
	SessionSecret         string
	SecretKey             string // application signing secret
	VerificationEmailSalt string // namespaces account-verification tokens

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	Env       string
	Port      string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
// It returns an error when a required secret is absent; startup must not
// proceed without the signing secret and the verification-email salt.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		SessionSecret:         os.Getenv("SESSION_SECRET"),
		SecretKey:             os.Getenv("SECRET_KEY"),
		VerificationEmailSalt: os.Getenv("VERIFICATION_EMAIL_SALT"),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              getEnvWithDefault("SMTP_PORT", "587"),
		SMTPUser:              os.Getenv("SMTP_USER"),
		SMTPPass:              os.Getenv("SMTP_PASS"),
		EmailFrom:             getEnvWithDefault("EMAIL_FROM", "no-reply@collaboard.local"),
		Env:                   getEnvWithDefault("ENV", "development"),
		Port:                  getEnvWithDefault("PORT", "8080"),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvWithDefault("LOG_FORMAT", "text"),
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY environment variable is required")
	}
	if cfg.VerificationEmailSalt == "" {
		return nil, fmt.Errorf("VERIFICATION_EMAIL_SALT environment variable is required")
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg, nil
}

// MailStubMode reports whether outgoing email should be logged instead of sent.
// Enabled when no SMTP host is configured so local development works without
// a mail server.
func (c *Config) MailStubMode() bool {
	return c.SMTPHost == ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
