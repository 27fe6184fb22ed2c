// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/milestone.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrConfig marks a configuration problem. The run fails before anything is sent.
var ErrConfig = errors.New("configuration error")

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultSubscribersTable = "subscribers"
	DefaultSystemTable      = "system_config"
	DefaultSendHour         = 10
	DefaultEmailFrom        = "SCREENTIMEJOURNEY <info@screentimejourney.com>"
	DefaultEmailTemplate    = "templates/milestone_email.html"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Stores
	SubscribersTable string
	SystemTable      string
	ScanPageSize     int

	// Schedule
	SendHour int

	// Messaging gateway (WhatsApp)
	WhatsAppEndpoint          string
	WhatsAppToken             string
	WhatsAppTimeout           time.Duration
	WhatsAppMaxBatch          int
	WhatsAppRequestsPerMinute int

	// Email gateway (SES SMTP interface)
	EmailRegion        string
	EmailSMTPHost      string
	EmailSMTPPort      int
	EmailSMTPUsername  string
	EmailSMTPPassword  string
	EmailFrom          string
	EmailTemplatePath  string
	EmailTimeout       time.Duration
	EmailConfiguration string // SES configuration set, optional

	// Send ledger (optional)
	LedgerRedisAddr     string
	LedgerRedisPassword string
	LedgerRedisDB       int

	// Metrics
	PushgatewayURL string

	// API server
	APIHost          string
	APIPort          int
	SchedulerEnabled bool
	Environment      string // development, staging, production
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, errors.Wrap(ErrConfig, "DATABASE_URL must be set")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		SubscribersTable: envOr("SUBSCRIBERS_TABLE", DefaultSubscribersTable),
		SystemTable:      envOr("SYSTEM_TABLE", DefaultSystemTable),
		ScanPageSize:     envInt("SCAN_PAGE_SIZE", 500),

		SendHour: envInt("SEND_HOUR", DefaultSendHour),

		WhatsAppEndpoint:          strings.TrimRight(envOr("WHATSAPP_API_ENDPOINT", ""), "/"),
		WhatsAppToken:             envOr("WHATSAPP_API_TOKEN", ""),
		WhatsAppTimeout:           time.Duration(envInt("WHATSAPP_TIMEOUT_SECONDS", 15)) * time.Second,
		WhatsAppMaxBatch:          envInt("WHATSAPP_MAX_BATCH", 100),
		WhatsAppRequestsPerMinute: envInt("WHATSAPP_REQUESTS_PER_MINUTE", 60),

		EmailRegion:        envOr("EMAIL_REGION", envOr("AWS_REGION", "")),
		EmailSMTPHost:      envOr("EMAIL_SMTP_HOST", ""),
		EmailSMTPPort:      envInt("EMAIL_SMTP_PORT", 587),
		EmailSMTPUsername:  envOr("EMAIL_SMTP_USERNAME", ""),
		EmailSMTPPassword:  envOr("EMAIL_SMTP_PASSWORD", ""),
		EmailFrom:          envOr("EMAIL_FROM", DefaultEmailFrom),
		EmailTemplatePath:  envOr("EMAIL_TEMPLATE_PATH", DefaultEmailTemplate),
		EmailTimeout:       time.Duration(envInt("EMAIL_TIMEOUT_SECONDS", 15)) * time.Second,
		EmailConfiguration: envOr("EMAIL_CONFIGURATION_SET", ""),

		LedgerRedisAddr:     envOr("LEDGER_REDIS_ADDR", ""),
		LedgerRedisPassword: envOr("LEDGER_REDIS_PASSWORD", ""),
		LedgerRedisDB:       envInt("LEDGER_REDIS_DB", 0),

		PushgatewayURL: envOr("PUSHGATEWAY_URL", ""),

		APIHost:          envOr("API_HOST", "0.0.0.0"),
		APIPort:          envInt("API_PORT", envInt("PORT", 8000)),
		SchedulerEnabled: envBool("SCHEDULER_ENABLED", false),
		Environment:      envOr("ENVIRONMENT", "development"),
	}

	if cfg.SendHour < 0 || cfg.SendHour > 23 {
		return nil, errors.Wrapf(ErrConfig, "SEND_HOUR must be within 0-23, got %d", cfg.SendHour)
	}
	if cfg.ScanPageSize < 1 {
		cfg.ScanPageSize = 500
	}
	if cfg.WhatsAppMaxBatch < 1 {
		cfg.WhatsAppMaxBatch = 100
	}
	return cfg, nil
}

// SMTPHost returns the explicit SMTP host, or the SES SMTP endpoint for EmailRegion.
func (c *Config) SMTPHost() string {
	if c.EmailSMTPHost != "" {
		return c.EmailSMTPHost
	}
	if c.EmailRegion != "" {
		return "email-smtp." + c.EmailRegion + ".amazonaws.com"
	}
	return ""
}

// ValidateMessaging checks the messaging gateway credentials.
func (c *Config) ValidateMessaging() error {
	if c.WhatsAppEndpoint == "" || c.WhatsAppToken == "" {
		return errors.Wrap(ErrConfig, "WHATSAPP_API_ENDPOINT and WHATSAPP_API_TOKEN must be set")
	}
	return nil
}

// ValidateEmail checks the email gateway credentials.
func (c *Config) ValidateEmail() error {
	if c.SMTPHost() == "" {
		return errors.Wrap(ErrConfig, "EMAIL_REGION or EMAIL_SMTP_HOST must be set")
	}
	if c.EmailSMTPUsername == "" || c.EmailSMTPPassword == "" {
		return errors.Wrap(ErrConfig, "EMAIL_SMTP_USERNAME and EMAIL_SMTP_PASSWORD must be set")
	}
	if c.EmailFrom == "" {
		return errors.Wrap(ErrConfig, "EMAIL_FROM must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}
