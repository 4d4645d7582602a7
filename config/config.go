package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	CORS     CORSConfig

	// BcryptCost is the work factor used when hashing user passwords
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// AvatarMaxBytes caps the size of an uploaded avatar file
	AvatarMaxBytes int64 `env:"AVATAR_MAX_BYTES" envDefault:"1048576"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DatabaseConfig holds database settings. Driver is "sqlite3" or "pgx".
type DatabaseConfig struct {
	Driver       string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN          string        `env:"DB_DSN" envDefault:"./task_manager.db"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxLifetime  time.Duration `env:"DB_MAX_LIFETIME" envDefault:"1h"`
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET,required,notEmpty"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
}

// EmailConfig holds SendGrid and SMTP settings. Without a SendGrid key or SMTP
// credentials the service falls back to a log-only mailer.
type EmailConfig struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	FromEmail    string `env:"EMAIL_FROM"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"Task Manager"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads .env (if any) and parses the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			logger.Info("No .env file found, using process environment")
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or pgx, got %q", c.Database.Driver)
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.AvatarMaxBytes <= 0 {
		return fmt.Errorf("AVATAR_MAX_BYTES must be positive")
	}

	switch {
	case c.IsSendGridConfigured():
		logger.Info("Email configuration loaded", zap.String("transport", "sendgrid"))
	case !c.IsEmailConfigured():
		logger.Info("No mail transport configured, emails will only be logged")
	default:
		logger.Info("Email configuration loaded",
			zap.String("smtp_host", c.Email.SMTPHost),
			zap.String("smtp_port", c.Email.SMTPPort),
			zap.String("smtp_username", c.Email.SMTPUsername))
	}

	return nil
}

// IsSendGridConfigured reports whether delivery through SendGrid is possible
func (c *Config) IsSendGridConfigured() bool {
	return c.Email.SendGridAPIKey != ""
}

// IsEmailConfigured reports whether SMTP delivery is possible
func (c *Config) IsEmailConfigured() bool {
	return c.Email.SMTPUsername != "" && c.Email.SMTPPassword != "" && c.Email.FromEmail != ""
}
