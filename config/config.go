package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	PhonePe  PhonePeConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// PhonePeConfig holds merchant credentials and endpoints for the PhonePe
// payment gateway. SaltKey/SaltIndex sign every outbound request and verify
// every inbound callback (X-VERIFY header).
type PhonePeConfig struct {
	MerchantID      string
	SaltKey         string
	SaltIndex       string
	BaseURL         string        // e.g. https://api-preprod.phonepe.com/apis/pg-sandbox
	RedirectURL     string        // where PhonePe sends the shopper after payment
	CallbackBaseURL string        // our public base; callback URL is CallbackBaseURL + /api/payments/callback
	Timeout         time.Duration // per-request timeout on gateway calls
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8099"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DB_DSN", "kartify:kartify@tcp(localhost:3306)/kartify?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "kartify",
		},
		PhonePe: PhonePeConfig{
			MerchantID:      env("PHONEPE_MERCHANT_ID", ""),
			SaltKey:         env("PHONEPE_SALT_KEY", ""),
			SaltIndex:       env("PHONEPE_SALT_INDEX", "1"),
			BaseURL:         env("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
			RedirectURL:     env("PHONEPE_REDIRECT_URL", ""),
			CallbackBaseURL: env("PHONEPE_CALLBACK_BASE_URL", ""),
			Timeout:         15 * time.Second,
		},
	}
}

// Validate checks that gateway credentials are present. A missing value is a
// configuration error at startup, never a runtime error mid-payment.
func (c *Config) Validate() error {
	var missing []string
	if c.PhonePe.MerchantID == "" {
		missing = append(missing, "PHONEPE_MERCHANT_ID")
	}
	if c.PhonePe.SaltKey == "" {
		missing = append(missing, "PHONEPE_SALT_KEY")
	}
	if c.PhonePe.SaltIndex == "" {
		missing = append(missing, "PHONEPE_SALT_INDEX")
	}
	if c.PhonePe.BaseURL == "" {
		missing = append(missing, "PHONEPE_BASE_URL")
	}
	if c.PhonePe.RedirectURL == "" {
		missing = append(missing, "PHONEPE_REDIRECT_URL")
	}
	if c.PhonePe.CallbackBaseURL == "" {
		missing = append(missing, "PHONEPE_CALLBACK_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %v", missing)
	}
	return nil
}

func env(key, fallback string) string {
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
