package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	DonationAPI DonationAPIConfig
	Checkout    CheckoutConfig
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
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// DonationAPIConfig points at the upstream donation backend that owns
// order creation, payment verification and the published gateway key.
type DonationAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CheckoutConfig struct {
	OrgName string // shown in the checkout overlay header
	// NavigateDelay is how long the success panel stays visible before the
	// confirmation navigation is pushed to the page.
	NavigateDelay time.Duration
	// GatewayKey overrides the key fetched from the donation API; used in
	// development when the upstream config endpoint is unavailable.
	GatewayKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8087"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "daansetu:daansetu@tcp(localhost:3306)/daansetu?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 24 * time.Hour,
			Issuer:       getEnv("JWT_ISSUER", "daansetu"),
		},
		DonationAPI: DonationAPIConfig{
			BaseURL: getEnv("DONATION_API_BASE_URL", "https://api.daansetu.org"),
			Timeout: 30 * time.Second,
		},
		Checkout: CheckoutConfig{
			OrgName:       getEnv("CHECKOUT_ORG_NAME", "DaanSetu Foundation"),
			NavigateDelay: getEnvDurationMs("CHECKOUT_NAVIGATE_DELAY_MS", 2*time.Second),
			GatewayKey:    os.Getenv("RAZORPAY_KEY_ID"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDurationMs(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
