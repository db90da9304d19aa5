package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Supported gateway providers for PRIMARY_GATEWAY
const (
	GatewayRazorpay = "razorpay"
	GatewayPayU     = "payu"
	GatewayPhonePe  = "phonepe"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string
	LogDir     string

	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string
	// WebhookInsecureMode accepts unsigned webhooks when no webhook secret is set.
	WebhookInsecureMode bool
	PrimaryGateway      string
	GatewayTimeout      time.Duration

	DefaultGSTRate decimal.Decimal

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from environment variables.
// A missing .env file is not an error; the process environment is used as-is.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	gstRate, err := decimal.NewFromString(getEnv("DEFAULT_GST_RATE", "18"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_GST_RATE: %v", err)
	}

	timeout, err := time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: %v", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	insecure, err := strconv.ParseBool(getEnv("WEBHOOK_INSECURE_MODE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_INSECURE_MODE: %v", err)
	}

	config := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "paysphere"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogDir:     getEnv("LOG_DIR", "logs"),

		RazorpayKey:           os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret:        os.Getenv("RAZORPAY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		WebhookInsecureMode:   insecure,
		PrimaryGateway:        strings.ToLower(getEnv("PRIMARY_GATEWAY", GatewayRazorpay)),
		GatewayTimeout:        timeout,

		DefaultGSTRate: gstRate,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the payment core cannot run with
func (c *Config) Validate() error {
	if c.DefaultGSTRate.IsNegative() || c.DefaultGSTRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("DEFAULT_GST_RATE must be between 0 and 100, got %s", c.DefaultGSTRate)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	switch c.PrimaryGateway {
	case GatewayRazorpay:
		if c.RazorpayKey == "" || c.RazorpaySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY and RAZORPAY_SECRET are required when PRIMARY_GATEWAY=razorpay")
		}
	case GatewayPayU, GatewayPhonePe:
		return fmt.Errorf("PRIMARY_GATEWAY=%s has no gateway integration", c.PrimaryGateway)
	default:
		return fmt.Errorf("unknown PRIMARY_GATEWAY %q", c.PrimaryGateway)
	}
	if c.RazorpayWebhookSecret == "" && !c.WebhookInsecureMode {
		return fmt.Errorf("RAZORPAY_WEBHOOK_SECRET is required unless WEBHOOK_INSECURE_MODE=true")
	}
	return nil
}

// SMTPEnabled reports whether outgoing mail is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
