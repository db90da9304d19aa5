package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		RazorpayKey:           "rzp_test_key",
		RazorpaySecret:        "secret",
		RazorpayWebhookSecret: "whsec",
		PrimaryGateway:        GatewayRazorpay,
		GatewayTimeout:        5 * time.Second,
		DefaultGSTRate:        decimal.NewFromInt(18),
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.RazorpayWebhookSecret = ""
	assert.Error(t, c.Validate(), "unsigned webhooks need explicit opt-in")

	c.WebhookInsecureMode = true
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.PrimaryGateway = GatewayPayU
	assert.Error(t, c.Validate())

	c = validConfig()
	c.DefaultGSTRate = decimal.NewFromInt(-1)
	assert.Error(t, c.Validate())

	c = validConfig()
	c.GatewayTimeout = 0
	assert.Error(t, c.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RAZORPAY_KEY", "rzp_test_key")
	t.Setenv("RAZORPAY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("DEFAULT_GST_RATE", "12")
	t.Setenv("GATEWAY_TIMEOUT", "3s")

	c, err := LoadConfig()
	if assert.NoError(t, err) {
		assert.True(t, c.DefaultGSTRate.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, 3*time.Second, c.GatewayTimeout)
		assert.Equal(t, GatewayRazorpay, c.PrimaryGateway)
		assert.False(t, c.SMTPEnabled())
	}
}
