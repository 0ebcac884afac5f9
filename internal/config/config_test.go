package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":        "postgres://localhost/vapor",
		"REDIS_URL":           "redis://localhost:6379",
		"PORT":                "",
		"PRICING_DELIVERY_FEE": "",
		"PRICING_TAX_RATE":    "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "10", cfg.PricingDeliveryFee.String())
	require.True(t, cfg.PricingTaxRate.IsZero())
	require.Equal(t, int64(120), cfg.RateLimitMax)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.Error(t, err)
}

func TestLoadRejectsTaxRateOutOfRange(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "postgres://localhost/vapor",
		"REDIS_URL":        "redis://localhost:6379",
		"PRICING_TAX_RATE": "1.5",
	})
	require.Error(t, err)
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/vapor",
		"REDIS_URL":            "redis://localhost:6379",
		"PRICING_DELIVERY_FEE": "7.25",
		"PRICING_TAX_RATE":     "0.0825",
		"CART_TTL":             "48h",
	})
	require.NoError(t, err)
	require.Equal(t, "7.25", cfg.PricingDeliveryFee.String())
	require.Equal(t, "0.0825", cfg.PricingTaxRate.String())
	require.Equal(t, "48h0m0s", cfg.CartTTL.String())
}
