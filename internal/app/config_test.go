package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Core.Telegram.Token = "123:abc"
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	require.Equal(t, 5, cfg.Shop.PageSize)
	require.Equal(t, ":8081", cfg.API.Listen)
	require.False(t, cfg.Shop.AllowPaidOrderDelete)
}

func TestNormalizePrefixesChannel(t *testing.T) {
	cfg := validConfig()
	cfg.Shop.Channel = "myshop"
	require.NoError(t, Normalize(cfg))
	require.Equal(t, "@myshop", cfg.Shop.Channel)
}

func TestNormalizeRequiresChannelForGate(t *testing.T) {
	cfg := validConfig()
	cfg.Shop.RequireSubscription = true
	require.Error(t, Normalize(cfg))
}

func TestNormalizeRequiresPaymentSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Payment.ShopID = "shop-1"
	require.Error(t, Normalize(cfg))

	cfg.Payment.SecretKey = "secret"
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	require.Error(t, Normalize(cfg))
}
