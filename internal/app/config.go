// Package app assembles the storefront bot from core infrastructure and the
// shop services.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
)

// PaymentConfig carries payment provider credentials and behaviour.
type PaymentConfig struct {
	ShopID    string `yaml:"shop_id" envconfig:"YOOKASSA_SHOP_ID"`
	SecretKey string `yaml:"secret_key" envconfig:"YOOKASSA_SECRET_KEY"`
	BaseURL   string `yaml:"base_url" envconfig:"YOOKASSA_BASE_URL"`
	ReturnURL string `yaml:"return_url" envconfig:"YOOKASSA_RETURN_URL"`
	Currency  string `yaml:"currency" envconfig:"YOOKASSA_CURRENCY"`
}

// APIConfig configures the admin HTTP server.
type APIConfig struct {
	Listen string `yaml:"listen" envconfig:"API_LISTEN"`
}

// ShopConfig carries storefront behaviour settings.
type ShopConfig struct {
	Channel              string `yaml:"channel" envconfig:"SHOP_CHANNEL"`
	RequireSubscription  bool   `yaml:"require_subscription" envconfig:"SHOP_REQUIRE_SUBSCRIPTION"`
	PageSize             int    `yaml:"page_size" envconfig:"SHOP_PAGE_SIZE"`
	AllowPaidOrderDelete bool   `yaml:"allow_paid_order_delete" envconfig:"SHOP_ALLOW_PAID_ORDER_DELETE"`
}

// Config aggregates core and shop configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Payment  PaymentConfig       `yaml:"payment"`
	API      APIConfig           `yaml:"api"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	if cfg.Shop.PageSize <= 0 {
		cfg.Shop.PageSize = 5
	}
	if cfg.Shop.RequireSubscription && strings.TrimSpace(cfg.Shop.Channel) == "" {
		return fmt.Errorf("shop.channel is required when shop.require_subscription is enabled")
	}
	if cfg.Shop.Channel != "" && !strings.HasPrefix(cfg.Shop.Channel, "@") {
		cfg.Shop.Channel = "@" + cfg.Shop.Channel
	}

	if cfg.Payment.ShopID != "" && cfg.Payment.SecretKey == "" {
		return fmt.Errorf("payment.secret_key is required when payment.shop_id is set")
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8081"
	}
	return nil
}
