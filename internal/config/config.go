package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/lmarchal/robeo-contracts/internal/money"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// PricingConfig surfaces the defaults the legacy implementation kept as
// hidden module-level constants.
type PricingConfig struct {
	FallbackVATRatio float64
	DepositRate      float64
	DailyTypeID      uuid.UUID
	PaymentMethods   []string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Pricing     PricingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Pricing: PricingConfig{
			FallbackVATRatio: v.GetFloat64("PRICING_FALLBACK_VAT_RATIO"),
			DepositRate:      v.GetFloat64("PRICING_DEPOSIT_RATE"),
			PaymentMethods:   v.GetStringSlice("PRICING_PAYMENT_METHODS"),
		},
	}

	if raw := v.GetString("PRICING_DAILY_TYPE_ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("PRICING_DAILY_TYPE_ID is not a uuid: %w", err)
		}
		cfg.Pricing.DailyTypeID = id
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7091
	}
	if cfg.Pricing.FallbackVATRatio == 0 {
		cfg.Pricing.FallbackVATRatio = money.DefaultVATRatio
	}
	if cfg.Pricing.DepositRate == 0 {
		cfg.Pricing.DepositRate = 0.5
	}
	if len(cfg.Pricing.PaymentMethods) == 0 {
		cfg.Pricing.PaymentMethods = []string{"CARD", "CASH", "TRANSFER"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Pricing.FallbackVATRatio <= 0 || cfg.Pricing.FallbackVATRatio > 1 {
		return fmt.Errorf("PRICING_FALLBACK_VAT_RATIO must be in (0, 1]")
	}
	if cfg.Pricing.DepositRate < 0 || cfg.Pricing.DepositRate > 1 {
		return fmt.Errorf("PRICING_DEPOSIT_RATE must be in [0, 1]")
	}
	return nil
}
