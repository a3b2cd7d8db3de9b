package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/payment"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Base mainnet USDC, the network the service defaults to
const (
	DefaultChainID      = 8453
	DefaultTokenAddress = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	DefaultRPCURL       = "https://mainnet.base.org"
)

// Config is the server configuration read from the environment
type Config struct {
	StorageType string     `env:"RQ_STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string     `env:"RQ_REDIS_URL"`
	Port        int        `env:"RQ_PORT" envDefault:"8080"`
	LogLevel    slog.Level `env:"RQ_LOG_LEVEL" envDefault:"info"`

	ChainID        int64         `env:"RQ_CHAIN_ID" envDefault:"8453"`
	TokenAddress   string        `env:"RQ_TOKEN_ADDRESS" envDefault:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	RPCURL         string        `env:"RQ_RPC_URL" envDefault:"https://mainnet.base.org"`
	ConfirmTimeout time.Duration `env:"RQ_CONFIRM_TIMEOUT" envDefault:"30s"`
	ConfirmDelay   time.Duration `env:"RQ_CONFIRM_DELAY" envDefault:"3s"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values the tags cannot express
func (c Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("RQ_REDIS_URL required when RQ_STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid RQ_STORAGE_TYPE %q: must be 'memory' or 'redis'", c.StorageType))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid RQ_PORT %d", c.Port))
	}
	if !payment.IsValidAddress(c.TokenAddress) {
		errs = append(errs, fmt.Errorf("invalid RQ_TOKEN_ADDRESS %q", c.TokenAddress))
	}
	if c.ConfirmTimeout <= 0 {
		errs = append(errs, errors.New("RQ_CONFIRM_TIMEOUT must be positive"))
	}
	if c.ConfirmDelay < 0 {
		errs = append(errs, errors.New("RQ_CONFIRM_DELAY must not be negative"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Payment returns the network settings for payment pipelines
func (c Config) Payment() model.PaymentConfig {
	return model.PaymentConfig{
		ChainID:      c.ChainID,
		TokenAddress: c.TokenAddress,
		RPCURL:       c.RPCURL,
	}
}
