package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/rentclaim/rentclaim/internal/validate"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBPath   string `envconfig:"RENTCLAIM_DB_PATH" default:"./data/rentclaim.sqlite"`
	Port     int    `envconfig:"RENTCLAIM_PORT" default:"8080"`
	LogLevel string `envconfig:"RENTCLAIM_LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"RENTCLAIM_LOG_DIR" default:"./logs"`
	Network  string `envconfig:"RENTCLAIM_NETWORK" default:"mainnet"`

	RPCURLs     []string `envconfig:"RENTCLAIM_RPC_URLS"`
	KeypairFile string   `envconfig:"RENTCLAIM_KEYPAIR_FILE"`

	FeeRecipient       string `envconfig:"RENTCLAIM_FEE_RECIPIENT"`
	ServiceFeePercent  int    `envconfig:"RENTCLAIM_SERVICE_FEE_PERCENT" default:"20"`
	ReferralFeePercent int    `envconfig:"RENTCLAIM_REFERRAL_FEE_PERCENT" default:"10"`
	MaxBatchSize       int    `envconfig:"RENTCLAIM_MAX_BATCH_SIZE" default:"10"`
}

// Load reads configuration from .env file (if present) then from environment
// variables. Environment variables override .env values.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		// godotenv does NOT override already-set env vars, so real
		// environment variables take precedence over .env values.
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness. The fee recipient is
// sanitized in place so downstream code always sees the clean form.
func (c *Config) Validate() error {
	if c.Network != "mainnet" && c.Network != "devnet" {
		return fmt.Errorf("%w: network must be \"mainnet\" or \"devnet\", got %q", ErrInvalidConfig, c.Network)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}

	c.FeeRecipient = validate.Sanitize(c.FeeRecipient)
	if c.FeeRecipient == "" {
		return fmt.Errorf("%w: fee recipient address is required (RENTCLAIM_FEE_RECIPIENT)", ErrInvalidConfig)
	}
	if !validate.IsAddress(c.FeeRecipient) {
		return fmt.Errorf("%w: fee recipient %q is not a valid address", ErrInvalidConfig, c.FeeRecipient)
	}

	if c.ServiceFeePercent < 0 || c.ServiceFeePercent > 100 {
		return fmt.Errorf("%w: service fee must be 0-100, got %d", ErrInvalidConfig, c.ServiceFeePercent)
	}
	if c.ReferralFeePercent < 0 || c.ReferralFeePercent > 100 {
		return fmt.Errorf("%w: referral fee must be 0-100, got %d", ErrInvalidConfig, c.ReferralFeePercent)
	}
	if c.ServiceFeePercent+c.ReferralFeePercent > 100 {
		return fmt.Errorf("%w: service fee %d%% + referral fee %d%% exceeds 100%%",
			ErrInvalidConfig, c.ServiceFeePercent, c.ReferralFeePercent)
	}

	if c.MaxBatchSize < 1 || c.MaxBatchSize > MaxBatchSizeCeiling {
		return fmt.Errorf("%w: max batch size must be 1-%d, got %d",
			ErrInvalidConfig, MaxBatchSizeCeiling, c.MaxBatchSize)
	}

	return nil
}

// ResolvedRPCURLs returns the configured RPC URLs, falling back to the public
// endpoint for the configured network.
func (c *Config) ResolvedRPCURLs() []string {
	if len(c.RPCURLs) > 0 {
		return c.RPCURLs
	}
	if c.Network == "devnet" {
		return []string{SolanaDevnetRPCURL}
	}
	return []string{SolanaMainnetRPCURL}
}
