package config

import (
	"errors"
	"testing"
)

const testRecipient = "5frqxtii9LeGq2bz3dSNokvZcEooF483MzeU24JrhcTA"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RENTCLAIM_FEE_RECIPIENT", testRecipient)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Network != "mainnet" {
		t.Errorf("Network = %s, want mainnet", cfg.Network)
	}
	if cfg.ServiceFeePercent != 20 || cfg.ReferralFeePercent != 10 {
		t.Errorf("fees = %d/%d, want 20/10", cfg.ServiceFeePercent, cfg.ReferralFeePercent)
	}
	if cfg.MaxBatchSize != 10 {
		t.Errorf("MaxBatchSize = %d, want 10", cfg.MaxBatchSize)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RENTCLAIM_FEE_RECIPIENT", testRecipient)
	t.Setenv("RENTCLAIM_PORT", "9090")
	t.Setenv("RENTCLAIM_NETWORK", "devnet")
	t.Setenv("RENTCLAIM_RPC_URLS", "http://localhost:8899,http://localhost:8900")
	t.Setenv("RENTCLAIM_SERVICE_FEE_PERCENT", "15")
	t.Setenv("RENTCLAIM_MAX_BATCH_SIZE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if cfg.Port != 9090 || cfg.Network != "devnet" {
		t.Errorf("port/network = %d/%s", cfg.Port, cfg.Network)
	}
	if len(cfg.RPCURLs) != 2 {
		t.Errorf("RPCURLs = %v, want 2 entries", cfg.RPCURLs)
	}
	if cfg.ServiceFeePercent != 15 || cfg.MaxBatchSize != 5 {
		t.Errorf("fee/batch = %d/%d", cfg.ServiceFeePercent, cfg.MaxBatchSize)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:               8080,
			Network:            "mainnet",
			FeeRecipient:       testRecipient,
			ServiceFeePercent:  20,
			ReferralFeePercent: 10,
			MaxBatchSize:       10,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero fees", func(c *Config) { c.ServiceFeePercent = 0; c.ReferralFeePercent = 0 }, true},
		{"bad network", func(c *Config) { c.Network = "testnet" }, false},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"port too high", func(c *Config) { c.Port = 70000 }, false},
		{"missing recipient", func(c *Config) { c.FeeRecipient = "" }, false},
		{"bad recipient", func(c *Config) { c.FeeRecipient = "not-base58!" }, false},
		{"negative fee", func(c *Config) { c.ServiceFeePercent = -1 }, false},
		{"fee over 100", func(c *Config) { c.ReferralFeePercent = 101 }, false},
		{"fees sum over 100", func(c *Config) { c.ServiceFeePercent = 60; c.ReferralFeePercent = 50 }, false},
		{"batch zero", func(c *Config) { c.MaxBatchSize = 0 }, false},
		{"batch over ceiling", func(c *Config) { c.MaxBatchSize = MaxBatchSizeCeiling + 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate error = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate error = nil, want error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error = %v, want ErrInvalidConfig", err)
				}
			}
		})
	}
}

func TestValidateSanitizesFeeRecipient(t *testing.T) {
	cfg := Config{
		Port:         8080,
		Network:      "mainnet",
		FeeRecipient: "  " + testRecipient + "\n",
		MaxBatchSize: 10,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error = %v", err)
	}
	if cfg.FeeRecipient != testRecipient {
		t.Errorf("FeeRecipient = %q, want sanitized %q", cfg.FeeRecipient, testRecipient)
	}
}

func TestResolvedRPCURLs(t *testing.T) {
	cfg := Config{Network: "mainnet"}
	if urls := cfg.ResolvedRPCURLs(); len(urls) != 1 || urls[0] != SolanaMainnetRPCURL {
		t.Errorf("mainnet fallback = %v", urls)
	}

	cfg.Network = "devnet"
	if urls := cfg.ResolvedRPCURLs(); len(urls) != 1 || urls[0] != SolanaDevnetRPCURL {
		t.Errorf("devnet fallback = %v", urls)
	}

	cfg.RPCURLs = []string{"http://localhost:8899"}
	if urls := cfg.ResolvedRPCURLs(); len(urls) != 1 || urls[0] != "http://localhost:8899" {
		t.Errorf("explicit URLs = %v", urls)
	}
}
