package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Monitoring (disabled unless an address is set)
	MetricsAddr string `env:"METRICS_ADDR" envDefault:""`

	// Policy
	DisputeWithdrawals    bool `env:"DISPUTE_WITHDRAWALS"     envDefault:"true"`
	LockedBlocksTransfers bool `env:"LOCKED_BLOCKS_TRANSFERS" envDefault:"false"`

	// Follow mode
	FollowIdleTimeout time.Duration `env:"FOLLOW_IDLE_TIMEOUT" envDefault:"5s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
