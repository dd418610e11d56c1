package monitor

import (
	"time"

	"github.com/warebox/warebox/internal/config"
)

// Config controls the sweep interval, page size and notification cooldown.
type Config struct {
	RunInterval    time.Duration
	BatchSize      int
	NotifyCooldown time.Duration
	MatchLimit     int
	ExpireLimit    int
}

func DefaultConfig() Config {
	return Config{
		RunInterval:    5 * time.Minute,
		BatchSize:      100,
		NotifyCooldown: 24 * time.Hour,
		MatchLimit:     10,
		ExpireLimit:    200,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.NotifyCooldown <= 0 {
		c.NotifyCooldown = defaults.NotifyCooldown
	}
	if c.MatchLimit <= 0 {
		c.MatchLimit = defaults.MatchLimit
	}
	if c.ExpireLimit <= 0 {
		c.ExpireLimit = defaults.ExpireLimit
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:    cfg.Monitor.RunInterval,
		BatchSize:      cfg.Monitor.BatchSize,
		NotifyCooldown: cfg.Monitor.NotifyCooldown,
		MatchLimit:     cfg.Monitor.MatchLimit,
	}.withDefaults()
}
