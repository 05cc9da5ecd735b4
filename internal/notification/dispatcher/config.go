package dispatcher

import (
	"time"

	"github.com/smallbiznis/obtain/internal/config"
)

// Config controls the notification dispatcher loop.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	SendTimeout  time.Duration
	RunTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    25,
		PollInterval: 5 * time.Second,
		MaxAttempts:  5,
		BaseBackoff:  30 * time.Second,
		MaxBackoff:   30 * time.Minute,
		SendTimeout:  15 * time.Second,
		RunTimeout:   2 * time.Minute,
	}
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		BatchSize:    cfg.Notification.BatchSize,
		PollInterval: cfg.Notification.PollInterval,
		MaxAttempts:  cfg.Notification.MaxAttempts,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaults.BaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaults.MaxBackoff
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = defaults.SendTimeout
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}

// backoff doubles per attempt, capped at MaxBackoff.
func (c Config) backoff(attempts int) time.Duration {
	delay := c.BaseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return delay
}
