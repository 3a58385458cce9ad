package scorevendorquotes

import (
	"fmt"
	"time"

	"rfq-workers/internal/common/config"
	"rfq-workers/internal/scoring"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration

	// Weights are the service-level overrides; job variables are layered on top.
	Weights  scoring.WeightOverrides
	Tunables scoring.Tunables
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Tunables:      scoring.DefaultTunables(),
	}
}

// NewConfigFromAppConfig builds the worker configuration from the service config.
func NewConfigFromAppConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}

	wcfg := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = wcfg.Enabled
	cfg.MaxJobsActive = wcfg.MaxJobsActive
	cfg.Timeout = config.GetDuration(wcfg.Timeout)
	cfg.Weights = app.Scoring.Weights
	cfg.Tunables = app.Scoring.Tunables()
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Tunables.MissingItemPenalty < 0 {
		return fmt.Errorf("missing_item_penalty must not be negative")
	}
	return nil
}
