package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is loaded from the environment; flags may override parts of
// it at the command layer.
type Config struct {
	// DBPath overrides the default database location (~/.tracktion.db).
	DBPath string `env:"TRACKTION_DB"`

	// DailyMinutes is the default daily planning budget.
	DailyMinutes int `env:"TRACKTION_DAILY_MINUTES" envDefault:"240"`

	// MaxPlanTasks caps how many tasks a generated plan may hold.
	MaxPlanTasks int `env:"TRACKTION_MAX_PLAN_TASKS" envDefault:"8"`

	// StreakMinutes is the qualifying minutes per streak day.
	StreakMinutes int `env:"TRACKTION_STREAK_MINUTES" envDefault:"15"`

	// Debug enables verbose logging.
	Debug bool `env:"TRACKTION_DEBUG"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
