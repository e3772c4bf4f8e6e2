package config

import (
	"errors"
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"time"
)

type EvaluationConfig struct {
	ReevaluationCron string        `mapstructure:"reevaluation_cron"`
	Workers          int           `mapstructure:"workers"`
	MaxRunsPerSecond float32       `mapstructure:"max_runs_per_second"`
	CriteriaCacheTTL time.Duration `mapstructure:"criteria_cache_ttl"`
}

func (config EvaluationConfig) validate() error {
	var errs []error

	if config.ReevaluationCron != "" {
		if _, err := cron.ParseStandard(config.ReevaluationCron); err != nil {
			errs = append(errs, fmt.Errorf("invalid reevaluation_cron: %w", err))
		}
	}
	if config.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive"))
	}
	if config.MaxRunsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("max_runs_per_second must be positive"))
	}
	if config.CriteriaCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("criteria_cache_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}
	return nil
}

func (config EvaluationConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"evaluation.reevaluation_cron":   "REEVALUATION_CRON",
		"evaluation.workers":             "EVALUATION_WORKERS",
		"evaluation.max_runs_per_second": "EVALUATION_MAX_RUNS_PER_SECOND",
		"evaluation.criteria_cache_ttl":  "CRITERIA_CACHE_TTL",
	})
}
