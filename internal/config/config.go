package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	DB         DBConfig         `mapstructure:"db"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Workflow   WorkflowConfig   `mapstructure:"workflow"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

const defaultConfigFile = "./configs/config.yaml"

type subConfig interface {
	validate() error
	bindEnvironmentVariables(v *viper.Viper) error
}

func Get() *Config {

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := Load(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func Load(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", LevelInfo)
	v.SetDefault("logger.app_name", "job-portal")
	v.SetDefault("notifier.max_messages_per_second", 25)
	v.SetDefault("evaluation.reevaluation_cron", "0 3 * * *")
	v.SetDefault("evaluation.workers", 4)
	v.SetDefault("evaluation.max_runs_per_second", 50)
	v.SetDefault("evaluation.criteria_cache_ttl", "5m")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.metrics_path", "/metrics")
}

type namedSection struct {
	name    string
	section subConfig
}

func (config Config) sections() []namedSection {
	return []namedSection{
		{"LoggerConfig", config.Logger},
		{"DBConfig", config.DB},
		{"NotifierConfig", config.Notifier},
		{"EvaluationConfig", config.Evaluation},
		{"WorkflowConfig", config.Workflow},
		{"HTTPConfig", config.HTTP},
	}
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	for _, s := range (Config{}).sections() {
		if err := s.section.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for _, s := range config.sections() {
		if err := s.section.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(v *viper.Viper, bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
