package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

type HTTPConfig struct {
	Address     string `mapstructure:"address"`
	MetricsPath string `mapstructure:"metrics_path"`
}

func (config HTTPConfig) validate() error {
	if config.Address == "" {
		return fmt.Errorf("missing variable: address")
	}
	if !strings.HasPrefix(config.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /")
	}
	return nil
}

func (config HTTPConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("http.address", "HTTP_ADDRESS")
}
