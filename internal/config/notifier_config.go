package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type NotifierConfig struct {
	// TelegramToken is optional; without it notifications are only logged.
	TelegramToken        string  `mapstructure:"telegram_token"`
	MaxMessagesPerSecond float32 `mapstructure:"max_messages_per_second"`
}

func (config NotifierConfig) validate() error {
	if config.MaxMessagesPerSecond <= 0 {
		return fmt.Errorf("max_messages_per_second must be positive")
	}
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"notifier.telegram_token":          "TELEGRAM_TOKEN",
		"notifier.max_messages_per_second": "NOTIFIER_MAX_MESSAGES_PER_SECOND",
	})
}
