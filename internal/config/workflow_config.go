package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

type WorkflowConfig struct {
	RequireEligibleOnSubmit bool     `mapstructure:"require_eligible_on_submit"`
	RequiredDocuments       []string `mapstructure:"required_documents"`
}

func (config WorkflowConfig) validate() error {
	for _, document := range config.RequiredDocuments {
		if strings.TrimSpace(document) == "" {
			return fmt.Errorf("required_documents must not contain empty names")
		}
	}
	return nil
}

func (config WorkflowConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("workflow.require_eligible_on_submit", "REQUIRE_ELIGIBLE_ON_SUBMIT")
}
