// Package config also provides Viper-based hierarchical configuration:
// defaults, then config file, then LEDGER_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		InputDir      string `mapstructure:"input_dir" yaml:"input_dir"`
		Database      string `mapstructure:"database" yaml:"database"`
		MoveProcessed bool   `mapstructure:"move_processed" yaml:"move_processed"`
	} `mapstructure:"data" yaml:"data"`

	Formats struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"formats" yaml:"formats"`
}

// Load initializes Viper configuration with hierarchical loading.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ledger-import")
	v.AddConfigPath(".ledger-import")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A broken config file should not take the tool down; defaults
			// and env vars still apply.
			Logger.Warnf("Error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.input_dir", "data/raw")
	v.SetDefault("data.database", "data/ledger.db")
	v.SetDefault("data.move_processed", false)

	v.SetDefault("formats.file", "formats.yaml")
}
