// Package cliconfig loads CLI configuration from dapmeta.yaml and the
// environment.
package cliconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the dapmeta CLI configuration.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
}

// StoreConfig selects the destination store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or postgres
	DSN    string `mapstructure:"dsn"`
}

// Load reads dapmeta.yaml from the working directory, falling back to
// defaults; environment variables override file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "dapmeta.db")

	v.SetConfigName("dapmeta")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("dapmeta")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Store.Driver != "sqlite3" && config.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}
	return &config, nil
}
