// Package config resolves comb settings from command-line flags, COMB_*
// environment variables, an optional comb.yaml and built-in defaults, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FileName  = "comb"
	EnvPrefix = "COMB"

	DefaultRegistry = ".comb/comb.db"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Registry string `mapstructure:"registry"`
	Lint     bool   `mapstructure:"lint"`
	Output   string `mapstructure:"output"`
}

var defaults = map[string]any{
	"log_level": "warn",
	"registry":  DefaultRegistry,
	"lint":      false,
	"output":    "",
}

// flagNames maps config keys to the flags that can set them.
var flagNames = map[string]string{
	"log_level": "log-level",
	"registry":  "registry",
	"lint":      "lint",
	"output":    "output",
}

// Load reads the configuration for the project in dir. Flags missing from
// flags are skipped; only flags the user set override other sources.
func Load(fs afero.Fs, dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if flags != nil {
		for key, name := range flagNames {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}
