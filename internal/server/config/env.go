package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name in the env tags.
const EnvPrefix = "LAUNCHER_"

// parseEnv overlays LAUNCHER_* variables. A nil environ reads the process
// environment; unset variables keep the current value.
func parseEnv(config *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
