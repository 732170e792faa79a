// Package config handles configuration for the auth server, layering
// defaults, an optional JSON file, LAUNCHER_* environment variables and
// command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the auth server.
//
// DatabaseDSN selects the store backend by scheme (postgres://, mongodb://
// or memory://). DatabaseName only applies to MongoDB. PasswordPepper is the
// fixed secondary input of the sha256 digest scheme; changing it invalidates
// every stored sha256 digest.
//
// EndpointAddrGRPC defaults to the loopback interface. Admin authority comes
// from the single signed-in session of the process, so the listener must stay
// reachable only from the local desktop shell.
type Config struct {
	EndpointAddrGRPC string        `env:"GRPC_ADDR"`
	DatabaseDSN      string        `env:"DATABASE_DSN"`
	DatabaseName     string        `env:"DATABASE_NAME"`
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT"`

	SecretKey          string        `env:"SECRET_KEY"`
	PasswordPepper     string        `env:"PASSWORD_PEPPER"`
	PasswordScheme     string        `env:"PASSWORD_SCHEME"`
	RememberMeValidity time.Duration `env:"REMEMBER_ME_VALIDITY"`
	AutoLoginValidity  time.Duration `env:"AUTO_LOGIN_VALIDITY"`
	MinUsernameLength  int           `env:"MIN_USERNAME_LENGTH"`
	MinPasswordLength  int           `env:"MIN_PASSWORD_LENGTH"`

	LogBackend string `env:"LOG_BACKEND"`
	LogFormat  string `env:"LOG_FORMAT"`
	LogLevel   string `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = "127.0.0.1:50051"
	c.DatabaseDSN = "mongodb://localhost:27017"
	c.DatabaseName = "chengshang_tools"
	c.StoreTimeout = 5 * time.Second
	c.SecretKey = "secretKey"
	c.PasswordPepper = "chengshang2025"
	c.PasswordScheme = "sha256"
	c.RememberMeValidity = 30 * 24 * time.Hour
	c.AutoLoginValidity = 7 * 24 * time.Hour
	c.MinUsernameLength = 3
	c.MinPasswordLength = 6
	c.LogBackend = "slog"
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is empty"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.PasswordScheme != "sha256" && c.PasswordScheme != "argon2id" {
		errs = append(errs, fmt.Errorf("unknown password scheme %q", c.PasswordScheme))
	}
	if c.RememberMeValidity <= 0 || c.AutoLoginValidity <= 0 {
		errs = append(errs, errors.New("token validity must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}
	if c.MinUsernameLength < 1 || c.MinPasswordLength < 1 {
		errs = append(errs, errors.New("minimum credential lengths must be positive"))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then the environment, then the flags in args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
