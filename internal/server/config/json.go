package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/flagx"
)

// Duration accepts either a Go duration string ("720h") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x)
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is the on-disk shape of the config file. Absent or zero fields
// leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC   string   `json:"endpoint_addr_grpc"`
	DatabaseDSN        string   `json:"database_dsn"`
	DatabaseName       string   `json:"database_name"`
	StoreTimeout       Duration `json:"store_timeout"`
	SecretKey          string   `json:"secret_key"`
	PasswordPepper     string   `json:"password_pepper"`
	PasswordScheme     string   `json:"password_scheme"`
	RememberMeValidity Duration `json:"remember_me_validity"`
	AutoLoginValidity  Duration `json:"auto_login_validity"`
	MinUsernameLength  int      `json:"min_username_length"`
	MinPasswordLength  int      `json:"min_password_length"`
	LogBackend         string   `json:"log_backend"`
	LogFormat          string   `json:"log_format"`
	LogLevel           string   `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// parseJSON overlays the file named by -c or -config in args, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DatabaseName, c.DatabaseName)
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.PasswordPepper, c.PasswordPepper)
	setString(&config.PasswordScheme, c.PasswordScheme)
	setDuration(&config.RememberMeValidity, c.RememberMeValidity)
	setDuration(&config.AutoLoginValidity, c.AutoLoginValidity)
	setInt(&config.MinUsernameLength, c.MinUsernameLength)
	setInt(&config.MinPasswordLength, c.MinPasswordLength)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}
