package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"720h"`), &d))
	assert.Equal(t, 720*time.Hour, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func Test_parseJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":   "www.example:9000",
		"database_dsn":         "postgres://localhost/auth",
		"secret_key":           "my_secret_key",
		"password_scheme":      "argon2id",
		"remember_me_validity": "48h",
		"auto_login_validity":  "12h",
		"store_timeout":        "2s",
		"min_password_length":  8,
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-config", path}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://localhost/auth", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "argon2id", cfg.PasswordScheme)
		assert.Equal(t, 48*time.Hour, cfg.RememberMeValidity)
		assert.Equal(t, 12*time.Hour, cfg.AutoLoginValidity)
		assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
		assert.Equal(t, 8, cfg.MinPasswordLength)
		assert.Equal(t, 3, cfg.MinUsernameLength, "absent field keeps default")
		assert.Equal(t, "chengshang_tools", cfg.DatabaseName)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{EndpointAddrGRPC: "defaults:1234"}
		require.NoError(t, parseJSON(cfg, []string{"-a", ":1"}))
		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJSON(&Config{}, []string{"-c", bad})
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJSON(&Config{}, []string{"-c", filepath.Join(dir, "absent.json")})
		assert.Error(t, err)
	})
}
