package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "memory://", "-n", "tools", "-t", "3s",
				"-s", "secret", "-p", "pepper", "-m", "argon2id", "-r", "48h", "-l", "2h",
				"-log-backend", "zap", "-log-format", "text", "-log-level", "debug",
			},
			expected: &Config{
				EndpointAddrGRPC:   "127.0.0.1:9090",
				DatabaseDSN:        "memory://",
				DatabaseName:       "tools",
				StoreTimeout:       3 * time.Second,
				SecretKey:          "secret",
				PasswordPepper:     "pepper",
				PasswordScheme:     "argon2id",
				RememberMeValidity: 48 * time.Hour,
				AutoLoginValidity:  2 * time.Hour,
				LogBackend:         "zap",
				LogFormat:          "text",
				LogLevel:           "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"},
		},
		{
			name:    "bad duration",
			args:    []string{"-r", "forever"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
