package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-c", "-d", "memory://"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "order preserved",
			args:    []string{"-d", "memory://", "-a", ":1", "-s", "k"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-d", "memory://", "-a", ":1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-a", ":1", "-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", ConfigPath([]string{"-a", ":1"}))
	assert.Equal(t, "", ConfigPath(nil))
}
