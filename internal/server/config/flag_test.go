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
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-g", ":50051", "-d", "db", "-s", "secret",
				"-t", "60", "-r", "5", "-dev", "-m", "smtp",
			},
			expected: &Config{
				HTTPAddr:                    "127.0.0.1:9090",
				GRPCHealthAddr:              ":50051",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: time.Hour,
				ResetCodeValidityDuration:   5 * time.Minute,
				DevMode:                     true,
				MailTransport:               "smtp",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-x", "1", "-s", "k"},
			expected: &Config{SecretKey: "k"},
		},
		{
			name:        "bad duration panics",
			args:        []string{"-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
