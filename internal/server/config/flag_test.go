package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		preset      *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-r", "redis://cache:6379/1", "-s", "secret",
			"-t", "24", "-i", "12", "-l", "debug",
		}, expected: &Config{
			EndpointAddrGRPC:        "127.0.0.1:9090",
			DatabaseDSN:             "db",
			RedisURL:                "redis://cache:6379/1",
			SecretKey:               "secret",
			SessionValidityDuration: 24 * time.Hour,
			InvitationRetention:     12 * time.Hour,
			LogLevel:                "debug",
		}},
		{name: "foreign flags are ignored", args: []string{"cmd",
			"-x", "1", "-a", ":7000", "--unknown=2",
		}, expected: &Config{
			EndpointAddrGRPC: ":7000",
		}},
		{name: "unset hour flags keep durations", args: []string{"cmd", "-l", "warn"},
			preset: &Config{SessionValidityDuration: 30 * time.Minute, InvitationRetention: 90 * time.Minute},
			expected: &Config{
				SessionValidityDuration: 30 * time.Minute,
				InvitationRetention:     90 * time.Minute,
				LogLevel:                "warn",
			}},
		{name: "bad number", args: []string{"cmd", "-t", "week"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}
			if tt.preset != nil {
				*config = *tt.preset
			}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
