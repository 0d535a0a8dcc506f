package main_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ringlist "gregoryjjb/ringlist"
)

func newTestConfig(t *testing.T, flags ringlist.Flags, env map[string]string, toml string) *ringlist.Config {
	t.Helper()

	fs := ringlist.NewMemFS()
	require.NoError(t, afero.WriteFile(fs, "/ringlist.toml", []byte(toml), 0644))

	c, err := ringlist.NewConfig(fs, flags, func(s string) string { return env[s] })
	require.NoError(t, err)

	return c
}

func TestNewConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := ringlist.NewConfig(ringlist.NewMemFS(), ringlist.Flags{}, func(string) string { return "" })
		require.NoError(t, err)

		assert.Equal(t, "", c.Path())
		assert.Equal(t, "127.0.0.1:1225", c.Address())
		assert.Equal(t, ringlist.DefaultHistorySize, c.HistorySize())
		assert.Equal(t, zerolog.InfoLevel, c.LogLevel())
		assert.Empty(t, c.Seed())
	})

	t.Run("File", func(t *testing.T) {
		c := newTestConfig(t, ringlist.Flags{}, nil, `
host = "0.0.0.0"
port = "8080"
seed = ["a", "b", "c"]
history_size = 5
log_level = "debug"
`)

		assert.Equal(t, "/ringlist.toml", c.Path())
		assert.Equal(t, "0.0.0.0:8080", c.Address())
		assert.Equal(t, []string{"a", "b", "c"}, c.Seed())
		assert.Equal(t, 5, c.HistorySize())
		assert.Equal(t, zerolog.DebugLevel, c.LogLevel())
	})

	t.Run("Precedence", func(t *testing.T) {
		c := newTestConfig(t,
			ringlist.Flags{Port: "3000"},
			map[string]string{
				"HOST":      "10.0.0.1",
				"PORT":      "2000",
				"LOG_LEVEL": "warn",
			},
			`
host = "0.0.0.0"
port = "1000"
log_level = "debug"
`)

		assert.Equal(t, "10.0.0.1", c.Host())
		assert.Equal(t, "3000", c.Port())
		assert.Equal(t, zerolog.WarnLevel, c.LogLevel())
	})

	t.Run("HomeDirectory", func(t *testing.T) {
		fs := ringlist.NewMemFS()
		require.NoError(t, afero.WriteFile(fs, "/home/.config/ringlist/ringlist.toml", []byte(`seed = ["x"]`), 0644))

		c, err := ringlist.NewConfig(fs, ringlist.Flags{}, func(string) string { return "" })
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, c.Seed())
	})

	t.Run("SeedIsCopied", func(t *testing.T) {
		c := newTestConfig(t, ringlist.Flags{}, nil, `seed = ["a"]`)
		seed := c.Seed()
		seed[0] = "mutated"
		assert.Equal(t, []string{"a"}, c.Seed())
	})
}

func TestNewConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		flags      ringlist.Flags
		env        map[string]string
		toml       string
		validation bool
	}{
		{name: "missing explicit file", flags: ringlist.Flags{ConfigPath: "/nope.toml"}},
		{name: "bad toml", toml: `port = `},
		{name: "bad port", toml: `port = "http"`, validation: true},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, validation: true},
		{name: "bad log level", toml: `log_level = "loud"`, validation: true},
		{name: "negative history", toml: `history_size = -1`, validation: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := ringlist.NewMemFS()
			require.NoError(t, afero.WriteFile(fs, "/ringlist.toml", []byte(tt.toml), 0644))

			_, err := ringlist.NewConfig(fs, tt.flags, func(s string) string { return tt.env[s] })
			require.Error(t, err)
			if tt.validation {
				assert.ErrorIs(t, err, ringlist.ErrValidation)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	flags, err := ringlist.ParseFlags([]string{"-config", "/etc/ringlist.toml", "-port", "9000", "-version"})
	require.NoError(t, err)

	assert.Equal(t, ringlist.Flags{
		ConfigPath: "/etc/ringlist.toml",
		Port:       "9000",
		Version:    true,
	}, flags)

	_, err = ringlist.ParseFlags([]string{"-bogus"})
	assert.Error(t, err)
}
