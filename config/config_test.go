package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddGameFlags(fs, cfg)
	AddClientFlags(fs, cfg)
	AddServerFlags(fs, cfg)
	return fs
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	fs := newFlags(cfg)
	require.NoError(t, fs.Parse(nil))
	BindEnv(fs)

	assert.Equal(t, 0, cfg.Size)
	assert.True(t, cfg.EnforceTurns)
	assert.False(t, cfg.Optimistic)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "ws://localhost:8080/play", cfg.URL)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateClient())
}

func TestEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("MAZERACE_SIZE", "20")
	t.Setenv("MAZERACE_ENFORCE_TURNS", "false")
	t.Setenv("MAZERACE_URL", "ws://example.test/play")

	cfg := &Config{}
	fs := newFlags(cfg)
	require.NoError(t, fs.Parse([]string{"--url", "wss://flag.test/play"}))
	BindEnv(fs)

	assert.Equal(t, 20, cfg.Size)
	assert.False(t, cfg.EnforceTurns)
	assert.Equal(t, "wss://flag.test/play", cfg.URL, "flags win over env")
}

func TestPortFallsBackToPORT(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := &Config{}
	fs := newFlags(cfg)
	require.NoError(t, fs.Parse(nil))
	BindEnv(fs)

	assert.Equal(t, 9090, cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 0}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Port: 80, Size: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{URL: "http://nope"}
	assert.Error(t, cfg.ValidateClient())
}
