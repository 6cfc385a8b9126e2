package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("EXPLAIN_STORE_PATH", "")
	t.Setenv("EXPLAIN_MAX_INPUT_BYTES", "")
	t.Setenv("EXPLAIN_DEBUG", "")

	cfg := FromEnv()
	assert.Equal(t, "", cfg.StorePath)
	assert.Equal(t, DefaultMaxInputBytes, cfg.MaxInputBytes)
	assert.False(t, cfg.Debug)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EXPLAIN_STORE_PATH", "/srv/manpages")
	t.Setenv("EXPLAIN_MAX_INPUT_BYTES", "4096")
	t.Setenv("EXPLAIN_DEBUG", "true")

	cfg := FromEnv()
	assert.Equal(t, "/srv/manpages", cfg.StorePath)
	assert.Equal(t, 4096, cfg.MaxInputBytes)
	assert.True(t, cfg.Debug)
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("EXPLAIN_MAX_INPUT_BYTES", "not-a-number")
	t.Setenv("EXPLAIN_DEBUG", "maybe")

	cfg := FromEnv()
	assert.Equal(t, DefaultMaxInputBytes, cfg.MaxInputBytes)
	assert.False(t, cfg.Debug)
}
