package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 12.0, cfg.BlockInterval)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Hour, cfg.MetadataSyncInterval)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.AdminKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BLOCK_INTERVAL", "6")
	t.Setenv("APY_SWEEP_INTERVAL", "10m")
	t.Setenv("SWEEP_WORKERS", "16")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6.0, cfg.BlockInterval)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 16, cfg.SweepWorkers)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("BLOCK_INTERVAL", "fast")
	t.Setenv("CHAIN_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 12.0, cfg.BlockInterval)
	assert.Equal(t, 30*time.Second, cfg.ChainTimeout)
}
