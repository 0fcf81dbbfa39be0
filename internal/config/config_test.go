package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENGINE_ADDR", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.EngineAddr, "no engine address means local-only mode")
	assert.Equal(t, 3*time.Second, cfg.EngineCallTimeout)
	assert.Equal(t, 16, cfg.EnginePoolSize)
	assert.Equal(t, "market_data", cfg.MarketDataChannel)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENGINE_ADDR", "engine:50051")
	t.Setenv("ENGINE_CALL_TIMEOUT", "500ms")
	t.Setenv("ENGINE_POOL_SIZE", "4")
	t.Setenv("MARKET_DATA_CHANNEL", "md.ticks")

	cfg := Load()

	assert.Equal(t, "engine:50051", cfg.EngineAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.EngineCallTimeout)
	assert.Equal(t, 4, cfg.EnginePoolSize)
	assert.Equal(t, "md.ticks", cfg.MarketDataChannel)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("ENGINE_POOL_SIZE", "not-a-number")
	t.Setenv("ENGINE_CALL_TIMEOUT", "-2s")

	cfg := Load()

	assert.Equal(t, 16, cfg.EnginePoolSize)
	assert.Equal(t, 3*time.Second, cfg.EngineCallTimeout)
}
