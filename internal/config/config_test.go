package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("MP_STRING", "value")
	t.Setenv("MP_EMPTY", "")
	t.Setenv("MP_INT", " 42 ")
	t.Setenv("MP_BAD_INT", "forty")
	t.Setenv("MP_FLOAT", "2.5")
	t.Setenv("MP_DURATION", "90s")

	assert.Equal(t, "value", GetEnv("MP_STRING", "default"))
	assert.Equal(t, "default", GetEnv("MP_EMPTY", "default"))
	assert.Equal(t, "default", GetEnv("MP_MISSING", "default"))
	assert.Equal(t, 42, GetIntEnv("MP_INT", 1))
	assert.Equal(t, 1, GetIntEnv("MP_BAD_INT", 1))
	assert.Equal(t, 2.5, GetFloatEnv("MP_FLOAT", 1))
	assert.Equal(t, 90*time.Second, GetDurationEnv("MP_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDurationEnv("MP_MISSING", time.Second))
}

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FEE_QUOTE_RPS", "")
	t.Setenv("IDEMPOTENCY_TTL", "")

	cfg := LoadServer()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10.0, cfg.QuoteRPS)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "staging")
	assert.False(t, IsProduction())
}
