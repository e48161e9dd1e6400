package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.CountdownDelay)
	assert.Equal(t, 60*time.Second, cfg.RaceDuration)
	assert.Equal(t, 5*time.Second, cfg.TeardownDelay)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.DevLogging)
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "example.com, app.example.com ,")

	cfg := Load()
	assert.Equal(t, []string{"example.com", "app.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("COUNTDOWN_DELAY", "1s")
	t.Setenv("RACE_DURATION", "90s")
	t.Setenv("TEARDOWN_DELAY", "250ms")
	t.Setenv("DEV_LOGGING", "true")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, time.Second, cfg.CountdownDelay)
	assert.Equal(t, 90*time.Second, cfg.RaceDuration)
	assert.Equal(t, 250*time.Millisecond, cfg.TeardownDelay)
	assert.True(t, cfg.DevLogging)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("RACE_DURATION", "not-a-duration")
	t.Setenv("DEV_LOGGING", "not-a-bool")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.RaceDuration)
	assert.False(t, cfg.DevLogging)
}
