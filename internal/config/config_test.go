package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "DB_PATH", "STREAMCHAPTERS_TARGET_HOSTS",
		"STREAMCHAPTERS_INTER_JOB_DELAY_MS", "STREAMCHAPTERS_FOCUS_SETTLE_MS", "STREAMCHAPTERS_WRITE_SETTLE_MS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadAppConfigFromEnv()

	assert.Equal(t, "127.0.0.1:8787", cfg.HTTPAddr)
	assert.Equal(t, "./streamchapters.db", cfg.Store.Path)
	assert.Equal(t, DefaultTargetHosts, cfg.Browser.TargetHosts)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.InterJobDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.FocusSettle)
	assert.Equal(t, 300*time.Millisecond, cfg.Timing.WriteSettle)
}

func TestLoadAppConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("STREAMCHAPTERS_TARGET_HOSTS", " example.com , ,stream.local")
	t.Setenv("STREAMCHAPTERS_INTER_JOB_DELAY_MS", "0")
	t.Setenv("STREAMCHAPTERS_WRITE_SETTLE_MS", "-5")
	t.Setenv("STREAMCHAPTERS_HEADLESS", "true")

	cfg := LoadAppConfigFromEnv()

	assert.Equal(t, []string{"example.com", "stream.local"}, cfg.Browser.TargetHosts)
	assert.Equal(t, time.Duration(0), cfg.Timing.InterJobDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Timing.WriteSettle)
	assert.True(t, cfg.Browser.Headless)
}
