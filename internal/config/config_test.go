package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REPORT_TIMEZONE", "")
	t.Setenv("GOAL_AUTO_COMPLETE", "")
	t.Setenv("TIMER_MAX_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.False(t, cfg.Goal.AutoComplete)
	assert.Equal(t, 7*24*time.Hour, cfg.Timer.MaxInterval)
	assert.Equal(t, time.UTC, cfg.Report.Location)
	assert.Equal(t, 4, cfg.Report.InsightLimit)
	assert.NotEmpty(t, cfg.Database.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("GOAL_AUTO_COMPLETE", "true")
	t.Setenv("TIMER_MAX_INTERVAL", "36h")
	t.Setenv("TIMER_LOCK_TTL", "3")
	t.Setenv("REPORT_TIMEZONE", "Europe/Berlin")
	t.Setenv("REPORT_DAYS", "14")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.True(t, cfg.Goal.AutoComplete)
	assert.Equal(t, 36*time.Hour, cfg.Timer.MaxInterval)
	assert.Equal(t, 3*time.Second, cfg.Timer.LockTTL)
	assert.Equal(t, "Europe/Berlin", cfg.Report.Location.String())
	assert.Equal(t, 14, cfg.Report.Days)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("REPORT_DAYS", "many")
	t.Setenv("BUFFER_BATCH_SIZE", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REPORT_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Report.Days)
	assert.Equal(t, 50, cfg.Buffer.BatchSize)
}
