package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storesync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, "memory", cfg.Lock.Backend)
		assert.Equal(t, 30*time.Minute, cfg.Lock.TTL)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, 3, cfg.Scheduler.MaxConcurrentJobs)
		assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
		assert.Equal(t, 100, cfg.Remote.PageSize)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "0 */15 * * * *", cfg.Scheduler.ImportCron)
		assert.Equal(t, "30 7-59/15 * * * *", cfg.Scheduler.ExportCron)
		assert.Empty(t, cfg.Scheduler.ReferenceCron)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("an empty schedule disables the pass", func(t *testing.T) {
		t.Setenv("STORESYNC_SCHEDULER_EXPORT_CRON", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Scheduler.ExportCron)
	})

	t.Run("loads values from environment variables with STORESYNC prefix", func(t *testing.T) {
		t.Setenv("STORESYNC_APP_NAME", "sync-test")
		t.Setenv("STORESYNC_DATABASE_DRIVER", "sqlite")
		t.Setenv("STORESYNC_DATABASE_PATH", ":memory:")
		t.Setenv("STORESYNC_LOCK_BACKEND", "redis")
		t.Setenv("STORESYNC_REDIS_ADDR", "cache:6380")
		t.Setenv("STORESYNC_SCHEDULER_IMPORT_CRON", "0 */5 * * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sync-test", cfg.App.Name)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.Equal(t, "redis", cfg.Lock.Backend)
		assert.Equal(t, "cache:6380", cfg.Redis.Addr)
		assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.ImportCron)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("STORESYNC_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STORESYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("STORESYNC_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects sampling ratio outside [0, 1]", func(t *testing.T) {
		t.Setenv("STORESYNC_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("a zero sampling ratio is kept", func(t *testing.T) {
		t.Setenv("STORESYNC_TELEMETRY_SAMPLING_RATIO", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		t.Setenv("STORESYNC_LOCK_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock.backend")
	})
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storesync.toml")
	content := `
[app]
env = "staging"

[database]
driver = "sqlite"
path = "/var/lib/storesync/data.db"

[scheduler]
enabled = true
import_cron = "0 */10 * * * *"
export_cron = "30 */10 * * * *"
job_timeout = "5m"

[remote]
timeout = "45s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/storesync/data.db", cfg.Database.Path)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 */10 * * * *", cfg.Scheduler.ImportCron)
	assert.Equal(t, "30 */10 * * * *", cfg.Scheduler.ExportCron)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.JobTimeout)
	assert.Equal(t, 45*time.Second, cfg.Remote.Timeout)

	_, err = LoadFrom(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestProductionValidation(t *testing.T) {
	t.Run("requires database password", func(t *testing.T) {
		t.Setenv("STORESYNC_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("requires redis locks for scheduled production passes", func(t *testing.T) {
		t.Setenv("STORESYNC_APP_ENV", "production")
		t.Setenv("STORESYNC_DATABASE_PASSWORD", "secret")
		t.Setenv("STORESYNC_SCHEDULER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")

		t.Setenv("STORESYNC_LOCK_BACKEND", "redis")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "sync",
		Password: "p@ss word",
		DBName:   "shop",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://sync:p%40ss%20word@db:5433/shop")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "TimeZone=UTC")
}
