package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordiccms/content-expiry/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
server:
  host: 0.0.0.0
  port: 8070
database:
  host: localhost
  user: expiry
  dbname: content_expiry
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 12, cfg.Expiry.DefaultDurationMonths)
	assert.Equal(t, 30, cfg.Expiry.RangeFilterDays)
	assert.Equal(t, 5*time.Minute, cfg.Expiry.ExclusionCacheTTL)
	assert.Equal(t, "2006-01-02", cfg.Expiry.ExportDateFormat)
	assert.Equal(t, int64(1), cfg.Expiry.SiteID)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := config.Load(writeConfigFile(t, `
server:
  host: 127.0.0.1
  port: 9000
database:
  host: db.internal
  user: expiry
  dbname: content_expiry
expiry:
  default_duration_months: 24
  range_filter_days: 7
  site_id: 3
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Expiry.DefaultDurationMonths)
	assert.Equal(t, 7, cfg.Expiry.RangeFilterDays)
	assert.Equal(t, int64(3), cfg.Expiry.SiteID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("DB_HOST", "env-db")
	t.Setenv("EXPIRY_DEFAULT_DURATION_MONTHS", "36")
	t.Setenv("REDIS_EVENTS_ENABLED", "true")

	cfg, err := config.Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, 36, cfg.Expiry.DefaultDurationMonths)
	assert.True(t, cfg.Redis.Events)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	_, err := config.Load(writeConfigFile(t, `
server:
  host: 0.0.0.0
  port: 8070
database:
  host: localhost
  user: expiry
  dbname: content_expiry
expiry:
  range_filter_days: -1
`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
