package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/pipeline")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{
		"PIPELINE_TIMEZONE", "PIPELINE_PRIVILEGED_ROLES", "PIPELINE_CACHE_TTL",
		"PIPELINE_TICK_INTERVAL", "PIPELINE_SLA_SWEEP_CRON", "PIPELINE_AUDIT_RETENTION",
		"MINIO_ENDPOINT", "CORS_ALLOW_CREDENTIALS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Taipei", cfg.GetPipelineTimezone())
	assert.Equal(t, 5*time.Minute, cfg.GetPipelineCacheTTL())
	assert.Equal(t, time.Hour, cfg.GetPipelineTickInterval())
	assert.Equal(t, "@hourly", cfg.GetSLASweepCron())
	assert.Equal(t, []string{"ADMIN"}, cfg.GetPrivilegedRoles())
	assert.Equal(t, 180*24*time.Hour, cfg.GetAuditRetention())
	assert.False(t, cfg.IsMinIOEnabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PIPELINE_PRIVILEGED_ROLES", "ADMIN, LEAD ,")
	t.Setenv("PIPELINE_CACHE_TTL", "30s")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "LEAD"}, cfg.GetPrivilegedRoles())
	assert.Equal(t, 30*time.Second, cfg.GetPipelineCacheTTL())
	assert.True(t, cfg.IsMinIOEnabled())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("PIPELINE_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.ErrorContains(t, err, "PIPELINE_TIMEZONE")

	setRequired(t)
	t.Setenv("PIPELINE_TIMEZONE", "Asia/Taipei")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
	_, err = Load()
	assert.ErrorContains(t, err, "CORS_ALLOW_CREDENTIALS")

	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}
