// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the candidate list cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq-backed background jobs.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSLASweepCron() string
	GetAuditRetention() time.Duration
	GetAuditCleanupInterval() time.Duration
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketPipelineReports() string
	IsMinIOEnabled() bool
}

// PipelineConfig provides settings for pipeline derivation and the board.
type PipelineConfig interface {
	GetPipelineTimezone() string
	GetPipelineCacheTTL() time.Duration
	GetPipelineTickInterval() time.Duration
	GetSLAPolicyFile() string
	GetPrivilegedRoles() []string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	JWTAccessSecret            string
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	RedisURL                   string
	RedisTLSInsecure           bool
	AsynqQueueName             string
	AsynqConcurrency           int
	SLASweepCron               string
	AuditRetention             time.Duration
	AuditCleanupInterval       time.Duration
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinIOMaxFileSize           int64
	MinioBucketPipelineReports string
	PipelineTimezone           string
	PipelineCacheTTL           time.Duration
	PipelineTickInterval       time.Duration
	SLAPolicyFile              string
	PrivilegedRoles            []string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetSLASweepCron() string   { return c.SLASweepCron }
func (c *Config) GetAuditRetention() time.Duration {
	return c.AuditRetention
}
func (c *Config) GetAuditCleanupInterval() time.Duration {
	return c.AuditCleanupInterval
}

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketPipelineReports() string {
	return c.MinioBucketPipelineReports
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// PipelineConfig implementation
func (c *Config) GetPipelineTimezone() string            { return c.PipelineTimezone }
func (c *Config) GetPipelineCacheTTL() time.Duration     { return c.PipelineCacheTTL }
func (c *Config) GetPipelineTickInterval() time.Duration { return c.PipelineTickInterval }
func (c *Config) GetSLAPolicyFile() string               { return c.SLAPolicyFile }
func (c *Config) GetPrivilegedRoles() []string           { return c.PrivilegedRoles }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		JWTAccessSecret:            getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                   getEnv("REDIS_URL", ""),
		RedisTLSInsecure:           strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:             getEnv("ASYNQ_QUEUE", "pipeline"),
		AsynqConcurrency:           int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "4"))),
		SLASweepCron:               getEnv("PIPELINE_SLA_SWEEP_CRON", "@hourly"),
		AuditRetention:             mustDuration(getEnv("PIPELINE_AUDIT_RETENTION", "4320h")),
		AuditCleanupInterval:       mustDuration(getEnv("PIPELINE_AUDIT_CLEANUP_INTERVAL", "24h")),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:           mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "20971520")),
		MinioBucketPipelineReports: getEnv("MINIO_BUCKET_PIPELINE_REPORTS", "pipeline-reports"),
		PipelineTimezone:           getEnv("PIPELINE_TIMEZONE", "Asia/Taipei"),
		PipelineCacheTTL:           mustDuration(getEnv("PIPELINE_CACHE_TTL", "5m")),
		PipelineTickInterval:       mustDuration(getEnv("PIPELINE_TICK_INTERVAL", "1h")),
		SLAPolicyFile:              getEnv("PIPELINE_SLA_POLICY_FILE", ""),
		PrivilegedRoles:            splitCSV(getEnv("PIPELINE_PRIVILEGED_ROLES", "ADMIN")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if _, err := time.LoadLocation(cfg.PipelineTimezone); err != nil {
		return nil, fmt.Errorf("PIPELINE_TIMEZONE %q is invalid: %w", cfg.PipelineTimezone, err)
	}
	if cfg.PipelineTickInterval <= 0 {
		return nil, fmt.Errorf("PIPELINE_TICK_INTERVAL must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic("invalid duration: " + value)
	}
	return d
}

func mustInt64(value string) int64 {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		panic("invalid integer: " + value)
	}
	return v
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(values []string) bool {
	for _, v := range values {
		if v == "*" {
			return true
		}
	}
	return false
}
