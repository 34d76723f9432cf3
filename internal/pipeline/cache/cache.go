// Package cache is a read-through Redis cache in front of the candidate store.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/logger"
)

// DefaultKey holds the serialised candidate list.
const DefaultKey = "pipeline:candidates:v1"

// NewRedisClient connects to the Redis instance named by cfg.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Source serves ListCandidates from Redis and falls through to next on a miss.
type Source struct {
	rdb  redis.Cmdable
	next ports.CandidateSource
	ttl  time.Duration
	key  string
	log  *logger.Logger
}

var (
	_ ports.CandidateSource  = (*Source)(nil)
	_ ports.CacheInvalidator = (*Source)(nil)
)

// NewSource wraps next with a cache entry that lives for ttl.
func NewSource(rdb redis.Cmdable, next ports.CandidateSource, ttl time.Duration, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Discard()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Source{rdb: rdb, next: next, ttl: ttl, key: DefaultKey, log: log}
}

// ListCandidates returns the cached list, loading it from next on a miss.
// Redis failures degrade to a direct read.
func (s *Source) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		var candidates []domain.Candidate
		if jsonErr := json.Unmarshal(raw, &candidates); jsonErr == nil {
			return candidates, nil
		}
		s.log.WithContext(ctx).Warn("discarding undecodable candidate cache entry", "key", s.key)
	case !errors.Is(err, redis.Nil):
		s.log.WithContext(ctx).Warn("candidate cache read failed", "error", err)
	}

	candidates, err := s.next.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(candidates); err == nil {
		if err := s.rdb.Set(ctx, s.key, encoded, s.ttl).Err(); err != nil {
			s.log.WithContext(ctx).Warn("candidate cache write failed", "error", err)
		}
	}
	return candidates, nil
}

// Invalidate drops the cached list.
func (s *Source) Invalidate(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("invalidate candidate cache: %w", err)
	}
	return nil
}
