package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"

	"github.com/redis/go-redis/v9"
)

const candidateKeyPrefix = "colleges:candidates:"

// CollegeFinder is the lookup the cache sits in front of.
type CollegeFinder interface {
	FindColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, error)
}

// CachedStore is a read-through Redis cache over a CollegeFinder. Redis
// errors degrade to a direct lookup; only errors from the wrapped finder are
// returned.
type CachedStore struct {
	next   CollegeFinder
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next CollegeFinder, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-cache"}),
	}
}

func (s *CachedStore) FindColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, error) {
	key, err := CandidateKey(filter)
	if err != nil {
		return s.next.FindColleges(ctx, filter)
	}

	val, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var colleges []models.College
		if jsonErr := json.Unmarshal([]byte(val), &colleges); jsonErr == nil {
			return colleges, nil
		}
		s.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	colleges, err := s.next.FindColleges(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(colleges)
	if err != nil {
		return colleges, nil
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}

	return colleges, nil
}

// Invalidate drops every cached candidate set. Imports call it so new
// cutoffs are visible before the TTL runs out.
func (s *CachedStore) Invalidate(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, candidateKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete cache keys: %w", err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

// CandidateKey derives the cache key from the filter's JSON form.
func CandidateKey(filter models.CollegeFilter) (string, error) {
	data, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return candidateKeyPrefix + hex.EncodeToString(sum[:]), nil
}
