package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"whiteboard-service/internal/domain/entity"
	domain "whiteboard-service/internal/domain/repository"
	"whiteboard-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrCacheUnavailable is returned when no cache backend is reachable.
// Batch runs record it as a soft error and queries fall back to live
// computation.
var ErrCacheUnavailable = errors.New("schedule cache unavailable")

// RedisScheduleCache implements repository.ScheduleCache on Redis with
// overwrite-on-write semantics and per-entry TTLs.
type RedisScheduleCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisScheduleCache creates a new schedule cache repository. A nil
// client is tolerated; every read then misses and every write fails soft.
func NewRedisScheduleCache(client *redis.Client, logger logger.Logger) domain.ScheduleCache {
	return &RedisScheduleCache{
		client: client,
		logger: logger,
	}
}

// CacheKey builds the schedule cache key. The schema version suffix keeps
// old-shaped payloads from ever being decoded after a shape change: they
// simply age out under their own keys.
func CacheKey(tier, person string) string {
	return fmt.Sprintf("schedule_%s_%s_%s", sanitize(tier), sanitize(person), entity.SchemaVersion)
}

func sanitize(part string) string {
	part = strings.ToLower(strings.TrimSpace(part))
	return strings.ReplaceAll(part, " ", "-")
}

// Get returns the cached schedule for (tier, person). A missing key and an
// undecodable payload both report a clean miss.
func (c *RedisScheduleCache) Get(ctx context.Context, tier, person string) (*entity.PersonSchedule, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, CacheKey(tier, person)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read: %w", err)
	}

	var schedule entity.PersonSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		c.logger.Warn("Discarding undecodable cache payload", "tier", tier, "person", person, "error", err)
		return nil, false, nil
	}
	return &schedule, true, nil
}

// Put stores a schedule with the given TTL and returns the payload size.
func (c *RedisScheduleCache) Put(ctx context.Context, tier, person string, schedule *entity.PersonSchedule, ttl time.Duration) (int, error) {
	if c.client == nil {
		return 0, ErrCacheUnavailable
	}

	payload, err := json.Marshal(schedule)
	if err != nil {
		return 0, fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, CacheKey(tier, person), payload, ttl).Err(); err != nil {
		return 0, fmt.Errorf("cache write: %w", err)
	}
	return len(payload), nil
}

// BulkMarker is the reserved person slot for whole-tier payloads.
const BulkMarker = "bulk"

// GetBulk returns the whole-tier schedule map.
func (c *RedisScheduleCache) GetBulk(ctx context.Context, tier string) (map[string]*entity.PersonSchedule, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, CacheKey(tier, BulkMarker)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read: %w", err)
	}

	var schedules map[string]*entity.PersonSchedule
	if err := json.Unmarshal(raw, &schedules); err != nil {
		c.logger.Warn("Discarding undecodable bulk payload", "tier", tier, "error", err)
		return nil, false, nil
	}
	return schedules, true, nil
}

// PutBulk stores the whole-tier schedule map.
func (c *RedisScheduleCache) PutBulk(ctx context.Context, tier string, schedules map[string]*entity.PersonSchedule, ttl time.Duration) (int, error) {
	if c.client == nil {
		return 0, ErrCacheUnavailable
	}

	payload, err := json.Marshal(schedules)
	if err != nil {
		return 0, fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, CacheKey(tier, BulkMarker), payload, ttl).Err(); err != nil {
		return 0, fmt.Errorf("cache write: %w", err)
	}
	return len(payload), nil
}
