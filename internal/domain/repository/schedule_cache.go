package repository

import (
	"context"
	"time"

	"whiteboard-service/internal/domain/entity"
)

// ScheduleCache is the time-boxed store for precomputed PersonSchedules.
// Writes are plain overwrites with a TTL; there is no transaction across
// keys and concurrent writers are last-writer-wins per key, which is
// acceptable because every writer computes from the same source sheets.
type ScheduleCache interface {
	// Get returns the cached schedule for (tier, person), reporting a miss
	// with found=false rather than an error.
	Get(ctx context.Context, tier, person string) (schedule *entity.PersonSchedule, found bool, err error)

	// Put stores a schedule under (tier, person) with the given TTL and
	// returns the serialized payload size in bytes.
	Put(ctx context.Context, tier, person string, schedule *entity.PersonSchedule, ttl time.Duration) (int, error)

	// GetBulk returns the whole-tier map stored under the bulk marker.
	GetBulk(ctx context.Context, tier string) (schedules map[string]*entity.PersonSchedule, found bool, err error)

	// PutBulk stores the whole-tier map under the bulk marker.
	PutBulk(ctx context.Context, tier string, schedules map[string]*entity.PersonSchedule, ttl time.Duration) (int, error)
}
