package source

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"timetable-planner/internal/entity"
	"timetable-planner/internal/ledger"
	"timetable-planner/internal/timeslot"
)

// RedisAvailabilityCache wraps a Ledger with a Redis-backed read cache
// for IsAvailable. internal/csp does not call IsAvailable; it reads
// occupancy once through SnapshotInto. Every write invalidates the exact keys it touches rather than
// flushing the whole cache, keeping cold-start cost proportional to
// one run's own bookings.
type RedisAvailabilityCache struct {
	inner ledger.Ledger
	rdb   *redis.Client
	ttl   time.Duration
}

// NewRedisAvailabilityCache wraps inner with a cache backed by rdb.
func NewRedisAvailabilityCache(inner ledger.Ledger, rdb *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisAvailabilityCache{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(kind ledger.ResourceKind, resourceID string, day timeslot.Day, period int) string {
	return fmt.Sprintf("avail:%s:%s:%d:%d", kind, resourceID, day, period)
}

// IsAvailable serves from Redis when the key is present; on a miss (or
// any Redis error) it falls through to the inner ledger and, on
// success, best-effort populates the cache for next time.
func (r *RedisAvailabilityCache) IsAvailable(kind ledger.ResourceKind, resourceID string, day timeslot.Day, period int) bool {
	ctx := context.Background()
	key := cacheKey(kind, resourceID, day, period)

	val, err := r.rdb.Get(ctx, key).Result()
	if err == nil {
		return val == "1"
	}

	available := r.inner.IsAvailable(kind, resourceID, day, period)
	_ = r.rdb.Set(ctx, key, boolFlag(available), r.ttl).Err()
	return available
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Reserve delegates to the inner ledger and invalidates the two keys
// the new booking affects.
func (r *RedisAvailabilityCache) Reserve(a entity.Assignment, faculty, generationID string) error {
	if err := r.inner.Reserve(a, faculty, generationID); err != nil {
		return err
	}
	r.invalidate(a)
	return nil
}

// CommitMany delegates, then invalidates every assignment's keys.
func (r *RedisAvailabilityCache) CommitMany(assignments []entity.Assignment, faculty, generationID string) error {
	if err := r.inner.CommitMany(assignments, faculty, generationID); err != nil {
		return err
	}
	for _, a := range assignments {
		r.invalidate(a)
	}
	return nil
}

// DiscardFaculty delegates, then invalidates every removed entry's key.
func (r *RedisAvailabilityCache) DiscardFaculty(faculty string) []ledger.Entry {
	removed := r.inner.DiscardFaculty(faculty)
	ctx := context.Background()
	for _, e := range removed {
		r.rdb.Del(ctx, cacheKey(e.Kind, e.ResourceID, e.Day, e.Period))
	}
	return removed
}

// SnapshotInto delegates directly; it's a one-shot read at run start,
// not worth caching.
func (r *RedisAvailabilityCache) SnapshotInto(consumer ledger.OccupancyConsumer, excludeFaculty string) {
	r.inner.SnapshotInto(consumer, excludeFaculty)
}

// Entries delegates directly.
func (r *RedisAvailabilityCache) Entries() []ledger.Entry {
	return r.inner.Entries()
}

func (r *RedisAvailabilityCache) invalidate(a entity.Assignment) {
	ctx := context.Background()
	r.rdb.Del(ctx,
		cacheKey(ledger.KindRoom, a.RoomNumber, a.Slot.Day, a.Slot.Period.Index),
		cacheKey(ledger.KindLecturer, a.LecturerID, a.Slot.Day, a.Slot.Period.Index),
	)
}
