package cache

import (
	"context"
	"strconv"
	"time"

	"court-booking/internal/pkg/config"
	"court-booking/internal/pkg/errs"
	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	expiryIndexKey = "reservations:expiry"
	eventKeyPrefix = "webhook:event:"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisExpiryIndex keeps pending reservations in a sorted set scored by
// their hold deadline in unix milliseconds.
type RedisExpiryIndex struct {
	client *redis.Client
	key    string
}

func NewRedisExpiryIndex(client *redis.Client, prefix string) *RedisExpiryIndex {
	return &RedisExpiryIndex{client: client, key: prefix + expiryIndexKey}
}

func (r *RedisExpiryIndex) Add(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	err := r.client.ZAdd(ctx, r.key, redis.Z{
		Score:  float64(expiresAt.UnixMilli()),
		Member: id.String(),
	}).Err()
	if err != nil {
		return errs.Wrap(err, "expiry index: add")
	}
	return nil
}

func (r *RedisExpiryIndex) Remove(ctx context.Context, id uuid.UUID) error {
	if err := r.client.ZRem(ctx, r.key, id.String()).Err(); err != nil {
		return errs.Wrap(err, "expiry index: remove")
	}
	return nil
}

// Due returns up to limit ids whose deadline is at or before now, earliest first.
func (r *RedisExpiryIndex) Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	members, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, errs.Wrap(err, "expiry index: due")
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// Not ours; drop it so it stops showing up.
			_ = r.client.ZRem(ctx, r.key, m).Err()
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Sync upserts every entry in one pipeline.
func (r *RedisExpiryIndex) Sync(ctx context.Context, entries []shared.ExpiryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{
			Score:  float64(e.ExpiresAt.UnixMilli()),
			Member: e.ReservationID.String(),
		})
	}
	if err := r.client.ZAdd(ctx, r.key, members...).Err(); err != nil {
		return errs.Wrap(err, "expiry index: sync")
	}
	return nil
}

type RedisEventDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisEventDeduper(client *redis.Client, prefix string, ttl time.Duration) *RedisEventDeduper {
	return &RedisEventDeduper{client: client, prefix: prefix + eventKeyPrefix, ttl: ttl}
}

func (r *RedisEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+eventID).Result()
	if err != nil {
		return false, errs.Wrap(err, "event dedupe: lookup")
	}
	return n > 0, nil
}

// Remember keeps the event id for the TTL. Only call it once the event's
// effects are committed.
func (r *RedisEventDeduper) Remember(ctx context.Context, eventID string) error {
	err := r.client.Set(ctx, r.prefix+eventID, time.Now().UTC().Format(time.RFC3339), r.ttl).Err()
	if err != nil {
		return errs.Wrap(err, "event dedupe: remember")
	}
	return nil
}
