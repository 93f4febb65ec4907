//go:build unit

package cache

import (
	"context"
	"testing"
	"time"

	"court-booking/internal/usecase/shared"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestRedisExpiryIndex(t *testing.T) {
	_, client := newMiniredisClient(t)
	idx := NewRedisExpiryIndex(client, "test:")
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	first, second, later := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, idx.Add(ctx, second, now.Add(-time.Minute)))
	require.NoError(t, idx.Add(ctx, first, now.Add(-2*time.Minute)))
	require.NoError(t, idx.Add(ctx, later, now.Add(time.Minute)))

	t.Run("Due returns expired ids earliest first", func(t *testing.T) {
		ids, err := idx.Due(ctx, now, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, ids)
	})

	t.Run("Due honours the limit", func(t *testing.T) {
		ids, err := idx.Due(ctx, now, 1)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first}, ids)
	})

	t.Run("Remove drops the entry", func(t *testing.T) {
		require.NoError(t, idx.Remove(ctx, first))
		ids, err := idx.Due(ctx, now, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{second}, ids)
	})

	t.Run("Sync upserts deadlines", func(t *testing.T) {
		require.NoError(t, idx.Sync(ctx, []shared.ExpiryEntry{
			{ReservationID: later, ExpiresAt: now.Add(-3 * time.Minute)},
		}))
		ids, err := idx.Due(ctx, now, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{later, second}, ids)
	})

	t.Run("Due skips foreign members", func(t *testing.T) {
		require.NoError(t, client.ZAdd(ctx, "test:"+expiryIndexKey, redis.Z{Score: 0, Member: "garbage"}).Err())
		ids, err := idx.Due(ctx, now, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{later, second}, ids)
	})
}

func TestRedisEventDeduper(t *testing.T) {
	s, client := newMiniredisClient(t)
	d := NewRedisEventDeduper(client, "test:", time.Hour)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
	assert.False(t, s.Exists("test:"+eventKeyPrefix+"evt_1"), "lookup must not write")

	require.NoError(t, d.Remember(ctx, "evt_1"))
	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, time.Hour, s.TTL("test:"+eventKeyPrefix+"evt_1"))

	s.FastForward(2 * time.Hour)
	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisUnavailable(t *testing.T) {
	s, client := newMiniredisClient(t)
	s.Close()

	d := NewRedisEventDeduper(client, "test:", time.Hour)
	_, err := d.Seen(context.Background(), "evt_1")
	assert.Error(t, err)
	assert.Error(t, d.Remember(context.Background(), "evt_1"))
}
