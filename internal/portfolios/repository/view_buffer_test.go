package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupViewBuffer(t *testing.T) (*ViewBuffer, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewViewBuffer(client), mr
}

func TestViewBuffer_RecordAndPending(t *testing.T) {
	ctx := context.Background()
	buf, _ := setupViewBuffer(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, buf.Record(ctx, "a"))
	}

	n, err := buf.Pending(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = buf.Pending(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestViewBuffer_Flush(t *testing.T) {
	ctx := context.Background()

	t.Run("empty buffer is a no-op", func(t *testing.T) {
		buf, _ := setupViewBuffer(t)
		flushed, err := buf.Flush(ctx, func(context.Context, string, int64) error {
			t.Fatal("apply must not be called")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, flushed)
	})

	t.Run("applies counts and clears snapshot", func(t *testing.T) {
		buf, mr := setupViewBuffer(t)
		require.NoError(t, buf.Record(ctx, "a"))
		require.NoError(t, buf.Record(ctx, "a"))
		require.NoError(t, buf.Record(ctx, "b"))

		applied := map[string]int64{}
		flushed, err := buf.Flush(ctx, func(_ context.Context, id string, n int64) error {
			applied[id] = n
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, flushed)
		assert.Equal(t, map[string]int64{"a": 2, "b": 1}, applied)
		assert.False(t, mr.Exists(pendingViewsKey))
		assert.False(t, mr.Exists(flushingViewsKey))
	})

	t.Run("failed counts are requeued and deleted portfolios dropped", func(t *testing.T) {
		buf, _ := setupViewBuffer(t)
		require.NoError(t, buf.Record(ctx, "ok"))
		require.NoError(t, buf.Record(ctx, "fails"))
		require.NoError(t, buf.Record(ctx, "fails"))
		require.NoError(t, buf.Record(ctx, "gone"))

		boom := errors.New("database unavailable")
		flushed, err := buf.Flush(ctx, func(_ context.Context, id string, _ int64) error {
			switch id {
			case "fails":
				return boom
			case "gone":
				return domain.ErrNotFound
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, flushed)

		n, err := buf.Pending(ctx, "fails")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = buf.Pending(ctx, "gone")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("leftover snapshot is drained first", func(t *testing.T) {
		buf, mr := setupViewBuffer(t)
		mr.HSet(flushingViewsKey, "old", "4")
		require.NoError(t, buf.Record(ctx, "new"))

		applied := map[string]int64{}
		apply := func(_ context.Context, id string, n int64) error {
			applied[id] = n
			return nil
		}

		_, err := buf.Flush(ctx, apply)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"old": 4}, applied)

		_, err = buf.Flush(ctx, apply)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"old": 4, "new": 1}, applied)
	})

	t.Run("concurrent flush leaves the snapshot alone", func(t *testing.T) {
		buf, mr := setupViewBuffer(t)
		mr.HSet(flushingViewsKey, "a", "2")
		require.NoError(t, mr.Set(flushLockKey, "other-process"))

		flushed, err := buf.Flush(ctx, func(context.Context, string, int64) error {
			t.Fatal("apply must not be called while another flush holds the lock")
			return nil
		})
		assert.ErrorIs(t, err, ErrFlushInProgress)
		assert.Equal(t, 0, flushed)
		assert.Equal(t, "2", mr.HGet(flushingViewsKey, "a"))

		mr.Del(flushLockKey)
		applied := map[string]int64{}
		_, err = buf.Flush(ctx, func(_ context.Context, id string, n int64) error {
			applied[id] = n
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"a": 2}, applied)
		assert.False(t, mr.Exists(flushLockKey), "lock is released after the flush")
	})

	t.Run("lock of another process is not released", func(t *testing.T) {
		buf, mr := setupViewBuffer(t)
		require.NoError(t, buf.Record(ctx, "a"))

		_, err := buf.Flush(ctx, func(context.Context, string, int64) error {
			return mr.Set(flushLockKey, "taken-over")
		})
		require.NoError(t, err)
		holder, err := mr.Get(flushLockKey)
		require.NoError(t, err)
		assert.Equal(t, "taken-over", holder)
	})
}
