package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pendingViewsKey  = "folio:views:pending"    // hash portfolio id -> unflushed views
	flushingViewsKey = "folio:views:flushing"   // snapshot being written to the database
	flushLockKey     = "folio:views:flush-lock" // held by the process draining the snapshot

	flushLockTTL = 5 * time.Minute
)

// ErrFlushInProgress is returned by Flush while another process holds the
// flush lock.
var ErrFlushInProgress = errors.New("view flush already in progress")

var releaseFlushLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ViewBuffer accumulates public page views in Redis so the read path does a
// single HINCRBY instead of a row update. Flush moves them to durable storage.
type ViewBuffer struct {
	client *redis.Client
}

// NewViewBuffer creates a new ViewBuffer
func NewViewBuffer(client *redis.Client) *ViewBuffer {
	return &ViewBuffer{client: client}
}

// Record adds one view for a portfolio.
func (b *ViewBuffer) Record(ctx context.Context, portfolioID string) error {
	if err := b.client.HIncrBy(ctx, pendingViewsKey, portfolioID, 1).Err(); err != nil {
		return fmt.Errorf("failed to buffer view: %w", err)
	}
	return nil
}

// Pending returns the buffered, not yet flushed views of a portfolio.
func (b *ViewBuffer) Pending(ctx context.Context, portfolioID string) (int64, error) {
	n, err := b.client.HGet(ctx, pendingViewsKey, portfolioID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pending views: %w", err)
	}
	return n, nil
}

// Flush snapshots the pending hash and hands each count to apply. Counts that
// apply fails on are put back into the pending hash, except for portfolios
// that no longer exist. It returns the number of portfolios flushed.
//
// Only one process flushes at a time; the others get ErrFlushInProgress and
// leave the snapshot alone.
func (b *ViewBuffer) Flush(ctx context.Context, apply func(ctx context.Context, portfolioID string, n int64) error) (int, error) {
	token := uuid.NewString()
	locked, err := b.client.SetNX(ctx, flushLockKey, token, flushLockTTL).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to take flush lock: %w", err)
	}
	if !locked {
		return 0, ErrFlushInProgress
	}
	defer func() {
		_ = releaseFlushLock.Run(context.WithoutCancel(ctx), b.client, []string{flushLockKey}, token).Err()
	}()

	return b.drain(ctx, apply)
}

func (b *ViewBuffer) drain(ctx context.Context, apply func(ctx context.Context, portfolioID string, n int64) error) (int, error) {
	// A snapshot left behind by an interrupted flush is drained first.
	exists, err := b.client.Exists(ctx, flushingViewsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to inspect view snapshot: %w", err)
	}
	if exists == 0 {
		if err := b.client.Rename(ctx, pendingViewsKey, flushingViewsKey).Err(); err != nil {
			if isNoSuchKey(err) {
				return 0, nil
			}
			return 0, fmt.Errorf("failed to snapshot views: %w", err)
		}
	}

	counts, err := b.client.HGetAll(ctx, flushingViewsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read view snapshot: %w", err)
	}

	flushed := 0
	var firstErr error
	for id, raw := range counts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}

		if err := apply(ctx, id, n); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			if rerr := b.client.HIncrBy(ctx, pendingViewsKey, id, n).Err(); rerr != nil && firstErr == nil {
				firstErr = rerr
			}
			continue
		}
		flushed++
	}

	if err := b.client.Del(ctx, flushingViewsKey).Err(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to clear view snapshot: %w", err)
	}
	return flushed, firstErr
}

func isNoSuchKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no such key")
}
