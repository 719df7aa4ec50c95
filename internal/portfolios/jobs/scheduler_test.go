package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingFlusher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFlusher) Flush(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

func TestScheduler_FlushViewsLogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	ok := &countingFlusher{}
	NewScheduler("@every 1h", ok, zap.New(core)).FlushViews()
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("views flushed").Len())

	failing := &countingFlusher{err: errors.New("redis down")}
	NewScheduler("@every 1h", failing, zap.New(core)).FlushViews()
	assert.Equal(t, 1, logs.FilterMessage("view flush failed").Len())

	busy := &countingFlusher{err: fmt.Errorf("flush: %w", repository.ErrFlushInProgress)}
	NewScheduler("@every 1h", busy, zap.New(core)).FlushViews()
	assert.Equal(t, 1, logs.FilterMessage("view flush skipped, another process is flushing").Len())
	assert.Equal(t, 1, logs.FilterMessage("view flush failed").Len())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	f := &countingFlusher{}
	s := NewScheduler("* * * * * *", f, nil)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return f.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler("not a schedule", &countingFlusher{}, nil)
	assert.Error(t, s.Start())
}
