package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const flushTimeout = 30 * time.Second

// ViewFlusher moves buffered view counts to durable storage.
type ViewFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// Scheduler runs the periodic portfolio jobs.
type Scheduler struct {
	cron   *cron.Cron
	views  ViewFlusher
	spec   string
	logger *zap.Logger
}

// NewScheduler creates a scheduler that flushes views on spec, a six-field
// cron expression (seconds first).
func NewScheduler(spec string, views ViewFlusher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		views:  views,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.FlushViews); err != nil {
		return fmt.Errorf("failed to schedule view flush %q: %w", s.spec, err)
	}

	s.logger.Info("cron scheduler started", zap.String("view_flush", s.spec))
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timed out")
	}
}

// FlushViews runs one flush. Failed counts stay buffered for the next run.
func (s *Scheduler) FlushViews() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.views.Flush(ctx)
	if errors.Is(err, repository.ErrFlushInProgress) {
		s.logger.Info("view flush skipped, another process is flushing")
		return
	}
	if err != nil {
		s.logger.Error("view flush failed", zap.Int("flushed", n), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("views flushed", zap.Int("portfolios", n), zap.Duration("took", time.Since(start)))
	}
}
