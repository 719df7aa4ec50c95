package service

import (
	"context"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"go.uber.org/zap"
)

const defaultIncrementTimeout = 2 * time.Second

// Resolver maps public identifiers to portfolios. Custom slugs win over
// default slugs and only public portfolios are visible.
type Resolver struct {
	store   Store
	views   ViewCounter
	timeout time.Duration
	logger  *zap.Logger

	pending sync.WaitGroup
}

// NewResolver creates a new resolver. View increments run in the background
// bounded by incrementTimeout.
func NewResolver(store Store, views ViewCounter, incrementTimeout time.Duration, logger *zap.Logger) *Resolver {
	if incrementTimeout <= 0 {
		incrementTimeout = defaultIncrementTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:   store,
		views:   views,
		timeout: incrementTimeout,
		logger:  logger,
	}
}

// Resolve returns the public portfolio reachable under identifier. Missing
// and private portfolios are both domain.ErrNotFound. The returned view
// count already includes this view; recording it never fails the read.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*domain.Resolution, error) {
	identifier = slugs.Normalize(identifier)
	if identifier == "" {
		return nil, domain.ErrNotFound
	}

	p, err := r.store.FindPublicBySlug(ctx, identifier)
	if err != nil {
		return nil, err
	}

	matched := domain.MatchedDefault
	if p.CustomSlug != nil && *p.CustomSlug == identifier {
		matched = domain.MatchedCustom
	}

	r.recordView(ctx, p.ID)
	p.ViewCount++

	return &domain.Resolution{Portfolio: p, MatchedBy: matched}, nil
}

func (r *Resolver) recordView(ctx context.Context, portfolioID string) {
	log := logging.FromContext(ctx, r.logger)
	base := context.WithoutCancel(ctx)

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		ctx, cancel := context.WithTimeout(base, r.timeout)
		defer cancel()

		if err := r.views.RecordView(ctx, portfolioID); err != nil && !isNotFound(err) {
			log.Warn("failed to record view",
				zap.String("portfolio_id", portfolioID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight view increments have finished.
func (r *Resolver) Wait() {
	r.pending.Wait()
}
