package service

import (
	"context"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
)

// ViewCounter records public page views and moves any buffered views to
// durable storage on Flush.
type ViewCounter interface {
	RecordView(ctx context.Context, portfolioID string) error
	Flush(ctx context.Context) (int, error)
}

type viewIncrementer interface {
	IncrementViews(ctx context.Context, id string, n int64) error
}

// DirectViews increments the stored counter on every view.
type DirectViews struct {
	store viewIncrementer
}

func NewDirectViews(store viewIncrementer) *DirectViews {
	return &DirectViews{store: store}
}

func (d *DirectViews) RecordView(ctx context.Context, portfolioID string) error {
	return d.store.IncrementViews(ctx, portfolioID, 1)
}

// Flush has nothing to do; views are written as they happen.
func (d *DirectViews) Flush(context.Context) (int, error) {
	return 0, nil
}

// BufferedViews counts views in Redis and applies them to the store in batches.
type BufferedViews struct {
	buffer *repository.ViewBuffer
	store  viewIncrementer
}

func NewBufferedViews(buffer *repository.ViewBuffer, store viewIncrementer) *BufferedViews {
	return &BufferedViews{buffer: buffer, store: store}
}

func (b *BufferedViews) RecordView(ctx context.Context, portfolioID string) error {
	return b.buffer.Record(ctx, portfolioID)
}

func (b *BufferedViews) Flush(ctx context.Context) (int, error) {
	return b.buffer.Flush(ctx, b.store.IncrementViews)
}
