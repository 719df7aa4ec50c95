package service

import (
	"context"
	"errors"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/google/uuid"
)

// Store is the persistence contract shared by the Postgres and in-memory
// repositories. Slug writes must report collisions as domain.ErrSlugTaken.
type Store interface {
	Insert(ctx context.Context, p *domain.Portfolio) error
	GetByID(ctx context.Context, id string) (*domain.Portfolio, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Portfolio, error)
	Update(ctx context.Context, id string, req domain.UpdatePortfolioRequest) (*domain.Portfolio, error)
	SetCustomSlug(ctx context.Context, id string, slug *string) (*domain.Portfolio, error)
	Delete(ctx context.Context, id string) error
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	FindPublicBySlug(ctx context.Context, slug string) (*domain.Portfolio, error)
	IncrementViews(ctx context.Context, id string, n int64) error
}

// loadOwned fetches a portfolio and checks that ownerID may modify it.
func loadOwned(ctx context.Context, store Store, ownerID, id string) (*domain.Portfolio, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	p, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
