package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
)

// MemoryRepository keeps portfolios in process memory with the same
// uniqueness rules as the Postgres schema. It backs DB_DRIVER=memory and tests.
type MemoryRepository struct {
	mu         sync.Mutex
	portfolios map[string]*domain.Portfolio
	claims     map[string]string // slug -> portfolio id
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		portfolios: make(map[string]*domain.Portfolio),
		claims:     make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, p *domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.portfolios {
		if existing.OwnerID == p.OwnerID && existing.TemplateKind == p.TemplateKind {
			return domain.ErrPortfolioExists
		}
	}
	if _, held := r.claims[p.DefaultSlug]; held {
		return domain.ErrSlugTaken
	}
	if p.HasCustomSlug() {
		if _, held := r.claims[*p.CustomSlug]; held || *p.CustomSlug == p.DefaultSlug {
			return domain.ErrSlugTaken
		}
	}

	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.ViewCount = 0
	if len(p.Content) == 0 {
		p.Content = json.RawMessage("{}")
	}

	stored := clonePortfolio(p)
	r.portfolios[p.ID] = stored
	r.claims[p.DefaultSlug] = p.ID
	if p.HasCustomSlug() {
		r.claims[*p.CustomSlug] = p.ID
	}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clonePortfolio(p), nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Portfolio, 0, 8)
	for _, p := range r.portfolios {
		if p.OwnerID == ownerID {
			out = append(out, *clonePortfolio(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, req domain.UpdatePortfolioRequest) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if len(req.Content) > 0 {
		p.Content = append(json.RawMessage(nil), req.Content...)
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	p.UpdatedAt = r.now().UTC()
	return clonePortfolio(p), nil
}

func (r *MemoryRepository) SetCustomSlug(_ context.Context, id string, slug *string) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if slug != nil {
		if holder, held := r.claims[*slug]; held && (holder != id || *slug == p.DefaultSlug) {
			return nil, domain.ErrSlugTaken
		}
	}

	if p.HasCustomSlug() {
		delete(r.claims, *p.CustomSlug)
	}
	if slug != nil {
		s := *slug
		p.CustomSlug = &s
		r.claims[s] = id
	} else {
		p.CustomSlug = nil
	}
	p.UpdatedAt = r.now().UTC()
	return clonePortfolio(p), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.claims, p.DefaultSlug)
	if p.HasCustomSlug() {
		delete(r.claims, *p.CustomSlug)
	}
	delete(r.portfolios, id)
	return nil
}

func (r *MemoryRepository) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	holder, held := r.claims[slug]
	if !held {
		return false, nil
	}
	return excludeID == "" || holder != excludeID, nil
}

func (r *MemoryRepository) FindPublicBySlug(_ context.Context, slug string) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, held := r.claims[slug]
	if !held {
		return nil, domain.ErrNotFound
	}
	p := r.portfolios[id]
	if p == nil || !p.IsPublic {
		return nil, domain.ErrNotFound
	}
	return clonePortfolio(p), nil
}

func (r *MemoryRepository) IncrementViews(_ context.Context, id string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ViewCount += n
	return nil
}

func clonePortfolio(p *domain.Portfolio) *domain.Portfolio {
	cp := *p
	if p.CustomSlug != nil {
		s := *p.CustomSlug
		cp.CustomSlug = &s
	}
	cp.Content = append(json.RawMessage(nil), p.Content...)
	return &cp
}
