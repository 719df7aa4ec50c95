package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxDefaultSlugAttempts = 5
	collisionTokenLength   = 4
	shortSlugTokenLength   = 4

	ruleInvalidContent = "invalid_content"
)

// PortfolioService handles portfolio lifecycle business logic
type PortfolioService struct {
	store  Store
	slugs  *SlugService
	newID  func() string
	logger *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(store Store, slugSvc *SlugService, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		store:  store,
		slugs:  slugSvc,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Create sets up a portfolio for one template kind and assigns its default
// slug. The default slug is derived from the title, else the owner's display
// name, else the local part of their email.
func (s *PortfolioService) Create(ctx context.Context, req domain.CreatePortfolioRequest) (*domain.Portfolio, error) {
	if req.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !req.TemplateKind.Valid() {
		return nil, domain.ErrInvalidTemplate
	}
	if len(req.Content) > 0 && !json.Valid(req.Content) {
		return nil, &domain.ValidationError{Rule: ruleInvalidContent, Message: "content must be valid JSON"}
	}

	log := logging.FromContext(ctx, s.logger)
	base := s.baseSlug(req)
	candidate := base

	for attempt := 1; attempt <= maxDefaultSlugAttempts; attempt++ {
		ok, err := s.slugs.IsAvailable(ctx, candidate, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			candidate = s.withToken(base)
			continue
		}

		p := &domain.Portfolio{
			ID:           s.newID(),
			OwnerID:      req.OwnerID,
			TemplateKind: req.TemplateKind,
			DefaultSlug:  candidate,
			Content:      req.Content,
			IsPublic:     req.IsPublic,
		}

		err = s.store.Insert(ctx, p)
		if err == nil {
			log.Info("portfolio created",
				zap.String("portfolio_id", p.ID),
				zap.String("template_kind", string(p.TemplateKind)),
				zap.String("default_slug", p.DefaultSlug),
			)
			return p, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return nil, err
		}

		log.Debug("default slug collided, retrying",
			zap.String("slug", candidate),
			zap.Int("attempt", attempt),
		)
		candidate = s.withToken(base)
	}

	return nil, fmt.Errorf("failed to assign a default slug after %d attempts", maxDefaultSlugAttempts)
}

// baseSlug picks the default slug source and pads names that are too short.
func (s *PortfolioService) baseSlug(req domain.CreatePortfolioRequest) string {
	source := strings.TrimSpace(req.Title)
	if source == "" {
		source = strings.TrimSpace(req.DisplayName)
	}
	if source == "" {
		if local, _, ok := strings.Cut(req.Email, "@"); ok {
			source = local
		}
	}

	base := s.slugs.Generate(source)
	if len(base) < s.slugs.Bounds().Min {
		base = base + "-" + slugs.RandomToken(shortSlugTokenLength)
	}
	return base
}

func (s *PortfolioService) withToken(base string) string {
	if next := s.slugs.Bounds().Suffixed(base, slugs.RandomToken(collisionTokenLength)); next != "" {
		return next
	}
	return slugs.RandomToken(slugs.FallbackTokenLength)
}

// List returns the owner's portfolios, newest first.
func (s *PortfolioService) List(ctx context.Context, ownerID string) ([]domain.Portfolio, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.ListByOwner(ctx, ownerID)
}

// Get returns one of the owner's portfolios.
func (s *PortfolioService) Get(ctx context.Context, ownerID, id string) (*domain.Portfolio, error) {
	return loadOwned(ctx, s.store, ownerID, id)
}

// Update changes content and visibility. Slugs are managed by SlugService.
func (s *PortfolioService) Update(ctx context.Context, ownerID, id string, req domain.UpdatePortfolioRequest) (*domain.Portfolio, error) {
	if len(req.Content) > 0 && !json.Valid(req.Content) {
		return nil, &domain.ValidationError{Rule: ruleInvalidContent, Message: "content must be valid JSON"}
	}
	p, err := loadOwned(ctx, s.store, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, p.ID, req)
}

// Delete removes the portfolio and releases both of its slugs.
func (s *PortfolioService) Delete(ctx context.Context, ownerID, id string) error {
	p, err := loadOwned(ctx, s.store, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p.ID); err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("portfolio deleted", zap.String("portfolio_id", p.ID))
	return nil
}
