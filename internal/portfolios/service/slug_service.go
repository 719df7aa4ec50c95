package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SlugAction is one of the owner's slug management commands.
type SlugAction string

const (
	SlugActionCreate SlugAction = "create"
	SlugActionUpdate SlugAction = "update"
	SlugActionRemove SlugAction = "remove"
)

const (
	ruleRequired      = "required"
	ruleSameAsDefault = "same_as_default"
	ruleUnknownAction = "unknown_action"

	suggestConcurrency = 4
)

// SlugCommand is what the owner submits to change a custom slug.
type SlugCommand struct {
	Action        SlugAction
	PreferredName string
	CustomSlug    string
}

// CheckResult describes a candidate slug's format and availability.
type CheckResult struct {
	Slug        string              `json:"slug"`
	Valid       bool                `json:"valid"`
	Rule        string              `json:"rule,omitempty"`
	Available   bool                `json:"available"`
	Suggestions []domain.Suggestion `json:"suggestions,omitempty"`
}

// SlugService implements slug generation, availability, suggestions and the
// custom slug workflow.
type SlugService struct {
	store         Store
	bounds        slugs.Bounds
	publicBaseURL string
	now           func() time.Time
	logger        *zap.Logger
}

// NewSlugService creates a new slug service
func NewSlugService(store Store, bounds slugs.Bounds, publicBaseURL string, logger *zap.Logger) *SlugService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlugService{
		store:         store,
		bounds:        bounds,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		logger:        logger,
	}
}

// Bounds returns the configured length limits.
func (s *SlugService) Bounds() slugs.Bounds {
	return s.bounds
}

// Generate derives a candidate slug from free text.
func (s *SlugService) Generate(raw string) string {
	return s.bounds.Generate(raw)
}

// ValidateFormat returns a *domain.ValidationError naming the violated rule,
// or nil when slug is well formed.
func (s *SlugService) ValidateFormat(slug string) error {
	if err := s.bounds.Validate(slug); err != nil {
		return domain.NewSlugValidationError(err)
	}
	return nil
}

// IsAvailable reports whether no portfolio other than excludeID holds slug
// as its default or custom slug. This is a pre-check only; writes re-verify.
func (s *SlugService) IsAvailable(ctx context.Context, slug, excludeID string) (bool, error) {
	taken, err := s.store.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Suggest lists alternatives for base in their fixed order with availability
// checked against the same exclusion. Checks run concurrently.
func (s *SlugService) Suggest(ctx context.Context, base, excludeID string) ([]domain.Suggestion, error) {
	base = s.bounds.Generate(base)
	candidates := s.bounds.Candidates(base, s.now().Year())
	out := make([]domain.Suggestion, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(suggestConcurrency)
	for i, c := range candidates {
		out[i] = domain.Suggestion{Slug: c.Slug, IsOriginal: c.IsOriginal}
		if s.bounds.Validate(c.Slug) != nil {
			continue
		}
		g.Go(func() error {
			ok, err := s.IsAvailable(gctx, c.Slug, excludeID)
			if err != nil {
				return err
			}
			out[i].Available = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to check suggestions: %w", err)
	}
	return out, nil
}

// Check validates slug and, when it is well formed, reports availability
// with suggestions if it is taken.
func (s *SlugService) Check(ctx context.Context, slug, excludeID string) (*CheckResult, error) {
	slug = slugs.Normalize(slug)
	res := &CheckResult{Slug: slug}

	if err := s.ValidateFormat(slug); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			res.Rule = ve.Rule
		}
		return res, nil
	}
	res.Valid = true

	ok, err := s.IsAvailable(ctx, slug, excludeID)
	if err != nil {
		return nil, err
	}
	res.Available = ok
	if !ok {
		if res.Suggestions, err = s.Suggest(ctx, slug, excludeID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ShareableLink is the public URL of p under its active slug.
func (s *SlugService) ShareableLink(p *domain.Portfolio) string {
	return s.publicBaseURL + "/" + p.ActiveSlug()
}

// Apply runs one slug management command for the owner of portfolioID.
// An unavailable candidate yields a *domain.ConflictError with suggestions.
func (s *SlugService) Apply(ctx context.Context, ownerID, portfolioID string, cmd SlugCommand) (*domain.Portfolio, error) {
	p, err := loadOwned(ctx, s.store, ownerID, portfolioID)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx, s.logger).With(
		zap.String("portfolio_id", p.ID),
		zap.String("action", string(cmd.Action)),
	)

	switch cmd.Action {
	case SlugActionCreate:
		if p.HasCustomSlug() {
			return nil, domain.ErrInvalidTransition
		}
		candidate, err := s.createCandidate(cmd)
		if err != nil {
			return nil, err
		}
		return s.claim(ctx, log, p, candidate)

	case SlugActionUpdate:
		if !p.HasCustomSlug() {
			return nil, domain.ErrInvalidTransition
		}
		candidate, err := s.ownerCandidate(cmd.CustomSlug)
		if err != nil {
			return nil, err
		}
		if candidate == *p.CustomSlug {
			return p, nil
		}
		return s.claim(ctx, log, p, candidate)

	case SlugActionRemove:
		if !p.HasCustomSlug() {
			return nil, domain.ErrInvalidTransition
		}
		updated, err := s.store.SetCustomSlug(ctx, p.ID, nil)
		if err != nil {
			return nil, err
		}
		log.Info("custom slug removed", zap.String("slug", *p.CustomSlug))
		return updated, nil

	default:
		return nil, &domain.ValidationError{
			Rule:    ruleUnknownAction,
			Message: fmt.Sprintf("unknown slug action %q", cmd.Action),
		}
	}
}

func (s *SlugService) createCandidate(cmd SlugCommand) (string, error) {
	if strings.TrimSpace(cmd.CustomSlug) != "" {
		return s.ownerCandidate(cmd.CustomSlug)
	}
	if strings.TrimSpace(cmd.PreferredName) == "" {
		return "", &domain.ValidationError{Rule: ruleRequired, Message: "preferred_name or custom_slug is required"}
	}
	candidate := s.bounds.Generate(cmd.PreferredName)
	if err := s.ValidateFormat(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

func (s *SlugService) ownerCandidate(raw string) (string, error) {
	candidate := slugs.Normalize(raw)
	if candidate == "" {
		return "", &domain.ValidationError{Rule: ruleRequired, Message: "custom_slug is required"}
	}
	if err := s.ValidateFormat(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

func (s *SlugService) claim(ctx context.Context, log *zap.Logger, p *domain.Portfolio, candidate string) (*domain.Portfolio, error) {
	if candidate == p.DefaultSlug {
		return nil, &domain.ValidationError{
			Rule:    ruleSameAsDefault,
			Message: "custom slug must differ from the default slug",
		}
	}

	ok, err := s.IsAvailable(ctx, candidate, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.conflict(ctx, candidate, p.ID)
	}

	updated, err := s.store.SetCustomSlug(ctx, p.ID, &candidate)
	if err != nil {
		if errors.Is(err, domain.ErrSlugTaken) {
			log.Info("custom slug lost race", zap.String("slug", candidate))
			return nil, s.conflict(ctx, candidate, p.ID)
		}
		return nil, err
	}

	log.Info("custom slug set", zap.String("slug", candidate))
	return updated, nil
}

func (s *SlugService) conflict(ctx context.Context, taken, excludeID string) error {
	suggestions, err := s.Suggest(ctx, taken, excludeID)
	if err != nil {
		return err
	}
	return &domain.ConflictError{TakenSlug: taken, Suggestions: suggestions}
}
