package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/storage/postgres"
)

const (
	ownerTemplateConstraint = "portfolios_owner_template_key"

	portfolioColumns = `id, owner_id, template_kind, default_slug, custom_slug,
       content, is_public, view_count, created_at, updated_at`
)

// PortfolioRepository provides persistence operations for portfolios.
// Every held slug also has a row in slug_claims so default and custom slugs
// share one namespace; slug writes touch both tables in one transaction.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row rowScanner) (*domain.Portfolio, error) {
	var p domain.Portfolio
	var customSlug sql.NullString
	var content []byte

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.TemplateKind, &p.DefaultSlug, &customSlug,
		&content, &p.IsPublic, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customSlug.Valid {
		s := customSlug.String
		p.CustomSlug = &s
	}
	p.Content = json.RawMessage(content)
	if len(p.Content) == 0 {
		p.Content = json.RawMessage("{}")
	}
	return &p, nil
}

// Insert stores a new portfolio and claims its slugs.
func (r *PortfolioRepository) Insert(ctx context.Context, p *domain.Portfolio) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
INSERT INTO portfolios (id, owner_id, template_kind, default_slug, custom_slug, content, is_public)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
RETURNING view_count, created_at, updated_at
`, p.ID, p.OwnerID, string(p.TemplateKind), p.DefaultSlug, nullableSlug(p.CustomSlug), contentText(p.Content), p.IsPublic,
	).Scan(&p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify(err)
	}

	if err := claim(ctx, tx, p.DefaultSlug, p.ID, "default"); err != nil {
		return err
	}
	if p.HasCustomSlug() {
		if err := claim(ctx, tx, *p.CustomSlug, p.ID, "custom"); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// GetByID returns a portfolio regardless of visibility.
func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1`, id)
	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// ListByOwner returns all portfolios of one owner, newest first.
func (r *PortfolioRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+portfolioColumns+`
FROM portfolios
WHERE owner_id = $1
ORDER BY created_at DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Portfolio, 0, 8)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return out, nil
}

// Update applies content and visibility changes. Nil fields are left alone.
func (r *PortfolioRepository) Update(ctx context.Context, id string, req domain.UpdatePortfolioRequest) (*domain.Portfolio, error) {
	var content, isPublic any
	if len(req.Content) > 0 {
		content = string(req.Content)
	}
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE portfolios
SET content = COALESCE($2::jsonb, content),
    is_public = COALESCE($3::boolean, is_public),
    updated_at = NOW()
WHERE id = $1
RETURNING `+portfolioColumns, id, content, isPublic)

	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update portfolio: %w", err)
	}
	return p, nil
}

// SetCustomSlug replaces the custom slug, or clears it when slug is nil.
// A slug held by any other portfolio yields domain.ErrSlugTaken.
func (r *PortfolioRepository) SetCustomSlug(ctx context.Context, id string, slug *string) (*domain.Portfolio, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM slug_claims WHERE portfolio_id = $1 AND field = 'custom'`, id); err != nil {
		return nil, fmt.Errorf("failed to release custom slug: %w", err)
	}

	if slug != nil {
		if err := claim(ctx, tx, *slug, id, "custom"); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRowContext(ctx, `
UPDATE portfolios
SET custom_slug = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+portfolioColumns, id, nullableSlug(slug))

	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// Delete removes a portfolio; its slug claims go with it.
func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SlugTaken reports whether any portfolio other than excludeID holds slug in
// either slug column. An empty excludeID excludes nothing.
func (r *PortfolioRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM portfolios
    WHERE (default_slug = $1 OR custom_slug = $1)
      AND ($2 = '' OR id::text <> $2)
)
`, slug, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return taken, nil
}

// FindPublicBySlug returns the public portfolio holding slug in either
// column, preferring a custom-slug match.
func (r *PortfolioRepository) FindPublicBySlug(ctx context.Context, slug string) (*domain.Portfolio, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+portfolioColumns+`
FROM portfolios
WHERE (custom_slug = $1 OR default_slug = $1)
  AND is_public = TRUE
ORDER BY (custom_slug = $1) DESC NULLS LAST
LIMIT 1
`, slug)

	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}
	return p, nil
}

// IncrementViews adds n to the view counter without touching updated_at.
func (r *PortfolioRepository) IncrementViews(ctx context.Context, id string, n int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE portfolios SET view_count = view_count + $2 WHERE id = $1`, id, n)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func claim(ctx context.Context, tx *sql.Tx, slug, portfolioID, field string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO slug_claims (slug, portfolio_id, field) VALUES ($1, $2, $3)`,
		slug, portfolioID, field)
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify maps constraint violations onto domain errors: the owner/template
// constraint means a duplicate portfolio, any other unique violation is a slug
// collision, and a foreign key violation means the portfolio was deleted.
func classify(err error) error {
	if postgres.ForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	constraint, ok := postgres.UniqueViolation(err)
	if !ok {
		return err
	}
	if constraint == ownerTemplateConstraint {
		return domain.ErrPortfolioExists
	}
	return fmt.Errorf("%w (%s)", domain.ErrSlugTaken, constraint)
}

func nullableSlug(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func contentText(c []byte) string {
	if len(c) == 0 {
		return "{}"
	}
	return string(c)
}
