package domain

import (
	"encoding/json"
	"time"
)

// Portfolio is one published portfolio page owned by a user.
// DefaultSlug is assigned once at creation and never changes; CustomSlug, when
// set, shadows it for public resolution.
type Portfolio struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	TemplateKind TemplateKind    `json:"template_kind"`
	DefaultSlug  string          `json:"default_slug"`
	CustomSlug   *string         `json:"custom_slug,omitempty"`
	Content      json.RawMessage `json:"content"`
	IsPublic     bool            `json:"is_public"`
	ViewCount    int64           `json:"view_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ActiveSlug is the slug the public page is currently reachable under first.
func (p *Portfolio) ActiveSlug() string {
	if p.CustomSlug != nil && *p.CustomSlug != "" {
		return *p.CustomSlug
	}
	return p.DefaultSlug
}

// HasCustomSlug reports whether the portfolio is in the custom-slug state.
func (p *Portfolio) HasCustomSlug() bool {
	return p.CustomSlug != nil && *p.CustomSlug != ""
}

// PublicPortfolio is the projection served on the unauthenticated read path.
// It leaves out the owner.
type PublicPortfolio struct {
	ID           string          `json:"id"`
	TemplateKind TemplateKind    `json:"template_kind"`
	Slug         string          `json:"slug"`
	DefaultSlug  string          `json:"default_slug"`
	CustomSlug   *string         `json:"custom_slug,omitempty"`
	Content      json.RawMessage `json:"content"`
	ViewCount    int64           `json:"view_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Public builds the public projection of p.
func (p *Portfolio) Public() PublicPortfolio {
	return PublicPortfolio{
		ID:           p.ID,
		TemplateKind: p.TemplateKind,
		Slug:         p.ActiveSlug(),
		DefaultSlug:  p.DefaultSlug,
		CustomSlug:   p.CustomSlug,
		Content:      p.Content,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// MatchedBy names the slug field that produced a public resolution.
type MatchedBy string

const (
	MatchedCustom  MatchedBy = "custom"
	MatchedDefault MatchedBy = "default"
)

// Resolution is the outcome of resolving a public identifier.
type Resolution struct {
	Portfolio *Portfolio
	MatchedBy MatchedBy
}

// CreatePortfolioRequest carries what an owner supplies at first-time setup.
type CreatePortfolioRequest struct {
	OwnerID      string
	TemplateKind TemplateKind
	Title        string
	DisplayName  string
	Email        string
	Content      json.RawMessage
	IsPublic     bool
}

// UpdatePortfolioRequest carries optional content and visibility changes.
type UpdatePortfolioRequest struct {
	Content  json.RawMessage
	IsPublic *bool
}
