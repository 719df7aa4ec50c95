package http

import (
	"encoding/json"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/service"
	"go.uber.org/zap"
)

// Handler bundles the dependencies for portfolio HTTP endpoints.
type Handler struct {
	portfolios *service.PortfolioService
	slugs      *service.SlugService
	resolver   *service.Resolver
	logger     *zap.Logger
}

func New(portfolios *service.PortfolioService, slugs *service.SlugService, resolver *service.Resolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		portfolios: portfolios,
		slugs:      slugs,
		resolver:   resolver,
		logger:     logger,
	}
}

type createReq struct {
	TemplateKind string          `json:"template_kind"`
	Title        string          `json:"title"`
	Content      json.RawMessage `json:"content"`
	IsPublic     *bool           `json:"is_public"`
}

type updateReq struct {
	Content  json.RawMessage `json:"content"`
	IsPublic *bool           `json:"is_public"`
}

type slugReq struct {
	Action        string `json:"action"`
	PreferredName string `json:"preferred_name"`
	CustomSlug    string `json:"custom_slug"`
}

type slugResp struct {
	OK            bool    `json:"ok"`
	DefaultSlug   string  `json:"default_slug"`
	CustomSlug    *string `json:"custom_slug"`
	ShareableLink string  `json:"shareable_link"`
}

type conflictResp struct {
	OK                    bool                `json:"ok"`
	Error                 string              `json:"error"`
	TakenSlug             string              `json:"taken_slug"`
	SuggestedAlternatives []domain.Suggestion `json:"suggested_alternatives"`
}

type publicResp struct {
	OK        bool                   `json:"ok"`
	Portfolio domain.PublicPortfolio `json:"portfolio"`
	MatchedBy domain.MatchedBy       `json:"matched_by"`
}

type checkResp struct {
	OK bool `json:"ok"`
	*service.CheckResult
}
