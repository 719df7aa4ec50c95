package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the unauthenticated routes. extra runs before the
// public page handler (rate limiting).
func (h *Handler) RegisterPublic(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.GET("/templates", h.templates)
	rg.GET("/p/:slug", append(extra, h.resolve)...)
}

// RegisterOwner attaches routes that require an authenticated owner.
func (h *Handler) RegisterOwner(rg *gin.RouterGroup) {
	portfolios := rg.Group("/portfolios")
	portfolios.POST("", h.create)
	portfolios.GET("", h.list)
	portfolios.GET("/:id", h.get)
	portfolios.PATCH("/:id", h.update)
	portfolios.DELETE("/:id", h.delete)
	portfolios.POST("/:id/slug", h.manageSlug)

	tools := rg.Group("/slugs")
	tools.GET("/generate", h.generateSlug)
	tools.GET("/check", h.checkSlug)
	tools.GET("/suggest", h.suggestSlugs)
}
