package http

import (
	"net/http"
	"strings"

	"github.com/GoSim-25-26J-441/folio-backend/internal/auth"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TemplateKind) == "" {
		badBody(c)
		return
	}

	in := domain.CreatePortfolioRequest{
		OwnerID:      auth.UserFirebaseUID(c),
		TemplateKind: domain.TemplateKind(strings.ToLower(strings.TrimSpace(req.TemplateKind))),
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		IsPublic:     true,
	}
	if req.IsPublic != nil {
		in.IsPublic = *req.IsPublic
	}
	if u := auth.CurrentUser(c); u != nil {
		in.DisplayName = u.DisplayName
		in.Email = u.Email
	}

	p, err := h.portfolios.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "portfolio": p, "shareable_link": h.slugs.ShareableLink(p)})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.portfolios.List(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolios": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.portfolios.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "shareable_link": h.slugs.ShareableLink(p)})
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil || (len(req.Content) == 0 && req.IsPublic == nil) {
		badBody(c)
		return
	}

	p, err := h.portfolios.Update(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), domain.UpdatePortfolioRequest{
		Content:  req.Content,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.portfolios.Delete(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) templates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": domain.Templates()})
}

func (h *Handler) resolve(c *gin.Context) {
	res, err := h.resolver.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicResp{
		OK:        true,
		Portfolio: res.Portfolio.Public(),
		MatchedBy: res.MatchedBy,
	})
}
