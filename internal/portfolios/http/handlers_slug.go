package http

import (
	"net/http"
	"strings"

	"github.com/GoSim-25-26J-441/folio-backend/internal/auth"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) manageSlug(c *gin.Context) {
	var req slugReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Action) == "" {
		badBody(c)
		return
	}

	p, err := h.slugs.Apply(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), service.SlugCommand{
		Action:        service.SlugAction(strings.ToLower(strings.TrimSpace(req.Action))),
		PreferredName: req.PreferredName,
		CustomSlug:    req.CustomSlug,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slugResp{
		OK:            true,
		DefaultSlug:   p.DefaultSlug,
		CustomSlug:    p.CustomSlug,
		ShareableLink: h.slugs.ShareableLink(p),
	})
}

func (h *Handler) generateSlug(c *gin.Context) {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "slug": h.slugs.Generate(name)})
}

func (h *Handler) checkSlug(c *gin.Context) {
	slug := c.Query("slug")
	if strings.TrimSpace(slug) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "slug is required"})
		return
	}

	res, err := h.slugs.Check(c.Request.Context(), slug, c.Query("exclude"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkResp{OK: true, CheckResult: res})
}

func (h *Handler) suggestSlugs(c *gin.Context) {
	base := c.Query("base")
	if strings.TrimSpace(base) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "base is required"})
		return
	}

	suggestions, err := h.slugs.Suggest(c.Request.Context(), base, c.Query("exclude"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "suggestions": suggestions})
}
