package http

import (
	"errors"
	"net/http"

	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps service errors onto status codes and JSON bodies.
func (h *Handler) writeError(c *gin.Context, err error) {
	var conflict *domain.ConflictError
	var invalid *domain.ValidationError

	switch {
	case errors.As(err, &conflict):
		suggestions := conflict.Suggestions
		if suggestions == nil {
			suggestions = []domain.Suggestion{}
		}
		c.JSON(http.StatusConflict, conflictResp{
			OK:                    false,
			Error:                 conflict.Error(),
			TakenSlug:             conflict.TakenSlug,
			SuggestedAlternatives: suggestions,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": invalid.Message, "rule": invalid.Rule})
	case errors.Is(err, domain.ErrInvalidTemplate):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error(), "rule": "invalid_template"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": domain.ErrNotFound.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrPortfolioExists), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.logger).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
}
