package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUser trusts identity headers sent by the caller.
// - X-User-Id, X-User-Email, X-User-Name, X-User-Photo
// - A request without X-User-Id stays anonymous.
// Use this ONLY for development/testing (AUTH_MODE=header).
func HeaderUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid != "" {
			c.Set(CtxFirebaseUID, uid)
			c.Set(CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
			c.Set(CtxDisplayName, strings.TrimSpace(c.GetHeader("X-User-Name")))
			c.Set(CtxPhotoURL, strings.TrimSpace(c.GetHeader("X-User-Photo")))
		}

		c.Next()
	}
}
