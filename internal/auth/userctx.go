package auth

import (
	"net/http"

	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WithUser requires an authenticated caller and syncs their profile into the
// users store. It must run after FirebaseAuthMiddleware or HeaderUser.
func WithUser(store users.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		log := logging.FromContext(ctx, logger).With(zap.String("user_id", fuid))

		u, err := store.EnsureUser(ctx, users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetString(CtxDisplayName),
			PhotoURL:    c.GetString(CtxPhotoURL),
		})
		if err != nil {
			log.Error("ensure user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load user"})
			c.Abort()
			return
		}

		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(logging.WithContext(ctx, log))
		c.Next()
	}
}

// Me returns the caller's synced profile.
func Me(c *gin.Context) {
	u := CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}
