package auth

import (
	"strings"

	"github.com/GoSim-25-26J-441/folio-backend/internal/users"
	"github.com/gin-gonic/gin"
)

// Keys under which the authentication middlewares store the caller's
// identity in the gin context.
const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxDisplayName = "display_name"
	CtxPhotoURL    = "photo_url"
	CtxUser        = "user"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context
// This is set by FirebaseAuthMiddleware or HeaderUser
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentUser returns the profile stored by WithUser, or nil.
func CurrentUser(c *gin.Context) *users.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*users.User)
	return u
}
