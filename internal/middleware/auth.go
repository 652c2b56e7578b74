package middleware

import (
	"context"
	"net/http"
	"strings"

	"rebuyrnot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session and context keys.
const (
	SessionUserID = "user_id"
	UserIDKey     = "user_id"
)

// UserChecker reports whether a user holds the admin role.
type UserChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// LoadUser puts the signed-in user id in the context. The session cookie wins;
// otherwise a valid bearer token is accepted.
func LoadUser(tokens *services.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserID).(string); ok && id != "" {
			c.Set(UserIDKey, id)
			c.Next()
			return
		}

		if tokens != nil {
			if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
				if claims, err := tokens.Validate(raw); err == nil {
					c.Set(UserIDKey, claims.UserID)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "sign in required",
			})
			return
		}
		c.Next()
	}
}

// AdminRequired 仅管理员可访问. Runs after AuthRequired.
func AdminRequired(checker UserChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.IsAdmin(c.Request.Context(), CurrentUserID(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the signed-in user id, or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
