package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"quillpress/internal/access"
	"quillpress/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const SessionUserKey = "user_id"

// LoadUser retrieves the user from the session and sets it on the context.
// Unknown or deactivated users are treated as anonymous.
func LoadUser(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			err := conn.WithContext(c.Request.Context()).First(&user, userID).Error
			switch {
			case err == nil && user.IsActive:
				c.Set(CheckUserKey, &user)
			case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				slog.Error("Failed to load session user", "user_id", userID, "error", err)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Require gates a route on the access table. Anonymous callers of a protected
// action get 401, authenticated callers without the role get 403.
func Require(action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := access.RoleOf(CurrentUser(c))
		if access.Can(role, action) {
			c.Next()
			return
		}
		if role == access.RoleAnonymous {
			abort(c, http.StatusUnauthorized, "permission", "Authentication required")
			return
		}
		abort(c, http.StatusForbidden, "permission", "You do not have permission to perform this action")
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
