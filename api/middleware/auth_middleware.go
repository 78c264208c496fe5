// api/middleware/auth_middleware.go
package middleware

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/session"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/users/login"

// SessionMiddleware loads the caller's session before the handlers run and
// persists it afterwards if anything changed.
func SessionMiddleware(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.Load(c)
		if err != nil {
			customLog.Warnf("SessionMiddleware: Failed to load session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "An unexpected internal server error occurred."})
			return
		}
		SetSession(c, sess)

		c.Next()

		if err := m.Save(c.Request.Context(), CurrentSession(c)); err != nil {
			customLog.Warnf("SessionMiddleware: Failed to save session: %v", err)
		}
	}
}

// IdentityMiddleware resolves the session's user. A user id that no longer
// resolves is dropped from the session.
func IdentityMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil || !sess.Authenticated() {
			c.Next()
			return
		}

		user, err := storage.FindUserByID(c.Request.Context(), db, sess.UserID)
		switch {
		case err == nil:
			SetUser(c, user)
		case errors.Is(err, storage.ErrUserNotFound):
			customLog.Printf("IdentityMiddleware: Session %s names unknown user %s, clearing", sess.ID, sess.UserID)
			sess.ClearUser()
		default:
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. API clients (those sending an
// Authorization header) get a 401; browsers are sent to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		if c.GetHeader("Authorization") != "" {
			_ = c.Error(domain.ErrUnauthorized)
			c.Abort()
			return
		}

		Flash(c, session.FlashDanger, "Please login")
		c.Redirect(http.StatusSeeOther, LoginPath)
		c.Abort()
	}
}
