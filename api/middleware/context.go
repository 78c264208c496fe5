// api/middleware/context.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/session"
)

var (
	customLog = logger.NewLogger()
)

// Keys of the values the middleware chain stores on the gin context.
const (
	sessionKey   = "session"
	userKey      = "user"
	formViewKey  = "formView"
	formInputKey = "formInput"
	formDataKey  = "formData"
	requestIDKey = "requestId"
)

// CurrentSession returns the request's session. SessionMiddleware guarantees one.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// SetSession replaces the request's session, after a renewal.
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// SetUser binds user to the request.
func SetUser(c *gin.Context, user *domain.User) {
	c.Set(userKey, user)
}

// Flash queues a message on the request's session.
func Flash(c *gin.Context, kind, message string) {
	if sess := CurrentSession(c); sess != nil {
		sess.AddFlash(kind, message)
	}
}

// SetForm names the view a validation failure re-renders, the input it
// echoes and any extra data the view needs.
func SetForm(c *gin.Context, view string, input any, extra gin.H) {
	c.Set(formViewKey, view)
	c.Set(formInputKey, input)
	c.Set(formDataKey, extra)
}

// View builds a view for the current request, draining its flash messages.
func View(c *gin.Context, name string, data gin.H) render.View {
	return render.NewView(name, data, CurrentSession(c), CurrentUser(c))
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
