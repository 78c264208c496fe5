package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/internal/auth"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
)

// CookieName is the name of the session cookie.
const CookieName = "otb_session"

var customLog = logger.NewLogger()

// Manager ties a Store to the session cookie. The cookie value is a signed
// token naming the session id; the store holds everything else.
type Manager struct {
	store  Store
	secret string
	maxAge time.Duration
	secure bool
}

// NewManager creates a Manager. secure marks the cookie HTTPS-only.
func NewManager(store Store, secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		secret: secret,
		maxAge: maxAge,
		secure: secure,
	}
}

// Load returns the caller's session, starting an anonymous one (and setting
// its cookie) when the request carries no valid session token.
func (m *Manager) Load(c *gin.Context) (*Session, error) {
	if token := tokenFromRequest(c); token != "" {
		sid, err := auth.ValidateSessionToken(token, m.secret)
		if err == nil {
			sess, err := m.store.Get(c.Request.Context(), sid)
			switch {
			case err == nil:
				return sess, nil
			case !errors.Is(err, ErrSessionNotFound):
				return nil, fmt.Errorf("load session: %w", err)
			}
		} else {
			customLog.Debugf("Session: discarding invalid token: %v", err)
		}
	}

	sess := New(m.maxAge)
	sess.dirty = false // not persisted until something is written to it
	if err := m.writeCookie(c, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Renew replaces sess with a fresh session bound to userID (empty for
// anonymous). Pending flash messages are carried over.
func (m *Manager) Renew(c *gin.Context, sess *Session, userID string) (*Session, error) {
	if err := m.store.Delete(c.Request.Context(), sess.ID); err != nil {
		return nil, fmt.Errorf("drop old session: %w", err)
	}

	next := New(m.maxAge)
	next.UserID = userID
	next.Flashes = append(next.Flashes, sess.Flashes...)
	if err := m.writeCookie(c, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Save persists the session when it changed.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if !sess.Dirty() {
		return nil
	}
	return m.store.Save(ctx, sess)
}

// Token returns the signed token for sess, as carried by the cookie.
func (m *Manager) Token(sess *Session) (string, error) {
	return auth.GenerateSessionToken(sess.ID, m.secret, sess.ExpiresAt)
}

func (m *Manager) writeCookie(c *gin.Context, sess *Session) error {
	token, err := m.Token(sess)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", m.secure, true)
	return nil
}

// tokenFromRequest prefers the cookie and falls back to a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
