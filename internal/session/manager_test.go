package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerSecret = "manager-test-secret"

func newTestContext(t *testing.T, cookie *http.Cookie, header string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c.Request = req
	return c, w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	return nil
}

func TestManagerStartsAnonymousSession(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewManager(store, managerSecret, time.Hour, false)

	c, w := newTestContext(t, nil, "")
	sess, err := m.Load(c)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	ck := sessionCookie(w)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	// nothing written yet, so nothing stored
	require.NoError(t, m.Save(context.Background(), sess))
	assert.Equal(t, 0, store.Len())
}

func TestManagerLoadsStoredSessionFromCookieAndHeader(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewManager(store, managerSecret, time.Hour, false)

	stored := New(time.Hour)
	stored.UserID = "user-42"
	require.NoError(t, store.Save(context.Background(), stored))
	token, err := m.Token(stored)
	require.NoError(t, err)

	c, w := newTestContext(t, &http.Cookie{Name: CookieName, Value: token}, "")
	sess, err := m.Load(c)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, sess.ID)
	assert.Equal(t, "user-42", sess.UserID)
	assert.Nil(t, sessionCookie(w), "existing sessions keep their cookie")

	c, _ = newTestContext(t, nil, "Bearer "+token)
	sess, err = m.Load(c)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, sess.ID)
}

func TestManagerReplacesForgedOrStaleToken(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewManager(store, managerSecret, time.Hour, false)

	forged := NewManager(store, "other-secret", time.Hour, false)
	stored := New(time.Hour)
	stored.UserID = "victim"
	require.NoError(t, store.Save(context.Background(), stored))
	forgedToken, err := forged.Token(stored)
	require.NoError(t, err)

	c, w := newTestContext(t, &http.Cookie{Name: CookieName, Value: forgedToken}, "")
	sess, err := m.Load(c)
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, sess.ID)
	assert.False(t, sess.Authenticated())
	assert.NotNil(t, sessionCookie(w))

	// validly signed but deleted from the store (e.g. after logout)
	staleToken, err := m.Token(New(time.Hour))
	require.NoError(t, err)
	c, _ = newTestContext(t, &http.Cookie{Name: CookieName, Value: staleToken}, "")
	sess, err = m.Load(c)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestManagerRenewRotatesIdAndKeepsFlashes(t *testing.T) {
	store := NewMemoryStore(0)
	defer store.Close()
	m := NewManager(store, managerSecret, time.Hour, true)
	ctx := context.Background()

	old := New(time.Hour)
	old.AddFlash(FlashFailure, "carry me")
	require.NoError(t, store.Save(ctx, old))

	c, w := newTestContext(t, nil, "")
	next, err := m.Renew(c, old, "user-7")
	require.NoError(t, err)

	assert.NotEqual(t, old.ID, next.ID)
	assert.Equal(t, "user-7", next.UserID)
	assert.Equal(t, []Flash{{Kind: FlashFailure, Message: "carry me"}}, next.Flashes)
	assert.True(t, next.Dirty())

	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	ck := sessionCookie(w)
	require.NotNil(t, ck)
	assert.True(t, ck.Secure)

	require.NoError(t, m.Save(ctx, next))
	_, err = store.Get(ctx, next.ID)
	assert.NoError(t, err)
}
