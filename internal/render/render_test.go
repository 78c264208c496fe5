package render

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/session"
)

func TestNewViewDrainsFlashes(t *testing.T) {
	sess := session.New(time.Hour)
	sess.AddFlash(session.FlashSuccess, "Book successfully created")
	sess.AddFlash(session.FlashSuccess, "Page successfully created")

	view := NewView("books", gin.H{"id": 1}, sess, nil)
	assert.Equal(t, []string{"Book successfully created", "Page successfully created"}, view.Messages[session.FlashSuccess])

	again := NewView("books", nil, sess, nil)
	assert.Empty(t, again.Messages)
}

func TestJSONRenderer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	user := &domain.User{Username: "ada", PasswordHash: "secret"}
	NewJSONRenderer().Render(c, http.StatusUnprocessableEntity, NewView("add_genre", gin.H{"genre": "x"}, nil, user))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "add_genre", body["view"])
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Equal(t, "ada", body["user"].(map[string]any)["userName"])
}
