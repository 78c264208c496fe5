// Package render turns handler results into responses. Views are named the
// way the page templates are; the JSON renderer writes the view model as is.
package render

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/session"
)

// View is a named view model.
type View struct {
	Name     string              `json:"view"`
	Data     gin.H               `json:"data,omitempty"`
	Messages map[string][]string `json:"messages"`
	User     *domain.User        `json:"user,omitempty"`
}

// Renderer writes a view with the given status.
type Renderer interface {
	Render(c *gin.Context, status int, view View)
}

// NewView builds a view and drains the pending flash messages of sess into it.
func NewView(name string, data gin.H, sess *session.Session, user *domain.User) View {
	messages := map[string][]string{}
	if sess != nil {
		messages = sess.TakeFlashes()
	}
	return View{Name: name, Data: data, Messages: messages, User: user}
}

// JSONRenderer writes views as JSON documents.
type JSONRenderer struct{}

// NewJSONRenderer returns a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(c *gin.Context, status int, view View) {
	c.JSON(status, view)
}
