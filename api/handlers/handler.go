// api/handlers/handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/api/middleware"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/Annany2002/opentextbook-backend/internal/render"
)

var (
	customLog = logger.NewLogger()
)

// page renders view name for the current request.
func page(c *gin.Context, r render.Renderer, name string, data gin.H) {
	r.Render(c, http.StatusOK, middleware.View(c, name, data))
}

// redirect sends the browser on after a successful POST, with a flash.
func redirect(c *gin.Context, kind, message, location string) {
	middleware.Flash(c, kind, message)
	c.Redirect(http.StatusSeeOther, location)
}

// idParam parses the :id path parameter. Anything but an integer names no entity.
func idParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(fmt.Errorf("resource %q %w", raw, domain.ErrNotFound))
		return 0, false
	}
	return id, true
}

// bindForm binds the request body into req, reporting malformed bodies as bind errors.
func bindForm(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		customLog.Warnf("Binding error on %s: %v", c.Request.URL.Path, err)
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}
