// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors

	"github.com/Annany2002/opentextbook-backend/internal/auth"
	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Validation failures re-render the submitting form through r.
func ErrorHandler(r render.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request using subsequent handlers
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// We only handle the last error for the response.
		err := c.Errors.Last().Err
		customLog.Debugf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		if c.Writer.Written() {
			customLog.Warnf("[ErrorHandler] Response already written before handling error: %v", err)
			return
		}

		var formErrs core.ValidationErrors
		if errors.As(err, &formErrs) {
			renderForm(c, r, formErrs)
			return
		}

		var statusCode int
		var userMessage string

		switch {
		case errors.Is(err, domain.ErrNotFound):
			statusCode = http.StatusNotFound
			userMessage = err.Error()
		case errors.Is(err, domain.ErrDuplicate),
			errors.Is(err, storage.ErrConstraintViolation):
			statusCode = http.StatusConflict
			userMessage = err.Error()
		case errors.Is(err, domain.ErrUnauthorized),
			errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenInvalid),
			errors.Is(err, auth.ErrTokenClaimsInvalid),
			errors.Is(err, auth.ErrUnexpectedSigningMethod):
			statusCode = http.StatusUnauthorized
			userMessage = "Authentication required."
		case errors.Is(err, auth.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			userMessage = "Session has expired."
		default:
			var bindErrs validator.ValidationErrors
			if errors.As(err, &bindErrs) || c.Errors.Last().IsType(gin.ErrorTypeBind) {
				// Malformed request body that never reached the validation rules
				statusCode = http.StatusBadRequest
				userMessage = "Validation failed. Please check your input."
				for _, fe := range bindErrs {
					customLog.Debugf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
				}
				break
			}
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			customLog.WithField("request_id", RequestID(c)).Errorf("Unhandled error type: %T, Error: %v", err, err)
		}

		c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
	}
}

// renderForm re-renders the view registered with SetForm, with the errors
// and the submitted input. Without a registered view the errors go out as JSON.
func renderForm(c *gin.Context, r render.Renderer, formErrs core.ValidationErrors) {
	formErrs = formErrs.Redact("password", "password2", "current_password", "new_password", "confirm_new_password")
	name := c.GetString(formViewKey)
	if name == "" {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": formErrs})
		return
	}
	data := gin.H{}
	if v, ok := c.Get(formDataKey); ok {
		if extra, ok := v.(gin.H); ok {
			for k, val := range extra {
				data[k] = val
			}
		}
	}
	data["errors"] = formErrs
	data["input"], _ = c.Get(formInputKey)
	r.Render(c, http.StatusUnprocessableEntity, View(c, name, data))
	c.Abort()
}
