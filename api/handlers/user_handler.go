// api/handlers/user_handler.go
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/opentextbook-backend/api/middleware"
	"github.com/Annany2002/opentextbook-backend/api/models"
	"github.com/Annany2002/opentextbook-backend/config"
	"github.com/Annany2002/opentextbook-backend/internal/auth"
	"github.com/Annany2002/opentextbook-backend/internal/content"
	"github.com/Annany2002/opentextbook-backend/internal/core"
	"github.com/Annany2002/opentextbook-backend/internal/domain"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/session"
	"github.com/Annany2002/opentextbook-backend/internal/storage"
)

const (
	msgUsernameAndEmailTaken = "Username and email already taken, please choose different ones"
	msgUsernameTaken         = "Username already taken, please use a different username"
	msgEmailTaken            = "Email is already registered, please use a different email"
	msgInvalidLogin          = "Invalid username or password"
)

const dateLayout = "2006-01-02"

var registerRules = core.Rules{
	core.Check("userName", "Username is required", core.Required()),
	core.Check("userName", "Username should at least be 2 characters long", core.MinLength(2)),
	core.Check("firstName", "Firstname is required", core.Required()),
	core.Check("firstName", "Firstname should at least be 2 characters long", core.MinLength(2)),
	core.Check("lastName", "Lastname is required", core.Required()),
	core.Check("lastName", "Lastname should at least be 2 characters long", core.MinLength(2)),
	core.Check("birthday", "Birthday is required", core.Required()),
	core.Check("birthday", "Birthday is not a valid date", core.Date()),
	core.Check("email", "Email is required", core.Required()),
	core.Check("email", "Email is not valid", core.Email()),
	core.Check("password", "Password is required", core.Required()),
	core.Check("password", "Password must have 8 characters", core.MinLength(8)),
	core.Check("password2", "Passwords do not match", core.EqualsField("password")),
}

var modifyRules = core.Rules{
	core.Check("firstName", "Firstname is required", core.Required()),
	core.Check("firstName", "Firstname should at least be 2 characters long", core.MinLength(2)),
	core.Check("lastName", "Lastname is required", core.Required()),
	core.Check("lastName", "Lastname should at least be 2 characters long", core.MinLength(2)),
	core.Check("birthday", "Birthday is required", core.Required()),
	core.Check("birthday", "Birthday is not a valid date", core.Date()),
	core.Check("current_password", "Current Password is required", core.Required()),
	core.Check("new_password", "Password must have 8 characters", core.MinLength(8)),
	core.Check("confirm_new_password", "Passwords do not match", core.EqualsField("new_password")),
}

// UserHandler holds dependencies for the identity lifecycle handlers.
type UserHandler struct {
	DB       *sql.DB          // Application database
	Cfg      *config.Config   // Application configuration
	Sessions *session.Manager // Session cookie manager
	Content  *content.Service
	Renderer render.Renderer
}

// NewUserHandler creates a new UserHandler with dependencies.
func NewUserHandler(db *sql.DB, cfg *config.Config, sessions *session.Manager, svc *content.Service, r render.Renderer) *UserHandler {
	return &UserHandler{
		DB:       db,
		Cfg:      cfg,
		Sessions: sessions,
		Content:  svc,
		Renderer: r,
	}
}

// RegisterForm renders the registration form.
func (h *UserHandler) RegisterForm(c *gin.Context) {
	page(c, h.Renderer, "register", nil)
}

// Register handles user registration requests.
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindForm(c, &req) {
		return
	}
	middleware.SetForm(c, "register", req.Echo(), nil)

	ctx := c.Request.Context()
	formErrs, err := registerRules.Validate(ctx, req.Form())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(formErrs) > 0 {
		_ = c.Error(formErrs)
		return
	}

	if msg, err := h.takenMessage(ctx, req.Username, req.Email); err != nil {
		_ = c.Error(err)
		return
	} else if msg != "" {
		redirect(c, session.FlashFailure, msg, "/users/register")
		return
	}

	birthday, _ := time.Parse(dateLayout, req.Birthday) // format checked by the rules
	hashedPassword, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		customLog.Warnf("Failed to hash password during registration of %s: %v", req.Username, err)
		_ = c.Error(err)
		return
	}

	user := &domain.User{
		UserId:       uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Birthday:     birthday,
		PasswordHash: hashedPassword,
	}
	if err := storage.CreateUser(ctx, h.DB, user); err != nil {
		// A concurrent registration can still win the race past the checks above
		switch {
		case errors.Is(err, storage.ErrUsernameExists):
			redirect(c, session.FlashFailure, msgUsernameTaken, "/users/register")
		case errors.Is(err, storage.ErrEmailExists):
			redirect(c, session.FlashFailure, msgEmailTaken, "/users/register")
		default:
			customLog.Warnf("Failed to create user %s: %v", req.Username, err)
			_ = c.Error(err)
		}
		return
	}

	customLog.Printf("Successfully registered user %s", user.Username)
	redirect(c, session.FlashSuccess, "You are now registered and can log in", middleware.LoginPath)
}

// takenMessage returns the flash message for a taken username and/or email, or "".
func (h *UserHandler) takenMessage(ctx context.Context, username, email string) (string, error) {
	usernameTaken, err := storage.UsernameExists(ctx, h.DB, username)
	if err != nil {
		return "", err
	}
	emailTaken, err := storage.EmailExists(ctx, h.DB, email)
	if err != nil {
		return "", err
	}
	switch {
	case usernameTaken && emailTaken:
		return msgUsernameAndEmailTaken, nil
	case usernameTaken:
		return msgUsernameTaken, nil
	case emailTaken:
		return msgEmailTaken, nil
	}
	return "", nil
}

// LoginForm renders the login form.
func (h *UserHandler) LoginForm(c *gin.Context) {
	page(c, h.Renderer, "login", nil)
}

// Login verifies the credentials and binds the user to a fresh session.
// Unknown users and wrong passwords get the same answer.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindForm(c, &req) {
		return
	}

	user, err := storage.FindUserByLogin(c.Request.Context(), h.DB, req.UserName)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		_ = c.Error(err)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Login attempt failed for %q", req.UserName)
		redirect(c, session.FlashFailure, msgInvalidLogin, middleware.LoginPath)
		return
	}

	sess, err := h.Sessions.Renew(c, middleware.CurrentSession(c), user.UserId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetSession(c, sess)
	middleware.SetUser(c, user)

	customLog.Printf("User %s logged in", user.Username)
	c.Redirect(http.StatusSeeOther, "/users/profile")
}

// Logout drops the identity by moving the visitor to a fresh anonymous session.
func (h *UserHandler) Logout(c *gin.Context) {
	sess, err := h.Sessions.Renew(c, middleware.CurrentSession(c), "")
	if err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetSession(c, sess)
	middleware.SetUser(c, nil)

	sess.AddFlash(session.FlashSuccess, "You are successfully logged out")
	redirect(c, session.FlashSuccess, "Thanks for using OpenSource TextBook!", middleware.LoginPath)
}

// ModifyForm renders the profile modification form.
func (h *UserHandler) ModifyForm(c *gin.Context) {
	page(c, h.Renderer, "modify", nil)
}

// Modify updates names, birthday and password once the current password checks out.
func (h *UserHandler) Modify(c *gin.Context) {
	var req models.ModifyUserRequest
	if !bindForm(c, &req) {
		return
	}
	middleware.SetForm(c, "modify", req.Echo(), nil)

	ctx := c.Request.Context()
	formErrs, err := modifyRules.Validate(ctx, req.Form())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(formErrs) > 0 {
		_ = c.Error(formErrs)
		return
	}

	user := middleware.CurrentUser(c)
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		redirect(c, session.FlashFailure, "Current password is not equal to your old password", "/users/modify")
		return
	}

	birthday, _ := time.Parse(dateLayout, req.Birthday)
	hashedPassword, err := auth.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := storage.UpdateUserProfile(ctx, h.DB, user.UserId, req.FirstName, req.LastName, birthday, hashedPassword); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("User %s updated their profile", user.Username)
	redirect(c, session.FlashSuccess, "Updated Successfully", middleware.LoginPath)
}

// Profile shows the signed-in user with their books and the access requests they received.
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	books, err := h.Content.ListBooksByAuthor(ctx, user.UserId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	requests, err := h.Content.ListAccessRequestsForAuthor(ctx, user.UserId)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page(c, h.Renderer, "profile", gin.H{"books": books, "requests": requests})
}
