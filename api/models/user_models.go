// api/models/user_models.go
package models

import "github.com/Annany2002/opentextbook-backend/internal/core"

// --- User Request Structs ---
// Fields bind from HTML forms and JSON bodies alike. Validation happens in
// the rule sets of the handlers so that every failed rule is reported.

// RegisterRequest defines the registration form
type RegisterRequest struct {
	Username  string `form:"userName" json:"userName"`
	FirstName string `form:"firstName" json:"firstName"`
	LastName  string `form:"lastName" json:"lastName"`
	Birthday  string `form:"birthday" json:"birthday"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password,omitempty"`
	Password2 string `form:"password2" json:"password2,omitempty"`
}

// Form exposes the submitted values to the validation rules.
func (r RegisterRequest) Form() core.Form {
	return core.Form{
		"userName":  r.Username,
		"firstName": r.FirstName,
		"lastName":  r.LastName,
		"birthday":  r.Birthday,
		"email":     r.Email,
		"password":  r.Password,
		"password2": r.Password2,
	}
}

// Echo is the input sent back with a failed form, passwords removed.
func (r RegisterRequest) Echo() RegisterRequest {
	r.Password, r.Password2 = "", ""
	return r
}

// LoginRequest defines the login form. UserName may also hold an email address.
type LoginRequest struct {
	UserName string `form:"userName" json:"userName"`
	Password string `form:"password" json:"password"`
}

// ModifyUserRequest defines the profile modification form
type ModifyUserRequest struct {
	FirstName          string `form:"firstName" json:"firstName"`
	LastName           string `form:"lastName" json:"lastName"`
	Birthday           string `form:"birthday" json:"birthday"`
	CurrentPassword    string `form:"current_password" json:"current_password,omitempty"`
	NewPassword        string `form:"new_password" json:"new_password,omitempty"`
	ConfirmNewPassword string `form:"confirm_new_password" json:"confirm_new_password,omitempty"`
}

func (r ModifyUserRequest) Form() core.Form {
	return core.Form{
		"firstName":            r.FirstName,
		"lastName":             r.LastName,
		"birthday":             r.Birthday,
		"current_password":     r.CurrentPassword,
		"new_password":         r.NewPassword,
		"confirm_new_password": r.ConfirmNewPassword,
	}
}

func (r ModifyUserRequest) Echo() ModifyUserRequest {
	r.CurrentPassword, r.NewPassword, r.ConfirmNewPassword = "", "", ""
	return r
}
