package portal

import (
	"context"

	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/session"
)

// Backend is the subset of the portal API the controller calls.
// Errors are expected to be *api.Failure values.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	ChangePassword(ctx context.Context, req api.ChangePasswordRequest) (*api.ChangePasswordResponse, error)
	ValidateToken(ctx context.Context) error
}

// SessionStore persists the signed-in identity
type SessionStore interface {
	Persist(ctx context.Context, identity session.Identity) error
	Clear(ctx context.Context) error
	CurrentIdentity(ctx context.Context) (session.Identity, bool)
}

// Form identifies which form a UI signal applies to
type Form int

const (
	LoginForm Form = iota
	PasswordChangeForm
)

func (f Form) String() string {
	if f == PasswordChangeForm {
		return "password_change"
	}
	return "login"
}

// View receives the controller's UI side effects
type View interface {
	// SetBusy disables the form's submit control and shows progress while busy is true
	SetBusy(form Form, busy bool)
	// ShowError surfaces an inline error on the form
	ShowError(form Form, message string)
	// ShowSuccess surfaces an inline success message on the form
	ShowSuccess(form Form, message string)
	// ShowPasswordChange reveals the mandatory password change form in place of the login form
	ShowPasswordChange()
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(path string)
}

var (
	_ Backend      = (*api.Client)(nil)
	_ SessionStore = (*session.Store)(nil)
)
