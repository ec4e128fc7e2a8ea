package portal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/credentials"
	"github.com/jrsteele09/go-portal-auth/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// User-facing messages for failures detected before any network call
const (
	MissingCredentialsMessage = "Please enter your email and password."
	PasswordMismatchMessage   = "New passwords do not match."
	WeakPasswordMessage       = "Password is too weak. Use at least 8 characters with a mix of upper and lower case letters, numbers and symbols."
	PasswordChangedMessage    = "Password changed successfully. Redirecting..."
	SessionSaveMessage        = "Unable to save your session. Please try again."
	SignInAgainMessage        = "Your password was changed, but your session could not be saved. Please sign in again with your new password."
)

var (
	ErrBusy               = errors.New("a request is already in progress")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNoTemporarySession = errors.New("password change requires a temporary-password login")
	ErrPasswordChanged    = errors.New("temporary password has already been changed")
	ErrPasswordMismatch   = errors.New("new password and confirmation differ")
	ErrWeakPassword       = errors.New("new password is too weak")
)

// Settings are the portal-specific parameters of the flow
type Settings struct {
	ExpectedRole  string                        // Role the backend must report, compared case-insensitively
	RoleLabel     string                        // Human name of the role for messages; defaults to ExpectedRole
	RootPath      string                        // Portal main view
	RedirectDelay time.Duration                 // Pause after a password change before navigating
	Temporary     credentials.TemporaryDetector // Recognises forced-reset passwords
}

// Controller drives login, the forced password change, and start-up
// revalidation for one portal. Only one request runs at a time; a second
// submission while one is in flight is refused with ErrBusy.
type Controller struct {
	backend  Backend
	store    SessionStore
	view     View
	nav      Navigator
	settings Settings
	metrics  *metrics.Collector
	nowTime  func() time.Time
	wait     func(ctx context.Context, d time.Duration) error

	inFlight *semaphore.Weighted

	mu          sync.RWMutex
	state       State
	changeState ChangeState
}

// ControllerOption modifies a Controller
type ControllerOption func(*Controller)

// WithMetrics records outcomes on c
func WithMetrics(c *metrics.Collector) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.metrics = c
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.nowTime = nowFunc
	}
}

// WithWait replaces the redirect delay wait (primarily for testing)
func WithWait(wait func(ctx context.Context, d time.Duration) error) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.wait = wait
	}
}

// NewController validates its collaborators and returns an Idle controller
func NewController(backend Backend, store SessionStore, view View, nav Navigator, settings Settings, options ...ControllerOption) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("[NewController] backend is required")
	}
	if store == nil {
		return nil, errors.New("[NewController] session store is required")
	}
	if view == nil {
		return nil, errors.New("[NewController] view is required")
	}
	if nav == nil {
		return nil, errors.New("[NewController] navigator is required")
	}
	if strings.TrimSpace(settings.ExpectedRole) == "" {
		return nil, errors.New("[NewController] expected role is required")
	}
	if settings.RootPath == "" {
		return nil, errors.New("[NewController] root path is required")
	}
	if settings.RoleLabel == "" {
		settings.RoleLabel = settings.ExpectedRole
	}

	ctrl := &Controller{
		backend:  backend,
		store:    store,
		view:     view,
		nav:      nav,
		settings: settings,
		nowTime:  time.Now,
		wait:     sleepContext,
		inFlight: semaphore.NewWeighted(1),
	}
	for _, opt := range options {
		opt(ctrl)
	}
	return ctrl, nil
}

// State returns the login flow state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ChangeState returns the password change sub-flow state
func (c *Controller) ChangeState() ChangeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changeState
}

func (c *Controller) states() (State, ChangeState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.changeState
}

// MainViewReachable reports whether the user may enter the portal's main view.
// A temporary-password session only qualifies once its password has been changed.
func (c *Controller) MainViewReachable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == AuthorizedFreshLogin ||
		(c.state == AuthorizedTemporaryLogin && c.changeState == ChangeSucceeded)
}

// RoleMismatchMessage is shown when the account authenticates but is not a portal user
func (c *Controller) RoleMismatchMessage() string {
	return fmt.Sprintf("Access denied. This portal is only available to %s accounts.", c.settings.RoleLabel)
}

// Submit runs the login flow for one credential submission and returns the
// state it ended in. Backend rejections are returned as *api.Failure.
func (c *Controller) Submit(ctx context.Context, email, password string) (State, error) {
	if !c.inFlight.TryAcquire(1) {
		return c.State(), ErrBusy
	}
	defer c.inFlight.Release(1)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		c.view.ShowError(LoginForm, MissingCredentialsMessage)
		return c.State(), ErrMissingCredentials
	}

	c.setState(Submitting, ChangeIdle)
	c.view.SetBusy(LoginForm, true)
	defer c.view.SetBusy(LoginForm, false)

	resp, err := c.backend.Login(ctx, email, password)
	if err != nil {
		return c.reject(email, asFailure(err))
	}

	identity := resp.Identity()
	if !identity.HasRole(c.settings.ExpectedRole) {
		log.Warn().Str("email", email).Str("role", identity.Role).Msg("login rejected: role not permitted for portal")
		return c.reject(email, api.NewFailure(api.AuthorizationMismatch, 0, c.RoleMismatchMessage()))
	}

	if err := c.store.Persist(ctx, identity); err != nil {
		log.Err(err).Str("email", email).Msg("persisting session after login")
		c.view.ShowError(LoginForm, SessionSaveMessage)
		c.setState(Rejected, ChangeIdle)
		c.metrics.Login("rejected")
		return Rejected, errors.Wrap(err, "[Controller.Submit] persist session")
	}

	if c.settings.Temporary.IsTemporary(password) {
		log.Info().Str("email", email).Msg("temporary password login, password change required")
		c.setState(AuthorizedTemporaryLogin, ChangeIdle)
		c.metrics.Login("temporary")
		c.view.ShowPasswordChange()
		return AuthorizedTemporaryLogin, nil
	}

	log.Info().Str("email", email).Msg("login succeeded")
	c.setState(AuthorizedFreshLogin, ChangeIdle)
	c.metrics.Login("fresh")
	c.nav.Navigate(c.settings.RootPath)
	return AuthorizedFreshLogin, nil
}

// ChangePassword runs the mandatory password change after a temporary-password
// login. Mismatched or weak passwords are refused locally without a request.
func (c *Controller) ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) (ChangeState, error) {
	state, change := c.states()
	if state != AuthorizedTemporaryLogin {
		return change, ErrNoTemporarySession
	}
	if change == ChangeSucceeded {
		return change, ErrPasswordChanged
	}
	if !c.inFlight.TryAcquire(1) {
		return c.ChangeState(), ErrBusy
	}
	defer c.inFlight.Release(1)

	if newPassword != confirmPassword {
		return c.refuseChange(PasswordMismatchMessage, ErrPasswordMismatch)
	}
	if !credentials.AcceptableForChange(newPassword) {
		return c.refuseChange(WeakPasswordMessage, ErrWeakPassword)
	}

	c.setChangeState(ChangeSubmitting)
	c.view.SetBusy(PasswordChangeForm, true)
	defer c.view.SetBusy(PasswordChangeForm, false)

	resp, err := c.backend.ChangePassword(ctx, api.ChangePasswordRequest{
		CurrentPassword:     currentPassword,
		NewPassword:         newPassword,
		ConfirmPassword:     confirmPassword,
		IsTemporaryPassword: true,
	})
	if err != nil {
		failure := asFailure(err)
		log.Warn().Str("kind", failure.Kind.String()).Str("message", failure.Message).Msg("password change rejected")
		c.view.ShowError(PasswordChangeForm, failure.Message)
		c.setChangeState(ChangeFailed)
		c.metrics.PasswordChange("failed")
		return ChangeFailed, failure
	}

	if resp.Token != "" {
		if err := c.persistRenewed(ctx, resp); err != nil {
			// the password is changed server-side but the session is gone
			log.Err(err).Msg("persisting renewed session after password change")
			c.view.ShowError(PasswordChangeForm, SignInAgainMessage)
			c.setState(Idle, ChangeFailed)
			c.metrics.PasswordChange("failed")
			return ChangeFailed, errors.Wrap(err, "[Controller.ChangePassword] persist session")
		}
	}

	log.Info().Msg("temporary password changed")
	c.setChangeState(ChangeSucceeded)
	c.metrics.PasswordChange("succeeded")
	c.view.ShowSuccess(PasswordChangeForm, PasswordChangedMessage)

	if err := c.wait(ctx, c.settings.RedirectDelay); err != nil {
		log.Debug().Err(err).Msg("redirect delay interrupted")
	}
	c.nav.Navigate(c.settings.RootPath)
	return ChangeSucceeded, nil
}

// persistRenewed stores a token issued by a password change, keeping any
// identity fields the response left out from the current session
func (c *Controller) persistRenewed(ctx context.Context, resp *api.ChangePasswordResponse) error {
	renewed := resp.Identity()
	current, _ := c.store.CurrentIdentity(ctx)
	if renewed.Role == "" {
		renewed.Role = current.Role
	}
	if renewed.Email == "" {
		renewed.Email = current.Email
	}
	if renewed.DisplayName == "" {
		renewed.DisplayName = current.DisplayName
	}
	return c.store.Persist(ctx, renewed)
}

func (c *Controller) reject(email string, failure *api.Failure) (State, error) {
	log.Warn().Str("email", email).Str("kind", failure.Kind.String()).Str("message", failure.Message).Msg("login rejected")
	c.setState(Rejected, ChangeIdle)
	c.metrics.Login("rejected")
	c.view.ShowError(LoginForm, failure.Message)
	return Rejected, failure
}

func (c *Controller) refuseChange(message string, err error) (ChangeState, error) {
	c.view.ShowError(PasswordChangeForm, message)
	c.setChangeState(ChangeFailed)
	return ChangeFailed, err
}

func (c *Controller) setState(state State, change ChangeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.changeState = change
}

func (c *Controller) setChangeState(change ChangeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeState = change
}

// asFailure keeps user-facing failures as they are and hides anything else
// behind a generic transport failure
func asFailure(err error) *api.Failure {
	var failure *api.Failure
	if errors.As(err, &failure) {
		return failure
	}
	log.Err(err).Msg("unexpected backend error")
	return api.NewFailure(api.TransportFailure, 0, api.UnreachableMessage)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
