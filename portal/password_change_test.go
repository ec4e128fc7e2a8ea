package portal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/credentials"
	"github.com/jrsteele09/go-portal-auth/portal"
	"github.com/jrsteele09/go-portal-auth/portal/portalfake"
	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const temporaryPassword = "SA2025-temp1"

// setupTemporaryLogin leaves the controller waiting for a forced password change
func setupTemporaryLogin(t *testing.T) *testFixture {
	t.Helper()

	f := setupTestFixture(t)
	f.backend.LoginFunc = portalfake.LoginSuccess(loginResponse(testRole))
	state, err := f.ctrl.Submit(context.Background(), testEmail, temporaryPassword)
	require.NoError(t, err)
	require.Equal(t, portal.AuthorizedTemporaryLogin, state)
	return f
}

func TestChangePassword_RequiresTemporaryLogin(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.ctrl.ChangePassword(context.Background(), "x", "NewPass1!", "NewPass1!")
	require.ErrorIs(t, err, portal.ErrNoTemporarySession)
	require.Zero(t, f.backend.TotalCalls())
}

func TestChangePassword_Succeeds(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	ctx := context.Background()
	f := setupTemporaryLogin(t)
	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return &api.ChangePasswordResponse{Message: "ok"}, nil
	}

	state, err := f.ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.NoError(t, err)
	require.Equal(t, portal.ChangeSucceeded, state)
	require.True(t, f.ctrl.MainViewReachable())

	require.Equal(t, []api.ChangePasswordRequest{{
		CurrentPassword:     temporaryPassword,
		NewPassword:         "NewPass1!",
		ConfirmPassword:     "NewPass1!",
		IsTemporaryPassword: true,
	}}, f.backend.ChangePasswordCalls)

	require.True(t, f.view.Has("success"))
	require.False(t, f.view.Busy(portal.PasswordChangeForm))
	require.Equal(t, []time.Duration{2 * time.Second}, f.waits)
	require.Equal(t, []string{testRootPath}, f.nav.Navigated())

	identity, ok := f.store.CurrentIdentity(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-1", identity.Token)
}

func TestChangePassword_RenewedTokenIsPersisted(t *testing.T) {
	ctx := context.Background()
	f := setupTemporaryLogin(t)
	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return &api.ChangePasswordResponse{Token: "tok-2"}, nil
	}

	_, err := f.ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.NoError(t, err)

	identity, ok := f.store.CurrentIdentity(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-2", identity.Token)
	require.Equal(t, testRole, identity.Role)
	require.Equal(t, testEmail, identity.Email)
	require.Equal(t, "Jane Doe", identity.DisplayName)

	mirrored, ok := f.store.MirroredToken(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-2", mirrored)
}

func TestChangePassword_LocalRefusals(t *testing.T) {
	testCases := []struct {
		name        string
		newPassword string
		confirm     string
		expectedErr error
		expectedMsg string
	}{
		{
			name:        "Mismatch",
			newPassword: "NewPass1!",
			confirm:     "NewPass2!",
			expectedErr: portal.ErrPasswordMismatch,
			expectedMsg: portal.PasswordMismatchMessage,
		},
		{
			name:        "Weak",
			newPassword: "abcdefgh",
			confirm:     "abcdefgh",
			expectedErr: portal.ErrWeakPassword,
			expectedMsg: portal.WeakPasswordMessage,
		},
		{
			name:        "Short",
			newPassword: "Abcdefg",
			confirm:     "Abcdefg",
			expectedErr: portal.ErrWeakPassword,
			expectedMsg: portal.WeakPasswordMessage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTemporaryLogin(t)
			callsBefore := f.backend.TotalCalls()

			state, err := f.ctrl.ChangePassword(context.Background(), temporaryPassword, tc.newPassword, tc.confirm)
			require.ErrorIs(t, err, tc.expectedErr)
			require.Equal(t, portal.ChangeFailed, state)
			require.Equal(t, callsBefore, f.backend.TotalCalls())
			require.Equal(t, []string{tc.expectedMsg}, f.view.Errors())
			require.Empty(t, f.nav.Navigated())
			require.False(t, f.ctrl.MainViewReachable())
		})
	}
}

func TestChangePassword_WeakScoreIsBelowThreshold(t *testing.T) {
	require.Equal(t, 40, credentials.Score("abcdefgh"))
	require.Less(t, credentials.Score("abcdefgh"), credentials.MinimumChangeScore)
}

func TestChangePassword_BackendRejection(t *testing.T) {
	ctx := context.Background()
	f := setupTemporaryLogin(t)
	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return nil, api.NewFailure(api.ApplicationError, 400, "Current password is incorrect")
	}

	state, err := f.ctrl.ChangePassword(ctx, "wrong", "NewPass1!", "NewPass1!")
	require.Error(t, err)
	require.Equal(t, portal.ChangeFailed, state)
	require.Equal(t, []string{"Current password is incorrect"}, f.view.Errors())
	require.False(t, f.view.Busy(portal.PasswordChangeForm))
	require.Empty(t, f.nav.Navigated())
	require.Equal(t, portal.AuthorizedTemporaryLogin, f.ctrl.State())

	// a later attempt may still succeed
	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return &api.ChangePasswordResponse{}, nil
	}
	state, err = f.ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.NoError(t, err)
	require.Equal(t, portal.ChangeSucceeded, state)
}

func TestChangePassword_NavigatesWhenWaitInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := setupTestFixture(t, portal.WithWait(func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	f.backend.LoginFunc = portalfake.LoginSuccess(loginResponse(testRole))
	_, err := f.ctrl.Submit(ctx, testEmail, temporaryPassword)
	require.NoError(t, err)

	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		cancel()
		return &api.ChangePasswordResponse{}, nil
	}
	state, err := f.ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.NoError(t, err)
	require.Equal(t, portal.ChangeSucceeded, state)
	require.Equal(t, []string{testRootPath}, f.nav.Navigated())
}

func TestChangePassword_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	f := setupTemporaryLogin(t)
	f.backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return &api.ChangePasswordResponse{}, nil
	}

	_, err := f.ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.NoError(t, err)

	state, err := f.ctrl.ChangePassword(ctx, temporaryPassword, "Another1!", "Another1!")
	require.ErrorIs(t, err, portal.ErrPasswordChanged)
	require.Equal(t, portal.ChangeSucceeded, state)
	require.Len(t, f.backend.ChangePasswordCalls, 1)
	require.Equal(t, []string{testRootPath}, f.nav.Navigated())
}

// switchableScope rejects writes once failWrites is set
type switchableScope struct {
	*session.MemoryScope
	failWrites bool
}

func (s *switchableScope) Store(ctx context.Context, values map[string]string) error {
	if s.failWrites {
		return errors.New("storage unavailable")
	}
	return s.MemoryScope.Store(ctx, values)
}

func TestChangePassword_RenewedTokenNotSaved(t *testing.T) {
	ctx := context.Background()
	durable := &switchableScope{MemoryScope: session.NewMemoryScope()}
	store, err := session.NewStore(durable, session.NewMemoryScope())
	require.NoError(t, err)

	backend := &portalfake.Backend{LoginFunc: portalfake.LoginSuccess(loginResponse(testRole))}
	view := &portalfake.View{}
	nav := &portalfake.Navigator{}
	ctrl, err := portal.NewController(backend, store, view, nav, portal.Settings{ExpectedRole: testRole, RootPath: testRootPath})
	require.NoError(t, err)

	_, err = ctrl.Submit(ctx, testEmail, temporaryPassword)
	require.NoError(t, err)

	durable.failWrites = true
	backend.ChangePasswordFunc = func(context.Context, api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
		return &api.ChangePasswordResponse{Token: "tok-2"}, nil
	}

	state, err := ctrl.ChangePassword(ctx, temporaryPassword, "NewPass1!", "NewPass1!")
	require.Error(t, err)
	require.Equal(t, portal.ChangeFailed, state)
	require.Equal(t, []string{portal.SignInAgainMessage}, view.Errors())
	require.Equal(t, portal.Idle, ctrl.State())
	require.False(t, ctrl.MainViewReachable())
	require.Empty(t, nav.Navigated())

	_, ok := store.CurrentIdentity(ctx)
	require.False(t, ok)

	_, err = ctrl.ChangePassword(ctx, "NewPass1!", "Other1!x", "Other1!x")
	require.ErrorIs(t, err, portal.ErrNoTemporarySession)
	require.Len(t, backend.ChangePasswordCalls, 1)
}
