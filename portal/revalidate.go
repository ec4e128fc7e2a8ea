package portal

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LogoutParam is the query parameter that carries the logout signal
const LogoutParam = "logout"

// Revalidate decides, once at start-up, what to do with a stored session.
// A logout signal in location clears the session before anything else and
// makes no request. Otherwise a stored session for this portal's role is
// probed with the backend: confirmed sessions go straight to the main view,
// rejected ones are cleared so the login form renders.
func (c *Controller) Revalidate(ctx context.Context, location *url.URL) (RevalidateResult, error) {
	if !c.inFlight.TryAcquire(1) {
		return LoginRequired, ErrBusy
	}
	defer c.inFlight.Release(1)

	if HasLogoutSignal(location) {
		log.Info().Msg("logout requested, clearing session")
		c.metrics.Revalidation(Cleared.String())
		if err := c.store.Clear(ctx); err != nil {
			return Cleared, errors.Wrap(err, "[Controller.Revalidate] clear on logout")
		}
		return Cleared, nil
	}

	identity, ok := c.store.CurrentIdentity(ctx)
	if !ok || !identity.HasRole(c.settings.ExpectedRole) {
		c.metrics.Revalidation(LoginRequired.String())
		return LoginRequired, nil
	}

	if session.TokenExpired(identity.Token, c.nowTime()) {
		log.Info().Str("email", identity.Email).Msg("stored session token has expired")
		return c.discard(ctx)
	}

	if err := c.backend.ValidateToken(ctx); err != nil {
		log.Info().Err(err).Str("email", identity.Email).Msg("stored session rejected by backend")
		return c.discard(ctx)
	}

	log.Info().Str("email", identity.Email).Msg("stored session resumed")
	c.setState(AuthorizedFreshLogin, ChangeIdle)
	c.metrics.Revalidation(Resumed.String())
	c.nav.Navigate(c.settings.RootPath)
	return Resumed, nil
}

func (c *Controller) discard(ctx context.Context) (RevalidateResult, error) {
	c.metrics.Revalidation(Cleared.String())
	if err := c.store.Clear(ctx); err != nil {
		return Cleared, errors.Wrap(err, "[Controller.Revalidate] clear stale session")
	}
	return Cleared, nil
}

// HasLogoutSignal reports whether location asks for the session to end.
// "?logout", "?logout=true", "?logout=1" and "?logout=yes" all count.
func HasLogoutSignal(location *url.URL) bool {
	if location == nil {
		return false
	}
	query := location.Query()
	if !query.Has(LogoutParam) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(query.Get(LogoutParam))) {
	case "", "true", "1", "yes":
		return true
	default:
		return false
	}
}
