package main

import (
	"net/url"

	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/jrsteele09/go-portal-auth/portal"
	"github.com/spf13/cobra"
)

// statusConfig holds configuration for the status command.
type statusConfig struct {
	logout bool
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the stored session with the backend",
		Long: `Check a stored session the way the portal does when it starts: a
session the backend still accepts is resumed, anything else is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRevalidate(cmd, opts, cfg.logout)
		},
	}

	cmd.Flags().BoolVar(&cfg.logout, "logout", false, "send the logout signal instead of checking the session")

	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRevalidate(cmd, opts, true)
		},
	}
}

// startLocation is where the portal opens, carrying the logout signal when asked
func startLocation(logout bool) *url.URL {
	location := &url.URL{Path: "/login"}
	if logout {
		query := url.Values{}
		query.Set(portal.LogoutParam, "true")
		location.RawQuery = query.Encode()
	}
	return location
}

func runRevalidate(cmd *cobra.Command, opts *rootOptions, logout bool) error {
	app, err := newPortalApp(cmd, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctrl, err := app.controller()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := ctrl.Revalidate(ctx, startLocation(logout))
	if err != nil {
		return err
	}

	switch result {
	case portal.Resumed:
		identity, _ := app.store.CurrentIdentity(ctx)
		app.console.println("Signed in as %s <%s>", identity.DisplayName, identity.Email)
		return nil
	case portal.Cleared:
		if logout {
			app.console.println("Signed out.")
			return nil
		}
		app.console.println("Stored session was rejected and has been cleared.")
		return errors.ErrSessionCleared
	default:
		app.console.println("Not signed in. Run 'portal login'.")
		return errors.ErrNotSignedIn
	}
}
