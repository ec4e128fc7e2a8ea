package main

import (
	"time"

	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity without contacting the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newPortalApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			identity, ok := app.store.CurrentIdentity(cmd.Context())
			if !ok {
				return errors.ErrNotSignedIn
			}

			app.console.println("Name:  %s", identity.DisplayName)
			app.console.println("Email: %s", identity.Email)
			app.console.println("Role:  %s", identity.Role)
			if session.TokenExpired(identity.Token, time.Now()) {
				app.console.println("%s", app.console.paint(Yellow, "Token has expired, run 'portal status' to clear it."))
			}
			return nil
		},
	}
}
