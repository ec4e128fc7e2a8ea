package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/jrsteele09/go-portal-auth/portal"
	"github.com/spf13/cobra"
)

// loginConfig holds configuration for the login command.
type loginConfig struct {
	email          string
	changeAttempts int
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the portal",
		Long: `Sign in with an email and password. Signing in with a temporary
password continues straight into the mandatory password change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.email, "email", "e", "", "account email, prompted for when empty")
	cmd.Flags().IntVar(&cfg.changeAttempts, "change-attempts", 3, "password change attempts before giving up")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *rootOptions, cfg *loginConfig) error {
	app, err := newPortalApp(cmd, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctrl, err := app.controller()
	if err != nil {
		return err
	}

	in := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	email := cfg.email
	if email == "" {
		if email, err = in.ask("Email"); err != nil {
			return err
		}
	}
	password, err := in.ask("Password")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	state, err := ctrl.Submit(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrLoginFailed, err)
	}

	if state == portal.AuthorizedTemporaryLogin {
		if err := changeTemporaryPassword(ctx, ctrl, in, app.console, password, cfg.changeAttempts); err != nil {
			return err
		}
	}

	app.console.println("Signed in. Continue at %s", app.console.Location())
	return nil
}

// changeTemporaryPassword prompts until the password change succeeds or the
// attempts run out. The temporary password is sent as the current password.
func changeTemporaryPassword(ctx context.Context, ctrl *portal.Controller, in *prompter, con *console, current string, attempts int) error {
	for attempt := 1; attempt <= attempts; attempt++ {
		newPassword, err := in.ask("New password")
		if err != nil {
			return err
		}
		con.println("Strength: %s", con.strength(newPassword))

		confirm, err := in.ask("Confirm new password")
		if err != nil {
			return err
		}

		_, err = ctrl.ChangePassword(ctx, current, newPassword, confirm)
		if err == nil {
			return nil
		}

		var failure *api.Failure
		if errors.Is(err, portal.ErrPasswordMismatch) || errors.Is(err, portal.ErrWeakPassword) || errors.As(err, &failure) {
			continue
		}
		return fmt.Errorf("%w: %w", errors.ErrPasswordChangeFailed, err)
	}
	return errors.Wrapf(errors.ErrPasswordChangeFailed, "gave up after %d attempts", attempts)
}
