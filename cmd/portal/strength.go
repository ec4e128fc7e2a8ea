package main

import (
	"github.com/jrsteele09/go-portal-auth/credentials"
	"github.com/jrsteele09/go-portal-auth/internal/config"
	"github.com/spf13/cobra"
)

func newStrengthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "strength [password]",
		Short: "Rate a candidate password",
		Long: `Rate a candidate password the way the password change form does.
The password is prompted for when not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			con := newConsole(cmd.OutOrStdout(), !opts.noColour)
			var password string
			if len(args) == 1 {
				password = args[0]
			} else if password, err = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).ask("Password"); err != nil {
				return err
			}

			con.println("Strength: %s", con.strength(password))
			if credentials.AcceptableForChange(password) {
				con.println("Accepted as a new password.")
			} else {
				con.println("Too weak to be used as a new password.")
			}
			detector := credentials.TemporaryDetector{Prefix: cfg.GetTemporaryPasswordPrefix()}
			if detector.IsTemporary(password) {
				con.println("Looks like a temporary password.")
			}
			return nil
		},
	}
}
