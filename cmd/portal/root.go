package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	envFile     string
	quiet       bool
	noColour    bool
	metricsFile string
}

// NewRootCmd creates the root command for the portal CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Service Advisor portal sign-in client",
		Long: `Signs in to the Service Advisor portal backend, walks through the
mandatory password change for temporary passwords, and keeps the session
between runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the banner")
	cmd.PersistentFlags().BoolVar(&opts.noColour, "no-color", false, "disable coloured output")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write outcome counters to this file in Prometheus text format")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newStrengthCmd(opts))

	return cmd
}

// loadEnvFile loads the dotenv file if it exists. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
