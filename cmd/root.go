// Package cmd assembles the railwatch command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/railwatch/railwatch-go/cmd/export"
	"github.com/railwatch/railwatch-go/cmd/remove"
	"github.com/railwatch/railwatch-go/cmd/reopen"
	"github.com/railwatch/railwatch-go/cmd/resolve"
	"github.com/railwatch/railwatch-go/cmd/watch"
	"github.com/railwatch/railwatch-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "railwatch",
		Short: "RailWatch operator client for the railway-defect detection service",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		watch.Command(settings),
		resolve.Command(settings),
		reopen.Command(settings),
		remove.Command(settings),
		export.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags already updated the settings struct in place; re-validate the
		// effective configuration before any subcommand runs.
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags binds the persistent command line flags to the settings struct
// so they take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	flags := rootCmd.PersistentFlags()

	flags.BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	flags.StringVar(&settings.Service.BaseURL, "server", settings.Service.BaseURL, "Detection service base URL")
	flags.IntVar(&settings.Service.PollIntervalMs, "interval", settings.Service.PollIntervalMs, "Defect poll interval in milliseconds")
	flags.IntVar(&settings.Service.TimeoutSec, "timeout", settings.Service.TimeoutSec, "Request timeout in seconds")
	flags.StringVar(&settings.Session.Username, "username", settings.Session.Username, "Operator username")
	flags.StringVar(&settings.Session.Role, "role", settings.Session.Role, "Operator role (admin or stationmaster)")
	flags.StringVar(&settings.Session.Token, "token", settings.Session.Token, "Bearer credential for authenticated calls")
}
