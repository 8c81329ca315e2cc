package cmd

import (
	"context"

	"NYCU-SDC/formbricks-challenge/internal/config"
	"NYCU-SDC/formbricks-challenge/internal/seed"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App carries what every command needs once settings are loaded.
type App struct {
	Logger    *zap.Logger
	Config    config.Config
	Validator *validator.Validate

	// NewPlatform replaces the Formbricks client used by seed when set.
	NewPlatform func(creds seed.Credentials) (seed.Platform, func())
}

// Setup builds the App from the settings file at path.
type Setup func(ctx context.Context, path string) (*App, error)

type root struct {
	setup        Setup
	settingsPath string
	app          *App
}

// NewRootCommand returns the challenge command tree. setup runs once before
// any subcommand.
func NewRootCommand(setup Setup) *cobra.Command {
	r := &root{setup: setup}

	rootCmd := &cobra.Command{
		Use:           "challenge",
		Short:         "Helpers for the Formbricks hiring challenge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.setup(cmd.Context(), r.settingsPath)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&r.settingsPath, "settings", config.DefaultSettingsFile, "path to the settings file")

	formbricksCmd := &cobra.Command{
		Use:   "formbricks",
		Short: "Run, populate and inspect a local Formbricks instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	formbricksCmd.AddCommand(
		r.newUpCommand(),
		r.newDownCommand(),
		r.newGenerateCommand(),
		r.newSeedCommand(),
		r.newExportCommand(),
	)
	rootCmd.AddCommand(formbricksCmd)

	return rootCmd
}
