package cmd

import (
	"errors"
	"fmt"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/export"
	"NYCU-SDC/formbricks-challenge/internal/generate"
	"NYCU-SDC/formbricks-challenge/internal/seed"
	"NYCU-SDC/formbricks-challenge/internal/stack"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (r *root) newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start a local Formbricks instance in docker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := stack.New(r.app.Logger, r.app.Config.Stack)
			if err != nil {
				return err
			}

			info, err := s.Up(cmd.Context())
			if err != nil {
				return err
			}

			printNextSteps(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func (r *root) newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop the local instance and remove its data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := stack.New(r.app.Logger, r.app.Config.Stack)
			if err != nil {
				return err
			}

			err = s.Down(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Formbricks stopped and cleaned up.")
			return err
		},
	}
}

type generateFlags struct {
	provider string
	model    string
	output   string
	surveys  int
	users    int
	seed     uint64
}

func (r *root) newGenerateCommand() *cobra.Command {
	flags := generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate surveys, users and responses into a data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := r.app.Config
			if !cmd.Flags().Changed("output") {
				flags.output = cfg.DataFile
			}
			if !cmd.Flags().Changed("surveys") {
				flags.surveys = cfg.Generate.Surveys
			}
			if !cmd.Flags().Changed("users") {
				flags.users = cfg.Generate.Users
			}
			if flags.model == "" {
				flags.model = generate.DefaultModel(flags.provider)
			}

			source, err := generate.NewSource(cmd.Context(), flags.provider, flags.model, flags.seed, generate.SourceConfig{
				OpenAIAPIKey:  cfg.Generate.OpenAIAPIKey,
				OpenAIBaseURL: cfg.Generate.OpenAIBaseURL,
				OllamaURL:     cfg.Generate.OllamaURL,
				GeminiAPIKey:  cfg.Generate.GeminiAPIKey,
			})
			if err != nil {
				return err
			}

			r.app.Logger.Info("Generating data", zap.String("provider", flags.provider), zap.String("model", flags.model))
			data, err := generate.NewGenerator(r.app.Logger, source, r.app.Validator).Run(cmd.Context(), generate.Params{
				Provider: flags.provider,
				Model:    flags.model,
				Surveys:  flags.surveys,
				Users:    flags.users,
			})
			if err != nil {
				return err
			}

			err = generate.WriteFile(flags.output, data)
			if err != nil {
				return err
			}

			printGenerated(cmd.OutOrStdout(), flags.output, data)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.provider, "provider", generate.ProviderOpenAI, "generation provider: openai, ollama, gemini or faker")
	cmd.Flags().StringVar(&flags.model, "model", "", "model name, defaults per provider")
	cmd.Flags().StringVar(&flags.output, "output", "", "output file (default from settings)")
	cmd.Flags().IntVar(&flags.surveys, "surveys", 0, "number of surveys (default from settings)")
	cmd.Flags().IntVar(&flags.users, "users", 0, "number of users (default from settings)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed for the faker provider, 0 picks one")

	return cmd
}

func (r *root) newSeedCommand() *cobra.Command {
	var configPath, dataPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Push generated data into Formbricks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := r.app.Config
			if !cmd.Flags().Changed("config") {
				configPath = cfg.CredentialsFile
			}
			if !cmd.Flags().Changed("data-file") {
				dataPath = cfg.DataFile
			}

			summary, err := seed.Seed(cmd.Context(), r.app.Logger, seed.Params{
				ConfigPath:     configPath,
				DataPath:       dataPath,
				RequestDelay:   cfg.RequestDelay,
				RequestTimeout: cfg.RequestTimeout,
				Validator:      r.app.Validator,
				NewPlatform:    r.app.NewPlatform,
			})
			if errors.Is(err, internal.ErrSeedInterrupted) {
				printSummary(cmd.OutOrStdout(), summary, false)
				return err
			}
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary, true)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "credentials file (default from settings)")
	cmd.Flags().StringVar(&dataPath, "data-file", "", "generated data file (default from settings)")

	return cmd
}

func (r *root) newExportCommand() *cobra.Command {
	var dataPath, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write generated data to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("data-file") {
				dataPath = r.app.Config.DataFile
			}

			data, err := seed.LoadData(dataPath)
			if err != nil {
				return err
			}

			err = export.NewExporter(r.app.Logger).Write(output, data)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Workbook saved to: %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVar(&dataPath, "data-file", "", "generated data file (default from settings)")
	cmd.Flags().StringVar(&output, "output", "generated_data.xlsx", "workbook path")

	return cmd
}
