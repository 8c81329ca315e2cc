package seed

import (
	"context"
	"time"

	"NYCU-SDC/formbricks-challenge/internal/formbricks"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Params struct {
	ConfigPath     string
	DataPath       string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	Validator      *validator.Validate

	// NewPlatform overrides the Formbricks client; used by tests.
	NewPlatform func(creds Credentials) (Platform, func())
}

// Seed loads the configuration and the generated data, then pushes the data
// through a Formbricks client scoped to this call. Missing or invalid input
// files are returned as errors, and so is an interrupted run, together with
// what was seeded before ctx ended.
func Seed(ctx context.Context, logger *zap.Logger, params Params) (Summary, error) {
	creds, err := LoadCredentials(params.ConfigPath, params.Validator)
	if err != nil {
		return Summary{}, err
	}

	data, err := LoadData(params.DataPath)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("Loaded generated data",
		zap.String("path", params.DataPath),
		zap.Int("surveys", len(data.Surveys)),
		zap.Int("responses", len(data.Responses)),
		zap.Int("users", len(data.Users)),
	)

	newPlatform := params.NewPlatform
	if newPlatform == nil {
		newPlatform = func(creds Credentials) (Platform, func()) {
			client := formbricks.NewClient(logger, creds.BaseURL, creds.APIKey, creds.EnvironmentID,
				formbricks.WithTimeout(params.RequestTimeout),
				formbricks.WithMapper(survey.NewMapper(params.Validator)),
			)
			return client, client.Close
		}
	}

	platform, release := newPlatform(creds)
	defer release()

	runner := NewRunner(logger, platform, params.RequestDelay)
	return runner.Run(ctx, data)
}
