package internal

import (
	"errors"
	"fmt"
)

type ErrRecordInvalid struct {
	Kind    string
	Key     string
	Message string
}

func (e ErrRecordInvalid) Error() string {
	return fmt.Sprintf("invalid %s record %q: %s", e.Kind, e.Key, e.Message)
}

func (e ErrRecordInvalid) Unwrap() error {
	return ErrValidationFailed
}

var (
	// Configuration Errors
	ErrConfigNotFound         = errors.New("configuration file not found")
	ErrPlaceholderCredentials = errors.New("configuration file still holds placeholder credentials")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidSettings        = errors.New("invalid settings")

	// Data Errors
	ErrDataNotFound   = errors.New("generated data file not found")
	ErrDataMalformed  = errors.New("generated data file is malformed")
	ErrSurveyNotFound = errors.New("survey not found")

	// Run Errors
	ErrSeedInterrupted = errors.New("seeding interrupted before completion")

	// Validation Errors
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnsupportedQuestionType = errors.New("unsupported question type")

	// Remote API Errors
	ErrUnexpectedStatus  = errors.New("unexpected status from remote API")
	ErrMalformedResponse = errors.New("malformed response from remote API")

	// Generation Errors
	ErrProviderNotFound  = errors.New("generation provider not found")
	ErrProviderFailed    = errors.New("generation provider failed")
	ErrMissingCredential = errors.New("generation provider credential is missing")

	// Stack Errors
	ErrDockerUnavailable = errors.New("docker daemon is not reachable")
	ErrStackNotReady     = errors.New("formbricks did not become ready in time")
)

// Problem is the human readable rendering of a fatal error.
type Problem struct {
	Title  string
	Action string
}

func (p Problem) IsZero() bool {
	return p.Title == ""
}

// ErrorHandler maps fatal errors to a title and a suggested fix. Errors without
// a mapping yield a zero Problem.
func ErrorHandler(err error) Problem {
	switch {
	// Configuration Errors
	case errors.Is(err, ErrConfigNotFound):
		return Problem{
			Title: "Configuration file not found, a template has been written",
			Action: `1. Go to your Formbricks instance (default http://localhost:3000)
2. Complete account setup
3. Go to Settings -> API Keys and create a new API key
4. Copy your Environment ID from the URL or settings
5. Update the configuration file with your API key and environment ID
6. Run this command again`,
		}
	case errors.Is(err, ErrPlaceholderCredentials):
		return Problem{
			Title:  "Configuration file still holds placeholder credentials",
			Action: "Replace api_key and environment_id in the configuration file with the values from your Formbricks instance.",
		}
	case errors.Is(err, ErrInvalidConfig):
		return Problem{
			Title:  "Configuration file is invalid",
			Action: "Make sure base_url is a valid URL and api_key and environment_id are set.",
		}
	case errors.Is(err, ErrInvalidSettings):
		return Problem{
			Title:  "Settings are invalid",
			Action: "Check the settings file and environment variables.",
		}

	// Data Errors
	case errors.Is(err, ErrDataNotFound):
		return Problem{
			Title:  "Generated data file not found",
			Action: "Run: challenge formbricks generate",
		}
	case errors.Is(err, ErrDataMalformed):
		return Problem{
			Title:  "Generated data file is malformed",
			Action: "Regenerate it with: challenge formbricks generate",
		}

	// Run Errors
	case errors.Is(err, ErrSeedInterrupted):
		return Problem{
			Title:  "Seeding was interrupted",
			Action: "Records created before the interruption stay on the platform. Running seed again creates them a second time.",
		}

	// Generation Errors
	case errors.Is(err, ErrProviderNotFound):
		return Problem{
			Title:  "Unknown generation provider",
			Action: "Use one of: openai, ollama, gemini, faker.",
		}
	case errors.Is(err, ErrMissingCredential):
		return Problem{
			Title:  "Generation provider credential is missing",
			Action: "Set OPENAI_API_KEY or GEMINI_API_KEY, or use --provider ollama / faker.",
		}
	case errors.Is(err, ErrProviderFailed):
		return Problem{
			Title:  "Generation provider failed",
			Action: "Check the provider is reachable (for Ollama run: ollama serve) and try again.",
		}

	// Stack Errors
	case errors.Is(err, ErrDockerUnavailable):
		return Problem{
			Title:  "Docker not found",
			Action: "Install and start Docker Desktop, then try again.",
		}
	case errors.Is(err, ErrStackNotReady):
		return Problem{
			Title:  "Formbricks failed to start within timeout period",
			Action: "Check logs with: docker logs formbricks-challenge-formbricks",
		}
	}
	return Problem{}
}
