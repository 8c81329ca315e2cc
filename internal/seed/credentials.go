package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"NYCU-SDC/formbricks-challenge/internal"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL           = "http://localhost:3000"
	PlaceholderAPIKey        = "YOUR_API_KEY_HERE"
	PlaceholderEnvironmentID = "YOUR_ENVIRONMENT_ID_HERE"
)

// Credentials is the content of the seed configuration file.
type Credentials struct {
	BaseURL       string `json:"base_url" validate:"required,url"`
	APIKey        string `json:"api_key" validate:"required,not_placeholder"`
	EnvironmentID string `json:"environment_id" validate:"required,not_placeholder"`
}

func TemplateCredentials() Credentials {
	return Credentials{
		BaseURL:       DefaultBaseURL,
		APIKey:        PlaceholderAPIKey,
		EnvironmentID: PlaceholderEnvironmentID,
	}
}

// LoadCredentials reads the configuration file at path. When the file does not
// exist a template is written in its place and ErrConfigNotFound is returned.
func LoadCredentials(path string, v *validator.Validate) (Credentials, error) {
	if v == nil {
		v = internal.NewValidator()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("read configuration %s: %w", path, err)
		}

		err = WriteTemplate(path)
		if err != nil {
			return Credentials{}, err
		}
		return Credentials{}, fmt.Errorf("%w: %s", internal.ErrConfigNotFound, path)
	}

	var creds Credentials
	err = json.Unmarshal(content, &creds)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: %w", internal.ErrInvalidConfig, path, err)
	}

	err = internal.ValidateStruct(v, creds)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fe := range validationErrors {
				if fe.Tag() == "not_placeholder" {
					return Credentials{}, fmt.Errorf("%w: %s", internal.ErrPlaceholderCredentials, path)
				}
			}
		}
		return Credentials{}, fmt.Errorf("%w: %s: %s", internal.ErrInvalidConfig, path, internal.DescribeValidation(err))
	}

	return creds, nil
}

func WriteTemplate(path string) error {
	content, err := json.MarshalIndent(TemplateCredentials(), "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	err = os.WriteFile(path, append(content, '\n'), 0o600)
	if err != nil {
		return fmt.Errorf("write configuration template %s: %w", path, err)
	}
	return nil
}
