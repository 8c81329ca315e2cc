package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSettingsFile    = "challenge.yaml"
	DefaultCredentialsFile = "config.json"
	DefaultDataFile        = "generated_data.json"
	DefaultDotEnvFile      = ".env"
)

var (
	ErrRequestDelayNegative  = errors.New("request_delay must not be negative")
	ErrRequestTimeoutInvalid = errors.New("request_timeout must be positive")
	ErrHealthTimeoutInvalid  = errors.New("stack.health_timeout must be positive")
	ErrGenerateCountInvalid  = errors.New("generate counts must be positive")
	ErrStackImageRequired    = errors.New("stack images are required")
	ErrStackPortInvalid      = errors.New("stack.port must be between 1 and 65535")
)

type Config struct {
	Debug            bool   `yaml:"debug"              env:"DEBUG"`
	OtelCollectorUrl string `yaml:"otel_collector_url" env:"OTEL_COLLECTOR_URL"`

	CredentialsFile string        `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	DataFile        string        `yaml:"data_file"        env:"DATA_FILE"`
	RequestDelay    time.Duration `yaml:"request_delay"    env:"REQUEST_DELAY"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"REQUEST_TIMEOUT"`

	Generate GenerateConfig `yaml:"generate"`
	Stack    StackConfig    `yaml:"stack"`
}

type GenerateConfig struct {
	OpenAIAPIKey  string `yaml:"openai_api_key"  env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OllamaURL     string `yaml:"ollama_url"      env:"OLLAMA_URL"`
	GeminiAPIKey  string `yaml:"gemini_api_key"  env:"GEMINI_API_KEY"`
	Surveys       int    `yaml:"surveys"         env:"GENERATE_SURVEYS"`
	Users         int    `yaml:"users"           env:"GENERATE_USERS"`
}

type StackConfig struct {
	Project         string        `yaml:"project"          env:"STACK_PROJECT"`
	FormbricksImage string        `yaml:"formbricks_image" env:"STACK_FORMBRICKS_IMAGE"`
	PostgresImage   string        `yaml:"postgres_image"   env:"STACK_POSTGRES_IMAGE"`
	Port            int           `yaml:"port"             env:"STACK_PORT"`
	HealthTimeout   time.Duration `yaml:"health_timeout"   env:"STACK_HEALTH_TIMEOUT"`
	EnvFile         string        `yaml:"env_file"         env:"STACK_ENV_FILE"`
}

func Default() Config {
	return Config{
		CredentialsFile: DefaultCredentialsFile,
		DataFile:        DefaultDataFile,
		RequestDelay:    500 * time.Millisecond,
		RequestTimeout:  30 * time.Second,
		Generate: GenerateConfig{
			OllamaURL: "http://localhost:11434",
			Surveys:   5,
			Users:     10,
		},
		Stack: StackConfig{
			Project:         "formbricks-challenge",
			FormbricksImage: "formbricks/formbricks:latest",
			PostgresImage:   "postgres:15-alpine",
			Port:            3000,
			HealthTimeout:   180 * time.Second,
			EnvFile:         DefaultDotEnvFile,
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.RequestDelay < 0 {
		errs = append(errs, ErrRequestDelayNegative)
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, ErrRequestTimeoutInvalid)
	}
	if c.Stack.HealthTimeout <= 0 {
		errs = append(errs, ErrHealthTimeoutInvalid)
	}
	if c.Generate.Surveys <= 0 || c.Generate.Users <= 0 {
		errs = append(errs, ErrGenerateCountInvalid)
	}
	if c.Stack.FormbricksImage == "" || c.Stack.PostgresImage == "" {
		errs = append(errs, ErrStackImageRequired)
	}
	if c.Stack.Port <= 0 || c.Stack.Port > 65535 {
		errs = append(errs, ErrStackPortInvalid)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", internal.ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// WebappURL is the address the local instance is published on.
func (s StackConfig) WebappURL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// LogBuffer keeps messages produced before the logger exists.
type LogBuffer struct {
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields []zap.Field
}

func (b *LogBuffer) Info(msg string, fields ...zap.Field) {
	b.entries = append(b.entries, logEntry{level: "info", msg: msg, fields: fields})
}

func (b *LogBuffer) Warn(msg string, fields ...zap.Field) {
	b.entries = append(b.entries, logEntry{level: "warn", msg: msg, fields: fields})
}

func (b *LogBuffer) FlushToZap(logger *zap.Logger) {
	for _, e := range b.entries {
		switch e.level {
		case "warn":
			logger.Warn(e.msg, e.fields...)
		default:
			logger.Info(e.msg, e.fields...)
		}
	}
	b.entries = nil
}

// Load reads settings from the YAML file at path, the .env file and the
// environment, in increasing order of precedence. A missing file is not an error.
func Load(path string) (Config, *LogBuffer, error) {
	logger := &LogBuffer{}
	cfg := Default()

	if path == "" {
		path = DefaultSettingsFile
	}

	err := FromFile(path, &cfg, logger)
	if err != nil {
		return cfg, logger, err
	}

	err = godotenv.Load(DefaultDotEnvFile)
	if err == nil {
		logger.Info("Loaded environment from .env file")
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	err = FromEnv(&cfg, logger)
	if err != nil {
		return cfg, logger, err
	}

	return cfg, logger, nil
}

func FromFile(path string, cfg *Config, logger *LogBuffer) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("Settings file not found, using defaults", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("read settings file %s: %w", path, err)
	}

	err = yaml.Unmarshal(content, cfg)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %w", internal.ErrInvalidSettings, path, err)
	}

	logger.Info("Loaded settings file", zap.String("path", path))
	return nil
}

func FromEnv(cfg *Config, logger *LogBuffer) error {
	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("%w: parse environment: %w", internal.ErrInvalidSettings, err)
	}

	if cfg.Generate.OpenAIAPIKey != "" {
		logger.Info("OpenAI API key configured")
	}
	return nil
}
