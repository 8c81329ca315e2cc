package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Params struct {
	Provider string
	Model    string
	Surveys  int
	Users    int
}

type Generator struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	source    Source
	validator *validator.Validate
	mapper    survey.Mapper
	policy    *bluemonday.Policy
	now       func() time.Time
}

func NewGenerator(logger *zap.Logger, source Source, v *validator.Validate) *Generator {
	if v == nil {
		v = internal.NewValidator()
	}
	return &Generator{
		logger:    logger,
		tracer:    otel.Tracer("generate/generator"),
		source:    source,
		validator: v,
		mapper:    survey.NewMapper(v),
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Run produces surveys, users and one response batch per kept survey.
// Records that fail validation are dropped with a warning. Provider failures
// abort the run.
func (g *Generator) Run(ctx context.Context, params Params) (survey.Data, error) {
	traceCtx, span := g.tracer.Start(ctx, "Run")
	defer span.End()
	logger := logutil.WithContext(traceCtx, g.logger)
	span.SetAttributes(attribute.String("provider", params.Provider), attribute.String("model", params.Model))

	logger.Info("Generating surveys", zap.Int("count", params.Surveys))
	generated, err := g.source.Surveys(traceCtx, params.Surveys)
	if err != nil {
		span.RecordError(err)
		return survey.Data{}, fmt.Errorf("generate surveys: %w", err)
	}

	surveys := make([]survey.GeneratedSurvey, 0, len(generated))
	for _, s := range generated {
		s = g.sanitizeSurvey(s)
		_, err = g.mapper.Questions(s)
		if err != nil {
			logger.Warn("Dropping invalid survey", zap.String("survey", s.Name), zap.Error(err))
			continue
		}
		surveys = append(surveys, s)
	}
	logger.Info("Generated surveys", zap.Int("kept", len(surveys)), zap.Int("dropped", len(generated)-len(surveys)))

	logger.Info("Generating users", zap.Int("count", params.Users))
	generatedUsers, err := g.source.Users(traceCtx, params.Users)
	if err != nil {
		span.RecordError(err)
		return survey.Data{}, fmt.Errorf("generate users: %w", err)
	}

	users := make([]survey.GeneratedUser, 0, len(generatedUsers))
	for _, u := range generatedUsers {
		u.Name = g.sanitize(u.Name)
		u.Email = strings.TrimSpace(u.Email)
		err = internal.ValidateStruct(g.validator, u)
		if err != nil {
			logger.Warn("Dropping invalid user", zap.String("email", u.Email), zap.String("reason", internal.DescribeValidation(err)))
			continue
		}
		users = append(users, u)
	}
	logger.Info("Generated users", zap.Int("kept", len(users)))

	responses := make([]survey.GeneratedResponse, 0, len(surveys))
	for i, s := range surveys {
		logger.Info("Generating response", zap.Int("survey", i+1), zap.Int("of", len(surveys)))
		entries, err := g.source.Responses(traceCtx, s)
		if err != nil {
			span.RecordError(err)
			return survey.Data{}, fmt.Errorf("generate responses for %q: %w", s.Name, err)
		}

		for j := range entries {
			if text, ok := entries[j].Value.(string); ok {
				entries[j].Value = g.sanitize(text)
			}
		}
		responses = append(responses, survey.GeneratedResponse{SurveyName: s.Name, Responses: entries})
	}

	return survey.Data{
		Surveys:   surveys,
		Users:     users,
		Responses: responses,
		Metadata: survey.Metadata{
			Provider:       params.Provider,
			Model:          params.Model,
			TotalSurveys:   len(surveys),
			TotalUsers:     len(users),
			TotalResponses: len(responses),
			GeneratedAt:    g.now().UTC(),
		},
	}, nil
}

func (g *Generator) sanitizeSurvey(s survey.GeneratedSurvey) survey.GeneratedSurvey {
	s.Name = g.sanitize(s.Name)
	s.Description = g.sanitize(s.Description)

	questions := make([]survey.GeneratedQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.Headline = g.sanitize(q.Headline)
		if q.Choices != nil {
			choices := make([]string, len(q.Choices))
			for j, c := range q.Choices {
				choices[j] = g.sanitize(c)
			}
			q.Choices = choices
		}
		if q.ButtonLabel != nil {
			label := g.sanitize(*q.ButtonLabel)
			q.ButtonLabel = &label
		}
		if q.DismissButtonLabel != nil {
			label := g.sanitize(*q.DismissButtonLabel)
			q.DismissButtonLabel = &label
		}
		questions[i] = q
	}
	s.Questions = questions

	return s
}

// sanitize strips any markup from model output and returns plain text.
func (g *Generator) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(g.policy.Sanitize(text)))
}

// WriteFile stores data as indented JSON at path.
func WriteFile(path string, data survey.Data) error {
	content, err := json.MarshalIndent(data, "", "  ")
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

	err = os.WriteFile(path, append(content, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NewSource builds the record source for provider.
func NewSource(ctx context.Context, provider, model string, seed uint64, cfg SourceConfig) (Source, error) {
	switch provider {
	case ProviderFaker:
		return NewFakerSource(seed), nil
	case ProviderOllama:
		return NewLLMSource(NewOllamaCompleter(cfg.OllamaURL, model, nil)), nil
	case ProviderOpenAI:
		completer, err := NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, model)
		if err != nil {
			return nil, err
		}
		return NewLLMSource(completer), nil
	case ProviderGemini:
		completer, err := NewGeminiCompleter(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			return nil, err
		}
		return NewLLMSource(completer), nil
	}
	return nil, fmt.Errorf("%w: %q", internal.ErrProviderNotFound, provider)
}

type SourceConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaURL     string
	GeminiAPIKey  string
}
