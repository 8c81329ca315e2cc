package seed

import (
	"context"
	"fmt"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/formbricks"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Platform is the subset of the Formbricks API the runner drives.
type Platform interface {
	CreateSurvey(ctx context.Context, s survey.GeneratedSurvey) (survey.CreatedSurvey, error)
	CreateResponse(ctx context.Context, surveyID string, answers []formbricks.Answer) (formbricks.CreatedResponse, error)
	InviteUser(ctx context.Context, email, name, role string) (formbricks.InviteResult, error)
}

type Summary struct {
	RunID uuid.UUID

	CreatedSurveys []survey.CreatedSurvey
	TotalSurveys   int

	ResponseCount    int
	SkippedResponses int
	TotalResponses   int

	UserCount     int
	InvitedUsers  int
	ExistingUsers int
	TotalUsers    int
}

func (s Summary) SurveyCount() int {
	return len(s.CreatedSurveys)
}

type Runner struct {
	logger   *zap.Logger
	tracer   trace.Tracer
	platform Platform
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration)
}

type RunnerOption func(*Runner)

// WithSleep replaces the pause taken after every remote call.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

func NewRunner(logger *zap.Logger, platform Platform, delay time.Duration, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   logger,
		tracer:   otel.Tracer("seed/runner"),
		platform: platform,
		delay:    delay,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run pushes data to the platform: surveys, then responses, then users.
// Failures of single records are logged and skipped. Run only fails when ctx
// ends, returning the partial Summary with ErrSeedInterrupted.
func (r *Runner) Run(ctx context.Context, data survey.Data) (Summary, error) {
	runID := uuid.New()
	ctx = internal.WithRunID(ctx, runID)

	traceCtx, span := r.tracer.Start(ctx, "Run")
	defer span.End()
	logger := logutil.WithContext(traceCtx, r.logger).With(zap.String("run_id", runID.String()))
	span.SetAttributes(attribute.String("run_id", runID.String()))

	logger.Info("Seeding started",
		zap.Int("surveys", len(data.Surveys)),
		zap.Int("responses", len(data.Responses)),
		zap.Int("users", len(data.Users)),
	)

	summary := Summary{
		RunID:          runID,
		TotalSurveys:   len(data.Surveys),
		TotalResponses: len(data.Responses),
		TotalUsers:     len(data.Users),
	}

	summary.CreatedSurveys = r.createSurveys(traceCtx, logger, data.Surveys)
	r.createResponses(traceCtx, logger, data.Responses, summary.CreatedSurveys, &summary)
	r.inviteUsers(traceCtx, logger, data.Users, &summary)

	fields := []zap.Field{
		zap.Int("created_surveys", summary.SurveyCount()),
		zap.Int("created_responses", summary.ResponseCount),
		zap.Int("skipped_responses", summary.SkippedResponses),
		zap.Int("invited_users", summary.InvitedUsers),
		zap.Int("existing_users", summary.ExistingUsers),
	}

	if ctx.Err() != nil {
		err := fmt.Errorf("%w: %w", internal.ErrSeedInterrupted, ctx.Err())
		span.RecordError(err)
		logger.Warn("Seeding interrupted", append(fields, zap.Error(ctx.Err()))...)
		return summary, err
	}

	logger.Info("Seeding finished", fields...)
	return summary, nil
}

func (r *Runner) createSurveys(ctx context.Context, logger *zap.Logger, surveys []survey.GeneratedSurvey) []survey.CreatedSurvey {
	created := make([]survey.CreatedSurvey, 0, len(surveys))

	for i, s := range surveys {
		if ctx.Err() != nil {
			return created
		}

		result, err := r.platform.CreateSurvey(ctx, s)
		if err != nil {
			logger.Warn("Failed to create survey", zap.Int("index", i), zap.String("survey", s.Name), zap.Error(err))
		} else {
			logger.Info("Created survey", zap.String("survey", s.Name), zap.String("survey_id", result.ID))
			created = append(created, result)
		}
		r.sleep(ctx, r.delay)
	}

	return created
}

func (r *Runner) createResponses(ctx context.Context, logger *zap.Logger, responses []survey.GeneratedResponse, created []survey.CreatedSurvey, summary *Summary) {
	for _, resp := range responses {
		if ctx.Err() != nil {
			return
		}

		target, err := FindSurvey(created, resp.SurveyName)
		if err != nil {
			logger.Warn("Skipping response", zap.String("survey", resp.SurveyName), zap.Error(err))
			summary.SkippedResponses++
			continue
		}

		answers := BindAnswers(target, resp.Responses)
		result, err := r.platform.CreateResponse(ctx, target.ID, answers)
		if err != nil {
			logger.Warn("Failed to create response", zap.String("survey", resp.SurveyName), zap.Error(err))
		} else {
			logger.Info("Created response", zap.String("survey", resp.SurveyName), zap.String("response_id", result.ID), zap.Int("answers", len(answers)))
			summary.ResponseCount++
		}
		r.sleep(ctx, r.delay)
	}
}

func (r *Runner) inviteUsers(ctx context.Context, logger *zap.Logger, users []survey.GeneratedUser, summary *Summary) {
	for _, u := range users {
		if ctx.Err() != nil {
			return
		}

		result, err := r.platform.InviteUser(ctx, u.Email, u.Name, u.Role)
		if err != nil {
			logger.Warn("Failed to invite user", zap.String("email", u.Email), zap.Error(err))
			r.sleep(ctx, r.delay)
			continue
		}

		summary.UserCount++
		switch result.Status {
		case formbricks.InviteStatusAlreadyExists:
			summary.ExistingUsers++
			logger.Info("User already exists", zap.String("email", u.Email))
		default:
			summary.InvitedUsers++
			logger.Info("Invited user", zap.String("email", u.Email), zap.String("role", u.Role))
		}
		r.sleep(ctx, r.delay)
	}
}

// FindSurvey returns the first created survey named name.
func FindSurvey(created []survey.CreatedSurvey, name string) (survey.CreatedSurvey, error) {
	for _, s := range created {
		if s.Name == name {
			return s, nil
		}
	}
	return survey.CreatedSurvey{}, ErrSurveyNotCreated{Name: name}
}

// BindAnswers pairs entries with the survey's question ids by position.
// Entries beyond the number of questions are dropped.
func BindAnswers(target survey.CreatedSurvey, entries []survey.ResponseEntry) []formbricks.Answer {
	n := min(len(entries), len(target.Questions))
	answers := make([]formbricks.Answer, 0, n)
	for i := 0; i < n; i++ {
		answers = append(answers, formbricks.Answer{
			QuestionID: target.Questions[i].ID,
			Value:      entries[i].Value,
		})
	}
	return answers
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
