package formbricks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	apiKeyHeader    = "x-api-key"
	userAgent       = "FormbricksSeeder/1.0"
	finishedAtFmt   = "2006-01-02T15:04:05.000Z"
	maxErrorBodyLen = 4096
)

type InviteStatus string

const (
	InviteStatusInvited       InviteStatus = "invited"
	InviteStatusAlreadyExists InviteStatus = "already_exists"
)

// Answer is one response value bound to a platform question id.
type Answer struct {
	QuestionID string
	Value      any
}

type ResponsePayload struct {
	SurveyID string         `json:"surveyId"`
	Finished bool           `json:"finished"`
	Data     map[string]any `json:"data"`
	Meta     ResponseMeta   `json:"meta"`
}

type ResponseMeta struct {
	UserAgent  string `json:"userAgent"`
	FinishedAt string `json:"finishedAt"`
}

type CreatedResponse struct {
	ID         string
	FinishedAt string
}

type InvitePayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type InviteResult struct {
	ID     string
	Email  string
	Status InviteStatus
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type Client struct {
	logger *zap.Logger
	tracer trace.Tracer
	mapper survey.Mapper
	now    func() time.Time

	baseURL       string
	apiKey        string
	environmentID string

	// session carries the management API key; public does not.
	session *http.Client
	public  *http.Client
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.session.Timeout = timeout
		c.public.Timeout = timeout
	}
}

// WithTransport replaces the underlying round tripper of both sessions.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.session.Transport = sessionTransport{base: rt, apiKey: c.apiKey}
		c.public.Transport = rt
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithMapper(m survey.Mapper) Option {
	return func(c *Client) { c.mapper = m }
}

func NewClient(logger *zap.Logger, baseURL, apiKey, environmentID string, opts ...Option) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()

	c := &Client{
		logger:        logger,
		tracer:        otel.Tracer("formbricks/client"),
		mapper:        survey.NewMapper(nil),
		now:           time.Now,
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		environmentID: environmentID,
		session:       &http.Client{Transport: sessionTransport{base: base, apiKey: apiKey}},
		public:        &http.Client{Transport: base},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.session.CloseIdleConnections()
	c.public.CloseIdleConnections()
}

// CreateSurvey maps s and posts it to the management API. The returned
// CreatedSurvey keeps the platform question ids in the order of s.Questions.
func (c *Client) CreateSurvey(ctx context.Context, s survey.GeneratedSurvey) (survey.CreatedSurvey, error) {
	traceCtx, span := c.tracer.Start(ctx, "CreateSurvey")
	defer span.End()
	logger := c.loggerFor(traceCtx)
	span.SetAttributes(attribute.String("survey.name", s.Name))

	payload, err := c.mapper.Map(s)
	if err != nil {
		span.RecordError(err)
		return survey.CreatedSurvey{}, err
	}

	status, body, err := c.post(traceCtx, c.session, "/api/v1/management/surveys", payload)
	if err != nil {
		span.RecordError(err)
		return survey.CreatedSurvey{}, fmt.Errorf("create survey %q: %w", s.Name, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status < 200 || status >= 300 {
		err = HTTPError{Op: "create survey", StatusCode: status, Body: truncate(body)}
		span.RecordError(err)
		return survey.CreatedSurvey{}, err
	}

	var decoded envelope[survey.CreatedSurvey]
	err = json.Unmarshal(body, &decoded)
	if err != nil || decoded.Data.ID == "" {
		err = fmt.Errorf("%w: create survey %q: missing data.id", internal.ErrMalformedResponse, s.Name)
		span.RecordError(err)
		return survey.CreatedSurvey{}, err
	}

	created := survey.CreatedSurvey{
		ID:        decoded.Data.ID,
		Name:      s.Name,
		Questions: decoded.Data.Questions,
	}
	logger.Debug("Created survey", zap.String("survey_id", created.ID), zap.Int("questions", len(created.Questions)))

	return created, nil
}

// CreateResponse submits a finished response through the client API, the same
// path a respondent's browser uses. It does not send the management API key.
func (c *Client) CreateResponse(ctx context.Context, surveyID string, answers []Answer) (CreatedResponse, error) {
	traceCtx, span := c.tracer.Start(ctx, "CreateResponse")
	defer span.End()
	logger := c.loggerFor(traceCtx)
	span.SetAttributes(attribute.String("survey.id", surveyID))

	data := make(map[string]any, len(answers))
	for _, a := range answers {
		data[a.QuestionID] = a.Value
	}

	finishedAt := c.now().UTC().Format(finishedAtFmt)
	payload := ResponsePayload{
		SurveyID: surveyID,
		Finished: true,
		Data:     data,
		Meta: ResponseMeta{
			UserAgent:  userAgent,
			FinishedAt: finishedAt,
		},
	}

	path := fmt.Sprintf("/api/v1/client/%s/responses", c.environmentID)
	status, body, err := c.post(traceCtx, c.public, path, payload)
	if err != nil {
		span.RecordError(err)
		return CreatedResponse{}, fmt.Errorf("create response for survey %s: %w", surveyID, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status < 200 || status >= 300 {
		err = HTTPError{Op: "create response", StatusCode: status, Body: truncate(body)}
		span.RecordError(err)
		return CreatedResponse{}, err
	}

	var decoded envelope[struct {
		ID string `json:"id"`
	}]
	err = json.Unmarshal(body, &decoded)
	if err != nil {
		logger.Debug("Response body is not an envelope", zap.Error(err))
	}

	return CreatedResponse{ID: decoded.Data.ID, FinishedAt: finishedAt}, nil
}

// InviteUser invites a team member. A 409 means the user exists and is
// reported as InviteStatusAlreadyExists without an error.
func (c *Client) InviteUser(ctx context.Context, email, name, role string) (InviteResult, error) {
	traceCtx, span := c.tracer.Start(ctx, "InviteUser")
	defer span.End()
	logger := c.loggerFor(traceCtx)

	payload := InvitePayload{
		Email: email,
		Name:  name,
		Role:  strings.ToLower(role),
	}

	status, body, err := c.post(traceCtx, c.session, "/api/v1/management/users", payload)
	if err != nil {
		span.RecordError(err)
		return InviteResult{}, fmt.Errorf("invite user %s: %w", email, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	switch status {
	case http.StatusOK, http.StatusCreated:
		var decoded envelope[struct {
			ID string `json:"id"`
		}]
		err = json.Unmarshal(body, &decoded)
		if err != nil {
			logger.Debug("Invite body is not an envelope", zap.Error(err))
		}
		return InviteResult{ID: decoded.Data.ID, Email: email, Status: InviteStatusInvited}, nil
	case http.StatusConflict:
		return InviteResult{Email: email, Status: InviteStatusAlreadyExists}, nil
	}

	err = HTTPError{Op: "invite user", StatusCode: status, Body: truncate(body)}
	span.RecordError(err)
	return InviteResult{}, err
}

func (c *Client) post(ctx context.Context, hc *http.Client, path string, payload any) (int, []byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}

	return res.StatusCode, body, nil
}

// loggerFor tags c.logger with the trace and the seeding run carried by ctx.
// c.logger is the caller's base logger, so run_id is added once here.
func (c *Client) loggerFor(ctx context.Context) *zap.Logger {
	logger := logutil.WithContext(ctx, c.logger)
	if runID, ok := internal.GetRunIDFromContext(ctx); ok {
		logger = logger.With(zap.String("run_id", runID.String()))
	}
	return logger
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return strings.TrimSpace(string(body))
}

// sessionTransport stamps management API headers on every request.
type sessionTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(apiKeyHeader, t.apiKey)
	clone.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(clone)
}

func (t sessionTransport) CloseIdleConnections() {
	if closer, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}
