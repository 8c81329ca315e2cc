package formbricks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   raw,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(zap.NewNop(), server.URL+"/", "fbk_test", "env_123",
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }),
	)
}

func sampleSurvey() survey.GeneratedSurvey {
	return survey.GeneratedSurvey{
		Name: "Onboarding",
		Questions: []survey.GeneratedQuestion{
			{Type: survey.QuestionTypeOpenText, Headline: "What brought you here?"},
			{Type: survey.QuestionTypeNPS, Headline: "Recommend us?"},
		},
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient(zap.NewNop(), "http://localhost:3000///", "key", "env")
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
}

func TestClient_CreateSurvey(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"data":{"id":"srv_1","name":"Onboarding","questions":[{"id":"q_a"},{"id":"q_b"}]}}`)
	client := newTestClient(server)
	defer client.Close()

	created, err := client.CreateSurvey(context.Background(), sampleSurvey())
	require.NoError(t, err)

	assert.Equal(t, "srv_1", created.ID)
	assert.Equal(t, "Onboarding", created.Name)
	require.Len(t, created.Questions, 2)
	assert.Equal(t, "q_a", created.Questions[0].ID)
	assert.Equal(t, "q_b", created.Questions[1].ID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/management/surveys", req.Path)
	assert.Equal(t, "fbk_test", req.Header.Get("x-api-key"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload survey.SurveyPayload
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, survey.TypeLink, payload.Type)
	require.Len(t, payload.Questions, 2)
	assert.Equal(t, "What brought you here?", payload.Questions[0].Headline.Default())
}

func TestClient_CreateSurvey_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		input       survey.GeneratedSurvey
		expectedErr error
		validate    func(t *testing.T, err error, requests []recordedRequest)
	}{
		{
			name:        "Should return HTTPError with status and body on non-2xx",
			status:      http.StatusBadRequest,
			body:        `{"error":"invalid survey"}`,
			input:       sampleSurvey(),
			expectedErr: internal.ErrUnexpectedStatus,
			validate: func(t *testing.T, err error, requests []recordedRequest) {
				var httpErr HTTPError
				require.True(t, errors.As(err, &httpErr))
				assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
				assert.Contains(t, httpErr.Body, "invalid survey")
			},
		},
		{
			name:        "Should reject a success body without id",
			status:      http.StatusOK,
			body:        `{"data":{}}`,
			input:       sampleSurvey(),
			expectedErr: internal.ErrMalformedResponse,
		},
		{
			name:        "Should reject malformed survey before sending",
			status:      http.StatusOK,
			body:        `{"data":{"id":"srv"}}`,
			input:       survey.GeneratedSurvey{Name: "Broken"},
			expectedErr: internal.ErrValidationFailed,
			validate: func(t *testing.T, err error, requests []recordedRequest) {
				assert.Empty(t, requests)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newTestServer(t, tt.status, tt.body)
			client := newTestClient(server)

			_, err := client.CreateSurvey(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.validate != nil {
				tt.validate(t, err, *requests)
			}
		})
	}
}

func TestClient_CreateResponse(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"data":{"id":"rsp_1"}}`)
	client := newTestClient(server)

	created, err := client.CreateResponse(context.Background(), "srv_1", []Answer{
		{QuestionID: "q_a", Value: "Word of mouth"},
		{QuestionID: "q_b", Value: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "rsp_1", created.ID)
	assert.Equal(t, "2025-03-01T12:30:00.000Z", created.FinishedAt)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/api/v1/client/env_123/responses", req.Path)
	assert.Empty(t, req.Header.Get("x-api-key"), "client API submissions must not carry the management key")
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, "srv_1", payload["surveyId"])
	assert.Equal(t, true, payload["finished"])
	assert.Equal(t, map[string]any{"q_a": "Word of mouth", "q_b": float64(9)}, payload["data"])
	meta := payload["meta"].(map[string]any)
	assert.Equal(t, "FormbricksSeeder/1.0", meta["userAgent"])
	assert.Equal(t, "2025-03-01T12:30:00.000Z", meta["finishedAt"])
}

func TestClient_CreateResponse_Non2xx(t *testing.T) {
	server, _ := newTestServer(t, http.StatusNotFound, `{"message":"environment not found"}`)
	client := newTestClient(server)

	_, err := client.CreateResponse(context.Background(), "srv_1", nil)
	require.Error(t, err)

	var httpErr HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "create response", httpErr.Op)
}

func TestClient_InviteUser(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		shouldError    bool
		expectedStatus InviteStatus
	}{
		{
			name:           "Should report invited on 201",
			status:         http.StatusCreated,
			body:           `{"data":{"id":"usr_1"}}`,
			expectedStatus: InviteStatusInvited,
		},
		{
			name:           "Should report invited on 200",
			status:         http.StatusOK,
			body:           `{"data":{}}`,
			expectedStatus: InviteStatusInvited,
		},
		{
			name:           "Should treat 409 as already exists without error",
			status:         http.StatusConflict,
			body:           `{"error":"exists"}`,
			expectedStatus: InviteStatusAlreadyExists,
		},
		{
			name:        "Should fail on 500",
			status:      http.StatusInternalServerError,
			body:        `boom`,
			shouldError: true,
		},
		{
			name:        "Should fail on 204",
			status:      http.StatusNoContent,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newTestServer(t, tt.status, tt.body)
			client := newTestClient(server)

			result, err := client.InviteUser(context.Background(), "ana.lima@example.com", "Ana Lima", "Manager")

			require.Len(t, *requests, 1)
			req := (*requests)[0]
			assert.Equal(t, "/api/v1/management/users", req.Path)
			assert.Equal(t, "fbk_test", req.Header.Get("x-api-key"))

			var payload InvitePayload
			require.NoError(t, json.Unmarshal(req.Body, &payload))
			assert.Equal(t, "manager", payload.Role)

			if tt.shouldError {
				require.Error(t, err)
				assert.ErrorIs(t, err, internal.ErrUnexpectedStatus)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, "ana.lima@example.com", result.Email)
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(zap.NewNop(), url, "key", "env", WithTimeout(time.Second))
	_, err := client.InviteUser(context.Background(), "a@example.com", "A", "Owner")
	require.Error(t, err)
	assert.NotErrorIs(t, err, internal.ErrUnexpectedStatus)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClient_WithTransport(t *testing.T) {
	bodies := map[string]string{
		"/api/v1/management/surveys":       `{"data":{"id":"srv_1","questions":[{"id":"q_a"},{"id":"q_b"}]}}`,
		"/api/v1/client/env_123/responses": `{"data":{"id":"rsp_1"}}`,
		"/api/v1/management/users":         `{"data":{"id":"usr_1"}}`,
	}

	headers := map[string]http.Header{}
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		headers[req.URL.Path] = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(bodies[req.URL.Path])),
			Request:    req,
		}, nil
	})

	client := NewClient(zap.NewNop(), "http://formbricks.test", "fbk_test", "env_123", WithTransport(rt))

	created, err := client.CreateSurvey(context.Background(), sampleSurvey())
	require.NoError(t, err)
	assert.Equal(t, "srv_1", created.ID)

	response, err := client.CreateResponse(context.Background(), created.ID, []Answer{{QuestionID: "q_a", Value: "Hi"}})
	require.NoError(t, err)
	assert.Equal(t, "rsp_1", response.ID)

	invite, err := client.InviteUser(context.Background(), "ana.lima@example.com", "Ana Lima", "Member")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", invite.ID)

	require.Len(t, headers, 3)
	assert.Equal(t, "fbk_test", headers["/api/v1/management/surveys"].Get("x-api-key"))
	assert.Equal(t, "fbk_test", headers["/api/v1/management/users"].Get("x-api-key"))
	assert.Empty(t, headers["/api/v1/client/env_123/responses"].Get("x-api-key"))
}

func TestClient_Logging(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		call     func(t *testing.T, ctx context.Context, c *Client)
		validate func(t *testing.T, runID uuid.UUID, logs *observer.ObservedLogs)
	}{
		{
			name:   "Should tag client logs with the run id exactly once",
			status: http.StatusOK,
			body:   `{"data":{"id":"srv_1","questions":[{"id":"q_a"},{"id":"q_b"}]}}`,
			call: func(t *testing.T, ctx context.Context, c *Client) {
				_, err := c.CreateSurvey(ctx, sampleSurvey())
				require.NoError(t, err)
			},
			validate: func(t *testing.T, runID uuid.UUID, logs *observer.ObservedLogs) {
				entries := logs.FilterMessage("Created survey").All()
				require.Len(t, entries, 1)

				var tagged []string
				for _, f := range entries[0].Context {
					if f.Key == "run_id" {
						tagged = append(tagged, f.String)
					}
				}
				assert.Equal(t, []string{runID.String()}, tagged)
			},
		},
		{
			name:   "Should log an undecodable invite body and still report the invite",
			status: http.StatusCreated,
			body:   `created`,
			call: func(t *testing.T, ctx context.Context, c *Client) {
				result, err := c.InviteUser(ctx, "ana.lima@example.com", "Ana Lima", "Member")
				require.NoError(t, err)
				assert.Equal(t, InviteStatusInvited, result.Status)
				assert.Empty(t, result.ID)
			},
			validate: func(t *testing.T, _ uuid.UUID, logs *observer.ObservedLogs) {
				entries := logs.FilterMessage("Invite body is not an envelope").All()
				require.Len(t, entries, 1)
				assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.body)
			core, logs := observer.New(zapcore.DebugLevel)
			client := NewClient(zap.New(core), server.URL, "fbk_test", "env_123")
			defer client.Close()

			runID := uuid.New()
			tt.call(t, internal.WithRunID(context.Background(), runID), client)
			tt.validate(t, runID, logs)
		})
	}
}
