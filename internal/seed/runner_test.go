package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/formbricks"
	"NYCU-SDC/formbricks-challenge/internal/survey"
	"NYCU-SDC/formbricks-challenge/test/testdata/databuilder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPlatform struct {
	mock.Mock
}

func (m *mockPlatform) CreateSurvey(ctx context.Context, s survey.GeneratedSurvey) (survey.CreatedSurvey, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(survey.CreatedSurvey)
	return created, args.Error(1)
}

func (m *mockPlatform) CreateResponse(ctx context.Context, surveyID string, answers []formbricks.Answer) (formbricks.CreatedResponse, error) {
	args := m.Called(ctx, surveyID, answers)
	created, _ := args.Get(0).(formbricks.CreatedResponse)
	return created, args.Error(1)
}

func (m *mockPlatform) InviteUser(ctx context.Context, email, name, role string) (formbricks.InviteResult, error) {
	args := m.Called(ctx, email, name, role)
	result, _ := args.Get(0).(formbricks.InviteResult)
	return result, args.Error(1)
}

func named(name string) interface{} {
	return mock.MatchedBy(func(s survey.GeneratedSurvey) bool { return s.Name == name })
}

func createdFrom(id string, s survey.GeneratedSurvey) survey.CreatedSurvey {
	questions := make([]survey.CreatedQuestion, len(s.Questions))
	for i := range s.Questions {
		questions[i] = survey.CreatedQuestion{ID: id + "_q" + string(rune('a'+i))}
	}
	return survey.CreatedSurvey{ID: id, Name: s.Name, Questions: questions}
}

type sleepRecorder struct {
	calls int
}

func (r *sleepRecorder) sleep(context.Context, time.Duration) {
	r.calls++
}

func TestRunner_Run_TwoSurveysOneResponseOneUser(t *testing.T) {
	builder := databuilder.New(t)
	first := builder.Survey(databuilder.WithName("Customer Satisfaction"))
	second := builder.Survey(databuilder.WithName("Onboarding"))
	user := builder.User("Owner")
	builder.Response(first.Name, "Great product", "Yes", 4)

	platform := new(mockPlatform)
	platform.On("CreateSurvey", mock.Anything, named(first.Name)).Return(createdFrom("srv_1", first), nil)
	platform.On("CreateSurvey", mock.Anything, named(second.Name)).Return(createdFrom("srv_2", second), nil)
	platform.On("CreateResponse", mock.Anything, "srv_1", []formbricks.Answer{
		{QuestionID: "srv_1_qa", Value: "Great product"},
		{QuestionID: "srv_1_qb", Value: "Yes"},
		{QuestionID: "srv_1_qc", Value: 4},
	}).Return(formbricks.CreatedResponse{ID: "rsp_1"}, nil)
	platform.On("InviteUser", mock.Anything, user.Email, user.Name, "Owner").
		Return(formbricks.InviteResult{Email: user.Email, Status: formbricks.InviteStatusInvited}, nil)

	recorder := &sleepRecorder{}
	runner := NewRunner(zap.NewNop(), platform, 500*time.Millisecond, WithSleep(recorder.sleep))

	summary, err := runner.Run(context.Background(), builder.Data())
	require.NoError(t, err)
	require.NoError(t, err)

	platform.AssertExpectations(t)
	assert.Len(t, summary.CreatedSurveys, 2)
	assert.Equal(t, 1, summary.ResponseCount)
	assert.Equal(t, 1, summary.UserCount)
	assert.Equal(t, 1, summary.InvitedUsers)
	assert.Equal(t, 4, recorder.calls)
	assert.NotEqual(t, "", summary.RunID.String())
}

func TestRunner_Run_ContinuesAfterSurveyFailure(t *testing.T) {
	builder := databuilder.New(t)
	surveys := []survey.GeneratedSurvey{
		builder.Survey(databuilder.WithName("Alpha")),
		builder.Survey(databuilder.WithName("Beta")),
		builder.Survey(databuilder.WithName("Gamma")),
		builder.Survey(databuilder.WithName("Delta")),
	}

	platform := new(mockPlatform)
	platform.On("CreateSurvey", mock.Anything, named("Alpha")).Return(createdFrom("srv_a", surveys[0]), nil)
	platform.On("CreateSurvey", mock.Anything, named("Beta")).
		Return(nil, formbricks.HTTPError{Op: "create survey", StatusCode: 400, Body: "bad"})
	platform.On("CreateSurvey", mock.Anything, named("Gamma")).Return(createdFrom("srv_g", surveys[2]), nil)
	platform.On("CreateSurvey", mock.Anything, named("Delta")).Return(createdFrom("srv_d", surveys[3]), nil)

	recorder := &sleepRecorder{}
	summary, err := NewRunner(zap.NewNop(), platform, time.Second, WithSleep(recorder.sleep)).Run(context.Background(), builder.Data())
	require.NoError(t, err)

	platform.AssertNumberOfCalls(t, "CreateSurvey", 4)
	require.Len(t, summary.CreatedSurveys, 3)
	assert.Equal(t, []string{"Alpha", "Gamma", "Delta"}, []string{
		summary.CreatedSurveys[0].Name,
		summary.CreatedSurveys[1].Name,
		summary.CreatedSurveys[2].Name,
	})
	assert.Equal(t, 4, summary.TotalSurveys)
	assert.Equal(t, 4, recorder.calls, "delay applies after failed calls too")
}

func TestRunner_Run_SkipsUnmatchedResponse(t *testing.T) {
	builder := databuilder.New(t)
	s := builder.Survey(databuilder.WithName("Product Feedback"))
	builder.Response("Deleted Survey", "ignored")
	builder.Response(s.Name, "kept")

	platform := new(mockPlatform)
	platform.On("CreateSurvey", mock.Anything, named(s.Name)).Return(createdFrom("srv_1", s), nil)
	platform.On("CreateResponse", mock.Anything, "srv_1", []formbricks.Answer{{QuestionID: "srv_1_qa", Value: "kept"}}).
		Return(formbricks.CreatedResponse{ID: "rsp_1"}, nil)

	recorder := &sleepRecorder{}
	summary, err := NewRunner(zap.NewNop(), platform, time.Second, WithSleep(recorder.sleep)).Run(context.Background(), builder.Data())
	require.NoError(t, err)

	platform.AssertExpectations(t)
	platform.AssertNumberOfCalls(t, "CreateResponse", 1)
	assert.Equal(t, 1, summary.ResponseCount)
	assert.Equal(t, 1, summary.SkippedResponses)
	assert.Equal(t, 2, summary.TotalResponses)
	assert.Equal(t, 2, recorder.calls, "skipped responses make no call and do not sleep")
}

func TestRunner_Run_ResponseFailureDoesNotAbort(t *testing.T) {
	builder := databuilder.New(t)
	s := builder.Survey(databuilder.WithName("Pulse"))
	builder.Response(s.Name, "first")
	builder.Response(s.Name, "second")

	platform := new(mockPlatform)
	platform.On("CreateSurvey", mock.Anything, named(s.Name)).Return(createdFrom("srv_1", s), nil)
	platform.On("CreateResponse", mock.Anything, "srv_1", []formbricks.Answer{{QuestionID: "srv_1_qa", Value: "first"}}).
		Return(nil, errors.New("connection reset"))
	platform.On("CreateResponse", mock.Anything, "srv_1", []formbricks.Answer{{QuestionID: "srv_1_qa", Value: "second"}}).
		Return(formbricks.CreatedResponse{ID: "rsp_2"}, nil)

	summary, err := NewRunner(zap.NewNop(), platform, 0).Run(context.Background(), builder.Data())
	require.NoError(t, err)

	platform.AssertExpectations(t)
	assert.Equal(t, 1, summary.ResponseCount)
	assert.Zero(t, summary.SkippedResponses)
}

func TestRunner_Run_InviteOutcomes(t *testing.T) {
	builder := databuilder.New(t)
	fresh := builder.User("Manager")
	existing := builder.User("Owner")
	broken := builder.User("Manager")

	platform := new(mockPlatform)
	platform.On("InviteUser", mock.Anything, fresh.Email, fresh.Name, "Manager").
		Return(formbricks.InviteResult{Email: fresh.Email, Status: formbricks.InviteStatusInvited}, nil)
	platform.On("InviteUser", mock.Anything, existing.Email, existing.Name, "Owner").
		Return(formbricks.InviteResult{Email: existing.Email, Status: formbricks.InviteStatusAlreadyExists}, nil)
	platform.On("InviteUser", mock.Anything, broken.Email, broken.Name, "Manager").
		Return(nil, formbricks.HTTPError{Op: "invite user", StatusCode: 500})

	recorder := &sleepRecorder{}
	summary, err := NewRunner(zap.NewNop(), platform, time.Second, WithSleep(recorder.sleep)).Run(context.Background(), builder.Data())
	require.NoError(t, err)

	platform.AssertExpectations(t)
	assert.Equal(t, 2, summary.UserCount)
	assert.Equal(t, 1, summary.InvitedUsers)
	assert.Equal(t, 1, summary.ExistingUsers)
	assert.Equal(t, 3, summary.TotalUsers)
	assert.Equal(t, 3, recorder.calls)
}

func TestRunner_Run_StopsWhenContextEnds(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(builder *databuilder.Builder, platform *mockPlatform, cancel context.CancelFunc)
		validate func(t *testing.T, platform *mockPlatform, summary Summary)
	}{
		{
			name: "Should stop creating surveys after the first call cancels",
			setup: func(builder *databuilder.Builder, platform *mockPlatform, cancel context.CancelFunc) {
				first := builder.Survey(databuilder.WithName("Alpha"))
				for _, name := range []string{"Beta", "Gamma", "Delta"} {
					builder.Survey(databuilder.WithName(name))
				}
				builder.Response(first.Name, "ignored")
				builder.User("Owner")

				platform.On("CreateSurvey", mock.Anything, named(first.Name)).
					Run(func(mock.Arguments) { cancel() }).
					Return(createdFrom("srv_1", first), nil).Once()
			},
			validate: func(t *testing.T, platform *mockPlatform, summary Summary) {
				platform.AssertNumberOfCalls(t, "CreateSurvey", 1)
				platform.AssertNotCalled(t, "CreateResponse", mock.Anything, mock.Anything, mock.Anything)
				platform.AssertNotCalled(t, "InviteUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				assert.Equal(t, 1, summary.SurveyCount())
				assert.Equal(t, 4, summary.TotalSurveys)
			},
		},
		{
			name: "Should stop inviting users after the first invite cancels",
			setup: func(builder *databuilder.Builder, platform *mockPlatform, cancel context.CancelFunc) {
				first := builder.User("Owner")
				builder.User("Manager")
				builder.User("Manager")

				platform.On("InviteUser", mock.Anything, first.Email, first.Name, "Owner").
					Run(func(mock.Arguments) { cancel() }).
					Return(formbricks.InviteResult{Email: first.Email, Status: formbricks.InviteStatusInvited}, nil).Once()
			},
			validate: func(t *testing.T, platform *mockPlatform, summary Summary) {
				platform.AssertNumberOfCalls(t, "InviteUser", 1)
				assert.Equal(t, 1, summary.InvitedUsers)
				assert.Equal(t, 3, summary.TotalUsers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			builder := databuilder.New(t)
			platform := new(mockPlatform)
			tt.setup(builder, platform, cancel)

			summary, err := NewRunner(zap.NewNop(), platform, time.Second, WithSleep(func(context.Context, time.Duration) {})).Run(ctx, builder.Data())

			require.Error(t, err)
			assert.ErrorIs(t, err, internal.ErrSeedInterrupted)
			assert.ErrorIs(t, err, context.Canceled)
			platform.AssertExpectations(t)
			tt.validate(t, platform, summary)
		})
	}
}

func TestRunner_Run_PropagatesRunID(t *testing.T) {
	builder := databuilder.New(t)
	s := builder.Survey(databuilder.WithName("Traced"))

	var seen []string
	platform := new(mockPlatform)
	platform.On("CreateSurvey", mock.MatchedBy(func(ctx context.Context) bool {
		runID, ok := internal.GetRunIDFromContext(ctx)
		if ok {
			seen = append(seen, runID.String())
		}
		return ok
	}), named(s.Name)).Return(createdFrom("srv_1", s), nil)

	summary, err := NewRunner(zap.NewNop(), platform, 0).Run(context.Background(), builder.Data())

	require.NoError(t, err)
	platform.AssertExpectations(t)
	require.NotEmpty(t, seen)
	assert.Equal(t, summary.RunID.String(), seen[0])
}

func TestFindSurvey(t *testing.T) {
	created := []survey.CreatedSurvey{
		{ID: "srv_1", Name: "Duplicate"},
		{ID: "srv_2", Name: "Duplicate"},
		{ID: "srv_3", Name: "Other"},
	}

	tests := []struct {
		name        string
		lookup      string
		shouldError bool
		expectedID  string
	}{
		{name: "Should bind to the first match on name collision", lookup: "Duplicate", expectedID: "srv_1"},
		{name: "Should find an exact match", lookup: "Other", expectedID: "srv_3"},
		{name: "Should not match by case-insensitive name", lookup: "other", shouldError: true},
		{name: "Should fail on unknown name", lookup: "Missing", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := FindSurvey(created, tt.lookup)
			if tt.shouldError {
				require.Error(t, err)
				assert.ErrorIs(t, err, internal.ErrSurveyNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, found.ID)
		})
	}
}

func TestBindAnswers(t *testing.T) {
	target := survey.CreatedSurvey{
		ID:        "srv_1",
		Questions: []survey.CreatedQuestion{{ID: "q1"}, {ID: "q2"}},
	}

	tests := []struct {
		name     string
		entries  []survey.ResponseEntry
		expected []formbricks.Answer
	}{
		{
			name:     "Should bind positionally",
			entries:  []survey.ResponseEntry{{QuestionID: 0, Value: "a"}, {QuestionID: 1, Value: 9}},
			expected: []formbricks.Answer{{QuestionID: "q1", Value: "a"}, {QuestionID: "q2", Value: 9}},
		},
		{
			name:     "Should ignore the placeholder question id",
			entries:  []survey.ResponseEntry{{QuestionID: "q2", Value: "a"}},
			expected: []formbricks.Answer{{QuestionID: "q1", Value: "a"}},
		},
		{
			name:     "Should drop entries beyond the question count",
			entries:  []survey.ResponseEntry{{Value: "a"}, {Value: "b"}, {Value: "c"}},
			expected: []formbricks.Answer{{QuestionID: "q1", Value: "a"}, {QuestionID: "q2", Value: "b"}},
		},
		{
			name:     "Should produce no answers for no entries",
			entries:  nil,
			expected: []formbricks.Answer{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BindAnswers(target, tt.entries))
		})
	}
}
