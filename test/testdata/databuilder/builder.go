package databuilder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"NYCU-SDC/formbricks-challenge/internal/survey"
	"NYCU-SDC/formbricks-challenge/test/testdata"

	"github.com/stretchr/testify/require"
)

// Builder assembles generated data files for tests.
type Builder struct {
	t    *testing.T
	data survey.Data
}

func New(t *testing.T) *Builder {
	return &Builder{t: t}
}

// Survey appends a survey with one question of each supported type unless
// overridden by opts.
func (b *Builder) Survey(opts ...Option) survey.GeneratedSurvey {
	rating := 5
	p := &FactoryParams{
		Name:        testdata.RandomSurveyName(),
		Type:        survey.TypeLink,
		Description: testdata.RandomDescription(),
		Questions: []survey.GeneratedQuestion{
			{Type: survey.QuestionTypeOpenText, Headline: testdata.RandomHeadline(), Required: true},
			{Type: survey.QuestionTypeMultipleChoiceSingle, Headline: testdata.RandomHeadline(), Choices: []string{"Yes", "No", "Maybe"}},
			{Type: survey.QuestionTypeRating, Headline: testdata.RandomHeadline(), Range: &rating},
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	s := survey.GeneratedSurvey{
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Questions:   p.Questions,
	}
	b.data.Surveys = append(b.data.Surveys, s)
	return s
}

func (b *Builder) User(role string) survey.GeneratedUser {
	u := survey.GeneratedUser{
		Name:  testdata.RandomName(),
		Email: testdata.RandomEmail(),
		Role:  role,
	}
	b.data.Users = append(b.data.Users, u)
	return u
}

// Response appends a response bound to surveyName with one entry per value.
func (b *Builder) Response(surveyName string, values ...any) survey.GeneratedResponse {
	entries := make([]survey.ResponseEntry, len(values))
	for i, v := range values {
		entries[i] = survey.ResponseEntry{QuestionID: i, Value: v}
	}

	r := survey.GeneratedResponse{SurveyName: surveyName, Responses: entries}
	b.data.Responses = append(b.data.Responses, r)
	return r
}

func (b *Builder) Data() survey.Data {
	data := b.data
	data.Metadata = survey.Metadata{
		Provider:       "faker",
		Model:          "gofakeit",
		TotalSurveys:   len(data.Surveys),
		TotalUsers:     len(data.Users),
		TotalResponses: len(data.Responses),
	}
	return data
}

// WriteFile stores the data as a generated data file in a temporary directory
// and returns its path.
func (b *Builder) WriteFile() string {
	b.t.Helper()

	content, err := json.MarshalIndent(b.Data(), "", "  ")
	require.NoError(b.t, err)

	path := filepath.Join(b.t.TempDir(), "generated_data.json")
	require.NoError(b.t, os.WriteFile(path, content, 0o600))

	return path
}
