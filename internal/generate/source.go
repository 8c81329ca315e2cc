package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"NYCU-SDC/formbricks-challenge/internal"
	"NYCU-SDC/formbricks-challenge/internal/survey"

	"github.com/brianvoe/gofakeit/v7"
)

// Source produces the raw records of a generated data file.
type Source interface {
	Surveys(ctx context.Context, count int) ([]survey.GeneratedSurvey, error)
	Users(ctx context.Context, count int) ([]survey.GeneratedUser, error)
	Responses(ctx context.Context, s survey.GeneratedSurvey) ([]survey.ResponseEntry, error)
}

// LLMSource asks a language model for every record set.
type LLMSource struct {
	completer Completer
}

func NewLLMSource(completer Completer) *LLMSource {
	return &LLMSource{completer: completer}
}

func (s *LLMSource) Surveys(ctx context.Context, count int) ([]survey.GeneratedSurvey, error) {
	var decoded struct {
		Surveys []survey.GeneratedSurvey `json:"surveys"`
	}
	err := s.complete(ctx, SurveyPrompt(count), &decoded)
	if err != nil {
		return nil, err
	}
	return decoded.Surveys, nil
}

func (s *LLMSource) Users(ctx context.Context, count int) ([]survey.GeneratedUser, error) {
	var decoded struct {
		Users []survey.GeneratedUser `json:"users"`
	}
	err := s.complete(ctx, UserPrompt(count), &decoded)
	if err != nil {
		return nil, err
	}
	return decoded.Users, nil
}

func (s *LLMSource) Responses(ctx context.Context, target survey.GeneratedSurvey) ([]survey.ResponseEntry, error) {
	prompt, err := ResponsePrompt(target)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Responses []survey.ResponseEntry `json:"responses"`
	}
	err = s.complete(ctx, prompt, &decoded)
	if err != nil {
		return nil, err
	}
	return decoded.Responses, nil
}

func (s *LLMSource) complete(ctx context.Context, prompt string, out any) error {
	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	err = json.Unmarshal([]byte(StripFences(content)), out)
	if err != nil {
		return fmt.Errorf("%w: completion is not the expected JSON: %w", internal.ErrProviderFailed, err)
	}
	return nil
}

var (
	surveyThemes = []string{"Product Feedback", "NPS", "Feature Request", "User Onboarding", "Customer Satisfaction"}
	planChoices  = []string{"Free", "Starter", "Pro", "Enterprise"}
	ratingRanges = []int{5, 7, 10}
)

// FakerSource builds schema-valid records offline. The same seed yields the
// same records.
type FakerSource struct {
	faker *gofakeit.Faker
}

func NewFakerSource(seed uint64) *FakerSource {
	return &FakerSource{faker: gofakeit.New(seed)}
}

func (s *FakerSource) Surveys(_ context.Context, count int) ([]survey.GeneratedSurvey, error) {
	surveys := make([]survey.GeneratedSurvey, count)
	types := []survey.Type{survey.TypeApp, survey.TypeWebsite, survey.TypeLink}

	for i := range surveys {
		theme := surveyThemes[i%len(surveyThemes)]
		questions := make([]survey.GeneratedQuestion, s.faker.Number(3, 5))
		for j := range questions {
			questions[j] = s.question(survey.QuestionTypes[(i+j)%len(survey.QuestionTypes)])
		}

		surveys[i] = survey.GeneratedSurvey{
			Name:        fmt.Sprintf("%s %s", s.faker.AppName(), theme),
			Type:        types[s.faker.Number(0, len(types)-1)],
			Description: s.faker.HackerPhrase(),
			Questions:   questions,
		}
	}

	return surveys, nil
}

func (s *FakerSource) question(t survey.QuestionType) survey.GeneratedQuestion {
	q := survey.GeneratedQuestion{
		Type:     t,
		Headline: s.faker.Question(),
		Required: s.faker.Bool(),
	}

	switch t {
	case survey.QuestionTypeMultipleChoiceSingle, survey.QuestionTypeMultipleChoiceMulti:
		q.Choices = append([]string(nil), planChoices[:s.faker.Number(2, len(planChoices))]...)
	case survey.QuestionTypeRating:
		r := ratingRanges[s.faker.Number(0, len(ratingRanges)-1)]
		q.Range = &r
	case survey.QuestionTypeCTA:
		button, dismiss := "Next", "Skip"
		q.ButtonLabel = &button
		q.DismissButtonLabel = &dismiss
	}

	return q
}

func (s *FakerSource) Users(_ context.Context, count int) ([]survey.GeneratedUser, error) {
	users := make([]survey.GeneratedUser, count)
	company := emailPart(s.faker.Company())
	if company == "" {
		company = "example"
	}

	for i := range users {
		first, last := s.faker.FirstName(), s.faker.LastName()
		role := "Manager"
		if i < 2 {
			role = "Owner"
		}

		users[i] = survey.GeneratedUser{
			Name:  first + " " + last,
			Email: fmt.Sprintf("%s.%s%d@%s.com", emailPart(first), emailPart(last), i, company),
			Role:  role,
		}
	}

	return users, nil
}

func (s *FakerSource) Responses(_ context.Context, target survey.GeneratedSurvey) ([]survey.ResponseEntry, error) {
	entries := make([]survey.ResponseEntry, len(target.Questions))

	for i, q := range target.Questions {
		var value any
		switch q.Type {
		case survey.QuestionTypeOpenText:
			value = s.faker.HackerPhrase()
		case survey.QuestionTypeMultipleChoiceSingle, survey.QuestionTypeMultipleChoiceMulti:
			if len(q.Choices) > 0 {
				value = q.Choices[s.faker.Number(0, len(q.Choices)-1)]
			}
		case survey.QuestionTypeNPS:
			value = s.faker.Number(0, 10)
		case survey.QuestionTypeRating:
			upper := 5
			if q.Range != nil {
				upper = *q.Range
			}
			value = s.faker.Number(1, upper)
		case survey.QuestionTypeCTA:
			value = "clicked"
		}
		entries[i] = survey.ResponseEntry{QuestionID: i, Value: value}
	}

	return entries, nil
}

// emailPart lowercases v and keeps only ASCII letters and digits.
func emailPart(v string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(v))
}
