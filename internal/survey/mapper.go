package survey

import (
	"NYCU-SDC/formbricks-challenge/internal"

	"github.com/go-playground/validator/v10"
)

const (
	statusInProgress  = "inProgress"
	thankYouHeadline  = "Thank you!"
	thankYouSubheader = "We appreciate your feedback."
)

// Mapper turns generated surveys into Formbricks survey-creation payloads.
type Mapper struct {
	validator *validator.Validate
}

func NewMapper(v *validator.Validate) Mapper {
	if v == nil {
		v = internal.NewValidator()
	}
	return Mapper{validator: v}
}

// Questions validates s and returns its typed questions in input order.
func (m Mapper) Questions(s GeneratedSurvey) ([]Question, error) {
	err := internal.ValidateStruct(m.validator, s)
	if err != nil {
		return nil, internal.ErrRecordInvalid{Kind: "survey", Key: s.Name, Message: internal.DescribeValidation(err)}
	}

	questions := make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		questions[i], err = NewQuestion(i, q)
		if err != nil {
			return nil, err
		}
	}

	return questions, nil
}

// Map builds the payload for s. The payload's questions keep the length and
// order of s.Questions.
func (m Mapper) Map(s GeneratedSurvey) (SurveyPayload, error) {
	questions, err := m.Questions(s)
	if err != nil {
		return SurveyPayload{}, err
	}

	payload := SurveyPayload{
		Name:      s.Name,
		Type:      s.Type,
		Status:    statusInProgress,
		Questions: make([]QuestionPayload, len(questions)),
		WelcomeCard: WelcomeCard{
			Enabled: false,
		},
		ThankYouCard: ThankYouCard{
			Enabled:   true,
			Headline:  Localized(thankYouHeadline),
			Subheader: Localized(thankYouSubheader),
		},
	}
	if payload.Type == "" {
		payload.Type = TypeLink
	}

	for i, q := range questions {
		payload.Questions[i] = q.Payload()
	}

	if s.Description != "" {
		payload.WelcomeCard = WelcomeCard{
			Enabled:   true,
			Headline:  Localized(s.Name),
			Subheader: Localized(s.Description),
		}
	}

	return payload, nil
}
