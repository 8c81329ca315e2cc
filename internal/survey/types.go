package survey

import "time"

type Type string

const (
	TypeApp     Type = "app"
	TypeWebsite Type = "website"
	TypeLink    Type = "link"
)

type QuestionType string

const (
	QuestionTypeOpenText             QuestionType = "openText"
	QuestionTypeMultipleChoiceSingle QuestionType = "multipleChoiceSingle"
	QuestionTypeMultipleChoiceMulti  QuestionType = "multipleChoiceMulti"
	QuestionTypeNPS                  QuestionType = "nps"
	QuestionTypeRating               QuestionType = "rating"
	QuestionTypeCTA                  QuestionType = "cta"
)

var QuestionTypes = []QuestionType{
	QuestionTypeOpenText,
	QuestionTypeMultipleChoiceSingle,
	QuestionTypeMultipleChoiceMulti,
	QuestionTypeNPS,
	QuestionTypeRating,
	QuestionTypeCTA,
}

func (t QuestionType) IsMultipleChoice() bool {
	return t == QuestionTypeMultipleChoiceSingle || t == QuestionTypeMultipleChoiceMulti
}

// GeneratedSurvey is one survey as produced by the generate command.
type GeneratedSurvey struct {
	Name        string              `json:"name" validate:"required"`
	Type        Type                `json:"type,omitempty" validate:"survey_type"`
	Description string              `json:"description,omitempty"`
	Questions   []GeneratedQuestion `json:"questions" validate:"required,dive"`
}

type GeneratedQuestion struct {
	Type               QuestionType `json:"type" validate:"required"`
	Headline           string       `json:"headline" validate:"required"`
	Required           bool         `json:"required"`
	Choices            []string     `json:"choices,omitempty"`
	Range              *int         `json:"range,omitempty" validate:"omitempty,rating_range"`
	ButtonLabel        *string      `json:"buttonLabel,omitempty"`
	DismissButtonLabel *string      `json:"dismissButtonLabel,omitempty"`
}

type GeneratedUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=Manager Owner manager owner"`
}

// GeneratedResponse is bound to a survey by name. Entries are bound to
// questions by position; QuestionID is only a placeholder.
type GeneratedResponse struct {
	SurveyName string          `json:"survey_name" validate:"required"`
	Responses  []ResponseEntry `json:"responses"`
}

type ResponseEntry struct {
	QuestionID any `json:"questionId,omitempty"`
	Value      any `json:"value"`
}

type Metadata struct {
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	TotalSurveys   int       `json:"total_surveys"`
	TotalUsers     int       `json:"total_users"`
	TotalResponses int       `json:"total_responses"`
	GeneratedAt    time.Time `json:"generated_at,omitzero"`
}

// Data is the content of the generated data file.
type Data struct {
	Surveys   []GeneratedSurvey   `json:"surveys"`
	Users     []GeneratedUser     `json:"users"`
	Responses []GeneratedResponse `json:"responses"`
	Metadata  Metadata            `json:"metadata"`
}

// CreatedSurvey is a survey the platform accepted during the current run.
// Questions[i] corresponds to the i-th question of the originating GeneratedSurvey.
type CreatedSurvey struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Questions []CreatedQuestion `json:"questions"`
}

type CreatedQuestion struct {
	ID string `json:"id"`
}
