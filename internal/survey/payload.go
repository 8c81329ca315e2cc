package survey

// DefaultLocale is the language key Formbricks uses for untranslated text.
const DefaultLocale = "default"

// LocalizedText is rendered as {"default": "..."}.
type LocalizedText map[string]string

func Localized(text string) LocalizedText {
	return LocalizedText{DefaultLocale: text}
}

func (l LocalizedText) Default() string {
	return l[DefaultLocale]
}

type SurveyPayload struct {
	Name         string            `json:"name"`
	Type         Type              `json:"type"`
	Status       string            `json:"status"`
	Questions    []QuestionPayload `json:"questions"`
	WelcomeCard  WelcomeCard       `json:"welcomeCard"`
	ThankYouCard ThankYouCard      `json:"thankYouCard"`
}

type QuestionPayload struct {
	Type               QuestionType    `json:"type"`
	Headline           LocalizedText   `json:"headline"`
	Subheader          LocalizedText   `json:"subheader"`
	Required           bool            `json:"required"`
	Choices            []ChoicePayload `json:"choices,omitempty"`
	ShuffleOption      string          `json:"shuffleOption,omitempty"`
	Scale              string          `json:"scale,omitempty"`
	Range              int             `json:"range,omitempty"`
	LowerLabel         LocalizedText   `json:"lowerLabel,omitempty"`
	UpperLabel         LocalizedText   `json:"upperLabel,omitempty"`
	ButtonLabel        LocalizedText   `json:"buttonLabel,omitempty"`
	DismissButtonLabel LocalizedText   `json:"dismissButtonLabel,omitempty"`
}

type ChoicePayload struct {
	ID    string        `json:"id"`
	Label LocalizedText `json:"label"`
}

type WelcomeCard struct {
	Enabled   bool          `json:"enabled"`
	Headline  LocalizedText `json:"headline,omitempty"`
	Subheader LocalizedText `json:"subheader,omitempty"`
}

type ThankYouCard struct {
	Enabled   bool          `json:"enabled"`
	Headline  LocalizedText `json:"headline"`
	Subheader LocalizedText `json:"subheader"`
}
