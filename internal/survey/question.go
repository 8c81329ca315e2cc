package survey

import (
	"fmt"
	"strings"
)

const (
	DefaultRatingRange        = 5
	DefaultButtonLabel        = "Next"
	DefaultDismissButtonLabel = "Skip"

	lowerScaleLabel = "Not likely"
	upperScaleLabel = "Very likely"
)

// Question is a validated generated question that knows its platform shape.
type Question interface {
	Type() QuestionType
	Payload() QuestionPayload
}

type base struct {
	questionType QuestionType
	headline     string
	required     bool
}

func (b base) Type() QuestionType { return b.questionType }

func (b base) payload() QuestionPayload {
	return QuestionPayload{
		Type:      b.questionType,
		Headline:  Localized(b.headline),
		Subheader: Localized(""),
		Required:  b.required,
	}
}

type OpenText struct {
	base
}

func NewOpenText(q GeneratedQuestion) OpenText {
	return OpenText{base: newBase(q)}
}

func (o OpenText) Payload() QuestionPayload {
	return o.payload()
}

type MultipleChoice struct {
	base
	Choices []string
}

func NewMultipleChoice(index int, q GeneratedQuestion) (MultipleChoice, error) {
	if len(q.Choices) == 0 {
		return MultipleChoice{}, ErrInvalidQuestion{Index: index, Type: q.Type, Message: "at least one choice is required"}
	}

	for i, choice := range q.Choices {
		if strings.TrimSpace(choice) == "" {
			return MultipleChoice{}, ErrInvalidQuestion{Index: index, Type: q.Type, Message: fmt.Sprintf("choice %d is empty", i)}
		}
	}

	return MultipleChoice{
		base:    newBase(q),
		Choices: append([]string(nil), q.Choices...),
	}, nil
}

func (m MultipleChoice) Payload() QuestionPayload {
	p := m.payload()
	p.Choices = make([]ChoicePayload, len(m.Choices))
	for i, choice := range m.Choices {
		p.Choices[i] = ChoicePayload{
			ID:    fmt.Sprintf("choice_%d", i),
			Label: Localized(choice),
		}
	}
	p.ShuffleOption = "none"
	return p
}

type Rating struct {
	base
	Range int
}

func NewRating(index int, q GeneratedQuestion) (Rating, error) {
	r := DefaultRatingRange
	if q.Range != nil {
		r = *q.Range
	}

	switch r {
	case 5, 7, 10:
	default:
		return Rating{}, ErrInvalidQuestion{Index: index, Type: q.Type, Message: fmt.Sprintf("range must be 5, 7 or 10, got %d", r)}
	}

	return Rating{base: newBase(q), Range: r}, nil
}

func (r Rating) Payload() QuestionPayload {
	p := r.payload()
	p.Scale = "number"
	p.Range = r.Range
	p.LowerLabel = Localized(lowerScaleLabel)
	p.UpperLabel = Localized(upperScaleLabel)
	return p
}

type NPS struct {
	base
}

func NewNPS(q GeneratedQuestion) NPS {
	return NPS{base: newBase(q)}
}

func (n NPS) Payload() QuestionPayload {
	p := n.payload()
	p.LowerLabel = Localized(lowerScaleLabel)
	p.UpperLabel = Localized(upperScaleLabel)
	return p
}

type CTA struct {
	base
	ButtonLabel        string
	DismissButtonLabel string
}

func NewCTA(q GeneratedQuestion) CTA {
	c := CTA{
		base:               newBase(q),
		ButtonLabel:        DefaultButtonLabel,
		DismissButtonLabel: DefaultDismissButtonLabel,
	}
	if q.ButtonLabel != nil {
		c.ButtonLabel = *q.ButtonLabel
	}
	if q.DismissButtonLabel != nil {
		c.DismissButtonLabel = *q.DismissButtonLabel
	}
	return c
}

func (c CTA) Payload() QuestionPayload {
	p := c.payload()
	p.ButtonLabel = Localized(c.ButtonLabel)
	p.DismissButtonLabel = Localized(c.DismissButtonLabel)
	return p
}

// NewQuestion builds the typed variant for q. index is the position of q in
// its survey and is only used for error reporting.
func NewQuestion(index int, q GeneratedQuestion) (Question, error) {
	if strings.TrimSpace(q.Headline) == "" {
		return nil, ErrInvalidQuestion{Index: index, Type: q.Type, Message: "headline is required"}
	}

	if q.Type.IsMultipleChoice() {
		mc, err := NewMultipleChoice(index, q)
		if err != nil {
			return nil, err
		}
		return mc, nil
	}

	switch q.Type {
	case QuestionTypeOpenText:
		return NewOpenText(q), nil
	case QuestionTypeRating:
		rating, err := NewRating(index, q)
		if err != nil {
			return nil, err
		}
		return rating, nil
	case QuestionTypeNPS:
		return NewNPS(q), nil
	case QuestionTypeCTA:
		return NewCTA(q), nil
	}

	return nil, ErrUnsupportedQuestionType{Index: index, QuestionType: string(q.Type)}
}

func newBase(q GeneratedQuestion) base {
	return base{
		questionType: q.Type,
		headline:     q.Headline,
		required:     q.Required,
	}
}
