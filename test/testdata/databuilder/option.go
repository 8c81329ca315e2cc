package databuilder

import (
	"NYCU-SDC/formbricks-challenge/internal/survey"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	Name        string
	Type        survey.Type
	Description string
	Questions   []survey.GeneratedQuestion
}

func WithName(name string) Option {
	return func(p *FactoryParams) { p.Name = name }
}

func WithType(t survey.Type) Option {
	return func(p *FactoryParams) { p.Type = t }
}

func WithDescription(description string) Option {
	return func(p *FactoryParams) { p.Description = description }
}

// WithQuestions replaces the default question set.
func WithQuestions(questions ...survey.GeneratedQuestion) Option {
	return func(p *FactoryParams) { p.Questions = questions }
}

// WithoutQuestions produces a survey the mapper rejects.
func WithoutQuestions() Option {
	return func(p *FactoryParams) { p.Questions = nil }
}
