package survey

import (
	"fmt"

	"NYCU-SDC/formbricks-challenge/internal"
)

type ErrInvalidQuestion struct {
	Index   int
	Type    QuestionType
	Message string
}

func (e ErrInvalidQuestion) Error() string {
	return fmt.Sprintf("invalid %s question at index %d: %s", e.Type, e.Index, e.Message)
}

func (e ErrInvalidQuestion) Unwrap() error {
	return internal.ErrValidationFailed
}

type ErrUnsupportedQuestionType struct {
	Index        int
	QuestionType string
}

func (e ErrUnsupportedQuestionType) Error() string {
	return fmt.Sprintf("unsupported question type at index %d: %s", e.Index, e.QuestionType)
}

func (e ErrUnsupportedQuestionType) Unwrap() error {
	return internal.ErrUnsupportedQuestionType
}
