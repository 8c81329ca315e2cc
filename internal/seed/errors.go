package seed

import (
	"fmt"

	"NYCU-SDC/formbricks-challenge/internal"
)

// ErrSurveyNotCreated is returned when a response names a survey that was not
// created in the current run.
type ErrSurveyNotCreated struct {
	Name string
}

func (e ErrSurveyNotCreated) Error() string {
	return fmt.Sprintf("no survey named %q was created in this run", e.Name)
}

func (e ErrSurveyNotCreated) Unwrap() error {
	return internal.ErrSurveyNotFound
}
