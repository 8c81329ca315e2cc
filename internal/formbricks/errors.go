package formbricks

import (
	"fmt"

	"NYCU-SDC/formbricks-challenge/internal"
)

// HTTPError is returned for any status the caller does not accept.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e HTTPError) Unwrap() error {
	return internal.ErrUnexpectedStatus
}
