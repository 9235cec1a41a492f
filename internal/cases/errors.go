package cases

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("case not found")
	ErrEmptySelection       = errors.New("no cases selected")
	ErrConfirmationMismatch = errors.New("confirmation number doesn't match the number of selected cases")
)

// ValidationError reports a missing or malformed field on a form submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
