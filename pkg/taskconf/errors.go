package taskconf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	KindIncompleteSelection ErrorKind = "IncompleteSelection"
	KindInvalidMapping      ErrorKind = "InvalidMapping"
	KindUnsupportedTaskType ErrorKind = "UnsupportedTaskType"
	KindInvalidConfig       ErrorKind = "InvalidConfig"
	KindUnknownSource       ErrorKind = "UnknownSource"
)

// ValidationError reports user input that cannot become a task configuration.
// It is raised before any network call and never becomes a task failure.
type ValidationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches any ValidationError of the same kind, so callers can write
// errors.Is(err, taskconf.ErrIncompleteSelection).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrIncompleteSelection = &ValidationError{Kind: KindIncompleteSelection}
	ErrInvalidMapping      = &ValidationError{Kind: KindInvalidMapping}
	ErrUnsupportedTaskType = &ValidationError{Kind: KindUnsupportedTaskType}
	ErrInvalidConfig       = &ValidationError{Kind: KindInvalidConfig}
	ErrUnknownSource       = &ValidationError{Kind: KindUnknownSource}
)

func newValidationError(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
