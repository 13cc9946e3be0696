package domain

import "errors"

// Domain errors
var (
	ErrPasswordRequired  = errors.New("password required")
	ErrInvalidFile       = errors.New("invalid file")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrDocumentClosed    = errors.New("document already closed")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Unwrap reports every validation failure as an invalid file.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidFile
}
