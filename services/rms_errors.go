package services

import (
	"errors"
	"fmt"

	"records-portal-api/models"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrForbidden         = errors.New("role is not permitted to perform this action")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyTerminal   = errors.New("document is already dispatched or filed")
	ErrStaleDocument     = errors.New("document changed while the request was processed")
	ErrValidation        = errors.New("validation failed")
)

// TransitionError describes a rejected (from, to) request. It matches
// ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From   models.DocumentStatus
	To     models.DocumentStatus
	Role   models.HandlerRole
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s for role %s: %s", e.From, e.To, e.Role, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
