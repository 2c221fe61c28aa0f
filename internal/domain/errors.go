package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the HTTP boundary can map it to a status code.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindUpload            ErrorKind = "upload"
)

// Error is the typed error carried across domain and application layers.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for malformed or out-of-range input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewUnauthorizedError creates an error for a missing, invalid or expired credential.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NewForbiddenError creates an error for a valid identity lacking the required role or ownership.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewNotFoundError creates an error for an absent, inactive or foreign-owned resource.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// NewConflictError creates an error for a uniqueness or slot conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError creates an error for a booking status transition outside the
// allowed table, reporting both the current and the requested status.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition booking from %s to %s", from, to),
	}
}

// NewUploadError creates an error for an oversized, wrong-type or over-limit file upload.
func NewUploadError(message string) *Error {
	return &Error{Kind: KindUpload, Message: message}
}

// KindOf extracts the error kind from err, or an empty kind if err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
