package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrDecode     = errors.New("decode failed")
)

// NotFoundError names the kind and id of an absent entity.
type NotFoundError struct {
	Kind string // dataset, strain, model, prediction
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for the given kind and id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError describes a structurally invalid request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DecodeError is returned when no encoding in the list could decode a file.
type DecodeError struct {
	Path      string
	Encodings []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode %s with any of [%s]", e.Path, strings.Join(e.Encodings, ", "))
}

func (e *DecodeError) Unwrap() error { return ErrDecode }
