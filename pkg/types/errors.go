package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")

	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrNothingToUpdate     = errors.New("nothing to update")
	ErrNotDeletable        = errors.New("only rejected requests can be deleted")
	ErrNotApproved         = errors.New("request is not approved")

	ErrRequestNotFound      = errors.New("request not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSessionNotFound      = errors.New("session not found")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Err returns nil when no field failed so callers can return it directly.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// RenderError wraps any failure while producing a document.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render document (%s): %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func NewValidationErrorField(field, msg string) *ValidationError {
	e := NewValidationError()
	e.Add(field, msg)
	return e
}
