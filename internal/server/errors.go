package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"brgygo/internal/auth"
	"brgygo/pkg/types"
)

type envelope struct {
	Data   any               `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, types.ErrInvalidStatus),
		errors.Is(err, types.ErrInvalidRole),
		errors.Is(err, types.ErrInvalidDocumentType),
		errors.Is(err, types.ErrNothingToUpdate):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrAuthRequired),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrRequestNotFound),
		errors.Is(err, types.ErrAppointmentNotFound),
		errors.Is(err, types.ErrAnnouncementNotFound),
		errors.Is(err, types.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrIllegalTransition),
		errors.Is(err, types.ErrNotDeletable),
		errors.Is(err, types.ErrNotApproved):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// messageFor is the text shown to users. Backend failures are never described.
func messageFor(err error) string {
	switch statusFor(err) {
	case http.StatusInternalServerError:
		return "Something went wrong. Please try again."
	case http.StatusUnauthorized:
		return "Authentication required."
	case http.StatusForbidden:
		return "You are not allowed to do that."
	}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return "Please fix the highlighted fields."
	}

	switch {
	case errors.Is(err, types.ErrIllegalTransition):
		return "This request has already been reviewed."
	case errors.Is(err, types.ErrNotDeletable):
		return "Only rejected requests can be deleted."
	case errors.Is(err, types.ErrNotApproved):
		return "The document is available once the request is approved."
	case errors.Is(err, types.ErrInvalidStatus):
		return "Invalid status."
	case errors.Is(err, types.ErrInvalidRole):
		return "Invalid role."
	case errors.Is(err, types.ErrNothingToUpdate):
		return "Nothing to update."
	case errors.Is(err, types.ErrInvalidDocumentType):
		return "Unknown document type."
	}

	return "Not found."
}

func fieldErrors(err error) map[string]string {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

func (s *Service) writeData(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Data: data})
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("api request failed")
	}
	s.writeJSON(w, status, envelope{Error: messageFor(err), Fields: fieldErrors(err)})
}
