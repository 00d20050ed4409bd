package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brgygo/pkg/types"
)

const maxJSONBytes = 1 << 20

type documentPayload struct {
	Filename        string `json:"filename"`
	ReferenceNumber string `json:"referenceNumber"`
	ContentType     string `json:"contentType"`
	Base64          string `json:"base64"`
}

type newAppointmentPayload struct {
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	ScheduleAt time.Time `json:"schedule_at"`
	Reason     string    `json:"reason"`
	Notes      string    `json:"notes"`
	Contact    string    `json:"contact"`
}

type appointmentDetail struct {
	*types.Appointment
	History []*types.AppointmentStatusHistory `json:"history"`
}

func (s *Service) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationErrorField("_body", "Malformed JSON body.")
	}
	return nil
}

func (s *Service) handleAPIAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.announcements.Feed(r.Context(), feedFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, announcements)
}

func (s *Service) handleAPIMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := s.requests.Mine(ctx, identityFrom(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, requests)
}

func (s *Service) handleAPIDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, ok := pathID(r)
	if !ok {
		s.writeError(w, r, types.ErrRequestNotFound)
		return
	}

	artifact, err := s.documents.Generate(ctx, identityFrom(ctx), requestID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, documentPayload{
		Filename:        artifact.Filename,
		ReferenceNumber: artifact.ReferenceNumber,
		ContentType:     artifact.ContentType,
		Base64:          artifact.Base64(),
	})
}

func (s *Service) handleAPIRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter types.RequestFilter
	if status := q.Get("status"); status != "" {
		parsed, err := types.ParseRequestStatus(status)
		if err != nil {
			s.writeError(w, r, types.ErrInvalidStatus)
			return
		}
		filter.Status = parsed
	}
	if t := q.Get("type"); t != "" {
		docType, err := types.ParseDocumentType(t)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter.Type = docType
	}
	if limit, err := strconv.ParseUint(q.Get("limit"), 10, 64); err == nil {
		filter.Limit = limit
	}

	requests, err := s.requests.Queue(ctx, identityFrom(ctx), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, requests)
}

func (s *Service) handleAPIApprove(w http.ResponseWriter, r *http.Request) {
	s.reviewFromAPI(w, r, types.RequestStatusApproved)
}

func (s *Service) handleAPIReject(w http.ResponseWriter, r *http.Request) {
	s.reviewFromAPI(w, r, types.RequestStatusRejected)
}

func (s *Service) reviewFromAPI(w http.ResponseWriter, r *http.Request, status types.RequestStatus) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	requestID, ok := pathID(r)
	if !ok {
		s.writeError(w, r, types.ErrRequestNotFound)
		return
	}

	var (
		req *types.Request
		err error
	)
	if status == types.RequestStatusApproved {
		req, err = s.requests.Approve(ctx, identity, requestID)
	} else {
		req, err = s.requests.Reject(ctx, identity, requestID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("request_id", requestID).WithField("status", status).WithField("reviewer", identity.UserID).Info("request reviewed")
	s.writeData(w, http.StatusOK, req)
}

func (s *Service) handleAPIAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appointments, err := s.appointments.All(ctx, identityFrom(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, appointments)
}

func (s *Service) handleAPICreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload newAppointmentPayload
	if err := s.decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := types.NewAppointment{
		UserID:     strings.TrimSpace(payload.UserID),
		Type:       types.AppointmentType(payload.Type),
		ScheduleAt: payload.ScheduleAt,
		Reason:     payload.Reason,
		Notes:      payload.Notes,
		Contact:    payload.Contact,
	}
	if parsed, err := types.ParseAppointmentType(payload.Type); err == nil {
		in.Type = parsed
	}

	appt, err := s.appointments.Create(ctx, identityFrom(ctx), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusCreated, appt)
}

func (s *Service) handleAPIAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)
	appointmentID := strings.TrimSpace(r.PathValue("id"))

	appt, err := s.appointments.Get(ctx, identity, appointmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	history, err := s.appointments.History(ctx, identity, appointmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, appointmentDetail{Appointment: appt, History: history})
}

func (s *Service) handleAPIUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)
	appointmentID := strings.TrimSpace(r.PathValue("id"))

	var upd types.AppointmentUpdate
	if err := s.decodeJSON(w, r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	appt, err := s.appointments.Update(ctx, identity, appointmentID, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("appointment_id", appointmentID).WithField("actor", identity.UserID).Info("appointment updated")
	s.writeData(w, http.StatusOK, appt)
}

func (s *Service) handleAPIAppointmentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit uint64
	if parsed, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64); err == nil && parsed <= 1000 {
		limit = parsed
	}

	entries, err := s.appointments.Audit(ctx, identityFrom(ctx), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeData(w, http.StatusOK, entries)
}

func (s *Service) handleAPIUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var upd types.RoleUpdate
	if err := s.decodeJSON(w, r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.profiles.UpdateRole(ctx, identity, upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("profile_id", upd.ID).WithField("role", upd.Role).WithField("actor", identity.UserID).Info("role updated")
	s.writeData(w, http.StatusOK, upd)
}
