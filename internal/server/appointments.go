package server

import (
	"net/http"
	"strings"

	"brgygo/internal/utils"
	"brgygo/pkg/types"
)

func (s *Service) handleGetMyAppointments(w http.ResponseWriter, r *http.Request) {
	s.renderMyAppointments(w, r, http.StatusOK, types.AppointmentForm{}, nil)
}

func (s *Service) renderMyAppointments(w http.ResponseWriter, r *http.Request, status int, form types.AppointmentForm, formErr error) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	appointments, err := s.appointments.Mine(ctx, identity)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to list appointments")
		s.internalServerError(w)
		return
	}

	data := &types.AppointmentsPageData{
		BasePageData: types.BasePageData{Title: "My Appointments"},
		Appointments: appointments,
		Types:        types.AppointmentTypes,
		Form:         form,
	}
	if formErr != nil {
		data.Error = messageFor(formErr)
		data.FieldErrors = fieldErrors(formErr)
	}

	s.renderStatus(w, r, status, "page.user.appointments", data)
}

func (s *Service) handlePostMyAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var form types.AppointmentForm
	if err := s.decodeForm(r, &form); err != nil {
		s.logger.WithError(err).Warn("failed to decode appointment form")
		s.redirectWithError(w, r, "/user/appointments", "The form could not be read. Please try again.")
		return
	}

	appt, err := s.appointments.Book(ctx, identity, form)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to book appointment")
		}
		s.renderMyAppointments(w, r, status, form, err)
		return
	}

	s.logger.WithField("user_id", identity.UserID).WithField("appointment_id", appt.ID).Info("appointment booked")
	s.redirectWithNotice(w, r, "/user/appointments", "Your appointment request was submitted.")
}

func (s *Service) handleGetAdminAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appointments, err := s.appointments.All(ctx, identityFrom(ctx))
	if err != nil {
		s.logger.WithError(err).Error("failed to list all appointments")
		s.internalServerError(w)
		return
	}

	data := &types.AdminAppointmentsPageData{
		BasePageData: types.BasePageData{Title: "Appointments"},
		Appointments: appointments,
		Statuses:     types.AppointmentStatuses,
	}

	s.render(w, r, "page.admin.appointments", data)
}

func (s *Service) handlePostAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentID := strings.TrimSpace(r.PathValue("id"))

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/admin/appointments", "The form could not be read. Please try again.")
		return
	}

	upd := types.AppointmentUpdate{}
	if status := strings.TrimSpace(r.PostForm.Get("status")); status != "" {
		upd.Status = utils.StringPtr(status)
	}
	if _, ok := r.PostForm["notes"]; ok {
		upd.Notes = utils.StringPtr(r.PostForm.Get("notes"))
	}

	appt, err := s.appointments.Update(ctx, identityFrom(ctx), appointmentID, upd)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("appointment_id", appointmentID).Error("failed to update appointment")
		}
		s.redirectWithError(w, r, "/admin/appointments", messageFor(err))
		return
	}

	s.redirectWithNotice(w, r, "/admin/appointments", "Appointment marked "+string(appt.Status)+".")
}

func (s *Service) handleGetAppointmentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.appointments.Audit(ctx, identityFrom(ctx), 0)
	if err != nil {
		s.logger.WithError(err).Error("failed to load appointment audit")
		s.internalServerError(w)
		return
	}

	data := &types.AuditPageData{
		BasePageData: types.BasePageData{Title: "Appointment Audit"},
		Entries:      entries,
	}

	s.render(w, r, "page.admin.audit", data)
}
