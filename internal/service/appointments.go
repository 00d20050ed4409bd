package service

import (
	"context"
	"strings"
	"time"

	"brgygo/internal/store"
	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/go-playground/validator/v10"
)

const defaultAuditLimit = 100

// Manila is the office's wall clock. Form inputs without a zone are read in it.
var Manila = time.FixedZone("Asia/Manila", 8*60*60)

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

type appointmentStore interface {
	Create(ctx context.Context, appt *types.Appointment, changedBy string) error
	Appointment(ctx context.Context, appointmentID string) (*types.Appointment, error)
	Appointments(ctx context.Context, userID string) ([]*types.Appointment, error)
	Update(ctx context.Context, appointmentID string, patch store.AppointmentPatch, changedBy string) error
	History(ctx context.Context, appointmentID string) ([]*types.AppointmentStatusHistory, error)
	Audit(ctx context.Context, limit uint64) ([]*types.AppointmentAuditEntry, error)
}

type AppointmentService struct {
	store    appointmentStore
	validate *validator.Validate
	now      func() time.Time
}

func NewAppointmentService(store appointmentStore) *AppointmentService {
	return &AppointmentService{store: store, validate: newValidator(), now: time.Now}
}

// ParseSchedule reads an RFC 3339 timestamp or a datetime-local value in Manila time.
func ParseSchedule(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, Manila); err == nil {
			return t, nil
		}
	}
	return time.Time{}, types.NewValidationErrorField("schedule_at", "Enter a valid date and time.")
}

// Book lets a citizen schedule an appointment for themselves.
func (s *AppointmentService) Book(ctx context.Context, identity *types.Identity, form types.AppointmentForm) (*types.Appointment, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}

	utils.TrimStrings(&form)

	verr := validateForm(s.validate, form)

	var in types.NewAppointment
	if form.Type != "" {
		apptType, err := types.ParseAppointmentType(form.Type)
		if err != nil {
			verr.Add("type", "Choose a valid appointment type.")
		}
		in.Type = apptType
	}

	if form.ScheduleAt != "" {
		scheduleAt, err := ParseSchedule(form.ScheduleAt)
		switch {
		case err != nil:
			verr.Add("schedule_at", "Enter a valid date and time.")
		case scheduleAt.Before(s.now()):
			verr.Add("schedule_at", "Choose a time in the future.")
		}
		in.ScheduleAt = scheduleAt
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	in.UserID = identity.UserID
	in.Reason = form.Reason
	in.Notes = form.Notes
	in.Contact = form.Contact

	return s.create(ctx, identity, in)
}

// Create is used by reviewers to schedule on behalf of a resident.
func (s *AppointmentService) Create(ctx context.Context, identity *types.Identity, in types.NewAppointment) (*types.Appointment, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}

	verr := types.NewValidationError()
	if strings.TrimSpace(in.UserID) == "" {
		verr.Add("user_id", "An owner is required.")
	}
	if _, err := types.ParseAppointmentType(string(in.Type)); err != nil {
		verr.Add("type", "Choose a valid appointment type.")
	}
	if in.ScheduleAt.IsZero() {
		verr.Add("schedule_at", "Enter a valid date and time.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	return s.create(ctx, identity, in)
}

func (s *AppointmentService) create(ctx context.Context, identity *types.Identity, in types.NewAppointment) (*types.Appointment, error) {
	appt := &types.Appointment{
		UserID:     in.UserID,
		Type:       in.Type,
		Reason:     utils.NilIfEmpty(in.Reason),
		ScheduleAt: in.ScheduleAt,
		Contact:    utils.NilIfEmpty(in.Contact),
		Notes:      utils.NilIfEmpty(in.Notes),
	}

	if err := s.store.Create(ctx, appt, identity.UserID); err != nil {
		return nil, err
	}

	return appt, nil
}

// Mine lists the caller's appointments by schedule.
func (s *AppointmentService) Mine(ctx context.Context, identity *types.Identity) ([]*types.Appointment, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}
	return s.store.Appointments(ctx, identity.UserID)
}

func (s *AppointmentService) All(ctx context.Context, identity *types.Identity) ([]*types.Appointment, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}
	return s.store.Appointments(ctx, "")
}

// Get returns the appointment when the caller owns it or may review it.
func (s *AppointmentService) Get(ctx context.Context, identity *types.Identity, appointmentID string) (*types.Appointment, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}

	appt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appt.UserID != identity.UserID && !identity.Role.CanReview() {
		return nil, types.ErrAppointmentNotFound
	}

	return appt, nil
}

// Update applies a partial update. A status change, even to the same status, is
// recorded as exactly one history row.
func (s *AppointmentService) Update(ctx context.Context, identity *types.Identity, appointmentID string, upd types.AppointmentUpdate) (*types.Appointment, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}

	if upd.Empty() {
		return nil, types.ErrNothingToUpdate
	}

	var patch store.AppointmentPatch
	if upd.Status != nil {
		status, err := types.ParseAppointmentStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	if upd.Notes != nil {
		notes := strings.TrimSpace(*upd.Notes)
		patch.Notes = &notes
	}
	if upd.ScheduleAt != nil {
		if upd.ScheduleAt.IsZero() {
			return nil, types.NewValidationErrorField("schedule_at", "Enter a valid date and time.")
		}
		patch.ScheduleAt = upd.ScheduleAt
	}

	if err := s.store.Update(ctx, appointmentID, patch, identity.UserID); err != nil {
		return nil, err
	}

	return s.store.Appointment(ctx, appointmentID)
}

func (s *AppointmentService) History(ctx context.Context, identity *types.Identity, appointmentID string) ([]*types.AppointmentStatusHistory, error) {
	if _, err := s.Get(ctx, identity, appointmentID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, appointmentID)
}

// Audit returns the most recent status changes across all appointments.
func (s *AppointmentService) Audit(ctx context.Context, identity *types.Identity, limit uint64) ([]*types.AppointmentAuditEntry, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultAuditLimit
	}
	return s.store.Audit(ctx, limit)
}
