package types

import (
	"strings"
	"time"
)

type AppointmentType string

const (
	AppointmentTypeHealthCenter     AppointmentType = "Health Center"
	AppointmentTypeBarangayOffice   AppointmentType = "Barangay Office"
	AppointmentTypeBusinessPermit   AppointmentType = "Business Permit"
	AppointmentTypeBlotterMediation AppointmentType = "Blotter Mediation"
)

var AppointmentTypes = []AppointmentType{
	AppointmentTypeHealthCenter,
	AppointmentTypeBarangayOffice,
	AppointmentTypeBusinessPermit,
	AppointmentTypeBlotterMediation,
}

func ParseAppointmentType(s string) (AppointmentType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AppointmentTypes {
		if strings.ToLower(string(t)) == key {
			return t, nil
		}
	}
	return "", NewValidationErrorField("type", "Choose a valid appointment type.")
}

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// ParseAppointmentStatus is case-insensitive but only accepts the closed vocabulary.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, st := range AppointmentStatuses {
		if strings.ToLower(string(st)) == key {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

type Appointment struct {
	ID         string            `db:"id" json:"id"`
	UserID     string            `db:"user_id" json:"userId"`
	Type       AppointmentType   `db:"type" json:"type"`
	Reason     *string           `db:"reason" json:"reason"`
	ScheduleAt time.Time         `db:"schedule_at" json:"scheduleAt"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Contact    *string           `db:"contact" json:"contact"`
	Notes      *string           `db:"notes" json:"notes"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`
}

type AppointmentStatusHistory struct {
	ID            string             `db:"id" json:"id"`
	AppointmentID string             `db:"appointment_id" json:"appointmentId"`
	OldStatus     *AppointmentStatus `db:"old_status" json:"oldStatus"`
	NewStatus     AppointmentStatus  `db:"new_status" json:"newStatus"`
	ChangedBy     *string            `db:"changed_by" json:"changedBy"`
	ChangedAt     time.Time          `db:"changed_at" json:"changedAt"`
	Notes         *string            `db:"notes" json:"notes"`
}

// AppointmentAuditEntry is a history row joined with its appointment.
type AppointmentAuditEntry struct {
	AppointmentStatusHistory
	Contact *string `db:"contact" json:"contact"`
	UserID  *string `db:"user_id" json:"userId"`
}

type NewAppointment struct {
	UserID     string
	Type       AppointmentType
	ScheduleAt time.Time
	Reason     string
	Notes      string
	Contact    string
}

// AppointmentUpdate holds the optional fields of a partial update.
type AppointmentUpdate struct {
	Status     *string    `json:"status"`
	Notes      *string    `json:"notes"`
	ScheduleAt *time.Time `json:"schedule_at"`
}

func (u AppointmentUpdate) Empty() bool {
	return u.Status == nil && u.Notes == nil && u.ScheduleAt == nil
}

type AppointmentForm struct {
	Type       string `form:"type" validate:"required"`
	ScheduleAt string `form:"schedule_at" validate:"required"`
	Reason     string `form:"reason" validate:"max=500"`
	Notes      string `form:"notes" validate:"max=1000"`
	Contact    string `form:"contact" validate:"max=100"`
}
