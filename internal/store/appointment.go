package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const (
	appointmentTableName        = "brgygo.appointments"
	appointmentHistoryTableName = "brgygo.appointment_status_history"
)

var (
	appointmentColumns        = utils.StructTagValues(types.Appointment{})
	appointmentHistoryColumns = utils.StructTagValues(types.AppointmentStatusHistory{})
)

// AppointmentPatch is a validated partial update.
type AppointmentPatch struct {
	Status     *types.AppointmentStatus
	Notes      *string
	ScheduleAt *time.Time
}

type AppointmentRepository struct {
	db DB
}

func NewAppointmentRepository(db DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts the appointment together with its initial history row.
func (r *AppointmentRepository) Create(ctx context.Context, appt *types.Appointment, changedBy string) error {
	now := time.Now()
	appt.ID = utils.NanoID()
	appt.Status = types.AppointmentStatusPending
	appt.CreatedAt = now
	appt.UpdatedAt = now

	apptQuery, apptArgs, err := psql().
		Insert(appointmentTableName).
		SetMap(utils.StructToMap(appt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert appointment query: %w", err)
	}

	history := &types.AppointmentStatusHistory{
		ID:            utils.NanoID(),
		AppointmentID: appt.ID,
		NewStatus:     types.AppointmentStatusPending,
		ChangedBy:     nullable(changedBy),
		ChangedAt:     now,
		Notes:         utils.StringPtr("Appointment created"),
	}

	historyQuery, historyArgs, err := historyInsert(history)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin appointment transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, apptQuery, apptArgs...); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if _, err := tx.Exec(ctx, historyQuery, historyArgs...); err != nil {
		return fmt.Errorf("failed to record appointment history: %w", err)
	}

	return utils.ErrorWrapOrNil(tx.Commit(ctx), "failed to commit appointment")
}

func (r *AppointmentRepository) Appointment(ctx context.Context, appointmentID string) (*types.Appointment, error) {
	query, args, err := psql().
		Select(appointmentColumns...).
		From(appointmentTableName).
		Where(sq.Eq{"id": appointmentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate appointment query: %w", err)
	}

	var appt types.Appointment
	err = pgxscan.Get(ctx, r.db, &appt, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}

	return &appt, nil
}

// Appointments lists appointments by schedule, soonest first. An empty userID lists all of them.
func (r *AppointmentRepository) Appointments(ctx context.Context, userID string) ([]*types.Appointment, error) {
	builder := psql().
		Select(appointmentColumns...).
		From(appointmentTableName).
		OrderBy("schedule_at asc")

	if userID != "" {
		builder = builder.Where(sq.Eq{"user_id": userID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate appointments query: %w", err)
	}

	var appts = make([]*types.Appointment, 0)
	err = pgxscan.Select(ctx, r.db, &appts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}

	return appts, nil
}

// Update applies patch under a row lock. When the patch carries a status exactly one
// history row is written in the same transaction, even if the status did not change.
func (r *AppointmentRepository) Update(ctx context.Context, appointmentID string, patch AppointmentPatch, changedBy string) error {
	now := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin appointment transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery, lockArgs, err := psql().
		Select("status").
		From(appointmentTableName).
		Where(sq.Eq{"id": appointmentID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate appointment lock query: %w", err)
	}

	var current string
	err = tx.QueryRow(ctx, lockQuery, lockArgs...).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to lock appointment: %w", err)
	}

	values := map[string]any{"updated_at": now}
	if patch.Status != nil {
		values["status"] = *patch.Status
	}
	if patch.Notes != nil {
		values["notes"] = *patch.Notes
	}
	if patch.ScheduleAt != nil {
		values["schedule_at"] = *patch.ScheduleAt
	}

	updateQuery, updateArgs, err := psql().
		Update(appointmentTableName).
		SetMap(values).
		Where(sq.Eq{"id": appointmentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update appointment query for %s: %w", appointmentID, err)
	}

	if _, err := tx.Exec(ctx, updateQuery, updateArgs...); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if patch.Status != nil {
		old := types.AppointmentStatus(current)
		history := &types.AppointmentStatusHistory{
			ID:            utils.NanoID(),
			AppointmentID: appointmentID,
			OldStatus:     &old,
			NewStatus:     *patch.Status,
			ChangedBy:     nullable(changedBy),
			ChangedAt:     now,
			Notes:         patch.Notes,
		}

		historyQuery, historyArgs, err := historyInsert(history)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, historyQuery, historyArgs...); err != nil {
			return fmt.Errorf("failed to record appointment history: %w", err)
		}
	}

	return utils.ErrorWrapOrNil(tx.Commit(ctx), "failed to commit appointment update")
}

func (r *AppointmentRepository) History(ctx context.Context, appointmentID string) ([]*types.AppointmentStatusHistory, error) {
	query, args, err := psql().
		Select(appointmentHistoryColumns...).
		From(appointmentHistoryTableName).
		Where(sq.Eq{"appointment_id": appointmentID}).
		OrderBy("changed_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate appointment history query: %w", err)
	}

	var history = make([]*types.AppointmentStatusHistory, 0)
	err = pgxscan.Select(ctx, r.db, &history, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment history: %w", err)
	}

	return history, nil
}

// Audit returns the most recent status changes across all appointments.
func (r *AppointmentRepository) Audit(ctx context.Context, limit uint64) ([]*types.AppointmentAuditEntry, error) {
	if limit == 0 {
		limit = 100
	}

	columns := append(
		utils.PrefixSliceOfStrings("h", appointmentHistoryColumns),
		"a.contact",
		"a.user_id",
	)

	query, args, err := psql().
		Select(columns...).
		From(appointmentHistoryTableName + " h").
		LeftJoin(appointmentTableName + " a ON a.id = h.appointment_id").
		OrderBy("h.changed_at desc").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate appointment audit query: %w", err)
	}

	var entries = make([]*types.AppointmentAuditEntry, 0)
	err = pgxscan.Select(ctx, r.db, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment audit: %w", err)
	}

	return entries, nil
}

func historyInsert(history *types.AppointmentStatusHistory) (string, []any, error) {
	query, args, err := psql().
		Insert(appointmentHistoryTableName).
		SetMap(utils.StructToMap(history)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate insert appointment history query: %w", err)
	}
	return query, args, nil
}
