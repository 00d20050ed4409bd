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

const requestTableName = "brgygo.requests"

var requestColumns = utils.StructTagValues(types.Request{})

type RequestRepository struct {
	db DB
}

func NewRequestRepository(db DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *types.Request) error {
	now := time.Now()
	req.Status = types.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	query, args, err := psql().
		Insert(requestTableName).
		SetMap(utils.StructToMap(req, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert request query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&req.ID)
	return utils.ErrorWrapOrNil(err, "failed to create request")
}

func (r *RequestRepository) Request(ctx context.Context, requestID int64) (*types.Request, error) {
	return r.request(ctx, sq.Eq{"id": requestID})
}

// RequestForOwner only returns the request when it belongs to userID.
func (r *RequestRepository) RequestForOwner(ctx context.Context, requestID int64, userID string) (*types.Request, error) {
	return r.request(ctx, sq.Eq{"id": requestID, "user_id": userID})
}

func (r *RequestRepository) request(ctx context.Context, where sq.Eq) (*types.Request, error) {
	query, args, err := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var req types.Request
	err = pgxscan.Get(ctx, r.db, &req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}

	return &req, nil
}

func (r *RequestRepository) Requests(ctx context.Context, filter types.RequestFilter) ([]*types.Request, error) {
	builder := psql().
		Select(requestColumns...).
		From(requestTableName).
		OrderBy("created_at desc")

	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"type": filter.Type})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, r.db, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, nil
}

// Transition moves a pending request to status. Only one caller can win: the update
// is conditional on the stored status still being pending.
func (r *RequestRepository) Transition(ctx context.Context, requestID int64, status types.RequestStatus, reviewerID string) error {
	now := time.Now()

	query, args, err := psql().
		Update(requestTableName).
		SetMap(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"updated_at":  now,
		}).
		Where(sq.Eq{"id": requestID, "status": types.RequestStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate transition query for request %d: %w", requestID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition request: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.status(ctx, sq.Eq{"id": requestID})
	if err != nil {
		return err
	}

	if current != types.RequestStatusPending {
		return types.ErrIllegalTransition
	}

	return fmt.Errorf("request %d was not updated", requestID)
}

// DeleteRejected removes a rejected request owned by userID.
func (r *RequestRepository) DeleteRejected(ctx context.Context, requestID int64, userID string) error {
	query, args, err := psql().
		Delete(requestTableName).
		Where(sq.Eq{"id": requestID, "user_id": userID, "status": types.RequestStatusRejected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete request query for request %d: %w", requestID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.status(ctx, sq.Eq{"id": requestID, "user_id": userID}); err != nil {
		return err
	}

	return types.ErrNotDeletable
}

func (r *RequestRepository) status(ctx context.Context, where sq.Eq) (types.RequestStatus, error) {
	query, args, err := psql().
		Select("status").
		From(requestTableName).
		Where(where).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to generate request status query: %w", err)
	}

	var status string
	err = r.db.QueryRow(ctx, query, args...).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", types.ErrRequestNotFound
		}
		return "", fmt.Errorf("failed to fetch request status: %w", err)
	}

	return types.RequestStatus(status), nil
}

// Counts tallies requests by status. An empty userID counts every request.
func (r *RequestRepository) Counts(ctx context.Context, userID string) (types.RequestCounts, error) {
	builder := psql().
		Select(
			"count(*) FILTER (WHERE status = 'pending')",
			"count(*) FILTER (WHERE status = 'approved')",
			"count(*) FILTER (WHERE status = 'rejected')",
		).
		From(requestTableName)

	if userID != "" {
		builder = builder.Where(sq.Eq{"user_id": userID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return types.RequestCounts{}, fmt.Errorf("failed to generate request counts query: %w", err)
	}

	var counts types.RequestCounts
	err = r.db.QueryRow(ctx, query, args...).Scan(&counts.Pending, &counts.Approved, &counts.Rejected)
	if err != nil {
		return types.RequestCounts{}, fmt.Errorf("failed to count requests: %w", err)
	}

	return counts, nil
}
