package store

import (
	"context"
	"fmt"
	"time"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const announcementTableName = "brgygo.announcements"

var announcementColumns = utils.StructTagValues(types.Announcement{})

type AnnouncementRepository struct {
	db DB
}

func NewAnnouncementRepository(db DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Announcement(ctx context.Context, announcementID string) (*types.Announcement, error) {
	query, args, err := psql().
		Select(announcementColumns...).
		From(announcementTableName).
		Where(sq.Eq{"id": announcementID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate announcement query: %w", err)
	}

	var announcement types.Announcement
	err = pgxscan.Get(ctx, r.db, &announcement, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to fetch announcement: %w", err)
	}

	return &announcement, nil
}

// Announcements lists newest first.
func (r *AnnouncementRepository) Announcements(ctx context.Context, filter types.AnnouncementFilter) ([]*types.Announcement, error) {
	builder := psql().
		Select(announcementColumns...).
		From(announcementTableName).
		OrderBy("created_at desc")

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate announcements query: %w", err)
	}

	var announcements = make([]*types.Announcement, 0)
	err = pgxscan.Select(ctx, r.db, &announcements, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch announcements: %w", err)
	}

	return announcements, nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, announcement *types.Announcement) error {
	now := time.Now()
	if announcement.ID == "" {
		announcement.ID = utils.NanoID()
	}
	announcement.CreatedAt = now
	announcement.UpdatedAt = now

	query, args, err := psql().
		Insert(announcementTableName).
		SetMap(utils.StructToMap(announcement)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert announcement query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create announcement")
}

func (r *AnnouncementRepository) Update(ctx context.Context, announcement *types.Announcement) error {
	announcement.UpdatedAt = time.Now()

	query, args, err := psql().
		Update(announcementTableName).
		SetMap(utils.StructToMap(announcement, "id", "created_at")).
		Where(sq.Eq{"id": announcement.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update announcement query for %s: %w", announcement.ID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAnnouncementNotFound
	}

	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, announcementID string) error {
	query, args, err := psql().
		Delete(announcementTableName).
		Where(sq.Eq{"id": announcementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete announcement query for %s: %w", announcementID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAnnouncementNotFound
	}

	return nil
}

// Upsert is used by the seeder so rerunning it converges on the seed file.
func (r *AnnouncementRepository) Upsert(ctx context.Context, announcement *types.Announcement) error {
	now := time.Now()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now

	query, args, err := psql().
		Insert(announcementTableName).
		SetMap(utils.StructToMap(announcement)).
		Suffix("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, category = EXCLUDED.category, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert announcement query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert announcement")
}
