package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const profileTableName = "brgygo.profiles"

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Profile(ctx context.Context, profileID string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"id": profileID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.db, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

// Profiles is the resident master list ordered by name.
func (r *ProfileRepository) Profiles(ctx context.Context) ([]*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		OrderBy("full_name asc", "created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles query: %w", err)
	}

	var profiles = make([]*types.Profile, 0)
	err = pgxscan.Select(ctx, r.db, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	return profiles, nil
}

// UpsertIdentity creates the profile for a freshly signed up identity. An existing
// profile keeps its role.
func (r *ProfileRepository) UpsertIdentity(ctx context.Context, profileID, email, fullName string, role types.Role) error {
	now := time.Now()

	query, args, err := psql().
		Insert(profileTableName).
		Columns("id", "email", "full_name", "role", "created_at", "updated_at").
		Values(profileID, nullable(strings.TrimSpace(email)), nullable(strings.TrimSpace(fullName)), role, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = COALESCE(EXCLUDED.full_name, profiles.full_name), updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert profile query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert profile identity")
}

func (r *ProfileRepository) UpdateDetails(ctx context.Context, profile *types.Profile) error {
	query, args, err := psql().
		Update(profileTableName).
		SetMap(map[string]any{
			"full_name":                profile.FullName,
			"address":                  profile.Address,
			"purok":                    profile.Purok,
			"household_size":           profile.HouseholdSize,
			"emergency_contact_name":   profile.EmergencyContactName,
			"emergency_contact_number": profile.EmergencyContactNumber,
			"updated_at":               time.Now(),
		}).
		Where(sq.Eq{"id": profile.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query for %s: %w", profile.ID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, profileID string, role types.Role) error {
	query, args, err := psql().
		Update(profileTableName).
		Set("role", role).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update role query for %s: %w", profileID, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepository) SetSignatureKey(ctx context.Context, profileID, key string) error {
	query, args, err := psql().
		Update(profileTableName).
		Set("signature_key", nullable(key)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate signature query for %s: %w", profileID, err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to set signature key")
}
