package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"brgygo/pkg/types"
)

type profileSeeder interface {
	UpsertIdentity(ctx context.Context, profileID, email, fullName string, role types.Role) error
	UpdateRole(ctx context.Context, profileID string, role types.Role) error
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

// AdminSeed identifies an existing identity provider account that should run the
// admin console. Subject is the account's sub claim.
type AdminSeed struct {
	Subject  string
	Email    string
	FullName string
}

// SeedAdmin makes sure the profile exists and carries the admin role. The role is
// set explicitly because the upsert never changes the role of an existing profile.
func SeedAdmin(ctx context.Context, out io.Writer, repo profileSeeder, admin AdminSeed) (*types.Profile, error) {
	subject := strings.TrimSpace(admin.Subject)
	if subject == "" {
		return nil, fmt.Errorf("admin subject is required")
	}

	fmt.Fprintf(out, "Seeding admin profile %s\n", subject)

	if err := repo.UpsertIdentity(ctx, subject, admin.Email, admin.FullName, types.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to upsert admin profile: %w", err)
	}

	if err := repo.UpdateRole(ctx, subject, types.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to grant admin role: %w", err)
	}

	profile, err := repo.Profile(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to reload admin profile: %w", err)
	}

	return profile, nil
}
