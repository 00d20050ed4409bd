// Package seed loads the starter content a fresh barangay portal ships with.
package seed

import (
	"context"
	"fmt"
	"io"

	"brgygo/pkg/types"
)

type announcementUpserter interface {
	Upsert(ctx context.Context, announcement *types.Announcement) error
}

// Announcements is the source of truth for seeded posts. IDs are fixed so rerunning
// the seeder updates rows in place. Posts created from the admin console are never
// touched.
//
// To generate new IDs: `go run ./cmd/brgygo nanoid`
var Announcements = []types.Announcement{
	{
		ID:       "q3LZ8m0sJb1XcT7vKf2RwY9nDu4PaHeG",
		Title:    "Welcome to BrgyGo",
		Content:  "Residents can now request barangay clearances and certificates online. Sign up, complete your profile and track every request from your dashboard.",
		Category: types.AnnouncementCategoryAnnouncement,
	},
	{
		ID:       "Vn5cR2kEo8TgW1yLh6MzQa3JdX0bFsPu",
		Title:    "Office hours",
		Content:  "The barangay hall is open Monday to Friday, 8:00 AM to 5:00 PM. Approved documents can be downloaded anytime from My Requests.",
		Category: types.AnnouncementCategoryAnnouncement,
	},
	{
		ID:       "Hc9Tx4pAm7WsK2eQy0RbNf6LgZ1uVdJo",
		Title:    "Health center schedule",
		Content:  "Free blood pressure checks every Wednesday morning. Book a Health Center appointment so the nurses can prepare for your visit.",
		Category: types.AnnouncementCategoryNews,
	},
}

// SeedAnnouncements upserts every seeded post and returns what was written.
func SeedAnnouncements(ctx context.Context, out io.Writer, repo announcementUpserter) ([]*types.Announcement, error) {
	fmt.Fprintf(out, "Seeding %d announcements...\n", len(Announcements))

	seeded := make([]*types.Announcement, 0, len(Announcements))
	for _, a := range Announcements {
		announcement := a
		fmt.Fprintf(out, "  Upserting announcement: %s (id: %s)\n", announcement.Title, announcement.ID)
		if err := repo.Upsert(ctx, &announcement); err != nil {
			return nil, fmt.Errorf("failed to upsert announcement %s: %w", announcement.ID, err)
		}
		seeded = append(seeded, &announcement)
	}

	fmt.Fprintf(out, "Announcements seeded: %d upserted\n", len(seeded))
	return seeded, nil
}
