package types

import (
	"strings"
	"time"
)

type AnnouncementCategory string

const (
	AnnouncementCategoryNews         AnnouncementCategory = "news"
	AnnouncementCategoryAnnouncement AnnouncementCategory = "announcement"
)

var AnnouncementCategories = []AnnouncementCategory{AnnouncementCategoryNews, AnnouncementCategoryAnnouncement}

func ParseAnnouncementCategory(s string) (AnnouncementCategory, bool) {
	switch c := AnnouncementCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case AnnouncementCategoryNews, AnnouncementCategoryAnnouncement:
		return c, true
	}
	return "", false
}

type Announcement struct {
	ID        string               `db:"id" json:"id"`
	Title     string               `db:"title" json:"title"`
	Content   string               `db:"content" json:"content"`
	ImageKey  *string              `db:"image_key" json:"-"`
	ImageURL  *string              `db:"image_url" json:"imageUrl"`
	Category  AnnouncementCategory `db:"category" json:"category"`
	CreatedAt time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `db:"updated_at" json:"updatedAt"`
}

type AnnouncementFilter struct {
	Category AnnouncementCategory
	Limit    uint64
}

type AnnouncementForm struct {
	Title    string `form:"title" validate:"required,max=200"`
	Content  string `form:"content" validate:"required"`
	Category string `form:"category" validate:"omitempty,oneof=news announcement"`
}

// Upload is an image attached to an announcement form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}
