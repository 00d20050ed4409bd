package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestAnnouncementService_CreateWithImage(t *testing.T) {
	st := new(mockAnnouncementStore)
	bucket := new(mockBucket)

	bucket.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "announcements/") && strings.HasSuffix(key, ".png")
	}), pngHeader, "image/png").Return(nil).Once()
	st.On("Create", mock.Anything, mock.MatchedBy(func(a *types.Announcement) bool {
		return a.Title == "Clean-up drive" && a.Category == types.AnnouncementCategoryNews && a.ImageURL != nil
	})).Return(nil).Once()

	svc := NewAnnouncementService(logrus.New(), st, bucket)
	a, err := svc.Create(context.Background(), official, types.AnnouncementForm{
		Title:    "Clean-up drive",
		Content:  "Saturday 6AM",
		Category: "news",
	}, &types.Upload{Filename: "drive.PNG", ContentType: "image/png", Data: pngHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(*a.ImageURL, "https://cdn.example.com/announcements/"))
	st.AssertExpectations(t)
	bucket.AssertExpectations(t)
}

func TestAnnouncementService_CategoryDefaults(t *testing.T) {
	st := new(mockAnnouncementStore)
	st.On("Create", mock.Anything, mock.MatchedBy(func(a *types.Announcement) bool {
		return a.Category == types.AnnouncementCategoryAnnouncement
	})).Return(nil).Once()

	svc := NewAnnouncementService(logrus.New(), st, nil)
	_, err := svc.Create(context.Background(), official, types.AnnouncementForm{Title: "Water outage", Content: "Purok 3"}, nil)
	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestAnnouncementService_RejectsBadImages(t *testing.T) {
	tests := []struct {
		name  string
		image *types.Upload
	}{
		{"empty", &types.Upload{Filename: "a.png", ContentType: "image/png"}},
		{"too large", &types.Upload{Filename: "a.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, MaxImageBytes+1)}},
		{"not an image", &types.Upload{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}},
		{"sniffed text", &types.Upload{Filename: "a.txt", Data: []byte("hello world")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mockAnnouncementStore)
			bucket := new(mockBucket)
			svc := NewAnnouncementService(logrus.New(), st, bucket)

			_, err := svc.Create(context.Background(), official, types.AnnouncementForm{Title: "t", Content: "c"}, tt.image)

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "image")
			st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			bucket.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnnouncementService_OnlyAdmins(t *testing.T) {
	svc := NewAnnouncementService(logrus.New(), new(mockAnnouncementStore), nil)

	_, err := svc.Create(context.Background(), staffer, types.AnnouncementForm{Title: "t", Content: "c"}, nil)
	assert.ErrorIs(t, err, types.ErrForbidden)

	err = svc.Delete(context.Background(), nil, "a-1")
	assert.ErrorIs(t, err, types.ErrAuthRequired)
}

func TestAnnouncementService_UpdateReplacesImage(t *testing.T) {
	st := new(mockAnnouncementStore)
	bucket := new(mockBucket)

	st.On("Announcement", mock.Anything, "a-1").Return(&types.Announcement{ID: "a-1", ImageKey: utils.StringPtr("announcements/old.png")}, nil).Once()
	bucket.On("Upload", mock.Anything, mock.Anything, pngHeader, "image/png").Return(nil).Once()
	st.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	bucket.On("Delete", mock.Anything, "announcements/old.png").Return(nil).Once()

	svc := NewAnnouncementService(logrus.New(), st, bucket)
	a, err := svc.Update(context.Background(), official, "a-1", types.AnnouncementForm{Title: "t", Content: "c"},
		&types.Upload{Filename: "new.png", ContentType: "image/png", Data: pngHeader})
	require.NoError(t, err)
	assert.NotEqual(t, "announcements/old.png", *a.ImageKey)
	st.AssertExpectations(t)
	bucket.AssertExpectations(t)
}

func TestAnnouncementService_DeleteRemovesImage(t *testing.T) {
	st := new(mockAnnouncementStore)
	bucket := new(mockBucket)

	st.On("Announcement", mock.Anything, "a-1").Return(&types.Announcement{ID: "a-1", ImageKey: utils.StringPtr("announcements/x.png")}, nil).Once()
	st.On("Delete", mock.Anything, "a-1").Return(nil).Once()
	bucket.On("Delete", mock.Anything, "announcements/x.png").Return(errors.New("gone")).Once()

	svc := NewAnnouncementService(logrus.New(), st, bucket)
	require.NoError(t, svc.Delete(context.Background(), official, "a-1"))
	st.AssertExpectations(t)
	bucket.AssertExpectations(t)
}

func TestAnnouncementService_FeedDefaultsLimit(t *testing.T) {
	st := new(mockAnnouncementStore)
	st.On("Announcements", mock.Anything, types.AnnouncementFilter{Category: types.AnnouncementCategoryNews, Limit: 50}).Return([]*types.Announcement{}, nil).Once()

	svc := NewAnnouncementService(logrus.New(), st, nil)
	_, err := svc.Feed(context.Background(), types.AnnouncementFilter{Category: types.AnnouncementCategoryNews})
	require.NoError(t, err)
	st.AssertExpectations(t)
}
