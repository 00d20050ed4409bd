package service

import (
	"context"
	"net/http"
	"strings"

	"brgygo/internal/storage"
	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MaxImageBytes caps announcement images and signatures.
const MaxImageBytes = 5 << 20

const defaultFeedLimit = 50

type announcementStore interface {
	Announcement(ctx context.Context, announcementID string) (*types.Announcement, error)
	Announcements(ctx context.Context, filter types.AnnouncementFilter) ([]*types.Announcement, error)
	Create(ctx context.Context, announcement *types.Announcement) error
	Update(ctx context.Context, announcement *types.Announcement) error
	Delete(ctx context.Context, announcementID string) error
}

type AnnouncementService struct {
	logger   logrus.FieldLogger
	store    announcementStore
	bucket   storage.Bucket
	validate *validator.Validate
}

// NewAnnouncementService builds the feed service. bucket may be nil, in which case
// image uploads are refused.
func NewAnnouncementService(logger logrus.FieldLogger, store announcementStore, bucket storage.Bucket) *AnnouncementService {
	return &AnnouncementService{
		logger:   logger,
		store:    store,
		bucket:   bucket,
		validate: newValidator(),
	}
}

// Feed is public.
func (s *AnnouncementService) Feed(ctx context.Context, filter types.AnnouncementFilter) ([]*types.Announcement, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultFeedLimit
	}
	return s.store.Announcements(ctx, filter)
}

func (s *AnnouncementService) Get(ctx context.Context, announcementID string) (*types.Announcement, error) {
	return s.store.Announcement(ctx, announcementID)
}

func (s *AnnouncementService) Create(ctx context.Context, identity *types.Identity, form types.AnnouncementForm, image *types.Upload) (*types.Announcement, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	category, err := s.check(&form, image)
	if err != nil {
		return nil, err
	}

	announcement := &types.Announcement{
		Title:    form.Title,
		Content:  form.Content,
		Category: category,
	}

	if image != nil {
		if err := s.attach(ctx, announcement, image); err != nil {
			return nil, err
		}
	}

	if err := s.store.Create(ctx, announcement); err != nil {
		s.discard(ctx, announcement.ImageKey)
		return nil, err
	}

	return announcement, nil
}

// Update replaces the text and, when a new image is supplied, the image.
func (s *AnnouncementService) Update(ctx context.Context, identity *types.Identity, announcementID string, form types.AnnouncementForm, image *types.Upload) (*types.Announcement, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	category, err := s.check(&form, image)
	if err != nil {
		return nil, err
	}

	announcement, err := s.store.Announcement(ctx, announcementID)
	if err != nil {
		return nil, err
	}

	previousKey := announcement.ImageKey
	announcement.Title = form.Title
	announcement.Content = form.Content
	announcement.Category = category

	if image != nil {
		if err := s.attach(ctx, announcement, image); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, announcement); err != nil {
		if image != nil {
			s.discard(ctx, announcement.ImageKey)
		}
		return nil, err
	}

	if image != nil {
		s.discard(ctx, previousKey)
	}

	return announcement, nil
}

// Delete removes the announcement and then its image.
func (s *AnnouncementService) Delete(ctx context.Context, identity *types.Identity, announcementID string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	announcement, err := s.store.Announcement(ctx, announcementID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, announcementID); err != nil {
		return err
	}

	s.discard(ctx, announcement.ImageKey)
	return nil
}

func (s *AnnouncementService) check(form *types.AnnouncementForm, image *types.Upload) (types.AnnouncementCategory, error) {
	utils.TrimStrings(form)

	verr := validateForm(s.validate, *form)

	category := types.AnnouncementCategoryAnnouncement
	if form.Category != "" {
		if c, ok := types.ParseAnnouncementCategory(form.Category); ok {
			category = c
		}
	}

	if image != nil {
		if msg := checkImage(image); msg != "" {
			verr.Add("image", msg)
		} else if s.bucket == nil {
			verr.Add("image", "Image uploads are not configured.")
		}
	}

	return category, verr.Err()
}

func (s *AnnouncementService) attach(ctx context.Context, announcement *types.Announcement, image *types.Upload) error {
	key := storage.ObjectKey("announcements", image.Filename)
	if err := s.bucket.Upload(ctx, key, image.Data, image.ContentType); err != nil {
		return err
	}

	announcement.ImageKey = &key
	announcement.ImageURL = utils.StringPtr(s.bucket.PublicURL(key))
	return nil
}

func (s *AnnouncementService) discard(ctx context.Context, key *string) {
	if key == nil || *key == "" || s.bucket == nil {
		return
	}
	if err := s.bucket.Delete(ctx, *key); err != nil {
		s.logger.WithError(err).WithField("key", *key).Warn("failed to delete image")
	}
}

// checkImage returns a user facing message when the upload is not an acceptable image.
func checkImage(image *types.Upload) string {
	if len(image.Data) == 0 {
		return "The uploaded file is empty."
	}
	if len(image.Data) > MaxImageBytes {
		return "Images must be 5 MB or smaller."
	}

	contentType := image.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(image.Data)
		image.ContentType = contentType
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "Only image files are allowed."
	}

	return ""
}
