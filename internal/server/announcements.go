package server

import (
	"net/http"
	"strconv"
	"strings"

	"brgygo/pkg/types"
)

func feedFilter(r *http.Request) types.AnnouncementFilter {
	var filter types.AnnouncementFilter
	if c, ok := types.ParseAnnouncementCategory(r.URL.Query().Get("category")); ok {
		filter.Category = c
	}
	if limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64); err == nil && limit > 0 && limit <= 100 {
		filter.Limit = limit
	}
	return filter
}

func (s *Service) handleGetAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.renderFeed(w, r, "page.announcements")
}

func (s *Service) handleGetUserAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.renderFeed(w, r, "page.user.announcements")
}

func (s *Service) renderFeed(w http.ResponseWriter, r *http.Request, templateName string) {
	filter := feedFilter(r)

	announcements, err := s.announcements.Feed(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to load announcements")
		s.internalServerError(w)
		return
	}

	data := &types.AnnouncementsPageData{
		BasePageData:  types.BasePageData{Title: "Announcements"},
		Announcements: announcements,
		Category:      filter.Category,
		Categories:    types.AnnouncementCategories,
	}

	s.render(w, r, templateName, data)
}

func (s *Service) handleGetAdminAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.renderAdminAnnouncements(w, r, http.StatusOK, nil, types.AnnouncementForm{}, nil)
}

func (s *Service) handleGetEditAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcement, err := s.announcements.Get(r.Context(), strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).Error("failed to load announcement")
		}
		s.redirectWithError(w, r, "/admin/announcements", messageFor(err))
		return
	}

	form := types.AnnouncementForm{
		Title:    announcement.Title,
		Content:  announcement.Content,
		Category: string(announcement.Category),
	}

	s.renderAdminAnnouncements(w, r, http.StatusOK, announcement, form, nil)
}

func (s *Service) renderAdminAnnouncements(w http.ResponseWriter, r *http.Request, status int, editing *types.Announcement, form types.AnnouncementForm, formErr error) {
	announcements, err := s.announcements.Feed(r.Context(), types.AnnouncementFilter{Limit: 100})
	if err != nil {
		s.logger.WithError(err).Error("failed to load announcements")
		s.internalServerError(w)
		return
	}

	data := &types.AdminAnnouncementsPageData{
		BasePageData:  types.BasePageData{Title: "Manage Announcements"},
		Announcements: announcements,
		Categories:    types.AnnouncementCategories,
		Form:          form,
		Editing:       editing,
	}
	if formErr != nil {
		data.Error = messageFor(formErr)
		data.FieldErrors = fieldErrors(formErr)
	}

	s.renderStatus(w, r, status, "page.admin.announcements", data)
}

func (s *Service) handlePostAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form types.AnnouncementForm
	image, err := s.decodeMultipart(w, r, &form, "image")
	if err == nil {
		_, err = s.announcements.Create(ctx, identityFrom(ctx), form, image)
	}
	if err != nil {
		s.announcementFormFailed(w, r, nil, form, err)
		return
	}

	s.redirectWithNotice(w, r, "/admin/announcements", "Announcement published.")
}

func (s *Service) handlePostUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	announcementID := strings.TrimSpace(r.PathValue("id"))

	var form types.AnnouncementForm
	image, err := s.decodeMultipart(w, r, &form, "image")
	if err == nil {
		_, err = s.announcements.Update(ctx, identityFrom(ctx), announcementID, form, image)
	}
	if err != nil {
		s.announcementFormFailed(w, r, &types.Announcement{ID: announcementID}, form, err)
		return
	}

	s.redirectWithNotice(w, r, "/admin/announcements", "Announcement updated.")
}

func (s *Service) announcementFormFailed(w http.ResponseWriter, r *http.Request, editing *types.Announcement, form types.AnnouncementForm, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusBadRequest:
		s.renderAdminAnnouncements(w, r, status, editing, form, err)
	case http.StatusInternalServerError:
		s.logger.WithError(err).Error("failed to save announcement")
		s.redirectWithError(w, r, "/admin/announcements", messageFor(err))
	default:
		s.redirectWithError(w, r, "/admin/announcements", messageFor(err))
	}
}

func (s *Service) handlePostDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	announcementID := strings.TrimSpace(r.PathValue("id"))

	if err := s.announcements.Delete(ctx, identityFrom(ctx), announcementID); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("announcement_id", announcementID).Error("failed to delete announcement")
		}
		s.redirectWithError(w, r, "/admin/announcements", messageFor(err))
		return
	}

	s.redirectWithNotice(w, r, "/admin/announcements", "Announcement deleted.")
}
