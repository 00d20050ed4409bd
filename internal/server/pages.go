package server

import (
	"net/http"
	"time"

	"brgygo/pkg/types"
)

const (
	homeAnnouncementLimit = 3
	dashboardListLimit    = 5
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.announcements.Feed(r.Context(), types.AnnouncementFilter{Limit: homeAnnouncementLimit})
	if err != nil {
		// The landing page still renders without the feed.
		s.logger.WithError(err).Error("failed to load announcements for home page")
	}

	data := &types.HomePageData{
		BasePageData:  types.BasePageData{Title: "Welcome"},
		Announcements: announcements,
		DocumentTypes: types.DocumentTypes,
	}

	s.render(w, r, "page.home", data)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)
	entry := s.logger.WithField("user_id", identity.UserID)

	counts, err := s.requests.MyCounts(ctx, identity)
	if err != nil {
		entry.WithError(err).Error("failed to count requests")
		s.internalServerError(w)
		return
	}

	requests, err := s.requests.Mine(ctx, identity)
	if err != nil {
		entry.WithError(err).Error("failed to list requests")
		s.internalServerError(w)
		return
	}

	appointments, err := s.appointments.Mine(ctx, identity)
	if err != nil {
		entry.WithError(err).Error("failed to list appointments")
		s.internalServerError(w)
		return
	}

	data := &types.UserDashboardPageData{
		BasePageData:  types.BasePageData{Title: "Dashboard"},
		Counts:        counts,
		Recent:        firstN(requests, dashboardListLimit),
		Upcoming:      firstN(upcoming(appointments, s.now()), dashboardListLimit),
		DocumentTypes: types.DocumentTypes,
	}

	s.render(w, r, "page.user.dashboard", data)
}

func (s *Service) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	counts, err := s.requests.AllCounts(ctx, identity)
	if err != nil {
		s.logger.WithError(err).Error("failed to count requests")
		s.internalServerError(w)
		return
	}

	pending, err := s.requests.Queue(ctx, identity, types.RequestFilter{Status: types.RequestStatusPending, Limit: dashboardListLimit})
	if err != nil {
		s.logger.WithError(err).Error("failed to list pending requests")
		s.internalServerError(w)
		return
	}

	appointments, err := s.appointments.All(ctx, identity)
	if err != nil {
		s.logger.WithError(err).Error("failed to list appointments")
		s.internalServerError(w)
		return
	}

	residents, err := s.profiles.Residents(ctx, identity)
	if err != nil {
		s.logger.WithError(err).Error("failed to list residents")
		s.internalServerError(w)
		return
	}

	data := &types.AdminOverviewPageData{
		BasePageData: types.BasePageData{Title: "Overview"},
		Counts:       counts,
		Pending:      pending,
		Upcoming:     firstN(upcoming(appointments, s.now()), dashboardListLimit),
		Residents:    len(residents),
	}

	s.render(w, r, "page.admin.overview", data)
}

// upcoming keeps open appointments that have not happened yet. Input is already
// ordered by schedule.
func upcoming(appointments []*types.Appointment, now time.Time) []*types.Appointment {
	out := make([]*types.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.ScheduleAt.Before(now) {
			continue
		}
		if a.Status == types.AppointmentStatusPending || a.Status == types.AppointmentStatusConfirmed {
			out = append(out, a)
		}
	}
	return out
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
