package service

import (
	"context"

	"brgygo/internal/document"
	"brgygo/internal/store"
	"brgygo/pkg/types"

	"github.com/stretchr/testify/mock"
)

var (
	citizen  = &types.Identity{UserID: "user-1", Email: "juan@example.com", Role: types.RoleUser}
	staffer  = &types.Identity{UserID: "staff-1", Role: types.RoleStaff}
	official = &types.Identity{UserID: "admin-1", Role: types.RoleAdmin}
)

func errOrNil(args mock.Arguments, i int) error {
	if err, ok := args.Get(i).(error); ok {
		return err
	}
	return nil
}

type mockRequestStore struct{ mock.Mock }

func (m *mockRequestStore) Create(ctx context.Context, req *types.Request) error {
	args := m.Called(ctx, req)
	return errOrNil(args, 0)
}

func (m *mockRequestStore) Request(ctx context.Context, requestID int64) (*types.Request, error) {
	args := m.Called(ctx, requestID)
	req, _ := args.Get(0).(*types.Request)
	return req, errOrNil(args, 1)
}

func (m *mockRequestStore) RequestForOwner(ctx context.Context, requestID int64, userID string) (*types.Request, error) {
	args := m.Called(ctx, requestID, userID)
	req, _ := args.Get(0).(*types.Request)
	return req, errOrNil(args, 1)
}

func (m *mockRequestStore) Requests(ctx context.Context, filter types.RequestFilter) ([]*types.Request, error) {
	args := m.Called(ctx, filter)
	reqs, _ := args.Get(0).([]*types.Request)
	return reqs, errOrNil(args, 1)
}

func (m *mockRequestStore) Transition(ctx context.Context, requestID int64, status types.RequestStatus, reviewerID string) error {
	args := m.Called(ctx, requestID, status, reviewerID)
	return errOrNil(args, 0)
}

func (m *mockRequestStore) DeleteRejected(ctx context.Context, requestID int64, userID string) error {
	args := m.Called(ctx, requestID, userID)
	return errOrNil(args, 0)
}

func (m *mockRequestStore) Counts(ctx context.Context, userID string) (types.RequestCounts, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).(types.RequestCounts)
	return counts, errOrNil(args, 1)
}

type mockAppointmentStore struct{ mock.Mock }

func (m *mockAppointmentStore) Create(ctx context.Context, appt *types.Appointment, changedBy string) error {
	args := m.Called(ctx, appt, changedBy)
	return errOrNil(args, 0)
}

func (m *mockAppointmentStore) Appointment(ctx context.Context, appointmentID string) (*types.Appointment, error) {
	args := m.Called(ctx, appointmentID)
	appt, _ := args.Get(0).(*types.Appointment)
	return appt, errOrNil(args, 1)
}

func (m *mockAppointmentStore) Appointments(ctx context.Context, userID string) ([]*types.Appointment, error) {
	args := m.Called(ctx, userID)
	appts, _ := args.Get(0).([]*types.Appointment)
	return appts, errOrNil(args, 1)
}

func (m *mockAppointmentStore) Update(ctx context.Context, appointmentID string, patch store.AppointmentPatch, changedBy string) error {
	args := m.Called(ctx, appointmentID, patch, changedBy)
	return errOrNil(args, 0)
}

func (m *mockAppointmentStore) History(ctx context.Context, appointmentID string) ([]*types.AppointmentStatusHistory, error) {
	args := m.Called(ctx, appointmentID)
	history, _ := args.Get(0).([]*types.AppointmentStatusHistory)
	return history, errOrNil(args, 1)
}

func (m *mockAppointmentStore) Audit(ctx context.Context, limit uint64) ([]*types.AppointmentAuditEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]*types.AppointmentAuditEntry)
	return entries, errOrNil(args, 1)
}

type mockAnnouncementStore struct{ mock.Mock }

func (m *mockAnnouncementStore) Announcement(ctx context.Context, announcementID string) (*types.Announcement, error) {
	args := m.Called(ctx, announcementID)
	a, _ := args.Get(0).(*types.Announcement)
	return a, errOrNil(args, 1)
}

func (m *mockAnnouncementStore) Announcements(ctx context.Context, filter types.AnnouncementFilter) ([]*types.Announcement, error) {
	args := m.Called(ctx, filter)
	as, _ := args.Get(0).([]*types.Announcement)
	return as, errOrNil(args, 1)
}

func (m *mockAnnouncementStore) Create(ctx context.Context, announcement *types.Announcement) error {
	args := m.Called(ctx, announcement)
	return errOrNil(args, 0)
}

func (m *mockAnnouncementStore) Update(ctx context.Context, announcement *types.Announcement) error {
	args := m.Called(ctx, announcement)
	return errOrNil(args, 0)
}

func (m *mockAnnouncementStore) Delete(ctx context.Context, announcementID string) error {
	args := m.Called(ctx, announcementID)
	return errOrNil(args, 0)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Profile(ctx context.Context, profileID string) (*types.Profile, error) {
	args := m.Called(ctx, profileID)
	p, _ := args.Get(0).(*types.Profile)
	return p, errOrNil(args, 1)
}

func (m *mockProfileStore) Profiles(ctx context.Context) ([]*types.Profile, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]*types.Profile)
	return ps, errOrNil(args, 1)
}

func (m *mockProfileStore) UpsertIdentity(ctx context.Context, profileID, email, fullName string, role types.Role) error {
	args := m.Called(ctx, profileID, email, fullName, role)
	return errOrNil(args, 0)
}

func (m *mockProfileStore) UpdateDetails(ctx context.Context, profile *types.Profile) error {
	args := m.Called(ctx, profile)
	return errOrNil(args, 0)
}

func (m *mockProfileStore) UpdateRole(ctx context.Context, profileID string, role types.Role) error {
	args := m.Called(ctx, profileID, role)
	return errOrNil(args, 0)
}

func (m *mockProfileStore) SetSignatureKey(ctx context.Context, profileID, key string) error {
	args := m.Called(ctx, profileID, key)
	return errOrNil(args, 0)
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) Invalidate(ctx context.Context, profileID string) {
	m.Called(ctx, profileID)
}

type mockBucket struct{ mock.Mock }

func (m *mockBucket) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return errOrNil(args, 0)
}

func (m *mockBucket) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, errOrNil(args, 1)
}

func (m *mockBucket) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return errOrNil(args, 0)
}

func (m *mockBucket) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(in document.Input) (*document.Artifact, error) {
	args := m.Called(in)
	a, _ := args.Get(0).(*document.Artifact)
	return a, errOrNil(args, 1)
}
