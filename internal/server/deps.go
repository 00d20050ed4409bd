package server

import (
	"context"
	"time"

	"brgygo/internal/auth"
	"brgygo/internal/document"
	"brgygo/internal/service"
	"brgygo/pkg/types"
)

var manila = service.Manila

type tokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type identityProvider interface {
	SignUp(ctx context.Context, email, password, fullName string) (string, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*auth.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type sessionStore interface {
	TTL() time.Duration
	Create(ctx context.Context, userID, refreshToken string) (*auth.Session, error)
	Get(ctx context.Context, sessionID string) (*auth.Session, error)
	Touch(ctx context.Context, sessionID string) bool
	Delete(ctx context.Context, sessionID string) error
}

type profileLookup interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

type requestService interface {
	Submit(ctx context.Context, identity *types.Identity, docType types.DocumentType, form types.RequestForm) (*types.Request, error)
	Approve(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error)
	Reject(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error)
	Mine(ctx context.Context, identity *types.Identity) ([]*types.Request, error)
	Queue(ctx context.Context, identity *types.Identity, filter types.RequestFilter) ([]*types.Request, error)
	Get(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error)
	Delete(ctx context.Context, identity *types.Identity, requestID int64) error
	MyCounts(ctx context.Context, identity *types.Identity) (types.RequestCounts, error)
	AllCounts(ctx context.Context, identity *types.Identity) (types.RequestCounts, error)
}

type documentService interface {
	Generate(ctx context.Context, identity *types.Identity, requestID int64) (*document.Artifact, error)
}

type appointmentService interface {
	Book(ctx context.Context, identity *types.Identity, form types.AppointmentForm) (*types.Appointment, error)
	Create(ctx context.Context, identity *types.Identity, in types.NewAppointment) (*types.Appointment, error)
	Mine(ctx context.Context, identity *types.Identity) ([]*types.Appointment, error)
	All(ctx context.Context, identity *types.Identity) ([]*types.Appointment, error)
	Get(ctx context.Context, identity *types.Identity, appointmentID string) (*types.Appointment, error)
	Update(ctx context.Context, identity *types.Identity, appointmentID string, upd types.AppointmentUpdate) (*types.Appointment, error)
	History(ctx context.Context, identity *types.Identity, appointmentID string) ([]*types.AppointmentStatusHistory, error)
	Audit(ctx context.Context, identity *types.Identity, limit uint64) ([]*types.AppointmentAuditEntry, error)
}

type announcementService interface {
	Feed(ctx context.Context, filter types.AnnouncementFilter) ([]*types.Announcement, error)
	Get(ctx context.Context, announcementID string) (*types.Announcement, error)
	Create(ctx context.Context, identity *types.Identity, form types.AnnouncementForm, image *types.Upload) (*types.Announcement, error)
	Update(ctx context.Context, identity *types.Identity, announcementID string, form types.AnnouncementForm, image *types.Upload) (*types.Announcement, error)
	Delete(ctx context.Context, identity *types.Identity, announcementID string) error
}

type profileService interface {
	RoleForSignup(code string) types.Role
	Register(ctx context.Context, subject, email, fullName string, role types.Role) error
	Me(ctx context.Context, identity *types.Identity) (*types.Profile, error)
	UpdateMe(ctx context.Context, identity *types.Identity, form types.ProfileForm) (*types.Profile, error)
	UploadSignature(ctx context.Context, identity *types.Identity, image *types.Upload) error
	Residents(ctx context.Context, identity *types.Identity) ([]*types.Profile, error)
	UpdateRole(ctx context.Context, identity *types.Identity, upd types.RoleUpdate) error
}
