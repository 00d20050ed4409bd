package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"brgygo/internal/document"
	"brgygo/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template
	cookie    *securecookie.SecureCookie
	now       func() time.Time

	verifier tokenVerifier
	idp      identityProvider
	sessions sessionStore
	lookup   profileLookup

	requests      requestService
	documents     documentService
	appointments  appointmentService
	announcements announcementService
	profiles      profileService

	server *http.Server
}

// Dependencies are the collaborators the HTTP layer needs. Every field is required.
type Dependencies struct {
	Verifier tokenVerifier
	IdP      identityProvider
	Sessions sessionStore
	Lookup   profileLookup

	Requests      requestService
	Documents     documentService
	Appointments  appointmentService
	Announcements announcementService
	Profiles      profileService
}

func New(config *types.Config, logger *logrus.Logger, deps Dependencies) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("cookie hash key is required")
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(config.SessionMaxAgeSec)

	s := &Service{
		logger: logger,
		config: config,
		cookie: cookie,
		now:    time.Now,

		verifier: deps.Verifier,
		idp:      deps.IdP,
		sessions: deps.Sessions,
		lookup:   deps.Lookup,

		requests:      deps.Requests,
		documents:     deps.Documents,
		appointments:  deps.Appointments,
		announcements: deps.Announcements,
		profiles:      deps.Profiles,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed mux, mostly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.SessionGuard)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.HandleFunc("/announcements", s.handleGetAnnouncements, http.MethodGet)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)
	r.HandleFunc("/signup", s.handleGetSignup, http.MethodGet)
	r.HandleFunc("/signup", s.handlePostSignup, http.MethodPost)
	r.HandleFunc("/signup/confirm", s.handleGetSignupConfirm, http.MethodGet)
	r.HandleFunc("/signup/confirm", s.handlePostSignupConfirm, http.MethodPost)

	// Access to /user and /admin is decided by SessionGuard.
	r.HandleFunc("/user/dashboard", s.handleUserDashboard, http.MethodGet)
	r.HandleFunc("/user/apply/:type", s.handleGetApply, http.MethodGet)
	r.HandleFunc("/user/apply/:type", s.handlePostApply, http.MethodPost)
	r.HandleFunc("/user/requests", s.handleGetMyRequests, http.MethodGet)
	r.HandleFunc("/user/requests/:id/document", s.handleGetDocument, http.MethodGet)
	r.HandleFunc("/user/requests/:id/delete", s.handlePostDeleteRequest, http.MethodPost)
	r.HandleFunc("/user/appointments", s.handleGetMyAppointments, http.MethodGet)
	r.HandleFunc("/user/appointments", s.handlePostMyAppointment, http.MethodPost)
	r.HandleFunc("/user/announcements", s.handleGetUserAnnouncements, http.MethodGet)
	r.HandleFunc("/user/profile", s.handleGetProfile, http.MethodGet)
	r.HandleFunc("/user/profile", s.handlePostProfile, http.MethodPost)
	r.HandleFunc("/user/profile/signature", s.handlePostSignature, http.MethodPost)

	r.HandleFunc("/admin/overview", s.handleAdminOverview, http.MethodGet)
	r.HandleFunc("/admin/requests/queue", s.handleGetRequestQueue, http.MethodGet)
	r.HandleFunc("/admin/requests/issued", s.handleGetIssuedRequests, http.MethodGet)
	r.HandleFunc("/admin/requests/:id/approve", s.handlePostApprove, http.MethodPost)
	r.HandleFunc("/admin/requests/:id/reject", s.handlePostReject, http.MethodPost)
	r.HandleFunc("/admin/requests/:id/document", s.handleGetDocument, http.MethodGet)
	r.HandleFunc("/admin/appointments", s.handleGetAdminAppointments, http.MethodGet)
	r.HandleFunc("/admin/appointments/audit", s.handleGetAppointmentAudit, http.MethodGet)
	r.HandleFunc("/admin/appointments/:id/status", s.handlePostAppointmentStatus, http.MethodPost)
	r.HandleFunc("/admin/announcements", s.handleGetAdminAnnouncements, http.MethodGet)
	r.HandleFunc("/admin/announcements", s.handlePostAnnouncement, http.MethodPost)
	r.HandleFunc("/admin/announcements/:id/edit", s.handleGetEditAnnouncement, http.MethodGet)
	r.HandleFunc("/admin/announcements/:id", s.handlePostUpdateAnnouncement, http.MethodPost)
	r.HandleFunc("/admin/announcements/:id/delete", s.handlePostDeleteAnnouncement, http.MethodPost)
	r.HandleFunc("/admin/residents", s.handleGetResidents, http.MethodGet)
	r.HandleFunc("/admin/residents/export", s.handleGetResidentsExport, http.MethodGet)
	r.HandleFunc("/admin/settings/roles", s.handleGetRoles, http.MethodGet)

	r.HandleFunc("/api/announcements", s.handleAPIAnnouncements, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.RoleUser, types.RoleStaff, types.RoleAdmin))

		r.HandleFunc("/api/user/requests", s.handleAPIMyRequests, http.MethodGet)
		r.HandleFunc("/api/user/requests/:id/document", s.handleAPIDocument, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.RoleStaff, types.RoleAdmin))

		r.HandleFunc("/api/admin/requests", s.handleAPIRequests, http.MethodGet)
		r.HandleFunc("/api/admin/requests/:id/approve", s.handleAPIApprove, http.MethodPost)
		r.HandleFunc("/api/admin/requests/:id/reject", s.handleAPIReject, http.MethodPost)
		r.HandleFunc("/api/admin/appointments", s.handleAPIAppointments, http.MethodGet)
		r.HandleFunc("/api/admin/appointments", s.handleAPICreateAppointment, http.MethodPost)
		r.HandleFunc("/api/admin/appointments/audit", s.handleAPIAppointmentAudit, http.MethodGet)
		r.HandleFunc("/api/admin/appointments/:id", s.handleAPIAppointment, http.MethodGet)
		r.HandleFunc("/api/admin/appointments/:id", s.handleAPIUpdateAppointment, http.MethodPatch)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireRole(types.RoleAdmin))

		r.HandleFunc("/api/admin/profiles/update-role", s.handleAPIUpdateRole, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil || *s == "" {
				return defaultVal
			}
			return *s
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(manila).Format("Jan 2, 2006")
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(manila).Format("Jan 2, 2006 3:04 PM")
		},
		"reference": func(req *types.Request) string {
			return document.ReferenceNumber(req.Type, req.CreatedAt.In(manila).Year(), req.ID)
		},
		"excerpt": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return strings.TrimSpace(string(runes[:n])) + "…"
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
