package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brgygo/internal"
	"brgygo/internal/auth"
	"brgygo/internal/document"
	"brgygo/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// The fakes embed their interface so any method a test does not expect panics.

var errTokenRejected = errors.New("token rejected")

type fakeVerifier struct {
	tokenVerifier
	claims map[string]*auth.Claims
}

func (f *fakeVerifier) Verify(_ context.Context, accessToken string) (*auth.Claims, error) {
	if c, ok := f.claims[accessToken]; ok {
		return c, nil
	}
	return nil, errTokenRejected
}

type fakeIdP struct {
	identityProvider
	tokens    *auth.Tokens
	loginErr  error
	refreshed *auth.Tokens
	revoked   []string
}

func (f *fakeIdP) Login(context.Context, string, string) (*auth.Tokens, error) {
	return f.tokens, f.loginErr
}

func (f *fakeIdP) Refresh(context.Context, string) (*auth.Tokens, error) {
	if f.refreshed == nil {
		return nil, auth.ErrInvalidCredentials
	}
	return f.refreshed, nil
}

func (f *fakeIdP) Revoke(_ context.Context, refreshToken string) error {
	f.revoked = append(f.revoked, refreshToken)
	return nil
}

type fakeSessions struct {
	sessionStore
	sessions map[string]*auth.Session
	deleted  []string
}

func (f *fakeSessions) TTL() time.Duration { return time.Hour }

func (f *fakeSessions) Create(_ context.Context, userID, refreshToken string) (*auth.Session, error) {
	session := &auth.Session{ID: "sid-" + userID, UserID: userID, RefreshToken: refreshToken}
	if f.sessions == nil {
		f.sessions = map[string]*auth.Session{}
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeSessions) Get(_ context.Context, sessionID string) (*auth.Session, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, types.ErrSessionNotFound
}

func (f *fakeSessions) Touch(_ context.Context, sessionID string) bool {
	_, ok := f.sessions[sessionID]
	return ok
}

func (f *fakeSessions) Delete(_ context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	delete(f.sessions, sessionID)
	return nil
}

type fakeLookup struct {
	profiles map[string]*types.Profile
}

func (f *fakeLookup) Profile(_ context.Context, profileID string) (*types.Profile, error) {
	if p, ok := f.profiles[profileID]; ok {
		return p, nil
	}
	return nil, types.ErrProfileNotFound
}

type fakeRequests struct {
	requestService
	submitErr error
	submitted []types.RequestForm
	mine      []*types.Request
}

func (f *fakeRequests) Submit(_ context.Context, _ *types.Identity, docType types.DocumentType, form types.RequestForm) (*types.Request, error) {
	f.submitted = append(f.submitted, form)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &types.Request{ID: 1, Type: docType, Status: types.RequestStatusPending}, nil
}

func (f *fakeRequests) Mine(context.Context, *types.Identity) ([]*types.Request, error) {
	return f.mine, nil
}

type fakeDocuments struct {
	documentService
	artifact *document.Artifact
	err      error
}

func (f *fakeDocuments) Generate(context.Context, *types.Identity, int64) (*document.Artifact, error) {
	return f.artifact, f.err
}

type fakeAnnouncements struct {
	announcementService
	feed []*types.Announcement
}

func (f *fakeAnnouncements) Feed(context.Context, types.AnnouncementFilter) ([]*types.Announcement, error) {
	return f.feed, nil
}

type fakeProfiles struct {
	profileService
	registered []string
	roleErr    error
	roleCalls  []types.RoleUpdate
}

func (f *fakeProfiles) Register(_ context.Context, subject, _, _ string, _ types.Role) error {
	f.registered = append(f.registered, subject)
	return nil
}

func (f *fakeProfiles) UpdateRole(_ context.Context, _ *types.Identity, upd types.RoleUpdate) error {
	f.roleCalls = append(f.roleCalls, upd)
	return f.roleErr
}

type harness struct {
	svc      *Service
	verifier *fakeVerifier
	idp      *fakeIdP
	sessions *fakeSessions
	lookup   *fakeLookup

	requests      *fakeRequests
	documents     *fakeDocuments
	announcements *fakeAnnouncements
	profiles      *fakeProfiles
}

var testNow = time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		verifier: &fakeVerifier{claims: map[string]*auth.Claims{}},
		idp:      &fakeIdP{},
		sessions: &fakeSessions{sessions: map[string]*auth.Session{}},
		lookup:   &fakeLookup{profiles: map[string]*types.Profile{}},

		requests:      &fakeRequests{},
		documents:     &fakeDocuments{},
		announcements: &fakeAnnouncements{},
		profiles:      &fakeProfiles{},
	}

	config := &types.Config{
		Environment:      "test",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		CookieBlockKey:   base64.StdEncoding.EncodeToString([]byte("abcdef0123456789")),
	}

	svc, err := New(config, logger, Dependencies{
		Verifier:      h.verifier,
		IdP:           h.idp,
		Sessions:      h.sessions,
		Lookup:        h.lookup,
		Requests:      h.requests,
		Documents:     h.documents,
		Announcements: h.announcements,
		Profiles:      h.profiles,
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }

	h.svc = svc
	return h
}

// signIn registers a profile and returns the access token cookie that resolves to it.
func (h *harness) signIn(t *testing.T, userID string, role types.Role) *http.Cookie {
	t.Helper()

	name := "Juan Dela Cruz"
	email := userID + "@example.com"
	h.lookup.profiles[userID] = &types.Profile{ID: userID, FullName: &name, Email: &email, Role: role}

	token := "token-" + userID
	h.verifier.claims[token] = &auth.Claims{Subject: userID, Email: email, ExpiresAt: testNow.Add(time.Hour)}

	return h.cookie(t, internal.COOKIE_ACCESS_TOKEN_NAME, token)
}

func (h *harness) cookie(t *testing.T, name, value string) *http.Cookie {
	t.Helper()

	encoded, err := h.svc.cookie.Encode(name, value)
	require.NoError(t, err)
	return &http.Cookie{Name: name, Value: encoded}
}

func (h *harness) serve(req *http.Request, cookies ...*http.Cookie) *http.Response {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.svc.Handler().ServeHTTP(rec, req)
	return rec.Result()
}
