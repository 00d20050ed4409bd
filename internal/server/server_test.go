package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"brgygo/internal"
	"brgygo/internal/auth"
	"brgygo/internal/document"
	"brgygo/internal/guard"
	"brgygo/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeEnvelope(t *testing.T, res *http.Response) envelope {
	t.Helper()
	defer res.Body.Close()
	var body envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

// findCookie returns the last Set-Cookie for name, which is what the browser keeps.
func findCookie(res *http.Response, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func TestNewRequiresHashKey(t *testing.T) {
	_, err := New(&types.Config{}, nil, Dependencies{})
	require.Error(t, err)
}

func TestHealthAndHome(t *testing.T) {
	h := newHarness(t)
	h.announcements.feed = []*types.Announcement{
		{ID: "a-1", Title: "Clean-up drive", Content: "Saturday at the plaza.", Category: types.AnnouncementCategoryNews, CreatedAt: testNow},
	}

	res := h.serve(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", readBody(t, res))

	res = h.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	body := readBody(t, res)
	assert.Contains(t, body, "Clean-up drive")
	assert.Contains(t, body, "Log in")
}

func TestStripTrailingSlash(t *testing.T) {
	h := newHarness(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := h.svc.StripTrailingSlash(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/announcements/?category=news", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/announcements?category=news", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStaticAssetsBypassTheGuard(t *testing.T) {
	h := newHarness(t)

	res := h.serve(httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/css")
}

func TestSessionGuardRedirectsAnonymousCallers(t *testing.T) {
	h := newHarness(t)

	res := h.serve(httptest.NewRequest(http.MethodGet, "/admin/overview", nil))
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	location, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, guard.LoginPath, location.Path)
	assert.Equal(t, guard.MessageLoginRequired, location.Query().Get("message"))

	redirect := findCookie(res, internal.COOKIE_REDIRECT_NAME)
	require.NotNil(t, redirect)
	assert.Equal(t, "/admin/overview", redirect.Value)
}

func TestSessionGuardSendsResidentsHome(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)

	res := h.serve(httptest.NewRequest(http.MethodGet, "/admin/residents", nil), session)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	location, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", location.Path)
	assert.Equal(t, guard.MessageNotAuthorized, location.Query().Get("message"))
}

func TestSessionGuardIgnoresTamperedCookies(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "user-1", types.RoleUser)

	forged := &http.Cookie{Name: internal.COOKIE_ACCESS_TOKEN_NAME, Value: "token-user-1"}
	res := h.serve(httptest.NewRequest(http.MethodGet, "/user/requests", nil), forged)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/login"))
}

func TestExpiringTokenIsRefreshedFromSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "user-1", types.RoleUser)

	// The cookie token is about to expire, the session holds a refresh token.
	h.verifier.claims["stale"] = &auth.Claims{Subject: "user-1", ExpiresAt: testNow.Add(time.Minute)}
	h.verifier.claims["fresh"] = &auth.Claims{Subject: "user-1", ExpiresAt: testNow.Add(time.Hour)}
	h.sessions.sessions["sid-1"] = &auth.Session{ID: "sid-1", UserID: "user-1", RefreshToken: "refresh"}
	h.idp.refreshed = &auth.Tokens{AccessToken: "fresh", ExpiresIn: 3600}
	h.requests.mine = []*types.Request{{ID: 4, Type: types.DocumentTypeIndigency, Status: types.RequestStatusPending}}

	res := h.serve(
		httptest.NewRequest(http.MethodGet, "/api/user/requests", nil),
		h.cookie(t, internal.COOKIE_ACCESS_TOKEN_NAME, "stale"),
		h.cookie(t, internal.COOKIE_SESSION_NAME, "sid-1"),
	)
	require.Equal(t, http.StatusOK, res.StatusCode)

	access := findCookie(res, internal.COOKIE_ACCESS_TOKEN_NAME)
	require.NotNil(t, access)
	var token string
	require.NoError(t, h.svc.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, access.Value, &token))
	assert.Equal(t, "fresh", token)
	assert.NotNil(t, findCookie(res, internal.COOKIE_SESSION_NAME))
}

func TestSessionOfAnotherUserIsRejected(t *testing.T) {
	h := newHarness(t)
	access := h.signIn(t, "user-1", types.RoleUser)
	h.sessions.sessions["sid-2"] = &auth.Session{ID: "sid-2", UserID: "user-2", RefreshToken: "refresh"}

	res := h.serve(
		httptest.NewRequest(http.MethodGet, "/api/user/requests", nil),
		access,
		h.cookie(t, internal.COOKIE_SESSION_NAME, "sid-2"),
	)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRequireRole(t *testing.T) {
	h := newHarness(t)
	resident := h.signIn(t, "user-1", types.RoleUser)

	res := h.serve(httptest.NewRequest(http.MethodGet, "/api/admin/requests", nil))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "Authentication required.", decodeEnvelope(t, res).Error)

	res = h.serve(httptest.NewRequest(http.MethodGet, "/api/admin/requests", nil), resident)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "You are not allowed to do that.", decodeEnvelope(t, res).Error)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		role     types.Role
		redirect string
		location string
	}{
		{name: "resident goes to dashboard", role: types.RoleUser, location: "/user/dashboard"},
		{name: "admin goes to overview", role: types.RoleAdmin, location: "/admin/overview"},
		{name: "pending redirect is honoured", role: types.RoleUser, redirect: "/user/appointments", location: "/user/appointments"},
		{name: "foreign redirect is ignored", role: types.RoleUser, redirect: "//evil.example.com", location: "/user/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.signIn(t, "user-1", tt.role)
			h.idp.tokens = &auth.Tokens{AccessToken: "token-user-1", RefreshToken: "refresh-1", ExpiresIn: 3600}

			form := url.Values{"email": {"user-1@example.com"}, "password": {"Secret123!"}}
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			var cookies []*http.Cookie
			if tt.redirect != "" {
				cookies = append(cookies, &http.Cookie{Name: internal.COOKIE_REDIRECT_NAME, Value: tt.redirect})
			}

			res := h.serve(req, cookies...)
			require.Equal(t, http.StatusSeeOther, res.StatusCode)
			assert.Equal(t, tt.location, res.Header.Get("Location"))

			assert.Equal(t, []string{"user-1"}, h.profiles.registered)
			assert.Contains(t, h.sessions.sessions, "sid-user-1")
			assert.NotNil(t, findCookie(res, internal.COOKIE_ACCESS_TOKEN_NAME))
			assert.NotNil(t, findCookie(res, internal.COOKIE_SESSION_NAME))
		})
	}
}

func TestLoginWithBadCredentials(t *testing.T) {
	h := newHarness(t)
	h.idp.loginErr = auth.ErrInvalidCredentials

	form := url.Values{"email": {"juan@example.com"}, "password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := h.serve(req)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	body := readBody(t, res)
	assert.Contains(t, body, "Invalid email or password.")
	assert.Contains(t, body, "juan@example.com")
	assert.Nil(t, findCookie(res, internal.COOKIE_ACCESS_TOKEN_NAME))
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	access := h.signIn(t, "user-1", types.RoleUser)
	h.sessions.sessions["sid-1"] = &auth.Session{ID: "sid-1", UserID: "user-1", RefreshToken: "refresh"}

	res := h.serve(httptest.NewRequest(http.MethodPost, "/logout", nil), access, h.cookie(t, internal.COOKIE_SESSION_NAME, "sid-1"))
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
	assert.Equal(t, []string{"refresh"}, h.idp.revoked)
	assert.Equal(t, []string{"sid-1"}, h.sessions.deleted)

	cleared := findCookie(res, internal.COOKIE_SESSION_NAME)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestApplyRerendersValidationErrors(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)

	verr := types.NewValidationError()
	verr.Add("age", "Enter a valid age.")
	h.requests.submitErr = verr

	form := url.Values{"first_name": {"Juan"}, "last_name": {"Dela Cruz"}, "age": {"abc"}, "address": {"Purok 2"}}
	req := httptest.NewRequest(http.MethodPost, "/user/apply/indigency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := h.serve(req, session)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	body := readBody(t, res)
	assert.Contains(t, body, "Enter a valid age.")
	assert.Contains(t, body, "Dela Cruz")

	require.Len(t, h.requests.submitted, 1)
	assert.Equal(t, "Juan", h.requests.submitted[0].FirstName)
}

func TestApplySuccessRedirects(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)

	form := url.Values{"first_name": {"Juan"}, "last_name": {"Dela Cruz"}, "age": {"30"}, "address": {"Purok 2"}, "purpose": {"Scholarship"}}
	req := httptest.NewRequest(http.MethodPost, "/user/apply/indigency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := h.serve(req, session)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	location, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/user/requests", location.Path)
	assert.Contains(t, location.Query().Get("notice"), string(types.DocumentTypeIndigency))
}

func TestApplyUnknownTypeIsNotFound(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)

	res := h.serve(httptest.NewRequest(http.MethodGet, "/user/apply/passport", nil), session)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDocumentDownload(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)
	h.documents.artifact = &document.Artifact{
		Filename:        "BRGY-IND-000007.pdf",
		ReferenceNumber: "BRGY-IND-000007",
		ContentType:     "application/pdf",
		Bytes:           []byte("%PDF-1.3 test"),
	}

	res := h.serve(httptest.NewRequest(http.MethodGet, "/user/requests/7/document", nil), session)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/pdf", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="BRGY-IND-000007.pdf"`, res.Header.Get("Content-Disposition"))
	assert.Equal(t, "no-store", res.Header.Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.3 test", readBody(t, res))
}

func TestDocumentDownloadBeforeApproval(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "user-1", types.RoleUser)
	h.documents.err = types.ErrNotApproved

	res := h.serve(httptest.NewRequest(http.MethodGet, "/user/requests/7/document", nil), session)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	location, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/user/requests", location.Path)
	assert.Equal(t, messageFor(types.ErrNotApproved), location.Query().Get("error"))
}

func TestAPIUpdateRole(t *testing.T) {
	verr := types.NewValidationErrorField("id", "Malformed profile id.")

	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
		fields  map[string]string
	}{
		{name: "updated", body: `{"id":"p-1","role":"staff"}`, status: http.StatusOK},
		{name: "invalid role", body: `{"id":"p-1","role":"mayor"}`, err: types.ErrInvalidRole, status: http.StatusBadRequest, message: "Invalid role."},
		{name: "malformed id", body: `{"id":"x","role":"staff"}`, err: verr, status: http.StatusBadRequest, message: "Please fix the highlighted fields.", fields: verr.Fields},
		{name: "unknown profile", body: `{"id":"p-9","role":"staff"}`, err: types.ErrProfileNotFound, status: http.StatusNotFound, message: "Not found."},
		{name: "backend failure", body: `{"id":"p-1","role":"staff"}`, err: errors.New("db down"), status: http.StatusInternalServerError, message: "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			session := h.signIn(t, "admin-1", types.RoleAdmin)
			h.profiles.roleErr = tt.err

			req := httptest.NewRequest(http.MethodPost, "/api/admin/profiles/update-role", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			res := h.serve(req, session)
			assert.Equal(t, tt.status, res.StatusCode)

			body := decodeEnvelope(t, res)
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.fields, body.Fields)
			require.Len(t, h.profiles.roleCalls, 1)
		})
	}
}

func TestAPIUpdateRoleRejectsBadJSON(t *testing.T) {
	h := newHarness(t)
	session := h.signIn(t, "admin-1", types.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/profiles/update-role", strings.NewReader(`{"id":`))
	res := h.serve(req, session)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, h.profiles.roleCalls)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{types.NewValidationErrorField("age", "Required."), http.StatusBadRequest},
		{types.ErrInvalidStatus, http.StatusBadRequest},
		{types.ErrInvalidRole, http.StatusBadRequest},
		{types.ErrInvalidDocumentType, http.StatusBadRequest},
		{types.ErrNothingToUpdate, http.StatusBadRequest},
		{types.ErrAuthRequired, http.StatusUnauthorized},
		{types.ErrForbidden, http.StatusForbidden},
		{types.ErrRequestNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", types.ErrAppointmentNotFound), http.StatusNotFound},
		{types.ErrAnnouncementNotFound, http.StatusNotFound},
		{types.ErrIllegalTransition, http.StatusConflict},
		{types.ErrNotDeletable, http.StatusConflict},
		{types.ErrNotApproved, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.True(t, safeRedirect("/user/requests?x=1"))
	assert.False(t, safeRedirect("//evil.example.com"))
	assert.False(t, safeRedirect(`/\evil.example.com`))
	assert.False(t, safeRedirect("https://evil.example.com"))
	assert.False(t, safeRedirect(""))
}
