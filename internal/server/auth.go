package server

import (
	"errors"
	"net/http"
	"strings"

	"brgygo/internal"
	"brgygo/internal/auth"
	"brgygo/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if identity := identityFrom(r.Context()); identity != nil {
		http.Redirect(w, r, identity.Role.HomePath(), http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}
	if r.URL.Query().Get("confirmed") == "true" {
		data.Notice = "Your account is confirmed. You can log in now."
	}

	s.render(w, r, "page.login", data)
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Log In"},
		Email:        email,
	}

	if email == "" || password == "" {
		data.Error = "Email and password are required."
		s.renderStatus(w, r, http.StatusBadRequest, "page.login", data)
		return
	}

	tokens, err := s.idp.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			data.Error = "Invalid email or password."
		case errors.Is(err, auth.ErrUserNotConfirmed):
			data.Error = "Please confirm your account first. Check your email for the code."
		default:
			s.logger.WithError(err).Error("failed to login user")
			data.Error = "Unable to log in right now. Please try again."
		}
		s.renderStatus(w, r, http.StatusUnauthorized, "page.login", data)
		return
	}

	claims, err := s.verifier.Verify(ctx, tokens.AccessToken)
	if err != nil {
		s.logger.WithError(err).Error("identity provider issued an unverifiable token")
		data.Error = "Unable to log in right now. Please try again."
		s.renderStatus(w, r, http.StatusUnauthorized, "page.login", data)
		return
	}

	// Accounts created before their profile row existed get one here. The role of an
	// existing profile is never changed by this.
	if err := s.profiles.Register(ctx, claims.Subject, email, "", types.RoleUser); err != nil {
		s.logger.WithError(err).WithField("user_id", claims.Subject).Error("failed to ensure profile on login")
		s.internalServerError(w)
		return
	}

	if err := s.startSession(ctx, w, claims.Subject, tokens); err != nil {
		s.logger.WithError(err).WithField("user_id", claims.Subject).Error("failed to start session")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("user_id", claims.Subject).Info("user logged in")

	// Check to see if this login attempt was the result of an unauthed redirect
	if redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil {
		s.clearCookie(w, internal.COOKIE_REDIRECT_NAME)
		if safeRedirect(redirectCookie.Value) {
			http.Redirect(w, r, redirectCookie.Value, http.StatusSeeOther)
			return
		}
	}

	home := types.RoleUser.HomePath()
	if profile, err := s.lookup.Profile(ctx, claims.Subject); err == nil {
		home = profile.Identity().Role.HomePath()
	}

	http.Redirect(w, r, home, http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(r.Context(), w, r)
	s.clearCookie(w, internal.COOKIE_REDIRECT_NAME)
	s.redirectToLogin(w, r)
}
