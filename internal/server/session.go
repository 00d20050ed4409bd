package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"brgygo/internal"
	"brgygo/internal/auth"
	"brgygo/pkg/types"
)

// refreshWindow is how close to expiry an access token may get before it is refreshed.
const refreshWindow = 5 * time.Minute

// resolveIdentity never fails loudly. Any broken link in the chain means an anonymous
// caller.
func (s *Service) resolveIdentity(w http.ResponseWriter, r *http.Request) *types.Identity {
	ctx := r.Context()
	entry := s.logger.WithField("path", r.URL.Path)

	session := s.currentSession(r)

	var claims *auth.Claims
	if accessToken, ok := s.readSecureCookie(r, internal.COOKIE_ACCESS_TOKEN_NAME); ok {
		verified, err := s.verifier.Verify(ctx, accessToken)
		if err != nil {
			entry.WithError(err).Debug("access token rejected")
		} else {
			claims = verified
		}
	}

	if session != nil && (claims == nil || claims.ExpiresWithin(s.now(), refreshWindow)) {
		refreshed, err := s.refresh(ctx, w, session)
		if err != nil {
			entry.WithError(err).WithField("user_id", session.UserID).Warn("failed to refresh access token")
		} else {
			claims = refreshed
		}
	}

	if claims == nil || claims.Subject == "" {
		return nil
	}

	if session != nil {
		if session.UserID != claims.Subject {
			entry.WithField("user_id", claims.Subject).Warn("session does not belong to token subject")
			return nil
		}
		if s.sessions.Touch(ctx, session.ID) {
			s.setSessionCookie(w, session.ID)
		}
	}

	profile, err := s.lookup.Profile(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, types.ErrProfileNotFound) {
			entry.WithError(err).WithField("user_id", claims.Subject).Error("failed to load profile for identity")
		}
		return nil
	}

	identity := profile.Identity()
	if identity.Email == "" {
		identity.Email = claims.Email
	}

	return identity
}

func (s *Service) currentSession(r *http.Request) *auth.Session {
	sessionID, ok := s.readSecureCookie(r, internal.COOKIE_SESSION_NAME)
	if !ok {
		return nil
	}

	session, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		return nil
	}

	return session
}

func (s *Service) refresh(ctx context.Context, w http.ResponseWriter, session *auth.Session) (*auth.Claims, error) {
	tokens, err := s.idp.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, err
	}

	claims, err := s.verifier.Verify(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := s.setAccessTokenCookie(w, tokens); err != nil {
		return nil, err
	}

	return claims, nil
}

// startSession is called after a successful login.
func (s *Service) startSession(ctx context.Context, w http.ResponseWriter, userID string, tokens *auth.Tokens) error {
	if err := s.setAccessTokenCookie(w, tokens); err != nil {
		return err
	}

	if tokens.RefreshToken == "" {
		return nil
	}

	session, err := s.sessions.Create(ctx, userID, tokens.RefreshToken)
	if err != nil {
		return err
	}

	s.setSessionCookie(w, session.ID)
	return nil
}

func (s *Service) endSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if session := s.currentSession(r); session != nil {
		if err := s.idp.Revoke(ctx, session.RefreshToken); err != nil {
			s.logger.WithError(err).WithField("user_id", session.UserID).Warn("failed to revoke refresh token")
		}
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.WithError(err).WithField("user_id", session.UserID).Warn("failed to delete session")
		}
	}

	s.clearCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME)
	s.clearCookie(w, internal.COOKIE_SESSION_NAME)
}

func (s *Service) setAccessTokenCookie(w http.ResponseWriter, tokens *auth.Tokens) error {
	encrypted, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, tokens.AccessToken)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   tokens.ExpiresIn,
		Path:     "/",
	})

	return nil
}

func (s *Service) setSessionCookie(w http.ResponseWriter, sessionID string) {
	encoded, err := s.cookie.Encode(internal.COOKIE_SESSION_NAME, sessionID)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SESSION_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessions.TTL().Seconds()),
		Path:     "/",
	})
}

func (s *Service) readSecureCookie(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	var value string
	if err := s.cookie.Decode(name, cookie.Value, &value); err != nil {
		s.logger.WithError(err).WithField("cookie", name).Debug("failed to decode cookie")
		return "", false
	}

	return value, value != ""
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// secureCookies is off only for local development over plain http.
func (s *Service) secureCookies() bool {
	return s.config.Environment != "development" && s.config.Environment != "test"
}
