package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"brgygo/internal/guard"
	"brgygo/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyIdentity contextKey = "identity"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		})
		if identity := identityFrom(r.Context()); identity != nil {
			entry = entry.WithField("user_id", identity.UserID)
		}
		entry.Info("http request")
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionGuard resolves the caller once per request, attaches the identity to the
// context and enforces guard decisions for page routes. API routes are left to
// RequireRole so they can answer with JSON instead of redirects.
func (s *Service) SessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		identity := s.resolveIdentity(w, r)
		r = r.WithContext(withIdentity(r.Context(), identity))

		if strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		decision := guard.Decide(r.URL.Path, identity)
		switch decision.Action {
		case guard.RedirectLogin:
			if r.Method == http.MethodGet {
				s.setRedirectCookie(w, r.URL.RequestURI(), time.Minute*5)
			}
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			return
		case guard.RedirectHome:
			s.logger.WithFields(logrus.Fields{
				"user_id": identity.UserID,
				"role":    identity.Role,
				"path":    r.URL.Path,
			}).Warn("role not permitted for path")
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without an identity and 403 when the role is not listed.
func (s *Service) RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFrom(r.Context())
			if identity == nil {
				s.writeError(w, r, types.ErrAuthRequired)
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			s.writeError(w, r, types.ErrForbidden)
		})
	}
}

func withIdentity(ctx context.Context, identity *types.Identity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

func identityFrom(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(contextKeyIdentity).(*types.Identity)
	return identity
}
