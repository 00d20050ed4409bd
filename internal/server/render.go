package server

import (
	"bytes"
	"net/http"
	"strings"

	"brgygo/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	return s.renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func (s *Service) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) error {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{HomePath: "/"}
		if identity := identityFrom(r.Context()); identity != nil {
			navbar = types.NavbarData{
				IsAuthenticated: true,
				UserID:          identity.UserID,
				UserEmail:       identity.Email,
				UserName:        identity.FullName,
				Role:            identity.Role,
				IsAdmin:         identity.IsAdmin(),
				HomePath:        identity.Role.HomePath(),
			}
			if navbar.UserName == "" {
				navbar.UserName = identity.Email
			}
		}
		setter.SetNavbarData(navbar)
	}

	if setter, ok := data.(types.FlashSetter); ok {
		q := r.URL.Query()
		setter.SetFlash(
			strings.TrimSpace(q.Get("notice")),
			strings.TrimSpace(q.Get("error")),
			strings.TrimSpace(q.Get("message")),
		)
	}

	// Render into a buffer so a template failure never leaves a half written page.
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Service) render(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	s.renderStatus(w, r, http.StatusOK, templateName, data)
}

func (s *Service) renderStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	if err := s.renderTemplateStatus(w, r, status, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render template")
		s.internalServerError(w)
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
