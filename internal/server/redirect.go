package server

import (
	"net/http"
	"net/url"
	"strings"
)

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	s.redirectWithParam(w, r, path, "notice", notice)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	s.redirectWithParam(w, r, path, "error", msg)
}

func (s *Service) redirectWithParam(w http.ResponseWriter, r *http.Request, path, key, value string) {
	v := url.Values{}
	v.Set(key, value)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeRedirect only allows local absolute paths.
func safeRedirect(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.HasPrefix(path, "/\\")
}
