// Package guard decides whether a request path may be served to the current identity.
package guard

import (
	"net/url"
	"strings"

	"brgygo/pkg/types"
)

const (
	LoginPath = "/login"

	MessageLoginRequired = "Please log in to access this page."
	MessageNotAuthorized = "You are not authorized to access that page."
)

var (
	ProtectedPrefixes = []string{"/admin", "/user"}
	AdminPrefixes     = []string{"/admin"}
)

type Action int

const (
	Allow Action = iota
	RedirectLogin
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "allow"
}

type Decision struct {
	Action   Action
	Location string
}

func (d Decision) Allowed() bool {
	return d.Action == Allow
}

// Decide is a pure function of path and identity. A nil identity means the caller
// could not be resolved for any reason.
func Decide(path string, identity *types.Identity) Decision {
	if !matchesAny(path, ProtectedPrefixes) {
		return Decision{Action: Allow}
	}

	if identity == nil || identity.UserID == "" {
		return Decision{
			Action:   RedirectLogin,
			Location: withMessage(LoginPath, MessageLoginRequired),
		}
	}

	if matchesAny(path, AdminPrefixes) && identity.Role != types.RoleAdmin {
		return Decision{
			Action:   RedirectHome,
			Location: withMessage(types.RoleUser.HomePath(), MessageNotAuthorized),
		}
	}

	return Decision{Action: Allow}
}

// IsProtected reports whether path needs an identity at all.
func IsProtected(path string) bool {
	return matchesAny(path, ProtectedPrefixes)
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func withMessage(path, message string) string {
	v := url.Values{}
	v.Set("message", message)
	return path + "?" + v.Encode()
}
