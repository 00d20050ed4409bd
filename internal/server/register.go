package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"brgygo/internal/auth"
	"brgygo/pkg/types"
)

func (s *Service) handleGetSignup(w http.ResponseWriter, r *http.Request) {
	if identity := identityFrom(r.Context()); identity != nil {
		http.Redirect(w, r, identity.Role.HomePath(), http.StatusSeeOther)
		return
	}

	data := &types.SignupPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
	}

	s.render(w, r, "page.signup", data)
}

func (s *Service) handlePostSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")
	adminCode := r.FormValue("admin_code")

	data := &types.SignupPageData{
		BasePageData: types.BasePageData{Title: "Create Account"},
		FullName:     fullName,
		Email:        email,
	}

	data.FieldErrors = validateSignupInput(fullName, email, password, confirmPassword)
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during signup")

		data.Error = "Please fix the highlighted fields."
		s.renderStatus(w, r, http.StatusBadRequest, "page.signup", data)
		return
	}

	subject, err := s.idp.SignUp(ctx, email, password, fullName)
	if err != nil {
		data.Error, data.FieldErrors = s.mapSignUpError(err)
		s.renderStatus(w, r, http.StatusBadRequest, "page.signup", data)
		return
	}

	role := s.profiles.RoleForSignup(adminCode)
	if err := s.profiles.Register(ctx, subject, email, fullName, role); err != nil {
		// The account exists upstream. Login creates the profile if this failed.
		s.logger.WithError(err).WithField("user_id", subject).Error("failed to create profile after signup")
	}

	s.logger.WithField("user_id", subject).WithField("role", role).Info("user signed up")

	v := url.Values{}
	v.Set("email", email)

	http.Redirect(w, r, fmt.Sprintf("/signup/confirm?%s", v.Encode()), http.StatusSeeOther)
}

func (s *Service) handleGetSignupConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmSignupPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}

	s.render(w, r, "page.signup.confirm", data)
}

func (s *Service) handlePostSignupConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	data := &types.ConfirmSignupPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        email,
	}

	if email == "" || code == "" {
		data.Error = "Email and confirmation code are required."
		s.renderStatus(w, r, http.StatusBadRequest, "page.signup.confirm", data)
		return
	}

	if err := s.idp.ConfirmSignUp(r.Context(), email, code); err != nil {
		if errors.Is(err, auth.ErrCodeMismatch) {
			data.Error = "Invalid confirmation code. Please check the code and try again."
		} else {
			s.logger.WithError(err).Error("failed to confirm user signup")
			data.Error = "Unable to confirm account. Please try again."
		}
		s.renderStatus(w, r, http.StatusBadRequest, "page.signup.confirm", data)
		return
	}

	v := url.Values{}
	v.Set("confirmed", "true")
	v.Set("email", email)
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateSignupInput(fullName, email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if fullName == "" {
		errs["full_name"] = "Full name is required."
	}

	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(password)
	hasLower := hasLowerReg.MatchString(password)
	hasDigit := hasDigitReg.MatchString(password)
	hasSymbol := hasSymbolReg.MatchString(password)

	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 8 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	switch {
	case errors.Is(err, auth.ErrInvalidPassword):
		fieldErrs["password"] = "Password does not meet the account policy."
		return "Please fix the highlighted fields.", fieldErrs
	case errors.Is(err, auth.ErrUserExists):
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs
	}

	s.logger.WithError(err).Error("unhandled signup error")

	return "Unable to create account right now. Please try again.", fieldErrs
}
