package server

import (
	"fmt"
	"net/http"
	"strconv"

	"brgygo/internal/export"
	"brgygo/pkg/types"
)

func profileForm(p *types.Profile) types.ProfileForm {
	form := types.ProfileForm{
		FullName:               derefString(p.FullName),
		Address:                derefString(p.Address),
		Purok:                  derefString(p.Purok),
		EmergencyContactName:   derefString(p.EmergencyContactName),
		EmergencyContactNumber: derefString(p.EmergencyContactNumber),
	}
	if p.HouseholdSize != nil {
		form.HouseholdSize = strconv.Itoa(*p.HouseholdSize)
	}
	return form
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	profile, err := s.profiles.Me(ctx, identity)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to fetch profile")
		s.internalServerError(w)
		return
	}

	data := &types.ProfilePageData{
		BasePageData: types.BasePageData{Title: "My Profile"},
		Profile:      profile,
		Form:         profileForm(profile),
		HasSignature: profile.SignatureKey != nil && *profile.SignatureKey != "",
	}

	s.render(w, r, "page.user.profile", data)
}

func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var form types.ProfileForm
	if err := s.decodeForm(r, &form); err != nil {
		s.logger.WithError(err).Warn("failed to decode profile form")
		s.redirectWithError(w, r, "/user/profile", "The form could not be read. Please try again.")
		return
	}

	if _, err := s.profiles.UpdateMe(ctx, identity, form); err != nil {
		status := statusFor(err)
		if status != http.StatusBadRequest {
			s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to update profile")
			s.redirectWithError(w, r, "/user/profile", messageFor(err))
			return
		}

		profile, perr := s.profiles.Me(ctx, identity)
		if perr != nil {
			s.logger.WithError(perr).WithField("user_id", identity.UserID).Error("failed to fetch profile")
			s.internalServerError(w)
			return
		}

		data := &types.ProfilePageData{
			BasePageData: types.BasePageData{Title: "My Profile", Error: messageFor(err)},
			Profile:      profile,
			Form:         form,
			FieldErrors:  fieldErrors(err),
			HasSignature: profile.SignatureKey != nil && *profile.SignatureKey != "",
		}
		s.renderStatus(w, r, status, "page.user.profile", data)
		return
	}

	s.redirectWithNotice(w, r, "/user/profile", "Profile saved.")
}

func (s *Service) handlePostSignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var discard struct{}
	image, err := s.decodeMultipart(w, r, &discard, "signature")
	if err == nil {
		err = s.profiles.UploadSignature(ctx, identity, image)
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to upload signature")
			s.redirectWithError(w, r, "/user/profile", messageFor(err))
			return
		}

		msg := messageFor(err)
		if fields := fieldErrors(err); fields["signature"] != "" {
			msg = fields["signature"]
		}
		s.redirectWithError(w, r, "/user/profile", msg)
		return
	}

	s.redirectWithNotice(w, r, "/user/profile", "Signature uploaded.")
}

func (s *Service) handleGetResidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	residents, err := s.profiles.Residents(ctx, identityFrom(ctx))
	if err != nil {
		s.logger.WithError(err).Error("failed to list residents")
		s.internalServerError(w)
		return
	}

	data := &types.ResidentsPageData{
		BasePageData: types.BasePageData{Title: "Residents"},
		Residents:    residents,
	}

	s.render(w, r, "page.admin.residents", data)
}

func (s *Service) handleGetResidentsExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	residents, err := s.profiles.Residents(ctx, identityFrom(ctx))
	if err != nil {
		s.logger.WithError(err).Error("failed to list residents for export")
		s.internalServerError(w)
		return
	}

	data, err := export.Residents(residents)
	if err != nil {
		s.logger.WithError(err).Error("failed to build residents workbook")
		s.redirectWithError(w, r, "/admin/residents", "The export could not be generated. Please try again.")
		return
	}

	filename := fmt.Sprintf("residents-%s.xlsx", s.now().In(manila).Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Service) handleGetRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profiles, err := s.profiles.Residents(ctx, identityFrom(ctx))
	if err != nil {
		s.logger.WithError(err).Error("failed to list profiles for role management")
		s.internalServerError(w)
		return
	}

	data := &types.RolesPageData{
		BasePageData: types.BasePageData{Title: "Roles"},
		Profiles:     profiles,
		Roles:        types.Roles,
	}

	s.render(w, r, "page.admin.roles", data)
}
