package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"brgygo/pkg/types"
)

func applyPageData(docType types.DocumentType, form types.RequestForm) *types.ApplyPageData {
	return &types.ApplyPageData{
		BasePageData: types.BasePageData{Title: "Apply for " + string(docType)},
		DocumentType: docType,
		Form:         form,

		ShowPurpose:            docType != types.DocumentTypeBusinessClearance && docType != types.DocumentTypeResidency,
		ShowBusinessName:       docType == types.DocumentTypeBusinessClearance,
		ShowResidencyDuration:  docType == types.DocumentTypeResidency,
		ShowCharacterReference: docType == types.DocumentTypeGoodMoral,
	}
}

func (s *Service) handleGetApply(w http.ResponseWriter, r *http.Request) {
	docType, err := types.ParseDocumentType(r.PathValue("type"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var form types.RequestForm
	if identity := identityFrom(r.Context()); identity != nil {
		if profile, err := s.profiles.Me(r.Context(), identity); err == nil && profile.Address != nil {
			form.Address = *profile.Address
		}
	}

	s.render(w, r, "page.user.apply", applyPageData(docType, form))
}

func (s *Service) handlePostApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	docType, err := types.ParseDocumentType(r.PathValue("type"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var form types.RequestForm
	if err := s.decodeForm(r, &form); err != nil {
		s.logger.WithError(err).Warn("failed to decode request form")
		s.redirectWithError(w, r, "/user/apply/"+docType.Slug(), "The form could not be read. Please try again.")
		return
	}

	req, err := s.requests.Submit(ctx, identity, docType, form)
	if err != nil {
		if errors.Is(err, types.ErrAuthRequired) {
			s.redirectToLogin(w, r)
			return
		}

		data := applyPageData(docType, form)
		data.Error = messageFor(err)
		data.FieldErrors = fieldErrors(err)

		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to submit request")
		}

		s.renderStatus(w, r, status, "page.user.apply", data)
		return
	}

	s.logger.WithField("user_id", identity.UserID).WithField("request_id", req.ID).Info("request submitted")
	s.redirectWithNotice(w, r, "/user/requests", fmt.Sprintf("Your %s request was submitted.", docType))
}

func (s *Service) handleGetMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	requests, err := s.requests.Mine(ctx, identity)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("failed to list requests")
		s.internalServerError(w)
		return
	}

	data := &types.MyRequestsPageData{
		BasePageData: types.BasePageData{Title: "My Requests"},
		Requests:     requests,
	}

	s.render(w, r, "page.user.requests", data)
}

func (s *Service) handlePostDeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	requestID, ok := pathID(r)
	if !ok {
		s.redirectWithError(w, r, "/user/requests", "Request not found.")
		return
	}

	if err := s.requests.Delete(ctx, identity, requestID); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("request_id", requestID).Error("failed to delete request")
		}
		s.redirectWithError(w, r, "/user/requests", messageFor(err))
		return
	}

	s.redirectWithNotice(w, r, "/user/requests", "Request deleted.")
}

// handleGetDocument streams the certificate as an attachment. It serves both the
// owner and the reviewer routes; the service decides who may see what.
func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	back := "/user/requests"
	if identity != nil && identity.IsAdmin() {
		back = "/admin/requests/issued"
	}

	requestID, ok := pathID(r)
	if !ok {
		s.redirectWithError(w, r, back, "Request not found.")
		return
	}

	artifact, err := s.documents.Generate(ctx, identity, requestID)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("request_id", requestID).Error("failed to generate document")
			s.redirectWithError(w, r, back, "The document could not be generated. Please try again.")
			return
		}
		s.redirectWithError(w, r, back, messageFor(err))
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Bytes)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(artifact.Bytes)
}

func (s *Service) handleGetRequestQueue(w http.ResponseWriter, r *http.Request) {
	s.renderAdminRequests(w, r, "queue", "Request Queue", types.RequestFilter{Status: types.RequestStatusPending})
}

func (s *Service) handleGetIssuedRequests(w http.ResponseWriter, r *http.Request) {
	s.renderAdminRequests(w, r, "issued", "Issued Documents", types.RequestFilter{Status: types.RequestStatusApproved})
}

func (s *Service) renderAdminRequests(w http.ResponseWriter, r *http.Request, tab, title string, filter types.RequestFilter) {
	ctx := r.Context()

	if t := r.URL.Query().Get("type"); t != "" {
		if docType, err := types.ParseDocumentType(t); err == nil {
			filter.Type = docType
		}
	}

	requests, err := s.requests.Queue(ctx, identityFrom(ctx), filter)
	if err != nil {
		s.logger.WithError(err).WithField("tab", tab).Error("failed to list requests for review")
		s.internalServerError(w)
		return
	}

	data := &types.AdminRequestsPageData{
		BasePageData: types.BasePageData{Title: title},
		Tab:          tab,
		Requests:     requests,
	}

	s.render(w, r, "page.admin.requests", data)
}

func (s *Service) handlePostApprove(w http.ResponseWriter, r *http.Request) {
	s.reviewFromPage(w, r, types.RequestStatusApproved)
}

func (s *Service) handlePostReject(w http.ResponseWriter, r *http.Request) {
	s.reviewFromPage(w, r, types.RequestStatusRejected)
}

func (s *Service) reviewFromPage(w http.ResponseWriter, r *http.Request, status types.RequestStatus) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	requestID, ok := pathID(r)
	if !ok {
		s.redirectWithError(w, r, "/admin/requests/queue", "Request not found.")
		return
	}

	var err error
	if status == types.RequestStatusApproved {
		_, err = s.requests.Approve(ctx, identity, requestID)
	} else {
		_, err = s.requests.Reject(ctx, identity, requestID)
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("request_id", requestID).Error("failed to review request")
		}
		s.redirectWithError(w, r, "/admin/requests/queue", messageFor(err))
		return
	}

	s.logger.WithField("request_id", requestID).WithField("status", status).WithField("reviewer", identity.UserID).Info("request reviewed")
	s.redirectWithNotice(w, r, "/admin/requests/queue", fmt.Sprintf("Request #%d %s.", requestID, status))
}
