package service

import (
	"context"
	"strconv"

	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/go-playground/validator/v10"
)

type requestStore interface {
	Create(ctx context.Context, req *types.Request) error
	Request(ctx context.Context, requestID int64) (*types.Request, error)
	RequestForOwner(ctx context.Context, requestID int64, userID string) (*types.Request, error)
	Requests(ctx context.Context, filter types.RequestFilter) ([]*types.Request, error)
	Transition(ctx context.Context, requestID int64, status types.RequestStatus, reviewerID string) error
	DeleteRejected(ctx context.Context, requestID int64, userID string) error
	Counts(ctx context.Context, userID string) (types.RequestCounts, error)
}

type RequestService struct {
	store    requestStore
	validate *validator.Validate
}

func NewRequestService(store requestStore) *RequestService {
	return &RequestService{store: store, validate: newValidator()}
}

// Submit validates the application and stores it as a pending request owned by the caller.
func (s *RequestService) Submit(ctx context.Context, identity *types.Identity, docType types.DocumentType, form types.RequestForm) (*types.Request, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}
	if !docType.Valid() {
		return nil, types.ErrInvalidDocumentType
	}

	utils.TrimStrings(&form)

	verr := validateForm(s.validate, form)

	age, err := strconv.Atoi(form.Age)
	if form.Age != "" && (err != nil || age < 1 || age > 150) {
		verr.Add("age", "Enter a valid age.")
	}

	for field, msg := range requiredFor(docType, form) {
		verr.Add(field, msg)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	req := &types.Request{
		UserID:             identity.UserID,
		Type:               docType,
		FirstName:          form.FirstName,
		MiddleInitial:      utils.NilIfEmpty(form.MiddleInitial),
		LastName:           form.LastName,
		Age:                age,
		Address:            form.Address,
		Barangay:           utils.NilIfEmpty(form.Barangay),
		Purpose:            utils.NilIfEmpty(form.Purpose),
		BusinessName:       utils.NilIfEmpty(form.BusinessName),
		ResidencyDuration:  utils.NilIfEmpty(form.ResidencyDuration),
		CharacterReference: utils.NilIfEmpty(form.CharacterReference),
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// requiredFor returns the type specific fields that are missing.
func requiredFor(docType types.DocumentType, form types.RequestForm) map[string]string {
	missing := map[string]string{}

	switch docType {
	case types.DocumentTypeBarangayClearance, types.DocumentTypeIndigency, types.DocumentTypeGoodMoral:
		if form.Purpose == "" {
			missing["purpose"] = "Purpose is required."
		}
	case types.DocumentTypeBusinessClearance:
		if form.BusinessName == "" {
			missing["business_name"] = "Business name is required."
		}
	case types.DocumentTypeResidency:
		if form.ResidencyDuration == "" {
			missing["residency_duration"] = "Length of residency is required."
		}
	}

	return missing
}

func (s *RequestService) Approve(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error) {
	return s.review(ctx, identity, requestID, types.RequestStatusApproved)
}

func (s *RequestService) Reject(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error) {
	return s.review(ctx, identity, requestID, types.RequestStatusRejected)
}

func (s *RequestService) review(ctx context.Context, identity *types.Identity, requestID int64, status types.RequestStatus) (*types.Request, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}

	if err := s.store.Transition(ctx, requestID, status, identity.UserID); err != nil {
		return nil, err
	}

	return s.store.Request(ctx, requestID)
}

// Mine lists the caller's own requests, newest first.
func (s *RequestService) Mine(ctx context.Context, identity *types.Identity) ([]*types.Request, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}
	return s.store.Requests(ctx, types.RequestFilter{UserID: identity.UserID})
}

// Queue lists every request for reviewers.
func (s *RequestService) Queue(ctx context.Context, identity *types.Identity, filter types.RequestFilter) ([]*types.Request, error) {
	if err := requireReviewer(identity); err != nil {
		return nil, err
	}
	return s.store.Requests(ctx, filter)
}

// Get returns the request when the caller owns it or may review it.
func (s *RequestService) Get(ctx context.Context, identity *types.Identity, requestID int64) (*types.Request, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}
	if identity.Role.CanReview() {
		return s.store.Request(ctx, requestID)
	}
	return s.store.RequestForOwner(ctx, requestID, identity.UserID)
}

// Delete removes one of the caller's rejected requests.
func (s *RequestService) Delete(ctx context.Context, identity *types.Identity, requestID int64) error {
	if identity == nil || identity.UserID == "" {
		return types.ErrAuthRequired
	}
	return s.store.DeleteRejected(ctx, requestID, identity.UserID)
}

func (s *RequestService) MyCounts(ctx context.Context, identity *types.Identity) (types.RequestCounts, error) {
	if identity == nil || identity.UserID == "" {
		return types.RequestCounts{}, types.ErrAuthRequired
	}
	return s.store.Counts(ctx, identity.UserID)
}

func (s *RequestService) AllCounts(ctx context.Context, identity *types.Identity) (types.RequestCounts, error) {
	if err := requireReviewer(identity); err != nil {
		return types.RequestCounts{}, err
	}
	return s.store.Counts(ctx, "")
}

func requireReviewer(identity *types.Identity) error {
	if identity == nil || identity.UserID == "" {
		return types.ErrAuthRequired
	}
	if !identity.Role.CanReview() {
		return types.ErrForbidden
	}
	return nil
}

func requireAdmin(identity *types.Identity) error {
	if identity == nil || identity.UserID == "" {
		return types.ErrAuthRequired
	}
	if identity.Role != types.RoleAdmin {
		return types.ErrForbidden
	}
	return nil
}
