package service

import (
	"context"
	"crypto/subtle"
	"strconv"
	"strings"

	"brgygo/internal/storage"
	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type profileStore interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
	Profiles(ctx context.Context) ([]*types.Profile, error)
	UpsertIdentity(ctx context.Context, profileID, email, fullName string, role types.Role) error
	UpdateDetails(ctx context.Context, profile *types.Profile) error
	UpdateRole(ctx context.Context, profileID string, role types.Role) error
	SetSignatureKey(ctx context.Context, profileID, key string) error
}

type profileInvalidator interface {
	Invalidate(ctx context.Context, profileID string)
}

type ProfileService struct {
	store     profileStore
	cache     profileInvalidator
	bucket    storage.Bucket
	adminCode string
	validate  *validator.Validate
}

// NewProfileService builds the profile service. Sign ups presenting adminCode become
// admins. An empty adminCode disables that path.
func NewProfileService(store profileStore, cache profileInvalidator, bucket storage.Bucket, adminCode string) *ProfileService {
	return &ProfileService{
		store:     store,
		cache:     cache,
		bucket:    bucket,
		adminCode: adminCode,
		validate:  newValidator(),
	}
}

// RoleForSignup picks the initial role for a new account.
func (s *ProfileService) RoleForSignup(code string) types.Role {
	code = strings.TrimSpace(code)
	if s.adminCode == "" || code == "" {
		return types.RoleUser
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.adminCode)) == 1 {
		return types.RoleAdmin
	}
	return types.RoleUser
}

// Register creates the profile row for a new identity provider subject.
func (s *ProfileService) Register(ctx context.Context, subject, email, fullName string, role types.Role) error {
	if !role.Valid() {
		return types.ErrInvalidRole
	}
	if err := s.store.UpsertIdentity(ctx, subject, email, fullName, role); err != nil {
		return err
	}
	s.invalidate(ctx, subject)
	return nil
}

func (s *ProfileService) Me(ctx context.Context, identity *types.Identity) (*types.Profile, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}
	return s.store.Profile(ctx, identity.UserID)
}

func (s *ProfileService) UpdateMe(ctx context.Context, identity *types.Identity, form types.ProfileForm) (*types.Profile, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}

	utils.TrimStrings(&form)

	verr := validateForm(s.validate, form)

	var household *int
	if form.HouseholdSize != "" {
		n, err := strconv.Atoi(form.HouseholdSize)
		if err != nil || n < 1 || n > 100 {
			verr.Add("household_size", "Enter a valid household size.")
		} else {
			household = &n
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	profile := &types.Profile{
		ID:                     identity.UserID,
		FullName:               utils.NilIfEmpty(form.FullName),
		Address:                utils.NilIfEmpty(form.Address),
		Purok:                  utils.NilIfEmpty(form.Purok),
		HouseholdSize:          household,
		EmergencyContactName:   utils.NilIfEmpty(form.EmergencyContactName),
		EmergencyContactNumber: utils.NilIfEmpty(form.EmergencyContactNumber),
	}

	if err := s.store.UpdateDetails(ctx, profile); err != nil {
		return nil, err
	}
	s.invalidate(ctx, identity.UserID)

	return s.store.Profile(ctx, identity.UserID)
}

// UploadSignature stores the caller's signature image and records its key.
func (s *ProfileService) UploadSignature(ctx context.Context, identity *types.Identity, image *types.Upload) error {
	if identity == nil || identity.UserID == "" {
		return types.ErrAuthRequired
	}
	if image == nil {
		return types.NewValidationErrorField("signature", "Choose an image to upload.")
	}
	if msg := checkImage(image); msg != "" {
		return types.NewValidationErrorField("signature", msg)
	}
	if s.bucket == nil {
		return types.NewValidationErrorField("signature", "Image uploads are not configured.")
	}

	key := storage.ObjectKey("signatures/"+identity.UserID, image.Filename)
	if err := s.bucket.Upload(ctx, key, image.Data, image.ContentType); err != nil {
		return err
	}

	if err := s.store.SetSignatureKey(ctx, identity.UserID, key); err != nil {
		return err
	}
	s.invalidate(ctx, identity.UserID)

	return nil
}

// Residents lists every profile for administrators.
func (s *ProfileService) Residents(ctx context.Context, identity *types.Identity) ([]*types.Profile, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	return s.store.Profiles(ctx)
}

// UpdateRole changes another account's role. Only administrators may do this.
func (s *ProfileService) UpdateRole(ctx context.Context, identity *types.Identity, upd types.RoleUpdate) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	upd.ID = strings.TrimSpace(upd.ID)
	verr := types.NewValidationError()
	if upd.ID == "" {
		verr.Add("id", "A profile id is required.")
	} else if _, err := uuid.Parse(upd.ID); err != nil {
		verr.Add("id", "Malformed profile id.")
	}
	if strings.TrimSpace(upd.Role) == "" {
		verr.Add("role", "A role is required.")
	}
	if err := verr.Err(); err != nil {
		return err
	}

	role, err := types.ParseRole(upd.Role)
	if err != nil {
		return err
	}

	if err := s.store.UpdateRole(ctx, upd.ID, role); err != nil {
		return err
	}
	s.invalidate(ctx, upd.ID)

	return nil
}

func (s *ProfileService) invalidate(ctx context.Context, profileID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, profileID)
	}
}
