package service

import (
	"context"

	"brgygo/internal/document"
	"brgygo/pkg/types"

	"github.com/sirupsen/logrus"
)

type requestReader interface {
	Request(ctx context.Context, requestID int64) (*types.Request, error)
	RequestForOwner(ctx context.Context, requestID int64, userID string) (*types.Request, error)
}

type profileReader interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

type objectReader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type documentRenderer interface {
	Render(in document.Input) (*document.Artifact, error)
}

type DocumentService struct {
	logger   logrus.FieldLogger
	requests requestReader
	profiles profileReader
	objects  objectReader
	renderer documentRenderer
}

func NewDocumentService(logger logrus.FieldLogger, requests requestReader, profiles profileReader, objects objectReader, renderer documentRenderer) *DocumentService {
	return &DocumentService{
		logger:   logger,
		requests: requests,
		profiles: profiles,
		objects:  objects,
		renderer: renderer,
	}
}

// Generate renders the certificate for an approved request. Owners may render their
// own requests and reviewers may render any request.
func (s *DocumentService) Generate(ctx context.Context, identity *types.Identity, requestID int64) (*document.Artifact, error) {
	if identity == nil || identity.UserID == "" {
		return nil, types.ErrAuthRequired
	}

	var (
		req *types.Request
		err error
	)
	if identity.Role.CanReview() {
		req, err = s.requests.Request(ctx, requestID)
	} else {
		req, err = s.requests.RequestForOwner(ctx, requestID, identity.UserID)
	}
	if err != nil {
		return nil, err
	}

	if req.Status != types.RequestStatusApproved {
		return nil, types.ErrNotApproved
	}

	return s.renderer.Render(document.Input{
		Request:   req,
		Signature: s.signature(ctx, req.UserID),
	})
}

// signature is best effort, a certificate without one is still valid.
func (s *DocumentService) signature(ctx context.Context, userID string) []byte {
	if s.profiles == nil || s.objects == nil {
		return nil
	}

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil || profile.SignatureKey == nil || *profile.SignatureKey == "" {
		return nil
	}

	data, err := s.objects.Download(ctx, *profile.SignatureKey)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to load signature")
		return nil
	}

	return data
}
