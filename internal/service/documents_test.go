package service

import (
	"context"
	"errors"
	"testing"

	"brgygo/internal/document"
	"brgygo/internal/utils"
	"brgygo/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func approvedRequest() *types.Request {
	return &types.Request{
		ID:        42,
		UserID:    "user-1",
		Type:      types.DocumentTypeIndigency,
		Status:    types.RequestStatusApproved,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
	}
}

func TestDocumentService_GenerateForOwner(t *testing.T) {
	reqs := new(mockRequestStore)
	profiles := new(mockProfileStore)
	bucket := new(mockBucket)
	renderer := new(mockRenderer)

	req := approvedRequest()
	reqs.On("RequestForOwner", mock.Anything, int64(42), "user-1").Return(req, nil).Once()
	profiles.On("Profile", mock.Anything, "user-1").Return(&types.Profile{ID: "user-1", SignatureKey: utils.StringPtr("signatures/user-1/a.png")}, nil).Once()
	bucket.On("Download", mock.Anything, "signatures/user-1/a.png").Return(pngHeader, nil).Once()
	renderer.On("Render", document.Input{Request: req, Signature: pngHeader}).
		Return(&document.Artifact{Filename: "CertificateOfIndigency-DelaCruz.pdf", Bytes: []byte("%PDF-")}, nil).Once()

	svc := NewDocumentService(logrus.New(), reqs, profiles, bucket, renderer)
	artifact, err := svc.Generate(context.Background(), citizen, 42)
	require.NoError(t, err)
	assert.Equal(t, "CertificateOfIndigency-DelaCruz.pdf", artifact.Filename)
	renderer.AssertExpectations(t)
}

func TestDocumentService_SignatureIsOptional(t *testing.T) {
	reqs := new(mockRequestStore)
	profiles := new(mockProfileStore)
	bucket := new(mockBucket)
	renderer := new(mockRenderer)

	req := approvedRequest()
	reqs.On("Request", mock.Anything, int64(42)).Return(req, nil).Once()
	profiles.On("Profile", mock.Anything, "user-1").Return(&types.Profile{ID: "user-1", SignatureKey: utils.StringPtr("k")}, nil).Once()
	bucket.On("Download", mock.Anything, "k").Return(nil, errors.New("boom")).Once()
	renderer.On("Render", document.Input{Request: req}).Return(&document.Artifact{}, nil).Once()

	svc := NewDocumentService(logrus.New(), reqs, profiles, bucket, renderer)
	_, err := svc.Generate(context.Background(), staffer, 42)
	require.NoError(t, err)
	renderer.AssertExpectations(t)
}

func TestDocumentService_RequiresApproval(t *testing.T) {
	reqs := new(mockRequestStore)
	renderer := new(mockRenderer)

	req := approvedRequest()
	req.Status = types.RequestStatusPending
	reqs.On("RequestForOwner", mock.Anything, int64(42), "user-1").Return(req, nil).Once()

	svc := NewDocumentService(logrus.New(), reqs, nil, nil, renderer)
	_, err := svc.Generate(context.Background(), citizen, 42)
	assert.ErrorIs(t, err, types.ErrNotApproved)
	renderer.AssertNotCalled(t, "Render", mock.Anything)
}

func TestDocumentService_PropagatesRenderError(t *testing.T) {
	reqs := new(mockRequestStore)
	renderer := new(mockRenderer)

	reqs.On("Request", mock.Anything, int64(42)).Return(approvedRequest(), nil).Once()
	renderer.On("Render", mock.Anything).Return(nil, &types.RenderError{Stage: "qr", Err: errors.New("encoder down")}).Once()

	svc := NewDocumentService(logrus.New(), reqs, nil, nil, renderer)
	_, err := svc.Generate(context.Background(), official, 42)

	var rerr *types.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "qr", rerr.Stage)
}
