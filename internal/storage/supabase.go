package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseStorage talks to the Supabase Storage REST API.
type SupabaseStorage struct {
	baseURL    string
	bucketName string
	client     *resty.Client
}

func NewSupabaseStorage(projectID, apiKey, bucketName string) *SupabaseStorage {
	return newSupabaseStorage(fmt.Sprintf("https://%s.supabase.co/storage/v1", projectID), apiKey, bucketName)
}

func newSupabaseStorage(baseURL, apiKey, bucketName string) *SupabaseStorage {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetAuthToken(apiKey).
		SetHeader("apikey", apiKey)

	return &SupabaseStorage{
		baseURL:    baseURL,
		bucketName: bucketName,
		client:     client,
	}
}

func (s *SupabaseStorage) objectPath(key string) string {
	return fmt.Sprintf("/object/%s/%s", s.bucketName, key)
}

func (s *SupabaseStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(s.objectPath(key))
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

func (s *SupabaseStorage) Download(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.objectPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return resp.Body(), nil
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, ErrObjectNotFound
	}

	return nil, fmt.Errorf("download failed with status %d: %s", resp.StatusCode(), resp.String())
}

func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete(s.objectPath(key))
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucketName, key)
}
