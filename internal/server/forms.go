package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"brgygo/internal/service"
	"brgygo/pkg/types"
)

// maxUploadBytes leaves room for the other multipart fields.
const maxUploadBytes = service.MaxImageBytes + 1<<20

func (s *Service) decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("failed to decode form: %w", err)
	}
	return nil
}

// decodeMultipart decodes the text fields into dst and returns the named file, if any.
func (s *Service) decodeMultipart(w http.ResponseWriter, r *http.Request, dst any, fileField string) (*types.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, types.NewValidationErrorField(fileField, "Images must be 5 MB or smaller.")
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
	}

	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return nil, fmt.Errorf("failed to decode form: %w", err)
	}

	file, header, err := r.FormFile(fileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", fileField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileField, err)
	}

	if len(data) == 0 && header.Filename == "" {
		return nil, nil
	}

	return &types.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
