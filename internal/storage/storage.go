package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"brgygo/internal/utils"
)

var ErrObjectNotFound = errors.New("object not found")

// Bucket stores announcement images and resident signatures.
type Bucket interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ObjectKey builds a collision free key under prefix that keeps the original extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), utils.NanoID(), ext)
}
