// Package media abstracts the external image CDN. The application only
// relies on two capabilities: upload a binary and get back a stable URL plus
// a deletable identifier, and delete by that identifier.
package media

import (
	"context"
	"io"
)

// MaxUploadBytes caps accepted image uploads.
const MaxUploadBytes = 5 << 20

// Upload is the result of storing a binary at the CDN.
type Upload struct {
	URL string
	ID  string
}

type Store interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*Upload, error)
	Delete(ctx context.Context, id string) error
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidImageType reports whether contentType is an accepted image format.
func ValidImageType(contentType string) bool {
	return allowedTypes[contentType]
}
