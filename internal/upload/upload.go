// Package upload sends pasted and dropped assets to storage and inserts the
// results into the document.
//
// Uploads run outside transactions. The position an asset belongs at is
// tracked by the view while the upload is in flight, and the insertion is
// a command built against that position once the upload returns.
package upload

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/dom"
)

// File is an asset to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FromDOM converts a pasted or dropped file.
func FromDOM(f dom.File) File {
	return File{Name: f.Name, ContentType: f.Type, Data: f.Data}
}

// Result is where an uploaded asset can be fetched.
type Result struct {
	URL              string
	OriginalFilename string
}

// Uploader stores assets.
type Uploader interface {
	Upload(ctx context.Context, f File) (Result, error)
}

// AllowedImageTypes are the image MIME types accepted from pastes and
// drops.
var AllowedImageTypes = []string{
	"image/bmp",
	"image/gif",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/tiff",
	"image/webp",
	"image/x-icon",
}

// IsAllowedImage reports whether contentType is an accepted image type.
func IsAllowedImage(contentType string) bool {
	return slices.Contains(AllowedImageTypes, strings.ToLower(contentType))
}

// Validate checks that f can be uploaded.
func Validate(f File) error {
	if len(f.Data) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyFile, f.Name)
	}
	if !IsAllowedImage(f.ContentType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, f.ContentType)
	}
	return nil
}

var typeExtensions = map[string]string{
	"image/jpeg":   ".jpg",
	"image/x-icon": ".ico",
}

// objectName returns a fresh storage name for f under prefix, keeping the
// file's extension.
func objectName(prefix string, f File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		ct := strings.ToLower(f.ContentType)
		if e, ok := typeExtensions[ct]; ok {
			ext = e
		} else if _, sub, ok := strings.Cut(ct, "/"); ok {
			ext = "." + sub
		}
	}
	name := uuid.NewString() + ext
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
