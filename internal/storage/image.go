package storage

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ShowcasePrefix is the key prefix of showcase screenshots.
	ShowcasePrefix = "showcases/"
	// MaxImageSize caps screenshot uploads.
	MaxImageSize = 5 << 20
	// PresignTTL is how long a presigned image URL stays valid.
	PresignTTL = 15 * time.Minute
)

var (
	ErrImageTooLarge   = errors.New("image exceeds the maximum size")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// imageTypes maps accepted content types to the extension stored in the key.
var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExt returns the key extension for an upload. The content type wins over the
// filename; the filename is only consulted when the type is generic.
func ImageExt(contentType, filename string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := imageTypes[ct]; ok {
		return ext, nil
	}
	if ct == "" || ct == "application/octet-stream" {
		ext := strings.ToLower(path.Ext(filename))
		if ext == ".jpeg" {
			ext = ".jpg"
		}
		for _, e := range imageTypes {
			if e == ext {
				return ext, nil
			}
		}
	}
	return "", ErrUnsupportedType
}

// NewShowcaseKey returns a fresh object key: showcases/<uuid><ext>.
func NewShowcaseKey(ext string) string {
	return ShowcasePrefix + uuid.NewString() + ext
}

// ContentTypeForExt is the inverse of ImageExt for stored keys.
func ContentTypeForExt(ext string) string {
	for ct, e := range imageTypes {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}
