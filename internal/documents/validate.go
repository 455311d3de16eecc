package documents

import (
	"github.com/haulbase/haulbase/internal/apperr"
)

// Size caps. Legacy per-asset verification documents keep their own
// smaller cap; the mismatch with the general cap is inherited behavior
// and must not be unified without product input.
const (
	MaxDocumentSize     = 100 << 20 // 100MB
	MaxVerificationSize = 10 << 20  // 10MB, legacy per-asset verification docs
)

// allowedContentTypes is the explicit upload allow-list.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":      true,
	"text/csv":        true,
	"application/zip": true,
}

// ValidateFile rejects disallowed content types and oversized payloads.
// Runs before any store I/O.
func ValidateFile(contentType string, size, maxSize int64) error {
	if !allowedContentTypes[contentType] {
		return apperr.BadRequest("content type %s is not allowed", contentType)
	}
	if size <= 0 {
		return apperr.BadRequest("file is empty")
	}
	if size > maxSize {
		return apperr.BadRequest("file size %d exceeds the %d byte limit", size, maxSize)
	}
	return nil
}
