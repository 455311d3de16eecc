package documents

import (
	"fmt"
	"regexp"
	"time"
)

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

const maxFileNameLen = 100

// SanitizeFileName makes a caller-supplied file name safe for use inside
// an object key: every character outside [A-Za-z0-9._-] becomes an
// underscore, runs of underscores collapse, and the result is capped at
// 100 characters.
func SanitizeFileName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	return s
}

// KeySpec carries the addressing parts of an object key.
type KeySpec struct {
	EntityType string
	EntityID   string
	Category   string
	FolderID   string
	FileName   string
}

// ObjectKey assembles the store key for an upload. The file name is
// sanitized before assembly so the final key is always store-safe.
//
//	documents/{entityType}/{entityId}[/{category}][/folders/{folderId}]/{unixMillis}_{uuid}_{name}
func ObjectKey(spec KeySpec, at time.Time, id string) string {
	key := fmt.Sprintf("documents/%s/%s", spec.EntityType, spec.EntityID)
	if spec.Category != "" {
		key += "/" + spec.Category
	}
	if spec.FolderID != "" {
		key += "/folders/" + spec.FolderID
	}
	return fmt.Sprintf("%s/%d_%s_%s", key, at.UnixMilli(), id, SanitizeFileName(spec.FileName))
}
