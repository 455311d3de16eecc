// Package documents owns uploads: key generation, validation, a bounded
// retry loop around the object store, metadata records and presigned URLs.
package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/authz"
	"github.com/haulbase/haulbase/internal/db"
	"github.com/haulbase/haulbase/internal/models"
)

// Presigned URL lifetimes.
const (
	UploadURLTTL   = 900 * time.Second
	ViewURLTTL     = 900 * time.Second
	DownloadURLTTL = 3600 * time.Second
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 200 * time.Millisecond
)

// ObjectStore is the object-store surface the service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error
	Delete(ctx context.Context, key string) error
	Copy(ctx context.Context, srcKey, dstKey string, metadata map[string]string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AssetGuard verifies that the caller owns the asset a document is being
// attached to. Checked before any presigned URL is generated.
type AssetGuard interface {
	OwnsAsset(ctx context.Context, claims models.Claims, assetID string, kind models.AssetKind) error
}

// Service is the document subsystem.
type Service struct {
	store   db.DocumentStore
	objects ObjectStore
	guard   AssetGuard
	log     *log.Entry

	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
	newID       func() string
	now         func() time.Time
}

// NewService creates a document service with the default retry budget.
func NewService(store db.DocumentStore, objects ObjectStore, guard AssetGuard, logger *log.Entry) *Service {
	return &Service{
		store:       store,
		objects:     objects,
		guard:       guard,
		log:         logger,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sleep:       time.Sleep,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// UploadSpec describes one file upload.
type UploadSpec struct {
	EntityType   string             `json:"entity_type"`
	EntityID     string             `json:"entity_id"`
	Category     string             `json:"category,omitempty"`
	FolderID     string             `json:"folder_id,omitempty"`
	FileName     string             `json:"file_name"`
	ContentType  string             `json:"content_type"`
	Data         []byte             `json:"-"`
	Verification bool               `json:"verification,omitempty"`
	Permissions  models.Permissions `json:"permissions"`
}

func (s UploadSpec) sizeCap() int64 {
	if s.Verification {
		return MaxVerificationSize
	}
	return MaxDocumentSize
}

// Upload validates, writes the payload with retries, then records metadata.
// Validation failures surface before any object-store call.
func (s *Service) Upload(ctx context.Context, claims models.Claims, spec UploadSpec) (*models.DocumentMetadata, error) {
	if err := ValidateFile(spec.ContentType, int64(len(spec.Data)), spec.sizeCap()); err != nil {
		return nil, err
	}
	if err := s.checkEntityOwnership(ctx, claims, spec.EntityType, spec.EntityID); err != nil {
		return nil, err
	}

	docID := s.newID()
	key := ObjectKey(KeySpec{
		EntityType: spec.EntityType,
		EntityID:   spec.EntityID,
		Category:   spec.Category,
		FolderID:   spec.FolderID,
		FileName:   spec.FileName,
	}, s.now(), docID)

	if err := s.putWithRetry(ctx, key, spec.Data, spec.ContentType); err != nil {
		return nil, err
	}

	doc := models.DocumentMetadata{
		ID:          docID,
		EntityType:  spec.EntityType,
		EntityID:    spec.EntityID,
		OwnerID:     claims.UserID,
		FileName:    spec.FileName,
		Size:        int64(len(spec.Data)),
		ContentType: spec.ContentType,
		ObjectKey:   key,
		Category:    spec.Category,
		FolderID:    spec.FolderID,
		Permissions: spec.Permissions,
		UploadedAt:  s.now(),
	}
	if err := s.store.PutDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkEntityOwnership guards asset-owned documents; other entity kinds
// are scoped by the caller's carrier at the routing layer.
func (s *Service) checkEntityOwnership(ctx context.Context, claims models.Claims, entityType, entityID string) error {
	switch models.AssetKind(entityType) {
	case models.KindTruck, models.KindTrailer:
		return s.guard.OwnsAsset(ctx, claims, entityID, models.AssetKind(entityType))
	}
	return nil
}

// putWithRetry attempts the object write up to the retry budget, backing
// off exponentially with jitter. Only transient error classes are retried.
func (s *Service) putWithRetry(ctx context.Context, key string, data []byte, contentType string) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.objects.Put(ctx, key, data, contentType, nil)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return apperr.Wrap(lastErr, "uploading object %s", key)
		}
		if attempt < s.maxAttempts {
			delay := backoffDelay(s.baseDelay, attempt)
			s.log.WithFields(log.Fields{"key": key, "attempt": attempt, "delay": delay}).
				Debug("transient upload failure, retrying")
			s.sleep(delay)
		}
	}
	return apperr.Wrap(lastErr, "uploading object %s: retry budget exhausted", key)
}

// PresignUpload verifies asset ownership, then issues a time-limited
// upload URL for the generated key.
func (s *Service) PresignUpload(ctx context.Context, claims models.Claims, assetID string, kind models.AssetKind, fileName, contentType string) (string, string, error) {
	if err := s.guard.OwnsAsset(ctx, claims, assetID, kind); err != nil {
		return "", "", err
	}
	key := ObjectKey(KeySpec{
		EntityType: string(kind),
		EntityID:   assetID,
		FileName:   fileName,
	}, s.now(), s.newID())
	url, err := s.objects.PresignPut(ctx, key, contentType, UploadURLTTL)
	if err != nil {
		return "", "", apperr.Wrap(err, "presigning upload")
	}
	return url, key, nil
}

// ViewURL checks the access predicate and issues a short-lived view URL.
// The object key itself is never exposed to unauthorized callers.
func (s *Service) ViewURL(ctx context.Context, claims models.Claims, entityType, entityID, documentID string) (string, error) {
	return s.signedURL(ctx, claims, entityType, entityID, documentID, ViewURLTTL)
}

// DownloadURL is the general-purpose download path with the longer TTL.
func (s *Service) DownloadURL(ctx context.Context, claims models.Claims, entityType, entityID, documentID string) (string, error) {
	return s.signedURL(ctx, claims, entityType, entityID, documentID, DownloadURLTTL)
}

func (s *Service) signedURL(ctx context.Context, claims models.Claims, entityType, entityID, documentID string, ttl time.Duration) (string, error) {
	doc, err := s.store.GetDocument(ctx, entityType, entityID, documentID)
	if err != nil {
		return "", err
	}
	if !authz.CanAccess(claims.UserID, claims.IsAdmin(), doc.OwnerID, doc.Permissions) {
		return "", apperr.Forbidden("document %s is not accessible to caller", documentID)
	}
	url, err := s.objects.PresignGet(ctx, doc.ObjectKey, ttl)
	if err != nil {
		return "", apperr.Wrap(err, "presigning download for document %s", documentID)
	}
	return url, nil
}

// ListDocuments returns the entity's document metadata, filtered to the
// records the caller may access. Inaccessible documents are omitted, not
// an error.
func (s *Service) ListDocuments(ctx context.Context, claims models.Claims, entityType, entityID string) ([]models.DocumentMetadata, error) {
	all, err := s.store.ListDocumentsByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	docs := []models.DocumentMetadata{}
	for _, doc := range all {
		if authz.CanAccess(claims.UserID, claims.IsAdmin(), doc.OwnerID, doc.Permissions) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// DeleteDocument removes the payload, then the metadata record. A caller
// without the delete grant is rejected before anything is touched.
func (s *Service) DeleteDocument(ctx context.Context, claims models.Claims, entityType, entityID, documentID string) error {
	doc, err := s.store.GetDocument(ctx, entityType, entityID, documentID)
	if err != nil {
		return err
	}
	if !authz.CanDelete(claims.UserID, claims.IsAdmin(), doc.OwnerID, doc.Permissions) {
		return apperr.Forbidden("document %s is not deletable by caller", documentID)
	}
	if err := s.objects.Delete(ctx, doc.ObjectKey); err != nil {
		return apperr.Wrap(err, "deleting object %s", doc.ObjectKey)
	}
	if err := s.store.DeleteDocument(ctx, entityType, entityID, documentID); err != nil {
		return err
	}
	s.log.WithFields(log.Fields{"document": documentID, "entity": entityID}).Info("document deleted")
	return nil
}

// GetNote applies the same access predicate as documents.
func (s *Service) GetNote(ctx context.Context, claims models.Claims, entityType, entityID, noteID string) (*models.Note, error) {
	note, err := s.store.GetNote(ctx, entityType, entityID, noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(claims.UserID, claims.IsAdmin(), note.OwnerID, note.Permissions) {
		return nil, apperr.Forbidden("note %s is not accessible to caller", noteID)
	}
	return note, nil
}

// CreateNote attaches a note to an entity.
func (s *Service) CreateNote(ctx context.Context, claims models.Claims, entityType, entityID, body string, perms models.Permissions) (*models.Note, error) {
	if body == "" {
		return nil, apperr.BadRequest("note body is required")
	}
	note := models.Note{
		ID:          s.newID(),
		EntityType:  entityType,
		EntityID:    entityID,
		OwnerID:     claims.UserID,
		Body:        body,
		Permissions: perms,
		CreatedAt:   s.now(),
	}
	if err := s.store.PutNote(ctx, note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateObjectMetadata rewrites an object's metadata. The store cannot
// mutate metadata in place, so this runs copy-with-new-metadata, delete
// original, copy back, delete temporary. The sequence is not atomic: a
// crash mid-way can leave an orphaned temporary object under the
// ".meta-tmp" suffix.
func (s *Service) UpdateObjectMetadata(ctx context.Context, doc *models.DocumentMetadata, metadata map[string]string) error {
	tmpKey := doc.ObjectKey + ".meta-tmp"
	if err := s.objects.Copy(ctx, doc.ObjectKey, tmpKey, metadata); err != nil {
		return apperr.Wrap(err, "copying %s to temporary key", doc.ObjectKey)
	}
	if err := s.objects.Delete(ctx, doc.ObjectKey); err != nil {
		return apperr.Wrap(err, "deleting original %s", doc.ObjectKey)
	}
	if err := s.objects.Copy(ctx, tmpKey, doc.ObjectKey, nil); err != nil {
		return apperr.Wrap(err, "restoring %s from temporary key", doc.ObjectKey)
	}
	if err := s.objects.Delete(ctx, tmpKey); err != nil {
		return apperr.Wrap(err, "removing temporary key %s", tmpKey)
	}
	return nil
}
