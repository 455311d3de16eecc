package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	puts    int
	putErrs []error // consumed per attempt; nil means success
	objects map[string][]byte
	ops     []string
}

func newFakeObjectStore(putErrs ...error) *fakeObjectStore {
	return &fakeObjectStore{putErrs: putErrs, objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.ops = append(f.ops, "put "+key)
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return err
		}
	}
	f.objects[key] = body
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete "+key)
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, srcKey, dstKey string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, fmt.Sprintf("copy %s -> %s", srcKey, dstKey))
	f.objects[dstKey] = f.objects[srcKey]
	return nil
}

func (f *fakeObjectStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://signed.example/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

type fakeDocStore struct {
	mu    sync.Mutex
	docs  map[string]models.DocumentMetadata
	notes map[string]models.Note
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: map[string]models.DocumentMetadata{}, notes: map[string]models.Note{}}
}

func (f *fakeDocStore) PutDocument(ctx context.Context, doc models.DocumentMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocStore) GetDocument(ctx context.Context, entityType, entityID, documentID string) (*models.DocumentMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[documentID]
	if !ok {
		return nil, apperr.NotFound("document %s not found", documentID)
	}
	return &doc, nil
}

func (f *fakeDocStore) ListDocumentsByEntity(ctx context.Context, entityType, entityID string) ([]models.DocumentMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.DocumentMetadata{}
	for _, doc := range f.docs {
		if doc.EntityType == entityType && doc.EntityID == entityID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocStore) DeleteDocument(ctx context.Context, entityType, entityID, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, documentID)
	return nil
}

func (f *fakeDocStore) PutNote(ctx context.Context, note models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[note.ID] = note
	return nil
}

func (f *fakeDocStore) GetNote(ctx context.Context, entityType, entityID, noteID string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[noteID]
	if !ok {
		return nil, apperr.NotFound("note %s not found", noteID)
	}
	return &note, nil
}

type fakeGuard struct {
	err error
}

func (f *fakeGuard) OwnsAsset(ctx context.Context, claims models.Claims, assetID string, kind models.AssetKind) error {
	return f.err
}

type transientErr struct{ code string }

func (e *transientErr) Error() string                 { return e.code }
func (e *transientErr) ErrorCode() string             { return e.code }
func (e *transientErr) ErrorMessage() string          { return e.code }
func (e *transientErr) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

func testLogger() *log.Entry {
	logger := log.New()
	logger.Out = io.Discard
	return log.NewEntry(logger)
}

func newTestService(store *fakeDocStore, objects *fakeObjectStore, guard *fakeGuard) *Service {
	svc := NewService(store, objects, guard, testLogger())
	svc.sleep = func(time.Duration) {}
	counter := 0
	svc.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func pdfSpec() UploadSpec {
	return UploadSpec{
		EntityType:  "TRIP",
		EntityID:    "tr1",
		FileName:    "rate con.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.7"),
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	claims := models.Claims{UserID: "u1", Role: models.RoleDispatcher, CarrierID: "c1"}

	t.Run("stores payload then metadata", func(t *testing.T) {
		objects := newFakeObjectStore()
		store := newFakeDocStore()
		svc := newTestService(store, objects, &fakeGuard{})

		doc, err := svc.Upload(ctx, claims, pdfSpec())
		assert.NoError(t, err)
		assert.Equal(t, "u1", doc.OwnerID)
		assert.Equal(t, int64(8), doc.Size)
		assert.Contains(t, doc.ObjectKey, "documents/TRIP/tr1/")
		assert.Contains(t, doc.ObjectKey, "rate_con.pdf")
		assert.Len(t, store.docs, 1)
		assert.Len(t, objects.objects, 1)
	})

	t.Run("validation failure reaches no store", func(t *testing.T) {
		objects := newFakeObjectStore()
		store := newFakeDocStore()
		svc := newTestService(store, objects, &fakeGuard{})

		spec := pdfSpec()
		spec.ContentType = "application/x-msdownload"
		_, err := svc.Upload(ctx, claims, spec)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, 0, objects.puts)
		assert.Empty(t, store.docs)
	})

	t.Run("asset entity requires ownership", func(t *testing.T) {
		objects := newFakeObjectStore()
		svc := newTestService(newFakeDocStore(), objects, &fakeGuard{err: apperr.Forbidden("not yours")})

		spec := pdfSpec()
		spec.EntityType = "TRUCK"
		spec.EntityID = "t1"
		_, err := svc.Upload(ctx, claims, spec)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		assert.Equal(t, 0, objects.puts)
	})

	t.Run("verification documents use the smaller cap", func(t *testing.T) {
		svc := newTestService(newFakeDocStore(), newFakeObjectStore(), &fakeGuard{})

		spec := pdfSpec()
		spec.Verification = true
		spec.Data = make([]byte, 11<<20)
		_, err := svc.Upload(ctx, claims, spec)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	})
}

func TestPutWithRetry(t *testing.T) {
	ctx := context.Background()
	claims := models.Claims{UserID: "u1", CarrierID: "c1"}

	t.Run("transient failures are retried to success", func(t *testing.T) {
		objects := newFakeObjectStore(&transientErr{code: "SlowDown"}, &transientErr{code: "ThrottlingException"}, nil)
		svc := newTestService(newFakeDocStore(), objects, &fakeGuard{})

		_, err := svc.Upload(ctx, claims, pdfSpec())
		assert.NoError(t, err)
		assert.Equal(t, 3, objects.puts)
	})

	t.Run("retry budget exhausts", func(t *testing.T) {
		objects := newFakeObjectStore(
			&transientErr{code: "ServiceUnavailable"},
			&transientErr{code: "ServiceUnavailable"},
			&transientErr{code: "ServiceUnavailable"},
		)
		svc := newTestService(newFakeDocStore(), objects, &fakeGuard{})

		_, err := svc.Upload(ctx, claims, pdfSpec())
		assert.True(t, apperr.Is(err, apperr.KindInternal))
		assert.Equal(t, 3, objects.puts)
	})

	t.Run("permanent failure is not retried", func(t *testing.T) {
		objects := newFakeObjectStore(&transientErr{code: "AccessDenied"})
		svc := newTestService(newFakeDocStore(), objects, &fakeGuard{})

		_, err := svc.Upload(ctx, claims, pdfSpec())
		assert.Error(t, err)
		assert.Equal(t, 1, objects.puts)
	})

	t.Run("generic error is not retried", func(t *testing.T) {
		objects := newFakeObjectStore(errors.New("boom"))
		svc := newTestService(newFakeDocStore(), objects, &fakeGuard{})

		_, err := svc.Upload(ctx, claims, pdfSpec())
		assert.Error(t, err)
		assert.Equal(t, 1, objects.puts)
	})
}

func TestBackoffDelay(t *testing.T) {
	base := 200 * time.Millisecond
	for attempt := 1; attempt <= 3; attempt++ {
		floor := base << (attempt - 1)
		for i := 0; i < 20; i++ {
			d := backoffDelay(base, attempt)
			if d < floor || d >= floor+base {
				t.Fatalf("attempt %d: delay %v outside [%v, %v)", attempt, d, floor, floor+base)
			}
		}
	}
}

func TestSignedURLs(t *testing.T) {
	ctx := context.Background()
	store := newFakeDocStore()
	store.docs["d1"] = models.DocumentMetadata{
		ID: "d1", EntityType: "TRIP", EntityID: "tr1", OwnerID: "owner",
		ObjectKey: "documents/TRIP/tr1/k", Permissions: models.Permissions{CanView: []string{"viewer"}},
	}
	svc := newTestService(store, newFakeObjectStore(), &fakeGuard{})

	t.Run("owner gets a view url", func(t *testing.T) {
		url, err := svc.ViewURL(ctx, models.Claims{UserID: "owner"}, "TRIP", "tr1", "d1")
		assert.NoError(t, err)
		assert.Contains(t, url, "ttl=900")
	})

	t.Run("download url carries the longer ttl", func(t *testing.T) {
		url, err := svc.DownloadURL(ctx, models.Claims{UserID: "viewer"}, "TRIP", "tr1", "d1")
		assert.NoError(t, err)
		assert.Contains(t, url, "ttl=3600")
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := svc.ViewURL(ctx, models.Claims{UserID: "stranger"}, "TRIP", "tr1", "d1")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("admin always passes", func(t *testing.T) {
		_, err := svc.ViewURL(ctx, models.Claims{UserID: "adm", Role: models.RoleAdmin}, "TRIP", "tr1", "d1")
		assert.NoError(t, err)
	})
}

func TestPresignUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("ownership gate runs before signing", func(t *testing.T) {
		svc := newTestService(newFakeDocStore(), newFakeObjectStore(), &fakeGuard{err: apperr.Forbidden("not yours")})

		_, _, err := svc.PresignUpload(ctx, models.Claims{UserID: "u1"}, "t1", models.KindTruck, "reg.pdf", "application/pdf")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("returns url and key", func(t *testing.T) {
		svc := newTestService(newFakeDocStore(), newFakeObjectStore(), &fakeGuard{})

		url, key, err := svc.PresignUpload(ctx, models.Claims{UserID: "u1"}, "t1", models.KindTruck, "reg.pdf", "application/pdf")
		assert.NoError(t, err)
		assert.Contains(t, key, "documents/TRUCK/t1/")
		assert.Equal(t, "https://signed.example/"+key, url)
	})
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeDocStore(), newFakeObjectStore(), &fakeGuard{})
	owner := models.Claims{UserID: "owner", Role: models.RoleDispatcher}

	note, err := svc.CreateNote(ctx, owner, "TRIP", "tr1", "left gate 3 at 06:40", models.Permissions{CanView: []string{"viewer"}})
	assert.NoError(t, err)

	_, err = svc.CreateNote(ctx, owner, "TRIP", "tr1", "", models.Permissions{})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	got, err := svc.GetNote(ctx, models.Claims{UserID: "viewer"}, "TRIP", "tr1", note.ID)
	assert.NoError(t, err)
	assert.Equal(t, "left gate 3 at 06:40", got.Body)

	_, err = svc.GetNote(ctx, models.Claims{UserID: "stranger"}, "TRIP", "tr1", note.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	store := newFakeDocStore()
	store.docs["d1"] = models.DocumentMetadata{ID: "d1", EntityType: "TRIP", EntityID: "tr1", OwnerID: "u1"}
	store.docs["d2"] = models.DocumentMetadata{ID: "d2", EntityType: "TRIP", EntityID: "tr1", OwnerID: "other", Permissions: models.Permissions{IsPublic: true}}
	store.docs["d3"] = models.DocumentMetadata{ID: "d3", EntityType: "TRIP", EntityID: "tr1", OwnerID: "other"}
	store.docs["d4"] = models.DocumentMetadata{ID: "d4", EntityType: "TRIP", EntityID: "tr2", OwnerID: "u1"}
	svc := newTestService(store, newFakeObjectStore(), &fakeGuard{})

	ids := func(docs []models.DocumentMetadata) []string {
		out := []string{}
		for _, d := range docs {
			out = append(out, d.ID)
		}
		return out
	}

	t.Run("omits inaccessible documents", func(t *testing.T) {
		docs, err := svc.ListDocuments(ctx, models.Claims{UserID: "u1"}, "TRIP", "tr1")
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"d1", "d2"}, ids(docs))
	})

	t.Run("admin sees everything on the entity", func(t *testing.T) {
		docs, err := svc.ListDocuments(ctx, models.Claims{UserID: "adm", Role: models.RoleAdmin}, "TRIP", "tr1")
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"d1", "d2", "d3"}, ids(docs))
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		docs, err := svc.ListDocuments(ctx, models.Claims{UserID: "u1"}, "TRIP", "tr9")
		assert.NoError(t, err)
		assert.Equal(t, []models.DocumentMetadata{}, docs)
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	seed := func() (*fakeDocStore, *fakeObjectStore, *Service) {
		store := newFakeDocStore()
		store.docs["d1"] = models.DocumentMetadata{
			ID: "d1", EntityType: "TRIP", EntityID: "tr1", OwnerID: "owner",
			ObjectKey: "documents/TRIP/tr1/k",
			Permissions: models.Permissions{
				CanView:   []string{"viewer"},
				CanDelete: []string{"trusted"},
			},
		}
		objects := newFakeObjectStore()
		objects.objects["documents/TRIP/tr1/k"] = []byte("data")
		return store, objects, newTestService(store, objects, &fakeGuard{})
	}

	t.Run("owner removes payload and metadata", func(t *testing.T) {
		store, objects, svc := seed()

		err := svc.DeleteDocument(ctx, models.Claims{UserID: "owner"}, "TRIP", "tr1", "d1")
		assert.NoError(t, err)
		assert.NotContains(t, objects.objects, "documents/TRIP/tr1/k")
		assert.NotContains(t, store.docs, "d1")
	})

	t.Run("delete grant is honored", func(t *testing.T) {
		store, _, svc := seed()

		err := svc.DeleteDocument(ctx, models.Claims{UserID: "trusted"}, "TRIP", "tr1", "d1")
		assert.NoError(t, err)
		assert.NotContains(t, store.docs, "d1")
	})

	t.Run("view grant alone cannot delete", func(t *testing.T) {
		store, objects, svc := seed()

		err := svc.DeleteDocument(ctx, models.Claims{UserID: "viewer"}, "TRIP", "tr1", "d1")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		assert.Contains(t, objects.objects, "documents/TRIP/tr1/k")
		assert.Contains(t, store.docs, "d1")
	})

	t.Run("missing document is not found", func(t *testing.T) {
		_, _, svc := seed()

		err := svc.DeleteDocument(ctx, models.Claims{UserID: "owner"}, "TRIP", "tr1", "ghost")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestUpdateObjectMetadata(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStore()
	objects.objects["k1"] = []byte("data")
	svc := newTestService(newFakeDocStore(), objects, &fakeGuard{})

	doc := &models.DocumentMetadata{ObjectKey: "k1"}
	err := svc.UpdateObjectMetadata(ctx, doc, map[string]string{"reviewed": "true"})
	assert.NoError(t, err)

	// copy to tmp, delete original, copy back, delete tmp
	assert.Equal(t, []string{
		"copy k1 -> k1.meta-tmp",
		"delete k1",
		"copy k1.meta-tmp -> k1",
		"delete k1.meta-tmp",
	}, objects.ops)
	assert.Contains(t, objects.objects, "k1")
	assert.NotContains(t, objects.objects, "k1.meta-tmp")
}
