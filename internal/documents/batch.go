package documents

import (
	"context"
	"sync"

	"github.com/haulbase/haulbase/internal/models"
)

// FileFailure records one file's failure inside a batch.
type FileFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BatchResult aggregates the outcome of a batch upload. Partial success
// is a normal outcome, not an error.
type BatchResult struct {
	Successful   []models.DocumentMetadata `json:"successful"`
	Failed       []FileFailure             `json:"failed"`
	SuccessCount int                       `json:"success_count"`
	FailureCount int                       `json:"failure_count"`
}

// BatchUpload processes files one at a time so failure attribution stays
// simple, and never aborts the batch on a single file's failure.
func (s *Service) BatchUpload(ctx context.Context, claims models.Claims, specs []UploadSpec) BatchResult {
	result := BatchResult{
		Successful: []models.DocumentMetadata{},
		Failed:     []FileFailure{},
	}
	for _, spec := range specs {
		doc, err := s.Upload(ctx, claims, spec)
		if err != nil {
			s.log.WithField("file", spec.FileName).WithError(err).Warn("batch upload item failed")
			result.Failed = append(result.Failed, FileFailure{FileName: spec.FileName, Error: err.Error()})
			result.FailureCount++
			continue
		}
		result.Successful = append(result.Successful, *doc)
		result.SuccessCount++
	}
	return result
}

// UploadMultipleFiles uploads all files in parallel and fails the whole
// call if any one of them fails. This all-or-nothing contract differs
// deliberately from BatchUpload's partial-success contract.
func (s *Service) UploadMultipleFiles(ctx context.Context, claims models.Claims, specs []UploadSpec) ([]models.DocumentMetadata, error) {
	docs := make([]models.DocumentMetadata, len(specs))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec UploadSpec) {
			defer wg.Done()
			doc, err := s.Upload(ctx, claims, spec)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			docs[i] = *doc
		}(i, spec)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}
