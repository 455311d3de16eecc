package handlers

import (
	"context"
	"net/http"

	"github.com/haulbase/haulbase/internal/documents"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/models"
)

// DocumentHandler handles document upload and retrieval requests.
type DocumentHandler struct {
	service *documents.Service
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *documents.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload accepts one file (payload base64-encoded in the JSON body).
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var spec struct {
		documents.UploadSpec
		Data []byte `json:"data"`
	}
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, err)
		return
	}
	spec.UploadSpec.Data = spec.Data

	doc, err := h.service.Upload(r.Context(), *claims, spec.UploadSpec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// BatchUpload accepts several files and reports partial success.
func (h *DocumentHandler) BatchUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body struct {
		Files []struct {
			documents.UploadSpec
			Data []byte `json:"data"`
		} `json:"files"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	specs := make([]documents.UploadSpec, 0, len(body.Files))
	for _, f := range body.Files {
		spec := f.UploadSpec
		spec.Data = f.Data
		specs = append(specs, spec)
	}

	result := h.service.BatchUpload(r.Context(), *claims, specs)
	writeJSON(w, http.StatusOK, result)
}

// PresignUpload verifies asset ownership and issues an upload URL.
func (h *DocumentHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body struct {
		AssetID     string           `json:"asset_id"`
		Kind        models.AssetKind `json:"kind"`
		FileName    string           `json:"file_name"`
		ContentType string           `json:"content_type"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	url, key, err := h.service.PresignUpload(r.Context(), *claims, body.AssetID, body.Kind, body.FileName, body.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upload_url": url, "object_key": key})
}

// List returns the documents attached to an entity that the caller may see.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	docs, err := h.service.ListDocuments(r.Context(), *claims, r.PathValue("entityType"), r.PathValue("entityId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: docs, Total: len(docs)})
}

// Delete removes a document's payload and metadata.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	err := h.service.DeleteDocument(r.Context(), *claims, r.PathValue("entityType"), r.PathValue("entityId"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ViewURL issues a short-lived view URL after the access check.
func (h *DocumentHandler) ViewURL(w http.ResponseWriter, r *http.Request) {
	h.signedURL(w, r, h.service.ViewURL)
}

// DownloadURL issues the longer-lived general download URL.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	h.signedURL(w, r, h.service.DownloadURL)
}

type signFunc func(ctx context.Context, claims models.Claims, entityType, entityID, documentID string) (string, error)

func (h *DocumentHandler) signedURL(w http.ResponseWriter, r *http.Request, sign signFunc) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	url, err := sign(r.Context(), *claims, r.PathValue("entityType"), r.PathValue("entityId"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// CreateNote attaches a note to an entity.
func (h *DocumentHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body struct {
		Body        string             `json:"body"`
		Permissions models.Permissions `json:"permissions"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.service.CreateNote(r.Context(), *claims, r.PathValue("entityType"), r.PathValue("entityId"), body.Body, body.Permissions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetNote returns a note after the shared access check.
func (h *DocumentHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	note, err := h.service.GetNote(r.Context(), *claims, r.PathValue("entityType"), r.PathValue("entityId"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
