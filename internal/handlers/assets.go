package handlers

import (
	"net/http"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/assets"
	"github.com/haulbase/haulbase/internal/authz"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/models"
)

// AssetHandler handles truck and trailer requests.
type AssetHandler struct {
	registry *assets.Registry
	router   *authz.Router
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(registry *assets.Registry, router *authz.Router) *AssetHandler {
	return &AssetHandler{registry: registry, router: router}
}

// Create handles carrier-scoped asset creation.
func (h *AssetHandler) Create(kind models.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			http.Error(w, "User context not found", http.StatusUnauthorized)
			return
		}

		var spec models.AssetSpec
		if err := decodeBody(r, &spec); err != nil {
			writeError(w, err)
			return
		}
		spec.Kind = kind

		asset, err := h.registry.Create(r.Context(), claims.CarrierID, spec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

type registerRequest struct {
	OwnerID   string `json:"owner_id"`
	CarrierID string `json:"carrier_id,omitempty"`
	models.AssetSpec
}

// Register handles owner-scoped asset registration with the optional
// carrier-membership check.
func (h *AssetHandler) Register(kind models.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		req.AssetSpec.Kind = kind
		if req.OwnerID == "" {
			writeError(w, apperr.BadRequest("owner_id is required"))
			return
		}

		asset, err := h.registry.Register(r.Context(), req.OwnerID, req.AssetSpec, req.CarrierID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

// List returns the assets visible to the caller's role.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	list, err := h.router.AssetsFor(r.Context(), *claims)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: len(list)})
}

// Get returns a single asset after the role-scoped ownership check.
func (h *AssetHandler) Get(kind models.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			http.Error(w, "User context not found", http.StatusUnauthorized)
			return
		}
		asset, err := h.router.AssetFor(r.Context(), *claims, r.PathValue("id"), kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

// Update applies a partial update to an asset.
func (h *AssetHandler) Update(kind models.AssetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			http.Error(w, "User context not found", http.StatusUnauthorized)
			return
		}
		var partial models.AssetUpdate
		if err := decodeBody(r, &partial); err != nil {
			writeError(w, err)
			return
		}
		asset, err := h.registry.Update(r.Context(), r.PathValue("id"), kind, claims.CarrierID, partial)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

// Deactivate soft-deletes an asset.
func (h *AssetHandler) Deactivate(kind models.AssetKind) http.HandlerFunc {
	return h.setActive(kind, false)
}

// Reactivate reverses a soft delete.
func (h *AssetHandler) Reactivate(kind models.AssetKind) http.HandlerFunc {
	return h.setActive(kind, true)
}

func (h *AssetHandler) setActive(kind models.AssetKind, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r.Context())
		if !ok {
			http.Error(w, "User context not found", http.StatusUnauthorized)
			return
		}
		var (
			asset *models.Asset
			err   error
		)
		if active {
			asset, err = h.registry.Reactivate(r.Context(), r.PathValue("id"), kind, claims.CarrierID)
		} else {
			asset, err = h.registry.Deactivate(r.Context(), r.PathValue("id"), kind, claims.CarrierID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}
