package handlers

import (
	"net/http"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/models"
	"github.com/haulbase/haulbase/internal/subscriptions"
)

// SubscriptionHandler handles watch-list and resolution requests.
type SubscriptionHandler struct {
	service *subscriptions.Service
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service *subscriptions.Service) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Get returns the caller's watch-lists.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	subs, err := h.service.GetSubscriptions(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Update applies watch-list additions and removals.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var changes subscriptions.Changes
	if err := decodeBody(r, &changes); err != nil {
		writeError(w, err)
		return
	}
	subs, err := h.service.UpdateSubscriptions(r.Context(), claims.UserID, changes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Resolve maps opaque ids to display data.
func (h *SubscriptionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	resolved, err := h.service.ResolveEntities(r.Context(), body.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// CreatePlaceholder creates an identity and auto-subscribes the creator.
func (h *SubscriptionHandler) CreatePlaceholder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body struct {
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Role  models.Role `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if !models.IsValidRole(body.Role) {
		writeError(w, apperr.BadRequest("invalid role %q", body.Role))
		return
	}
	userID, err := h.service.CreatePlaceholderUser(r.Context(), claims.UserID, body.Email, body.Name, body.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": userID})
}
