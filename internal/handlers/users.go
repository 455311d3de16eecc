package handlers

import (
	"net/http"

	"github.com/haulbase/haulbase/internal/brokers"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/users"
)

// UserHandler handles user directory requests.
type UserHandler struct {
	service *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *users.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Create adds a user under the caller's carrier.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var spec users.CreateSpec
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.service.Create(r.Context(), claims.CarrierID, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// List returns the caller's carrier's active users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	list, err := h.service.ListByCarrier(r.Context(), claims.CarrierID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: len(list)})
}

// Get returns one user after the carrier ownership check.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	user, err := h.service.Get(r.Context(), r.PathValue("id"), claims.CarrierID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Deactivate soft-deletes a user.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	user, err := h.service.Deactivate(r.Context(), r.PathValue("id"), claims.CarrierID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// BrokerHandler handles broker reference-data requests.
type BrokerHandler struct {
	service *brokers.Service
}

// NewBrokerHandler creates a new broker handler
func NewBrokerHandler(service *brokers.Service) *BrokerHandler {
	return &BrokerHandler{service: service}
}

// Create adds a broker.
func (h *BrokerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var spec brokers.CreateSpec
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, err)
		return
	}
	broker, err := h.service.Create(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, broker)
}

// List returns all brokers.
func (h *BrokerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: len(list)})
}

// Get returns one broker.
func (h *BrokerHandler) Get(w http.ResponseWriter, r *http.Request) {
	broker, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, broker)
}
