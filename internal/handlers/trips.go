package handlers

import (
	"net/http"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/authz"
	"github.com/haulbase/haulbase/internal/middleware"
	"github.com/haulbase/haulbase/internal/models"
	"github.com/haulbase/haulbase/internal/trips"
)

// TripHandler handles trip requests.
type TripHandler struct {
	service *trips.Service
	router  *authz.Router
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *trips.Service, router *authz.Router) *TripHandler {
	return &TripHandler{service: service, router: router}
}

// Create dispatches a new trip under the caller's carrier.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var spec trips.CreateSpec
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, err)
		return
	}
	trip, err := h.service.Create(r.Context(), claims.CarrierID, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// List returns the trips visible to the caller's role, optionally
// narrowed to one lifecycle state via ?status=.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var list []models.Trip
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidTripStatus(models.TripStatus(status)) {
			writeError(w, apperr.BadRequest("unknown trip status %q", status))
			return
		}
		list, err = h.router.TripsByStatus(r.Context(), *claims, models.TripStatus(status))
	} else {
		list, err = h.router.TripsFor(r.Context(), *claims)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: len(list)})
}

// Get returns one trip after the carrier ownership check.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	trip, err := h.service.Get(r.Context(), r.PathValue("id"), claims.CarrierID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateStatus moves a trip along its state machine.
func (h *TripHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body struct {
		Status models.TripStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	trip, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), claims.CarrierID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateFinancials applies a partial financial update.
func (h *TripHandler) UpdateFinancials(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var partial trips.FinancialUpdate
	if err := decodeBody(r, &partial); err != nil {
		writeError(w, err)
		return
	}
	trip, err := h.service.UpdateFinancials(r.Context(), r.PathValue("id"), claims.CarrierID, partial)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
