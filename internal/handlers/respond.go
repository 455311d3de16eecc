// Package handlers exposes the services over HTTP. Handlers stay thin:
// decode, call the service, map the error taxonomy to a status code.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haulbase/haulbase/internal/apperr"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Every response
// carries the machine-stable kind plus the human-readable message.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindBadRequest:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	}

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		message = appErr.Message
	}
	writeJSON(w, status, errorBody{Error: string(kind), Message: message})
}

// listResponse wraps list endpoints: an array that is never null plus a
// total count.
type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}
