// Package service exposes the REST operations of the API: group lifecycle,
// membership, token sharing and merging, expense CRUD and balances.
//
// Authorization is enforced per operation, not centrally: every mutating
// handler declares the single capability it requires and rejects the
// request before touching storage.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/storage"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError maps the error taxonomy onto status codes: missing or
// invalid credentials are 401, a valid credential lacking a capability is
// 403, out-of-scope identifiers are 404, everything else is internal.
// Auth failures are terminal; they are surfaced, never defaulted.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.Error("Internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// respondValidation rejects unparseable or out-of-contract input. Kept
// distinct from respondError so a caller mistake never masquerades as an
// auth failure.
func respondValidation(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
