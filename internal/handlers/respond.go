package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/uniarchive/photoarchive/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError is the single translation point from the error taxonomy to HTTP.
// Storage errors and foreign errors are logged with their cause and surfaced
// as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			writeJSON(w, http.StatusBadRequest, errBody(ae.Message))
			return
		case apperr.KindUnauthenticated:
			writeJSON(w, http.StatusUnauthorized, errBody(ae.Message))
			return
		case apperr.KindForbidden:
			writeJSON(w, http.StatusForbidden, errBody(ae.Message))
			return
		case apperr.KindNotFound:
			writeJSON(w, http.StatusNotFound, errBody(ae.Message))
			return
		case apperr.KindConflict:
			writeJSON(w, http.StatusConflict, errBody(ae.Message))
			return
		}
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errBody("Server error."))
}

func errBody(msg string) map[string]string {
	return map[string]string{"message": msg}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	return nil
}
