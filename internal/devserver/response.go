package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/me/classroom/pkg/model"
)

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	writeJSON(w, http.StatusOK, model.Envelope[any]{
		Status:    "ok",
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, reqID string, status int, code model.ErrorCode, msg string) {
	writeJSON(w, status, model.Envelope[any]{
		Status:    "error",
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Error:     &model.APIError{Code: code, Message: msg},
	})
}

// respondAuthFailure writes the flat {success: false, message} shape the
// auth endpoints use.
func respondAuthFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
