// Package jsonutil writes JSON responses for the API handlers.
//
// Error bodies use {"detail": "..."} so existing front-end code that reads
// the detail field keeps working.
package jsonutil

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError names one field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode json response", zap.Error(err))
	}
}

// Error writes {"detail": detail}.
func Error(w http.ResponseWriter, status int, detail string) {
	Write(w, status, ErrorBody{Detail: detail})
}

// ValidationError writes a 400 with per-field errors.
func ValidationError(w http.ResponseWriter, detail string, fields []FieldError) {
	Write(w, http.StatusBadRequest, ErrorBody{Detail: detail, Errors: fields})
}
