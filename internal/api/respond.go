package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"upwork-proposals/internal/apperr"
)

// maxBodyBytes caps JSON request bodies. Proposals are short texts.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message" example:"jobId is required"`
}

// SuccessResponse is returned by endpoints with nothing else to say.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeError maps err onto a status with apperr and hides the text of unclassified errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Printf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: apperr.Code(err), Message: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: "method not allowed"})
}

// decodeJSON reads the request body into v. An empty body is a validation error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required: %w", apperr.ErrValidation)
		}
		return fmt.Errorf("invalid JSON: %v: %w", err, apperr.ErrValidation)
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer: %w", name, apperr.ErrValidation)
	}
	return n, nil
}
