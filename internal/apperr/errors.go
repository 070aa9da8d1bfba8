// Package apperr holds the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrUpstreamUnavailable    = errors.New("upstream unavailable")
	ErrUpstreamSchemaMismatch = errors.New("upstream schema mismatch")
	ErrRequiresReconnect      = errors.New("upwork connection must be re-authorized")
	ErrPersistence            = errors.New("persistence failure")
)

// Status maps an error onto the HTTP status handlers should answer with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrRequiresReconnect):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamUnavailable), errors.Is(err, ErrUpstreamSchemaMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code is the short machine-readable name sent in JSON error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		return "authentication_required"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRequiresReconnect):
		return "requires_reconnect"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrUpstreamSchemaMismatch):
		return "upstream_schema_mismatch"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "internal_error"
	}
}
