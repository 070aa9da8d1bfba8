package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"nil", nil, http.StatusOK, "internal_error"},
		{"auth", ErrAuthenticationRequired, http.StatusUnauthorized, "authentication_required"},
		{"wrapped validation", fmt.Errorf("jobId: %w", ErrValidation), http.StatusBadRequest, "validation_error"},
		{"not found", ErrNotFound, http.StatusNotFound, "not_found"},
		{"reconnect", ErrRequiresReconnect, http.StatusConflict, "requires_reconnect"},
		{"upstream", fmt.Errorf("graphql: %w", ErrUpstreamUnavailable), http.StatusBadGateway, "upstream_unavailable"},
		{"schema", ErrUpstreamSchemaMismatch, http.StatusBadGateway, "upstream_schema_mismatch"},
		{"persistence", ErrPersistence, http.StatusInternalServerError, "persistence_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
			if tt.err != nil {
				assert.Equal(t, tt.code, Code(tt.err))
			}
		})
	}
}
