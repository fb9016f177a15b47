package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NotFound("Chat room", nil), "NOT_FOUND", http.StatusNotFound},
		{Forbidden("nope", nil), "FORBIDDEN", http.StatusForbidden},
		{InvalidState("already settled", nil), "INVALID_STATE", http.StatusConflict},
		{SelfChat("no self chat"), "SELF_CHAT", http.StatusBadRequest},
		{Upstream("provider down", nil), "UPSTREAM_ERROR", http.StatusBadGateway},
		{Conflict("duplicate"), "CONFLICT", http.StatusConflict},
		{BadRequest("bad", nil), "BAD_REQUEST", http.StatusBadRequest},
		{Unauthorized("who", nil), "UNAUTHORIZED", http.StatusUnauthorized},
		{Internal("boom", nil), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.Status)
		assert.True(t, Is(tc.err, tc.code))
	}
}

func TestIsSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NotFound("Product", nil))
	assert.True(t, Is(wrapped, "NOT_FOUND"))
	assert.False(t, Is(wrapped, "FORBIDDEN"))
	assert.False(t, Is(stderrors.New("plain"), "NOT_FOUND"))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Internal("boom", cause)
	assert.Equal(t, cause, stderrors.Unwrap(err))
}
