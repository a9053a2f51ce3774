package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	err := ValidationError("bad accession")
	assert.Equal(t, "validation: bad accession", err.Error())

	cause := stderrors.New("connection refused")
	wrapped := InternalError("query failed", cause)
	assert.Equal(t, "internal: query failed: connection refused", wrapped.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := InternalError("wrapper", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ValidationError("x"), http.StatusBadRequest},
		{UnauthorizedError("x"), http.StatusUnauthorized},
		{ForbiddenError("x"), http.StatusForbidden},
		{NotFoundError("x"), http.StatusNotFound},
		{ConflictError("x"), http.StatusConflict},
		{InternalError("x", nil), http.StatusInternalServerError},
		{ExternalError("x", nil), http.StatusBadGateway},
		{&Error{Type: "mystery"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestError_WithContext(t *testing.T) {
	err := NotFoundError("tag not found").
		WithContext("tag_id", "abc").
		WithField("title", "bmi")

	assert.Equal(t, "abc", err.Context["tag_id"])
	assert.Equal(t, "bmi", err.Context["title"])
}

func TestError_ToResponse(t *testing.T) {
	err := ConflictError("already tagged").WithField("trait", int64(543))
	resp := err.ToResponse()

	assert.Equal(t, "already tagged", resp.Error)
	assert.Equal(t, TypeConflict, resp.Type)
	assert.Equal(t, int64(543), resp.Context["trait"])
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("already structured", func(t *testing.T) {
		orig := ValidationError("bad input")
		got := AsStructuredError(orig)
		assert.Same(t, orig, got)
	})

	t.Run("wrapped structured", func(t *testing.T) {
		orig := NotFoundError("missing")
		wrapped := stderrors.Join(orig)
		got := AsStructuredError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, TypeNotFound, got.Type)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsStructuredError(stderrors.New("plain"))
		require.NotNil(t, got)
		assert.Equal(t, TypeInternal, got.Type)
		assert.Equal(t, "internal server error", got.Message)
	})
}
