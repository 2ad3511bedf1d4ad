package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validation("rating must be between 1 and 5")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrPersistence))

	wrapped := fmt.Errorf("submit review: %w", err)
	assert.True(t, Is(wrapped, ErrValidation))
}

func TestError_WithCauseUnwraps(t *testing.T) {
	err := Persistence("list shelf", io.ErrUnexpectedEOF)

	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.True(t, Is(err, ErrPersistence))
	assert.Equal(t, "list shelf: unexpected EOF", err.Error())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodePersistence, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.HTTPStatus())
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("wrap: %w", NotFound("profile"))))
	assert.Equal(t, CodeInternal, CodeOf(io.EOF))
}

func TestWithDetails_KeepsCode(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]string{"rating": "is required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"rating": "is required"}, err.Details)
	assert.Nil(t, ErrValidation.Details, "sentinel must not be mutated")
}
