package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	wrapped := fmt.Errorf("lookup article: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "url", Message: "URL is required"}
	assert.Equal(t, "validation error on field 'url': URL is required", err.Error())
}

func TestValidationError_As(t *testing.T) {
	var err error = &ValidationError{Field: "title", Message: "is required"}
	wrapped := fmt.Errorf("validate: %w", err)

	var vErr *ValidationError
	assert.ErrorAs(t, wrapped, &vErr)
	assert.Equal(t, "title", vErr.Field)
}
