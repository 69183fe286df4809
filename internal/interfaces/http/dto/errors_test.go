package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeDuplicateMovement, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Domain codes should be normalized
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"CONFLICT", ErrCodeConflict},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"OPTIMISTIC_LOCK_FAILED", ErrCodeConcurrencyConflict},
		{"DUPLICATE_MOVEMENT", ErrCodeDuplicateMovement},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"INVARIANT_VIOLATION", ErrCodeBusinessRule},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"ALREADY_ACTIVE", ErrCodeInvalidState},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		// INVALID_* field codes collapse to the generic validation code
		{"INVALID_QUANTITY", ErrCodeValidation},
		{"INVALID_TENANT", ErrCodeValidation},
		{"INVALID_MOVEMENT_TYPE", ErrCodeValidation},
		// New codes should pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		// Unknown codes should pass through unchanged
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	t.Run("computes total pages with remainder", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 25, 1, 10)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(25), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("computes total pages with exact division", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{1, 2}, 20, 2, 10)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})
}
