package client

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "YUDL network error (status 0): request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "not found",
			},
			expected: "YUDL client error (status 404): not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	apiErr := &APIError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        baseErr,
	}

	if !errors.Is(apiErr, baseErr) {
		t.Error("errors.Is should find the wrapped error")
	}

	var target *APIError
	if !errors.As(error(apiErr), &target) {
		t.Error("errors.As should match *APIError")
	}
}
