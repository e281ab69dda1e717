package client

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{"client error should not retry", ErrorClassClient, false},
		{"auth error should not retry", ErrorClassAuth, false},
		{"server error should retry", ErrorClassServer, true},
		{"rate limit should retry", ErrorClassRateLimit, true},
		{"network error should retry", ErrorClassNetwork, true},
		{"empty error class should not retry", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shouldRetry(tt.errorClass); result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{400, ErrorClassClient},
		{401, ErrorClassAuth},
		{403, ErrorClassAuth},
		{404, ErrorClassClient},
		{422, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.statusCode); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				StatusCode: 0,
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "FSF network error (status 0): request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 401,
				ErrorClass: ErrorClassAuth,
				Message:    "401 Unauthorized",
			},
			expected: "FSF auth error (status 401): 401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.apiError.Error(); result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	apiErr := &APIError{
		StatusCode: 0,
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        innerErr,
	}

	if !errors.Is(apiErr, innerErr) {
		t.Error("errors.Is should find the wrapped error")
	}

	var target *APIError
	if !errors.As(apiErr, &target) {
		t.Error("errors.As should work with APIError")
	}
}

func TestClassOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &APIError{ErrorClass: ErrorClassRateLimit})

	if got := classOf(wrapped); got != ErrorClassRateLimit {
		t.Errorf("classOf(wrapped) = %q, want %q", got, ErrorClassRateLimit)
	}
	if got := classOf(errors.New("plain")); got != "" {
		t.Errorf("classOf(plain) = %q, want empty", got)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := errorMessage("404 Not Found", nil); got != "404 Not Found" {
		t.Errorf("errorMessage() = %q, want status only", got)
	}

	if got := errorMessage("400 Bad Request", []byte(` {"message":"bad fsid"} `)); got != `400 Bad Request: {"message":"bad fsid"}` {
		t.Errorf("errorMessage() = %q", got)
	}

	long := errorMessage("500 Internal Server Error", []byte(strings.Repeat("x", 2*maxErrorBody)))
	if !strings.HasSuffix(long, "...") || len(long) > maxErrorBody+50 {
		t.Errorf("errorMessage() did not truncate long body (len %d)", len(long))
	}
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"two byte runes", "x" + strings.Repeat("é", maxErrorBody)},
		{"three byte runes", strings.Repeat("€", maxErrorBody)},
		{"four byte runes", "ab" + strings.Repeat("🌊", maxErrorBody)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage("500 Internal Server Error", []byte(tt.body))

			if !utf8.ValidString(got) {
				t.Errorf("errorMessage() = %q, not valid UTF-8", got)
			}
			if !strings.HasSuffix(got, "...") {
				t.Errorf("errorMessage() = %q, want truncation marker", got)
			}
			text := strings.TrimSuffix(strings.TrimPrefix(got, "500 Internal Server Error: "), "...")
			if len(text) > maxErrorBody || len(text) < maxErrorBody-utf8.UTFMax {
				t.Errorf("truncated body length = %d, want close to %d", len(text), maxErrorBody)
			}
		})
	}
}
