package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error represents an error response from the backend.
type Error struct {
	// StatusCode is the HTTP status code.
	StatusCode int `json:"-"`
	// Code is a short machine-readable error code when the backend
	// supplies one (e.g. "unauthorized", "not_found").
	Code string `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsNotFound returns true for 404-class errors.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == "not_found"
}

// IsUnauthorized returns true for 401-class errors.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "unauthorized"
}

// IsValidation returns true for 400-class errors.
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest || e.Code == "validation_error"
}

// parseError builds an *Error from a non-2xx response. Backends in the
// wild disagree on the error envelope, so several shapes are tried
// before falling back to the raw body.
func parseError(statusCode int, body []byte) error {
	var wrapped struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return &Error{StatusCode: statusCode, Code: wrapped.Error.Code, Message: wrapped.Error.Message}
	}

	var flat struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		if flat.Message != "" {
			return &Error{StatusCode: statusCode, Code: flat.Code, Message: flat.Message}
		}
		if flat.Err != "" {
			return &Error{StatusCode: statusCode, Code: flat.Code, Message: flat.Err}
		}
	}

	return &Error{
		StatusCode: statusCode,
		Code:       http.StatusText(statusCode),
		Message:    string(body),
	}
}

// IsAPIError checks whether err is (or wraps) a backend error and
// returns it.
func IsAPIError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
