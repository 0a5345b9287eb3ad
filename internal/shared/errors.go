package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrCorruptSession   = fmt.Errorf("corrupt session snapshot")

	// Gateway errors
	ErrNetwork      = fmt.Errorf("network error")
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrMovieMissing = fmt.Errorf("movie not found")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrEmptyQuery      = fmt.Errorf("empty search query")
	ErrInvalidPage     = fmt.Errorf("invalid page")
	ErrInvalidFilter   = fmt.Errorf("invalid filter value")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// APIError reports a non-2xx response from a remote API.
//
// Message carries the server supplied message when the body had one, otherwise the status text.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.URL, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	if target == ErrAPIRequest {
		return true
	}
	return target == ErrMovieMissing && e.StatusCode == http.StatusNotFound
}

// ValidationError rejects user input before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthError is a failed login or registration.
//
// Message is shown to the user as-is.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuthFailed }

// UserMessage extracts the text a surface should display for err.
func UserMessage(err error) string {
	var authErr *AuthError
	var valErr *ValidationError
	var apiErr *APIError
	switch {
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	case err != nil:
		return err.Error()
	}
	return ""
}
