package search

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned by every call on a client built without a key.
var ErrMissingAPIKey = errors.New("yelp API key is not configured")

// APIError is a non-2xx response from Yelp.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Description == "" {
		return fmt.Sprintf("API error: status %d", e.StatusCode)
	}
	if e.Description == "" {
		return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("API error: status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable reports whether err wraps a retryable APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}
