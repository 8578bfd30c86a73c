package insales

import (
	"fmt"
	"net/http"
)

// APIError is returned for every failed call: transport errors (StatusCode 0),
// non-2xx answers and undecodable bodies.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("insales: %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("insales: %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNotFound reports whether the shop answered 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
