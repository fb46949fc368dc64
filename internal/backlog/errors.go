// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backlog

import (
	"errors"
	"fmt"
)

// ErrNoStatuses is returned when the project status list is empty, which
// leaves no way to resolve the project id.
var ErrNoStatuses = errors.New("no statuses found for project")

// ErrInvalidPageSize is returned when a list page size is outside 1-100.
var ErrInvalidPageSize = errors.New("page size must be between 1 and 100")

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Body)
}
