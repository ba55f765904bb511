package defectapi

import (
	"time"

	"github.com/railwatch/railwatch-go/internal/errors"
)

// DefaultConfig returns the default client configuration values.
func DefaultConfig() Config {
	return Config{
		BaseURL:  "http://localhost:8000",
		Timeout:  30 * time.Second,
		PageSize: 100,
	}
}

// Config contains configuration for the defect service client.
type Config struct {
	// BaseURL is the detection service root, without trailing slash.
	BaseURL string

	// Timeout applies to each individual request.
	Timeout time.Duration

	// PageSize is the limit parameter used when listing defects.
	PageSize int
}

// apiError mirrors the service's error payload shape.
type apiError struct {
	Detail string `json:"detail"`
}

// bulkDeleteRequest is the body for POST /defects/bulk-delete.
type bulkDeleteRequest struct {
	DefectIDs []int `json:"defect_ids"`
}

// ExportResult carries a binary report artifact and its advisory filename.
type ExportResult struct {
	Data     []byte
	Filename string
}

// Detail extracts the server-supplied error detail from err for display to
// the operator, falling back to the given generic message when the server
// did not provide one.
func Detail(err error, fallback string) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		if detail, ok := ee.Context["detail"].(string); ok && detail != "" {
			return detail
		}
	}
	return fallback
}
