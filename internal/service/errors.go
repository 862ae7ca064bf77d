package service

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when required configuration is missing or invalid.
	// It is a fail-fast precondition failure: no network call was attempted.
	ErrConfig = errors.New("invalid configuration")
	// ErrConnection is returned when the search cluster cannot be reached
	// or a trusted connection cannot be established.
	ErrConnection = errors.New("connection failed")
	// ErrAuth is returned when a remote service rejects the supplied credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrQuota is returned when a remote service reports rate-limit exhaustion.
	ErrQuota = errors.New("quota exceeded")
	// ErrTransient is returned on network or timeout failures. Callers may retry.
	ErrTransient = errors.New("transient failure")
	// ErrTemplate is returned when a prompt template is malformed.
	ErrTemplate = errors.New("invalid prompt template")
	// ErrNotFound is returned when a requested index or document does not exist.
	ErrNotFound = errors.New("not found")
)

// IngestError reports a partial ingestion failure. ChunksIndexed is the number
// of chunks successfully embedded and upserted before the failure, so callers
// can report "failed after N" rather than a bare error.
type IngestError struct {
	ChunksIndexed int
	Err           error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingestion failed after %d chunks: %v", e.ChunksIndexed, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
