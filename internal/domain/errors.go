package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("player not found")
	ErrMissingCredential = errors.New("missing vision api key")
	ErrExtraction        = errors.New("failed to extract usernames")
	ErrFetch             = errors.New("failed to fetch player data")
	ErrSchema            = errors.New("malformed player data")
)

// NotFoundError is returned when a username could not be resolved. Err holds
// the transport or status failure, if any; it is nil for a plain miss.
type NotFoundError struct {
	Username string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("player %q not found: %v", e.Username, e.Err)
	}
	return fmt.Sprintf("player %q not found", e.Username)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FetchError reports a failed stats request. StatusCode is zero for transport
// failures.
type FetchError struct {
	PlayerID   PlayerID
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch player %s: status %d", e.PlayerID, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch player %s: %v", e.PlayerID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed player data: %s: %s", e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to extract usernames: %v", e.Err)
	}
	return "failed to extract usernames"
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }
