// Package sink writes mapped rows to a destination with natural-key
// idempotency. Every implementation classifies each write as accepted,
// skipped (the key already existed and nothing changed) or failed.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// Outcome classifies a single row write.
type Outcome int

const (
	Accepted Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Sink persists rows. Write returns Failed together with a non-nil error;
// Accepted and Skipped always come with a nil error.
type Sink interface {
	Write(ctx context.Context, row provider.Row) (Outcome, error)
	Close()
}

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// WriteError is a failed write with the destination's structured error.
type WriteError struct {
	Table   string
	Key     string
	Status  int    // HTTP status, 0 for direct database writes
	Code    string // SQLSTATE or PostgREST error code
	Message string
}

func (e *WriteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("write %s (%s): status %d code %s: %s", e.Table, e.Key, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("write %s (%s): code %s: %s", e.Table, e.Key, e.Code, e.Message)
}

// Conflict reports whether the error is a natural-key collision.
func (e *WriteError) Conflict() bool {
	return e.Status == 409 || e.Code == uniqueViolation
}

// AsWriteError unwraps a WriteError.
func AsWriteError(err error) (*WriteError, bool) {
	var we *WriteError
	ok := errors.As(err, &we)
	return we, ok
}
