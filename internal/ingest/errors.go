package ingest

import (
	"errors"
	"fmt"

	"github.com/albapepper/scoracle-ingest/internal/config"
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// ConfigError is the only error that aborts a run. It is raised before any
// network call is made.
type ConfigError = config.Error

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// FetchError is a failed unit or detail request. It is absorbed into
// RunStats and never ends a run.
type FetchError struct {
	Sport string
	Unit  string // unit label or "game <id>" for detail calls
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Sport, e.Unit, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsUnmappable reports whether a mapper rejected a record.
func IsUnmappable(err error) bool {
	return errors.Is(err, provider.ErrUnmappable)
}
