package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnmappable marks a record the mapper cannot turn into a row (a required
// id is missing or the entity type has no table). The driver counts it as a
// skip and moves on.
var ErrUnmappable = errors.New("unmappable record")

// ErrScope reports a requested range the adapter cannot paginate.
var ErrScope = errors.New("invalid scope")

// Adapter knows one third-party API: its URL shape, pagination unit and
// response layout. It never writes to storage.
type Adapter interface {
	// Sport returns the registry key ("nfl", "mlb", ...).
	Sport() string

	// Units builds the ordered, finite sequence of units for a scope. It must
	// not perform network calls.
	Units(scope Scope) ([]Unit, error)

	// FetchUnit performs the request(s) for one unit.
	FetchUnit(ctx context.Context, unit Unit) (Batch, error)
}

// DetailFetcher is implemented by game-level feeds that expose box scores.
type DetailFetcher interface {
	// Terminal reports whether a games record has a final status.
	Terminal(rec Record) bool

	// DetailID returns the id to pass to FetchDetail.
	DetailID(rec Record) string

	// FetchDetail returns the player-stat records of one game.
	FetchDetail(ctx context.Context, gameID string) ([]Record, error)
}

// Mapper turns a raw record into a destination row. Implementations must be
// pure: the same record always yields the same row.
type Mapper interface {
	Map(rec Record) (Row, error)
}

// --------------------------------------------------------------------------
// Scope
// --------------------------------------------------------------------------

// Scope is the requested range of a run.
type Scope struct {
	Seasons     []int
	SeasonTypes []string // week feeds; empty means regular + postseason
	Weeks       []int    // week feeds; empty means every week of the season type
	From, To    time.Time
	Events      []string
	Teams       bool
}

// DateRange returns every date from..to inclusive, stepping stepDays.
func DateRange(from, to time.Time, stepDays int) []time.Time {
	if stepDays < 1 {
		stepDays = 1
	}
	from = truncateDay(from)
	to = truncateDay(to)
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, stepDays) {
		out = append(out, d)
	}
	return out
}

// SeasonWindow resolves the date range of a date-paged scope. Explicit
// From/To win; otherwise each season is expanded with window.
func SeasonWindow(scope Scope, window func(season int) (time.Time, time.Time)) ([][2]time.Time, error) {
	if !scope.From.IsZero() || !scope.To.IsZero() {
		from, to := scope.From, scope.To
		if from.IsZero() {
			from = to
		}
		if to.IsZero() {
			to = from
		}
		if to.Before(from) {
			return nil, fmt.Errorf("%w: to %s is before from %s", ErrScope,
				to.Format("2006-01-02"), from.Format("2006-01-02"))
		}
		return [][2]time.Time{{from, to}}, nil
	}
	if len(scope.Seasons) == 0 {
		return nil, fmt.Errorf("%w: a season or a date range is required", ErrScope)
	}
	out := make([][2]time.Time, 0, len(scope.Seasons))
	for _, s := range scope.Seasons {
		from, to := window(s)
		out = append(out, [2]time.Time{from, to})
	}
	return out, nil
}

// DateUnits expands a scope into date units, prefixed by a catalog unit when
// teams were requested.
func DateUnits(scope Scope, stepDays int, window func(season int) (time.Time, time.Time)) ([]Unit, error) {
	ranges, err := SeasonWindow(scope, window)
	if err != nil {
		return nil, err
	}
	var units []Unit
	if scope.Teams {
		units = append(units, Unit{Kind: UnitCatalog})
	}
	for _, r := range ranges {
		for _, d := range DateRange(r[0], r[1], stepDays) {
			units = append(units, Unit{Kind: UnitDate, Date: d})
		}
	}
	return units, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
