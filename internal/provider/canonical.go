// Package provider defines canonical data types that every source adapter,
// record mapper and upsert sink agree on. Adapters emit Records, mappers turn
// Records into Rows, sinks write Rows. None of the three depends on another;
// the ingest driver is the only component that sees all of them.
//
// Adding a new sport means implementing an Adapter and declaring a
// SchemaMapper. The driver and the sinks never change.
package provider

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// EntityType groups raw records by the destination entity they describe.
type EntityType string

const (
	EntityTeams       EntityType = "teams"
	EntityGames       EntityType = "games"
	EntityPlayerStats EntityType = "player-stats"
	EntityResults     EntityType = "tournament-results"
)

// writeOrder is the order in which a unit's records are written. Parents
// (teams, games) go before the rows that reference them.
var writeOrder = []EntityType{EntityTeams, EntityGames, EntityResults, EntityPlayerStats}

// --------------------------------------------------------------------------
// Pagination
// --------------------------------------------------------------------------

// UnitKind identifies how a Unit slices the remote data space.
type UnitKind int

const (
	UnitCatalog UnitKind = iota // team list, one request
	UnitWeek                    // (season, season type, week)
	UnitDate                    // calendar date
	UnitEvent                   // tournament / event id
)

// Unit is one slice of a remote source visited by one fetch cycle.
type Unit struct {
	Kind       UnitKind
	Season     int
	SeasonType string
	Week       int
	Date       time.Time
	EventID    string
}

// String returns a stable label used in logs and error messages.
func (u Unit) String() string {
	switch u.Kind {
	case UnitCatalog:
		return "teams"
	case UnitWeek:
		return fmt.Sprintf("%d/%s/week-%d", u.Season, u.SeasonType, u.Week)
	case UnitDate:
		return u.Date.Format("2006-01-02")
	case UnitEvent:
		return "event-" + u.EventID
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Raw records
// --------------------------------------------------------------------------

// Record is the adapter's parsed JSON fragment for one entity instance. Data
// is the source fragment verbatim. Meta carries context the fragment lacks
// (parent game id, team, season) and is addressed with the "meta." path prefix.
type Record struct {
	Entity EntityType
	Data   map[string]interface{}
	Meta   map[string]interface{}
}

// Batch holds the records fetched for one unit, grouped by entity type.
type Batch struct {
	groups map[EntityType][]Record
}

// Add appends records to the batch.
func (b *Batch) Add(recs ...Record) {
	if b.groups == nil {
		b.groups = make(map[EntityType][]Record)
	}
	for _, r := range recs {
		b.groups[r.Entity] = append(b.groups[r.Entity], r)
	}
}

// Group returns the records of one entity type.
func (b Batch) Group(e EntityType) []Record {
	return b.groups[e]
}

// Len returns the total number of records.
func (b Batch) Len() int {
	n := 0
	for _, g := range b.groups {
		n += len(g)
	}
	return n
}

// Ordered returns all records, parents first.
func (b Batch) Ordered() []Record {
	out := make([]Record, 0, b.Len())
	for _, e := range writeOrder {
		out = append(out, b.groups[e]...)
	}
	return out
}

// --------------------------------------------------------------------------
// Destination rows
// --------------------------------------------------------------------------

// ConflictPolicy decides what a sink does when the UpsertKey already exists.
type ConflictPolicy int

const (
	MergeOnConflict ConflictPolicy = iota
	IgnoreDuplicates
)

func (p ConflictPolicy) String() string {
	if p == IgnoreDuplicates {
		return "ignore-duplicates"
	}
	return "merge-duplicates"
}

// Table describes a destination table and its natural key.
type Table struct {
	Name   string
	Key    []string
	Policy ConflictPolicy
}

// Row is a mapper's output: column name -> coerced value.
type Row struct {
	Table  Table
	Values map[string]interface{}
}

// Key renders the row's UpsertKey, e.g. "game_id=401,player_id=12".
func (r Row) Key() string {
	parts := make([]string, len(r.Table.Key))
	for i, k := range r.Table.Key {
		parts[i] = fmt.Sprintf("%s=%v", k, r.Values[k])
	}
	return strings.Join(parts, ",")
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r.Values))
	for c := range r.Values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
