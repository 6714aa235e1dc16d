// Package ingest runs the import pipeline for one sport: it enumerates the
// adapter's units, fetches each one, maps every record and writes every row,
// pacing outbound calls and absorbing per-unit and per-record failures into
// RunStats.
package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/sink"
)

// State is the driver's position in a run.
type State int32

const (
	Idle State = iota
	EnumeratingUnits
	FetchingUnit
	MappingRecords
	WritingRecords
	Reporting
)

func (s State) String() string {
	switch s {
	case EnumeratingUnits:
		return "enumerating"
	case FetchingUnit:
		return "fetching"
	case MappingRecords:
		return "mapping"
	case WritingRecords:
		return "writing"
	case Reporting:
		return "reporting"
	default:
		return "idle"
	}
}

// Observer is notified of games that reached a terminal status and were
// written. Errors are logged and do not affect RunStats.
type Observer interface {
	GameCompleted(ctx context.Context, sport string, row provider.Row) error
}

// Options configures a Driver.
type Options struct {
	Sport   string
	Adapter provider.Adapter
	Mapper  provider.Mapper
	Sink    sink.Sink
	Pacer   Pacer
	Logger  *slog.Logger

	// Observer is optional.
	Observer Observer

	// ForceDetails fetches box scores for terminal games even when the game
	// row itself was skipped as unchanged.
	ForceDetails bool
}

// Driver processes units strictly sequentially. A Driver may be reused for
// several runs but not for two runs at once.
type Driver struct {
	opts   Options
	logger *slog.Logger
	state  atomic.Int32
}

// New creates a driver. Missing components are reported by Run.
func New(opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pacer == nil {
		opts.Pacer = NoDelay{}
	}
	if opts.Sport == "" && opts.Adapter != nil {
		opts.Sport = opts.Adapter.Sport()
	}
	return &Driver{opts: opts, logger: opts.Logger.With("sport", opts.Sport)}
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

func (d *Driver) setState(s State) {
	d.state.Store(int32(s))
}

// Run imports every unit of scope. It returns a ConfigError, before any
// network call, when a component is missing or the scope is invalid. When ctx
// is cancelled it stops between units or records and returns the partial
// stats with ctx.Err(). Every other failure is counted, not returned.
func (d *Driver) Run(ctx context.Context, scope provider.Scope) (RunStats, error) {
	stats := RunStats{Sport: d.opts.Sport}
	start := time.Now()

	d.setState(EnumeratingUnits)
	defer d.setState(Idle)

	units, err := d.Plan(scope)
	if err != nil {
		return stats, err
	}
	stats.UnitsPlanned = len(units)
	d.logger.Info("run started", "units", len(units))

	for _, unit := range units {
		if ctx.Err() != nil {
			break
		}
		d.runUnit(ctx, unit, &stats)
	}

	d.setState(Reporting)
	stats.Duration = time.Since(start)
	if ctx.Err() != nil {
		stats.Cancelled = true
		d.logger.Warn("run cancelled", "summary", stats.Summary())
		return stats, ctx.Err()
	}
	d.logger.Info("run complete", "summary", stats.Summary())
	return stats, nil
}

// Plan checks the driver's components and enumerates the units of scope
// without touching the network. Every failure is a ConfigError.
func (d *Driver) Plan(scope provider.Scope) ([]provider.Unit, error) {
	if err := d.preflight(); err != nil {
		return nil, err
	}
	units, err := d.opts.Adapter.Units(scope)
	if err != nil {
		return nil, &ConfigError{Key: "scope", Message: d.opts.Sport + ": " + err.Error()}
	}
	return units, nil
}

func (d *Driver) preflight() error {
	switch {
	case d.opts.Adapter == nil:
		return &ConfigError{Key: "adapter", Message: "no source adapter for " + d.opts.Sport}
	case d.opts.Mapper == nil:
		return &ConfigError{Key: "mapper", Message: "no record mapper for " + d.opts.Sport}
	case d.opts.Sink == nil:
		return &ConfigError{Key: "sink", Message: "no upsert sink configured"}
	}
	return nil
}

// runUnit fetches, maps and writes one unit. Failures are absorbed.
func (d *Driver) runUnit(ctx context.Context, unit provider.Unit, stats *RunStats) {
	log := d.logger.With("unit", unit.String())

	d.setState(FetchingUnit)
	batch, err := d.opts.Adapter.FetchUnit(ctx, unit)
	stats.UnitsVisited++
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ferr := &FetchError{Sport: d.opts.Sport, Unit: unit.String(), Err: err}
		stats.UnitsFailed++
		stats.AddErrorf("%v", ferr)
		log.Error("fetch unit failed", "error", err)
	}
	if err := d.opts.Pacer.Wait(ctx); err != nil {
		return
	}

	records := batch.Ordered()
	stats.RecordsFetched += len(records)
	log.Debug("unit fetched", "records", len(records))
	if len(records) == 0 {
		return
	}

	d.setState(MappingRecords)
	type mapped struct {
		rec provider.Record
		row provider.Row
	}
	rows := make([]mapped, 0, len(records))
	for _, rec := range records {
		row, ok := d.mapRecord(log, rec, stats)
		if ok {
			rows = append(rows, mapped{rec: rec, row: row})
		}
	}

	d.setState(WritingRecords)
	for _, m := range rows {
		if ctx.Err() != nil {
			return
		}
		outcome := d.writeRow(ctx, log, m.row, stats)
		if outcome == sink.Failed || m.rec.Entity != provider.EntityGames {
			continue
		}
		d.afterGame(ctx, log, m.rec, m.row, outcome, stats)
	}
}

// afterGame notifies the observer and fetches the box score of a game that
// is terminal.
func (d *Driver) afterGame(ctx context.Context, log *slog.Logger, rec provider.Record, row provider.Row, outcome sink.Outcome, stats *RunStats) {
	details, ok := d.opts.Adapter.(provider.DetailFetcher)
	if !ok || !details.Terminal(rec) {
		return
	}
	if outcome == sink.Accepted && d.opts.Observer != nil {
		if err := d.opts.Observer.GameCompleted(ctx, d.opts.Sport, row); err != nil {
			log.Warn("observer failed", "key", row.Key(), "error", err)
		}
	}
	if outcome != sink.Accepted && !d.opts.ForceDetails {
		return
	}

	gameID := details.DetailID(rec)
	if gameID == "" {
		return
	}
	glog := log.With("game_id", gameID)

	d.setState(FetchingUnit)
	stats.DetailFetches++
	recs, err := details.FetchDetail(ctx, gameID)
	if err != nil && ctx.Err() == nil {
		ferr := &FetchError{Sport: d.opts.Sport, Unit: "game " + gameID, Err: err}
		stats.DetailFailures++
		stats.AddErrorf("%v", ferr)
		glog.Error("fetch detail failed", "error", err)
	}
	if err := d.opts.Pacer.Wait(ctx); err != nil {
		return
	}
	stats.RecordsFetched += len(recs)

	d.setState(MappingRecords)
	rows := make([]provider.Row, 0, len(recs))
	for _, r := range recs {
		if row, ok := d.mapRecord(glog, r, stats); ok {
			rows = append(rows, row)
		}
	}

	d.setState(WritingRecords)
	for _, row := range rows {
		if ctx.Err() != nil {
			return
		}
		d.writeRow(ctx, glog, row, stats)
	}
}

func (d *Driver) mapRecord(log *slog.Logger, rec provider.Record, stats *RunStats) (provider.Row, bool) {
	row, err := d.opts.Mapper.Map(rec)
	if err != nil {
		stats.RecordsSkipped++
		stats.SkippedUnmappable++
		log.Warn("record unmappable", "entity", rec.Entity, "error", err)
		return provider.Row{}, false
	}
	return row, true
}

func (d *Driver) writeRow(ctx context.Context, log *slog.Logger, row provider.Row, stats *RunStats) sink.Outcome {
	outcome, err := d.opts.Sink.Write(ctx, row)
	switch outcome {
	case sink.Accepted:
		stats.RecordsWritten++
	case sink.Skipped:
		stats.RecordsSkipped++
		stats.SkippedExisting++
	default:
		stats.RecordsFailed++
		stats.AddErrorf("%s %s: %v", row.Table.Name, row.Key(), err)
		log.Error("write failed", "table", row.Table.Name, "key", row.Key(), "error", err)
	}
	return outcome
}
