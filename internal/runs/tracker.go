// Package runs tracks imports started over HTTP. At most one run per sport
// is active at a time; finished runs are kept in memory for inspection.
package runs

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// ErrBusy is returned when the sport already has an active run.
var ErrBusy = errors.New("a run for this sport is already in progress")

// ErrNotFound is returned for unknown run ids.
var ErrNotFound = errors.New("run not found")

// Status is a run's lifecycle status.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// DriverFactory builds a driver for a sport. *pipeline.Pipeline implements it.
type DriverFactory interface {
	Driver(ctx context.Context, sport string, forceDetails bool) (*ingest.Driver, error)
}

// Run is a snapshot of one tracked run.
type Run struct {
	ID         string           `json:"id"`
	Sport      string           `json:"sport"`
	Status     Status           `json:"status"`
	State      string           `json:"state"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Stats      *ingest.RunStats `json:"stats,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type entry struct {
	run    Run
	driver *ingest.Driver
}

// Tracker starts runs in the background and records their outcome.
type Tracker struct {
	factory DriverFactory
	logger  *slog.Logger
	keep    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	runs   map[string]*entry
	active map[string]string // sport -> run id
}

// NewTracker creates a tracker. keep bounds how many finished runs are
// retained; the oldest are dropped first.
func NewTracker(factory DriverFactory, keep int, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if keep <= 0 {
		keep = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		factory: factory,
		logger:  logger,
		keep:    keep,
		ctx:     ctx,
		cancel:  cancel,
		runs:    make(map[string]*entry),
		active:  make(map[string]string),
	}
}

// Start launches a run. Configuration errors (unknown sport, missing tables)
// are returned synchronously; the scope itself is validated by the driver,
// so an invalid scope shows up as a failed run.
func (t *Tracker) Start(sport string, scope provider.Scope, forceDetails bool) (Run, error) {
	t.mu.Lock()
	if _, busy := t.active[sport]; busy {
		t.mu.Unlock()
		return Run{}, ErrBusy
	}
	// Reserve the sport while the driver is built.
	t.active[sport] = ""
	t.mu.Unlock()

	driver, err := t.factory.Driver(t.ctx, sport, forceDetails)
	if err != nil {
		t.mu.Lock()
		delete(t.active, sport)
		t.mu.Unlock()
		return Run{}, err
	}

	e := &entry{
		run: Run{
			ID:        uuid.NewString(),
			Sport:     sport,
			Status:    StatusRunning,
			StartedAt: time.Now().UTC(),
		},
		driver: driver,
	}

	t.mu.Lock()
	t.runs[e.run.ID] = e
	t.active[sport] = e.run.ID
	snapshot := t.snapshot(e)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.execute(e, scope)

	t.logger.Info("run started", "id", e.run.ID, "sport", sport)
	return snapshot, nil
}

func (t *Tracker) execute(e *entry, scope provider.Scope) {
	defer t.wg.Done()

	stats, err := e.driver.Run(t.ctx, scope)
	finished := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()

	e.run.FinishedAt = &finished
	e.run.Stats = &stats
	switch {
	case err == nil:
		e.run.Status = StatusSucceeded
	case errors.Is(err, context.Canceled):
		e.run.Status = StatusCancelled
	default:
		e.run.Status = StatusFailed
		e.run.Error = err.Error()
	}
	delete(t.active, e.run.Sport)
	t.prune()

	t.logger.Info("run finished", "id", e.run.ID, "sport", e.run.Sport,
		"status", e.run.Status, "summary", stats.Summary())
}

// prune drops the oldest finished runs beyond the retention limit. Caller
// holds t.mu.
func (t *Tracker) prune() {
	if len(t.runs) <= t.keep {
		return
	}
	var finished []*entry
	for _, e := range t.runs {
		if e.run.FinishedAt != nil {
			finished = append(finished, e)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].run.StartedAt.Before(finished[j].run.StartedAt)
	})
	for _, e := range finished {
		if len(t.runs) <= t.keep {
			return
		}
		delete(t.runs, e.run.ID)
	}
}

// snapshot copies a run for callers. Caller holds t.mu.
func (t *Tracker) snapshot(e *entry) Run {
	r := e.run
	if r.FinishedAt == nil {
		r.State = e.driver.State().String()
	} else {
		r.State = ingest.Idle.String()
	}
	if r.Stats != nil {
		s := *r.Stats
		r.Stats = &s
	}
	return r
}

// Get returns one run.
func (t *Tracker) Get(id string) (Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return t.snapshot(e), nil
}

// List returns every retained run, newest first.
func (t *Tracker) List() []Run {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Run, 0, len(t.runs))
	for _, e := range t.runs {
		out = append(out, t.snapshot(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Shutdown cancels active runs and waits for them to stop or for ctx to end.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.cancel()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
