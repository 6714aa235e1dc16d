// Command ingest is the Scoracle ingestion CLI.
//
// Usage:
//
//	scoracle-ingest run nfl --season 2024 --weeks 1,2 --season-types regular
//	scoracle-ingest run nba mlb --from 2024-10-22 --to 2024-10-28
//	scoracle-ingest run golf --event 401580351
//	scoracle-ingest run nhl --season 2024 --teams --dry-run
//	scoracle-ingest schedule --cron "0 6 * * *" nba nhl mlb --days-back 2
//	scoracle-ingest sports
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-ingest/internal/config"
	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/pipeline"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/registry"
)

var logger = slog.Default()

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "scoracle-ingest",
		Short:         "Scoracle multi-sport ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(sportsCmd())

	// Only setup errors reach here, before any feed is fetched; per-record
	// failures are reported in the run summary and leave the exit code at 0.
	if err := root.Execute(); err != nil {
		logger.Error("ingest aborted", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

type scopeFlags struct {
	season       int
	seasons      []int
	from, to     string
	weeks        []int
	seasonTypes  []string
	events       []string
	teams        bool
	forceDetails bool
	dryRun       bool
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.season, "season", 0, "Season year (default: current season)")
	cmd.Flags().IntSliceVar(&f.seasons, "seasons", nil, "Several seasons, e.g. 2022,2023")
	cmd.Flags().StringVar(&f.from, "from", "", "First date, YYYY-MM-DD (date-paged sports)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last date, YYYY-MM-DD (date-paged sports)")
	cmd.Flags().IntSliceVar(&f.weeks, "weeks", nil, "Weeks to import (week-paged sports)")
	cmd.Flags().StringSliceVar(&f.seasonTypes, "season-types", nil, "preseason, regular, postseason (week-paged sports)")
	cmd.Flags().StringSliceVar(&f.events, "event", nil, "Tournament ids (golf)")
	cmd.Flags().BoolVar(&f.teams, "teams", false, "Import the team list first")
	cmd.Flags().BoolVar(&f.forceDetails, "force-details", false, "Fetch box scores even for unchanged final games")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Write to an in-memory sink")
}

// scope resolves the flags for one sport.
func (f *scopeFlags) scope(sport registry.Sport, now time.Time) (provider.Scope, error) {
	s := provider.Scope{
		Seasons:     f.seasons,
		Weeks:       f.weeks,
		SeasonTypes: f.seasonTypes,
		Events:      f.events,
		Teams:       f.teams,
	}
	if f.season != 0 {
		s.Seasons = append([]int{f.season}, s.Seasons...)
	}
	var err error
	if s.From, err = parseDate("from", f.from); err != nil {
		return s, err
	}
	if s.To, err = parseDate("to", f.to); err != nil {
		return s, err
	}
	if len(s.Seasons) == 0 && s.From.IsZero() && s.To.IsZero() && len(s.Events) == 0 {
		s.Seasons = []int{sport.CurrentSeason(now)}
	}
	return s, nil
}

func parseDate(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, &ingest.ConfigError{Key: "--" + flag, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", v)}
	}
	return t, nil
}

// driverFactory builds a driver for one sport. *pipeline.Pipeline
// implements it.
type driverFactory interface {
	Driver(ctx context.Context, sport string, forceDetails bool) (*ingest.Driver, error)
}

type plannedRun struct {
	sport  string
	scope  provider.Scope
	driver *ingest.Driver
}

// planRuns resolves every sport, scope and driver up front. Any error stops
// the command before the first unit is fetched.
func planRuns(ctx context.Context, reg *registry.Registry, f driverFactory, keys []string, flags *scopeFlags, now time.Time) ([]plannedRun, error) {
	plan := make([]plannedRun, 0, len(keys))
	for _, key := range keys {
		sport, err := reg.Lookup(key)
		if err != nil {
			return nil, err
		}
		scope, err := flags.scope(sport, now)
		if err != nil {
			return nil, err
		}
		d, err := f.Driver(ctx, sport.Key, flags.forceDetails)
		if err != nil {
			return nil, err
		}
		if _, err := d.Plan(scope); err != nil {
			return nil, err
		}
		plan = append(plan, plannedRun{sport: sport.Key, scope: scope, driver: d})
	}
	return plan, nil
}

// executeRuns runs each planned sport in order and returns the combined
// stats. It stops early only when ctx is cancelled.
func executeRuns(ctx context.Context, plan []plannedRun) ingest.RunStats {
	var total ingest.RunStats
	for _, r := range plan {
		if ctx.Err() != nil {
			break
		}
		stats, err := r.driver.Run(ctx, r.scope)
		report(stats)
		total.Add(stats)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("run failed", "sport", r.sport, "error", err)
		}
	}
	return total
}

func runCmd() *cobra.Command {
	var flags scopeFlags
	cmd := &cobra.Command{
		Use:   "run <sport>...",
		Short: "Import one or more sports for a season, week or date range",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(flags.dryRun, func(ctx context.Context, p *pipeline.Pipeline) error {
				plan, err := planRuns(ctx, p.Registry(), p, args, &flags, time.Now())
				if err != nil {
					return err
				}
				total := executeRuns(ctx, plan)
				if len(plan) > 1 {
					logger.Info("all runs finished", "summary", total.Summary())
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func report(stats ingest.RunStats) {
	logger.Info("run finished", "sport", stats.Sport, "summary", stats.Summary())
	for _, e := range stats.Errors {
		logger.Error("run error", "sport", stats.Sport, "error", e)
	}
}

// --------------------------------------------------------------------------
// schedule command
// --------------------------------------------------------------------------

func scheduleCmd() *cobra.Command {
	var (
		spec     string
		daysBack int
		weeks    []int
		now      bool
	)
	cmd := &cobra.Command{
		Use:   "schedule <sport>...",
		Short: "Run imports on a cron schedule over a rolling window",
		Long: "Date-paged sports import the last --days-back days (golf at least a week). " +
			"Week-paged sports import the current season, optionally limited with --weeks.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(false, func(ctx context.Context, p *pipeline.Pipeline) error {
				type scheduled struct {
					sport  registry.Sport
					driver *ingest.Driver
				}
				jobs := make([]scheduled, 0, len(args))
				for _, key := range args {
					sport, err := p.Registry().Lookup(key)
					if err != nil {
						return err
					}
					d, err := p.Driver(ctx, sport.Key, false)
					if err != nil {
						return err
					}
					if _, err := d.Plan(rollingScope(sport, time.Now().UTC(), daysBack, weeks)); err != nil {
						return err
					}
					jobs = append(jobs, scheduled{sport: sport, driver: d})
				}

				tick := func() {
					for _, j := range jobs {
						if ctx.Err() != nil {
							return
						}
						stats, err := j.driver.Run(ctx, rollingScope(j.sport, time.Now().UTC(), daysBack, weeks))
						report(stats)
						if err != nil && !errors.Is(err, context.Canceled) {
							logger.Error("scheduled run failed", "sport", j.sport.Key, "error", err)
						}
					}
				}

				c, err := newScheduler(spec, now, tick)
				if err != nil {
					return err
				}
				if ctx.Err() != nil {
					return nil
				}
				c.Start()
				logger.Info("scheduler started", "cron", spec, "sports", strings.Join(args, ","))

				<-ctx.Done()
				logger.Info("Shutting down scheduler...")
				<-c.Stop().Done()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "0 6 * * *", "Cron expression (minute hour dom month dow)")
	cmd.Flags().IntVar(&daysBack, "days-back", 2, "Days before today to re-import (date-paged sports)")
	cmd.Flags().IntSliceVar(&weeks, "weeks", nil, "Weeks to re-import (week-paged sports)")
	cmd.Flags().BoolVar(&now, "now", false, "Also run once immediately")
	return cmd
}

// newScheduler registers job on spec behind SkipIfStillRunning. With runNow
// the wrapped job runs once, synchronously, before the scheduler is
// returned, so a cron tick can never overlap it.
func newScheduler(spec string, runNow bool, job func()) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(spec, job)
	if err != nil {
		return nil, &ingest.ConfigError{Key: "--cron", Message: err.Error()}
	}
	if runNow {
		c.Entry(id).WrappedJob.Run()
	}
	return c, nil
}

// rollingScope is the scope a scheduled tick imports for one sport.
func rollingScope(sport registry.Sport, now time.Time, daysBack int, weeks []int) provider.Scope {
	switch sport.Paging {
	case registry.ByWeek:
		return provider.Scope{Seasons: []int{sport.CurrentSeason(now)}, Weeks: weeks}
	case registry.ByEvent:
		if daysBack < 7 {
			daysBack = 7
		}
	}
	return provider.Scope{From: now.AddDate(0, 0, -daysBack), To: now}
}

// --------------------------------------------------------------------------
// sports command
// --------------------------------------------------------------------------

func sportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sports",
		Short: "List registered sports, feeds and destination tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SPORT\tNAME\tFEED\tPAGING\tDELAY\tTABLES")
			for _, s := range registry.New().All() {
				tables := make([]string, 0, 3)
				for _, t := range s.Mapper.Tables() {
					tables = append(tables, t.Name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.Key, s.Name, s.Feed, s.Paging, s.Delay, strings.Join(tables, ","))
			}
			return w.Flush()
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withPipeline handles config loading, sink setup, and context cancellation.
func withPipeline(dryRun bool, fn func(ctx context.Context, p *pipeline.Pipeline) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if dryRun {
		os.Setenv("SINK", config.SinkMemory)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := pipeline.Open(ctx, cfg, pipeline.Options{DryRun: dryRun, Logger: logger})
	if err != nil {
		return err
	}
	defer p.Close()

	return fn(ctx, p)
}
