// Package pipeline assembles drivers from configuration: it opens the
// selected sink, the optional completed-game publisher, and builds one
// ingest.Driver per sport. Shared by cmd/ingest and cmd/api.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/scoracle-ingest/internal/config"
	"github.com/albapepper/scoracle-ingest/internal/db"
	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/publisher"
	"github.com/albapepper/scoracle-ingest/internal/registry"
	"github.com/albapepper/scoracle-ingest/internal/sink"
)

// Pipeline owns the long-lived resources shared by every run.
type Pipeline struct {
	cfg      *config.Config
	registry *registry.Registry
	sink     sink.Sink
	pool     *db.Pool
	redis    *redis.Client
	observer ingest.Observer
	logger   *slog.Logger
}

// Options configures Open.
type Options struct {
	// DryRun writes to an in-memory sink regardless of SINK.
	DryRun bool
	Logger *slog.Logger
}

// Open connects the configured sink and publisher. Configuration problems
// are returned as ingest.ConfigError.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Pipeline, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	p := &Pipeline{cfg: cfg, registry: registry.New(), logger: opts.Logger}

	kind := cfg.Sink
	if opts.DryRun {
		kind = config.SinkMemory
	}
	switch kind {
	case config.SinkMemory:
		p.sink = sink.NewMemory()
	case config.SinkPostgREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, &ingest.ConfigError{Key: "SUPABASE_URL", Message: "destination URL and key are required"}
		}
		p.sink = sink.NewPostgREST(sink.PostgRESTOptions{
			BaseURL: cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
			Timeout: cfg.HTTPTimeout,
			Logger:  opts.Logger,
		})
	case config.SinkPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, &ingest.ConfigError{Key: "DATABASE_URL", Message: err.Error()}
		}
		p.pool = pool
		p.sink = sink.NewPostgres(pool, pool.Close)
	default:
		return nil, &ingest.ConfigError{Key: "SINK", Message: fmt.Sprintf("unknown sink %q", kind)}
	}

	if cfg.RedisURL != "" && !opts.DryRun {
		client, err := publisher.Connect(ctx, cfg.RedisURL)
		if err != nil {
			opts.Logger.Warn("completed-game stream disabled", "error", err)
		} else {
			p.redis = client
			p.observer = publisher.NewStreamPublisher(client, 10000)
		}
	}

	opts.Logger.Info("pipeline ready", "sink", kind, "publisher", p.observer != nil)
	return p, nil
}

// Registry returns the sport registry.
func (p *Pipeline) Registry() *registry.Registry { return p.registry }

// Pool returns the database pool, or nil when the sink is not Postgres.
func (p *Pipeline) Pool() *db.Pool { return p.pool }

// Sink returns the shared sink.
func (p *Pipeline) Sink() sink.Sink { return p.sink }

// Driver builds a driver for one sport.
func (p *Pipeline) Driver(ctx context.Context, sportKey string, forceDetails bool) (*ingest.Driver, error) {
	sport, err := p.registry.Lookup(sportKey)
	if err != nil {
		return nil, err
	}
	if err := p.checkTables(ctx, sport); err != nil {
		return nil, err
	}

	delay := sport.Delay
	if p.cfg.PacingDelay > 0 {
		delay = p.cfg.PacingDelay
	}
	pacer, err := ingest.NewPacer(p.cfg.Pacing, delay)
	if err != nil {
		return nil, err
	}

	adapter := sport.Adapter(provider.ClientOptions{
		Timeout:   p.cfg.HTTPTimeout,
		UserAgent: p.cfg.UserAgent,
		Logger:    p.logger,
	})
	return ingest.New(ingest.Options{
		Sport:        sport.Key,
		Adapter:      adapter,
		Mapper:       sport.Mapper,
		Sink:         p.sink,
		Pacer:        pacer,
		Logger:       p.logger,
		Observer:     p.observer,
		ForceDetails: forceDetails,
	}), nil
}

// checkTables verifies the destination tables exist when writing straight
// to Postgres.
func (p *Pipeline) checkTables(ctx context.Context, sport registry.Sport) error {
	if p.pool == nil {
		return nil
	}
	for _, t := range sport.Mapper.Tables() {
		ok, err := p.pool.TableExists(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("check table %s: %w", t.Name, err)
		}
		if !ok {
			return &ingest.ConfigError{Key: "table", Message: fmt.Sprintf("destination table %s does not exist", t.Name)}
		}
	}
	return nil
}

// Run builds a driver and runs it once.
func (p *Pipeline) Run(ctx context.Context, sportKey string, scope provider.Scope, forceDetails bool) (ingest.RunStats, error) {
	d, err := p.Driver(ctx, sportKey, forceDetails)
	if err != nil {
		return ingest.RunStats{Sport: sportKey}, err
	}
	return d.Run(ctx, scope)
}

// Close releases the sink and publisher.
func (p *Pipeline) Close() {
	if p.sink != nil {
		p.sink.Close()
	}
	if p.redis != nil {
		p.redis.Close()
	}
}
