// Package registry maps sport selectors to their adapter, mapper and
// default pacing.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/provider/espn"
	"github.com/albapepper/scoracle-ingest/internal/provider/mlb"
	"github.com/albapepper/scoracle-ingest/internal/provider/nhl"
)

// Paging describes how a sport's units are addressed on the command line.
type Paging string

const (
	ByWeek  Paging = "week"
	ByDate  Paging = "date"
	ByEvent Paging = "event"
)

// Sport is one registered sport.
type Sport struct {
	Key    string
	Name   string
	Feed   string
	Paging Paging
	Delay  time.Duration

	// SeasonStart is the first month counted in a season labelled with the
	// current year; earlier months belong to the previous season.
	SeasonStart time.Month

	// BaseURL is the feed root handed to NewAdapter.
	BaseURL    string
	NewAdapter func(baseURL string, opts provider.ClientOptions) provider.Adapter
	Mapper     provider.SchemaMapper
}

// Adapter builds the sport's adapter against its default feed.
func (s Sport) Adapter(opts provider.ClientOptions) provider.Adapter {
	return s.NewAdapter(s.BaseURL, opts)
}

// CurrentSeason returns the season in progress (or most recently played)
// at now.
func (s Sport) CurrentSeason(now time.Time) int {
	if now.Month() < s.SeasonStart {
		return now.Year() - 1
	}
	return now.Year()
}

// Registry manages the available sports.
type Registry struct {
	sports map[string]Sport
}

// New creates a registry with every supported sport.
func New() *Registry {
	r := &Registry{sports: make(map[string]Sport)}

	r.Register(espnSport(espn.NFL, "National Football League", ByWeek, time.March, espn.FootballMapper("nfl")))
	r.Register(espnSport(espn.CFB, "College Football (FBS)", ByWeek, time.March, espn.FootballMapper("cfb")))
	r.Register(espnSport(espn.NBA, "National Basketball Association", ByDate, time.July, espn.BasketballMapper("nba")))
	r.Register(Sport{
		Key: "golf", Name: "PGA Tour", Feed: "ESPN golf/pga", Paging: ByEvent,
		Delay:       espn.Golf.Delay,
		SeasonStart: time.January,
		BaseURL:     espn.BaseURL,
		NewAdapter: func(baseURL string, opts provider.ClientOptions) provider.Adapter {
			return espn.NewGolfAdapter(baseURL, opts)
		},
		Mapper: espn.GolfMapper(),
	})
	r.Register(Sport{
		Key: "mlb", Name: "Major League Baseball", Feed: "MLB Stats API", Paging: ByDate,
		Delay:       mlb.DefaultDelay,
		SeasonStart: time.January,
		BaseURL:     mlb.BaseURL,
		NewAdapter: func(baseURL string, opts provider.ClientOptions) provider.Adapter {
			return mlb.NewAdapter(baseURL, opts)
		},
		Mapper: mlb.Mapper(),
	})
	r.Register(Sport{
		Key: "nhl", Name: "National Hockey League", Feed: "NHL web API", Paging: ByDate,
		Delay:       nhl.DefaultDelay,
		SeasonStart: time.July,
		BaseURL:     nhl.BaseURL,
		NewAdapter: func(baseURL string, opts provider.ClientOptions) provider.Adapter {
			return nhl.NewAdapter(baseURL, opts)
		},
		Mapper: nhl.Mapper(),
	})

	return r
}

func espnSport(league espn.League, name string, paging Paging, seasonStart time.Month, mapper provider.SchemaMapper) Sport {
	return Sport{
		Key:         league.Key,
		Name:        name,
		Feed:        fmt.Sprintf("ESPN %s/%s", league.Sport, league.League),
		Paging:      paging,
		Delay:       league.Delay,
		SeasonStart: seasonStart,
		BaseURL:     espn.BaseURL,
		NewAdapter: func(baseURL string, opts provider.ClientOptions) provider.Adapter {
			return espn.NewAdapter(league, baseURL, opts)
		},
		Mapper: mapper,
	}
}

// Register adds a sport to the registry.
func (r *Registry) Register(s Sport) {
	r.sports[s.Key] = s
}

// Lookup retrieves a sport by key. An unknown key is a configuration error.
func (r *Registry) Lookup(key string) (Sport, error) {
	s, ok := r.sports[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Sport{}, &ingest.ConfigError{
			Key:     "sport",
			Message: fmt.Sprintf("unknown sport %q (available: %s)", key, strings.Join(r.Keys(), ", ")),
		}
	}
	return s, nil
}

// Keys returns all registered sport keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sports))
	for key := range r.sports {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns every registered sport, sorted by key.
func (r *Registry) All() []Sport {
	out := make([]Sport, 0, len(r.sports))
	for _, k := range r.Keys() {
		out = append(out, r.sports[k])
	}
	return out
}
