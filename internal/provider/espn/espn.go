// Package espn adapts ESPN's public site API (scoreboard, teams, summary)
// for football, basketball and golf leagues.
//
// ESPN responses are walked as decoded JSON maps. Records keep ESPN's field
// names verbatim; box-score lines, which ESPN ships as parallel key/value
// arrays, are zipped into objects keyed by ESPN's stat keys.
package espn

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// BaseURL is ESPN's public site API root.
const BaseURL = "https://site.api.espn.com/apis/site/v2/sports"

// Paging is the pagination unit of a league's scoreboard.
type Paging int

const (
	ByWeek Paging = iota
	ByDate
)

// League describes one ESPN league feed.
type League struct {
	Key    string // registry key
	Sport  string // ESPN sport path segment
	League string // ESPN league path segment
	Paging Paging
	Weeks  map[string]int // season type -> weeks, ByWeek only
	Groups string         // scoreboard group filter (FBS = 80)
	Delay  time.Duration  // default pacing between calls
	// Window returns the date range of a season, ByDate only.
	Window func(season int) (time.Time, time.Time)
	// MergeCategories folds every box-score category into one "stats"
	// object (basketball ships a single unnamed category).
	MergeCategories bool
}

var (
	NFL = League{
		Key: "nfl", Sport: "football", League: "nfl", Paging: ByWeek,
		Weeks: map[string]int{"preseason": 4, "regular": 18, "postseason": 5},
		Delay: time.Second,
	}
	CFB = League{
		Key: "cfb", Sport: "football", League: "college-football", Paging: ByWeek,
		Weeks:  map[string]int{"regular": 15, "postseason": 1},
		Groups: "80",
		Delay:  time.Second,
	}
	NBA = League{
		Key: "nba", Sport: "basketball", League: "nba", Paging: ByDate,
		Delay: 500 * time.Millisecond,
		Window: func(season int) (time.Time, time.Time) {
			return time.Date(season, time.October, 1, 0, 0, 0, 0, time.UTC),
				time.Date(season+1, time.June, 30, 0, 0, 0, 0, time.UTC)
		},
		MergeCategories: true,
	}
)

// seasonTypeCodes are ESPN's numeric season types used in scoreboard queries.
var seasonTypeCodes = map[string]string{
	"preseason":  "1",
	"regular":    "2",
	"postseason": "3",
}

// SeasonTypes maps ESPN season type codes to canonical game types.
var SeasonTypes = provider.EnumTable{
	Values: map[string]string{
		"1": "preseason",
		"2": "regular",
		"3": "postseason",
		"4": "offseason",
	},
	Default: "regular",
}

// StatusVocabulary lists the ESPN status names the adapter recognizes and
// whether each is terminal.
var StatusVocabulary = map[string]bool{
	"STATUS_SCHEDULED":   false,
	"STATUS_IN_PROGRESS": false,
	"STATUS_HALFTIME":    false,
	"STATUS_END_PERIOD":  false,
	"STATUS_DELAYED":     false,
	"STATUS_RAIN_DELAY":  false,
	"STATUS_POSTPONED":   false,
	"STATUS_CANCELED":    false,
	"STATUS_SUSPENDED":   false,
	"STATUS_FINAL":       true,
	"STATUS_FINAL_OT":    true,
	"STATUS_FULL_TIME":   true,
	"STATUS_FINAL_PEN":   true,
	"STATUS_FORFEIT":     true,
}

// Adapter is the ESPN SourceAdapter for football and basketball leagues.
type Adapter struct {
	league League
	client *provider.Client
	logger *slog.Logger
}

// NewAdapter creates an adapter for a league. baseURL is normally BaseURL.
func NewAdapter(league League, baseURL string, opts provider.ClientOptions) *Adapter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Adapter{
		league: league,
		client: provider.NewClient(fmt.Sprintf("%s/%s/%s", baseURL, league.Sport, league.League), opts),
		logger: opts.Logger,
	}
}

// Sport implements provider.Adapter.
func (a *Adapter) Sport() string { return a.league.Key }

// Units implements provider.Adapter.
func (a *Adapter) Units(scope provider.Scope) ([]provider.Unit, error) {
	if a.league.Paging == ByDate {
		return provider.DateUnits(scope, 1, a.league.Window)
	}
	return weekUnits(a.league, scope)
}

func weekUnits(league League, scope provider.Scope) ([]provider.Unit, error) {
	if len(scope.Seasons) == 0 {
		return nil, fmt.Errorf("%w: %s pages by week and needs at least one season", provider.ErrScope, league.Key)
	}
	types := scope.SeasonTypes
	if len(types) == 0 {
		types = []string{"regular", "postseason"}
	}

	var units []provider.Unit
	if scope.Teams {
		units = append(units, provider.Unit{Kind: provider.UnitCatalog})
	}
	for _, season := range scope.Seasons {
		for _, st := range types {
			max, ok := league.Weeks[st]
			if !ok {
				return nil, fmt.Errorf("%w: %s has no %q season type", provider.ErrScope, league.Key, st)
			}
			weeks := scope.Weeks
			if len(weeks) == 0 {
				weeks = make([]int, max)
				for i := range weeks {
					weeks[i] = i + 1
				}
			}
			for _, w := range weeks {
				if w < 1 || w > max {
					// A week list like 1..18 is valid for the regular season
					// but not for a 5-week postseason; out-of-range weeks are
					// only an error when the season type is the only one asked.
					if len(types) == 1 {
						return nil, fmt.Errorf("%w: %s %s week %d outside 1-%d", provider.ErrScope, league.Key, st, w, max)
					}
					continue
				}
				units = append(units, provider.Unit{Kind: provider.UnitWeek, Season: season, SeasonType: st, Week: w})
			}
		}
	}
	return units, nil
}

// FetchUnit implements provider.Adapter.
func (a *Adapter) FetchUnit(ctx context.Context, unit provider.Unit) (provider.Batch, error) {
	switch unit.Kind {
	case provider.UnitCatalog:
		return a.fetchTeams(ctx)
	case provider.UnitWeek:
		params := url.Values{
			"dates":      {strconv.Itoa(unit.Season)},
			"seasontype": {seasonTypeCodes[unit.SeasonType]},
			"week":       {strconv.Itoa(unit.Week)},
			"limit":      {"1000"},
		}
		if a.league.Groups != "" {
			params.Set("groups", a.league.Groups)
		}
		return a.fetchScoreboard(ctx, params)
	case provider.UnitDate:
		return a.fetchScoreboard(ctx, url.Values{"dates": {unit.Date.Format("20060102")}})
	default:
		return provider.Batch{}, fmt.Errorf("%s: unsupported unit %s", a.league.Key, unit)
	}
}

func (a *Adapter) fetchScoreboard(ctx context.Context, params url.Values) (provider.Batch, error) {
	var batch provider.Batch
	resp, err := a.client.GetJSON(ctx, "/scoreboard", params)
	if err != nil {
		return batch, fmt.Errorf("fetch %s scoreboard: %w", a.league.Key, err)
	}
	for _, ev := range provider.LookupSlice(resp, "events") {
		event, ok := ev.(map[string]interface{})
		if !ok {
			continue
		}
		batch.Add(provider.Record{Entity: provider.EntityGames, Data: event})
	}
	return batch, nil
}

func (a *Adapter) fetchTeams(ctx context.Context) (provider.Batch, error) {
	var batch provider.Batch
	params := url.Values{"limit": {"1000"}}
	if a.league.Groups != "" {
		params.Set("groups", a.league.Groups)
	}
	resp, err := a.client.GetJSON(ctx, "/teams", params)
	if err != nil {
		return batch, fmt.Errorf("fetch %s teams: %w", a.league.Key, err)
	}
	for _, t := range provider.LookupSlice(resp, "sports.0.leagues.0.teams") {
		team := provider.LookupMap(asMap(t), "team")
		if team == nil {
			continue
		}
		batch.Add(provider.Record{Entity: provider.EntityTeams, Data: team})
	}
	return batch, nil
}

// Terminal implements provider.DetailFetcher.
func (a *Adapter) Terminal(rec provider.Record) bool {
	return rec.Entity == provider.EntityGames && StatusVocabulary[provider.LookupString(rec.Data, "status.type.name")]
}

// DetailID implements provider.DetailFetcher.
func (a *Adapter) DetailID(rec provider.Record) string {
	return provider.LookupString(rec.Data, "id")
}

// FetchDetail implements provider.DetailFetcher. It returns one player-stats
// record per athlete, with every box-score category the athlete appears in.
func (a *Adapter) FetchDetail(ctx context.Context, gameID string) ([]provider.Record, error) {
	resp, err := a.client.GetJSON(ctx, "/summary", url.Values{"event": {gameID}})
	if err != nil {
		return nil, fmt.Errorf("fetch %s summary %s: %w", a.league.Key, gameID, err)
	}
	return boxscoreRecords(resp, gameID, a.league.MergeCategories), nil
}

// boxscoreRecords zips ESPN's per-category key and stat arrays into one
// object per athlete:
//
//	{"athlete": {...}, "team": {...}, "passing": {"passingYards": "212", ...}}
func boxscoreRecords(summary map[string]interface{}, gameID string, merge bool) []provider.Record {
	var out []provider.Record
	for _, tb := range provider.LookupSlice(summary, "boxscore.players") {
		block := asMap(tb)
		team := provider.LookupMap(block, "team")

		byAthlete := make(map[string]map[string]interface{})
		var order []string

		for _, c := range provider.LookupSlice(block, "statistics") {
			cat := asMap(c)
			name := provider.LookupString(cat, "name")
			if merge || name == "" {
				name = "stats"
			}
			keys := provider.LookupSlice(cat, "keys")
			if len(keys) == 0 {
				keys = provider.LookupSlice(cat, "labels")
			}
			for _, at := range provider.LookupSlice(cat, "athletes") {
				line := asMap(at)
				athlete := provider.LookupMap(line, "athlete")
				id := provider.LookupString(athlete, "id")
				if id == "" {
					continue
				}
				data, seen := byAthlete[id]
				if !seen {
					data = map[string]interface{}{"athlete": athlete, "team": team}
					for _, k := range []string{"starter", "didNotPlay", "active"} {
						if v, ok := line[k]; ok {
							data[k] = v
						}
					}
					byAthlete[id] = data
					order = append(order, id)
				}
				stats, _ := data[name].(map[string]interface{})
				if stats == nil {
					stats = make(map[string]interface{})
					data[name] = stats
				}
				values := provider.LookupSlice(line, "stats")
				for i, k := range keys {
					key, ok := k.(string)
					if !ok || i >= len(values) {
						continue
					}
					stats[key] = values[i]
				}
			}
		}

		for _, id := range order {
			out = append(out, provider.Record{
				Entity: provider.EntityPlayerStats,
				Data:   byAthlete[id],
				Meta:   map[string]interface{}{"game_id": gameID},
			})
		}
	}
	return out
}

// competitor returns an extractor for a field of the home or away
// competitor of an event's first competition.
func competitor(side, path string) func(provider.Record) (interface{}, bool) {
	return func(rec provider.Record) (interface{}, bool) {
		for _, c := range provider.LookupSlice(rec.Data, "competitions.0.competitors") {
			comp := asMap(c)
			if provider.LookupString(comp, "homeAway") == side {
				return provider.Lookup(comp, path)
			}
		}
		return nil, false
	}
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}
