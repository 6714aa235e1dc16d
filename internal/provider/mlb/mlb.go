// Package mlb adapts the MLB Stats API (statsapi.mlb.com): the daily
// schedule, per-game box scores and the team list.
package mlb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// BaseURL is the MLB Stats API root.
const BaseURL = "https://statsapi.mlb.com/api/v1"

// DefaultDelay is the pacing between MLB Stats API calls.
const DefaultDelay = 300 * time.Millisecond

// GameTypes maps MLB gameType codes to canonical game types.
var GameTypes = provider.EnumTable{
	Values: map[string]string{
		"S": "preseason",
		"E": "preseason",
		"R": "regular",
		"F": "postseason",
		"D": "postseason",
		"L": "postseason",
		"W": "postseason",
		"C": "postseason",
		"P": "postseason",
		"A": "allstar",
	},
	Default: "regular",
}

// nonFinalStates are detailedState values reported under abstractGameState
// "Final" for games that were never played to completion.
var nonFinalStates = map[string]bool{
	"Postponed": true,
	"Cancelled": true,
}

// Window returns the date range of a regular MLB season, spring training
// through the World Series.
func Window(season int) (time.Time, time.Time) {
	return time.Date(season, time.February, 20, 0, 0, 0, 0, time.UTC),
		time.Date(season, time.November, 15, 0, 0, 0, 0, time.UTC)
}

// Adapter is the MLB SourceAdapter.
type Adapter struct {
	client *provider.Client
	logger *slog.Logger
}

// NewAdapter creates the MLB adapter. baseURL is normally BaseURL.
func NewAdapter(baseURL string, opts provider.ClientOptions) *Adapter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Adapter{client: provider.NewClient(baseURL, opts), logger: opts.Logger}
}

// Sport implements provider.Adapter.
func (a *Adapter) Sport() string { return "mlb" }

// Units implements provider.Adapter.
func (a *Adapter) Units(scope provider.Scope) ([]provider.Unit, error) {
	return provider.DateUnits(scope, 1, Window)
}

// FetchUnit implements provider.Adapter.
func (a *Adapter) FetchUnit(ctx context.Context, unit provider.Unit) (provider.Batch, error) {
	var batch provider.Batch
	switch unit.Kind {
	case provider.UnitCatalog:
		resp, err := a.client.GetJSON(ctx, "/teams", url.Values{"sportId": {"1"}})
		if err != nil {
			return batch, fmt.Errorf("fetch mlb teams: %w", err)
		}
		for _, t := range provider.LookupSlice(resp, "teams") {
			if team, ok := t.(map[string]interface{}); ok {
				batch.Add(provider.Record{Entity: provider.EntityTeams, Data: team})
			}
		}
	case provider.UnitDate:
		resp, err := a.client.GetJSON(ctx, "/schedule", url.Values{
			"sportId": {"1"},
			"date":    {unit.Date.Format("2006-01-02")},
		})
		if err != nil {
			return batch, fmt.Errorf("fetch mlb schedule: %w", err)
		}
		for _, d := range provider.LookupSlice(resp, "dates") {
			day, _ := d.(map[string]interface{})
			for _, g := range provider.LookupSlice(day, "games") {
				if game, ok := g.(map[string]interface{}); ok {
					batch.Add(provider.Record{Entity: provider.EntityGames, Data: game})
				}
			}
		}
	default:
		return batch, fmt.Errorf("mlb: unsupported unit %s", unit)
	}
	return batch, nil
}

// Terminal implements provider.DetailFetcher.
func (a *Adapter) Terminal(rec provider.Record) bool {
	if rec.Entity != provider.EntityGames {
		return false
	}
	return provider.LookupString(rec.Data, "status.abstractGameState") == "Final" &&
		!nonFinalStates[provider.LookupString(rec.Data, "status.detailedState")]
}

// DetailID implements provider.DetailFetcher.
func (a *Adapter) DetailID(rec provider.Record) string {
	return provider.LookupString(rec.Data, "gamePk")
}

// FetchDetail implements provider.DetailFetcher. Players without batting or
// pitching lines (bench, bullpen) are left out.
func (a *Adapter) FetchDetail(ctx context.Context, gameID string) ([]provider.Record, error) {
	resp, err := a.client.GetJSON(ctx, "/game/"+url.PathEscape(gameID)+"/boxscore", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch mlb boxscore %s: %w", gameID, err)
	}
	return boxscoreRecords(resp, gameID), nil
}

func boxscoreRecords(box map[string]interface{}, gameID string) []provider.Record {
	var out []provider.Record
	for _, side := range []string{"away", "home"} {
		team := provider.LookupMap(box, "teams."+side)
		players := provider.LookupMap(team, "players")

		ids := make([]string, 0, len(players))
		for id := range players {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			p, _ := players[id].(map[string]interface{})
			if len(provider.LookupMap(p, "stats.batting")) == 0 && len(provider.LookupMap(p, "stats.pitching")) == 0 {
				continue
			}
			out = append(out, provider.Record{
				Entity: provider.EntityPlayerStats,
				Data:   p,
				Meta: map[string]interface{}{
					"game_id": gameID,
					"team_id": provider.LookupString(team, "team.id"),
					"team":    provider.LookupString(team, "team.abbreviation"),
					"side":    side,
				},
			})
		}
	}
	return out
}
