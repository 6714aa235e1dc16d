// Package nhl adapts the NHL web API (api-web.nhle.com): daily scores,
// gamecenter box scores and current standings for the team list.
//
// The standings feed carries no numeric team id, so NHL teams are keyed by
// their three-letter abbreviation throughout.
package nhl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// BaseURL is the NHL web API root.
const BaseURL = "https://api-web.nhle.com/v1"

// DefaultDelay is the pacing between NHL API calls.
const DefaultDelay = 300 * time.Millisecond

// GameTypes maps NHL gameType codes to canonical game types.
var GameTypes = provider.EnumTable{
	Values: map[string]string{
		"1": "preseason",
		"2": "regular",
		"3": "postseason",
	},
	Default: "regular",
}

// StatusVocabulary lists the gameState values the adapter recognizes and
// whether each is terminal.
var StatusVocabulary = map[string]bool{
	"FUT":   false,
	"PRE":   false,
	"LIVE":  false,
	"CRIT":  false,
	"OFF":   true,
	"FINAL": true,
}

// Window returns the date range of an NHL season; season is its starting
// year.
func Window(season int) (time.Time, time.Time) {
	return time.Date(season, time.September, 15, 0, 0, 0, 0, time.UTC),
		time.Date(season+1, time.June, 30, 0, 0, 0, 0, time.UTC)
}

// Adapter is the NHL SourceAdapter.
type Adapter struct {
	client *provider.Client
	logger *slog.Logger
}

// NewAdapter creates the NHL adapter. baseURL is normally BaseURL.
func NewAdapter(baseURL string, opts provider.ClientOptions) *Adapter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Adapter{client: provider.NewClient(baseURL, opts), logger: opts.Logger}
}

// Sport implements provider.Adapter.
func (a *Adapter) Sport() string { return "nhl" }

// Units implements provider.Adapter.
func (a *Adapter) Units(scope provider.Scope) ([]provider.Unit, error) {
	return provider.DateUnits(scope, 1, Window)
}

// FetchUnit implements provider.Adapter.
func (a *Adapter) FetchUnit(ctx context.Context, unit provider.Unit) (provider.Batch, error) {
	var batch provider.Batch
	switch unit.Kind {
	case provider.UnitCatalog:
		resp, err := a.client.GetJSON(ctx, "/standings/now", nil)
		if err != nil {
			return batch, fmt.Errorf("fetch nhl standings: %w", err)
		}
		for _, t := range provider.LookupSlice(resp, "standings") {
			if team, ok := t.(map[string]interface{}); ok {
				batch.Add(provider.Record{Entity: provider.EntityTeams, Data: team})
			}
		}
	case provider.UnitDate:
		resp, err := a.client.GetJSON(ctx, "/score/"+unit.Date.Format("2006-01-02"), nil)
		if err != nil {
			return batch, fmt.Errorf("fetch nhl scores: %w", err)
		}
		day := unit.Date.Format("2006-01-02")
		for _, g := range provider.LookupSlice(resp, "games") {
			game, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			// The score feed pads with games from neighbouring days.
			if d := provider.LookupString(game, "gameDate"); d != "" && d != day {
				continue
			}
			batch.Add(provider.Record{Entity: provider.EntityGames, Data: game})
		}
	default:
		return batch, fmt.Errorf("nhl: unsupported unit %s", unit)
	}
	return batch, nil
}

// Terminal implements provider.DetailFetcher.
func (a *Adapter) Terminal(rec provider.Record) bool {
	return rec.Entity == provider.EntityGames && StatusVocabulary[provider.LookupString(rec.Data, "gameState")]
}

// DetailID implements provider.DetailFetcher.
func (a *Adapter) DetailID(rec provider.Record) string {
	return provider.LookupString(rec.Data, "id")
}

// FetchDetail implements provider.DetailFetcher.
func (a *Adapter) FetchDetail(ctx context.Context, gameID string) ([]provider.Record, error) {
	resp, err := a.client.GetJSON(ctx, "/gamecenter/"+url.PathEscape(gameID)+"/boxscore", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch nhl boxscore %s: %w", gameID, err)
	}
	return boxscoreRecords(resp, gameID), nil
}

func boxscoreRecords(box map[string]interface{}, gameID string) []provider.Record {
	var out []provider.Record
	for _, side := range []string{"awayTeam", "homeTeam"} {
		meta := map[string]interface{}{
			"game_id": gameID,
			"team":    provider.LookupString(box, side+".abbrev"),
		}
		for _, group := range []string{"forwards", "defense", "goalies"} {
			for _, p := range provider.LookupSlice(box, "playerByGameStats."+side+"."+group) {
				if player, ok := p.(map[string]interface{}); ok {
					out = append(out, provider.Record{Entity: provider.EntityPlayerStats, Data: player, Meta: meta})
				}
			}
		}
	}
	return out
}
