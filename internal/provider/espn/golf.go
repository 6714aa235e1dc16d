package espn

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// Golf is ESPN's PGA Tour feed. Tournaments replace games and leaderboard
// rows replace box scores; both arrive inline on the scoreboard.
var Golf = League{
	Key: "golf", Sport: "golf", League: "pga",
	Delay: 1500 * time.Millisecond,
	Window: func(season int) (time.Time, time.Time) {
		return time.Date(season, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(season, time.December, 31, 0, 0, 0, 0, time.UTC)
	},
}

// GolfAdapter pages ESPN golf by tournament id, or by week when no
// tournament is named.
type GolfAdapter struct {
	client *provider.Client
	logger *slog.Logger
}

// NewGolfAdapter creates the golf adapter. baseURL is normally BaseURL.
func NewGolfAdapter(baseURL string, opts provider.ClientOptions) *GolfAdapter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &GolfAdapter{
		client: provider.NewClient(fmt.Sprintf("%s/%s/%s", baseURL, Golf.Sport, Golf.League), opts),
		logger: opts.Logger,
	}
}

// Sport implements provider.Adapter.
func (a *GolfAdapter) Sport() string { return Golf.Key }

// Units implements provider.Adapter. Weekly units fall on Thursdays, the
// opening round of a regular tour event.
func (a *GolfAdapter) Units(scope provider.Scope) ([]provider.Unit, error) {
	if len(scope.Events) > 0 {
		units := make([]provider.Unit, 0, len(scope.Events))
		for _, id := range scope.Events {
			units = append(units, provider.Unit{Kind: provider.UnitEvent, EventID: id})
		}
		return units, nil
	}
	ranges, err := provider.SeasonWindow(scope, Golf.Window)
	if err != nil {
		return nil, err
	}
	var units []provider.Unit
	for _, r := range ranges {
		from := r[0]
		for from.Weekday() != time.Thursday {
			from = from.AddDate(0, 0, 1)
		}
		for _, d := range provider.DateRange(from, r[1], 7) {
			units = append(units, provider.Unit{Kind: provider.UnitDate, Date: d})
		}
	}
	return units, nil
}

// FetchUnit implements provider.Adapter.
func (a *GolfAdapter) FetchUnit(ctx context.Context, unit provider.Unit) (provider.Batch, error) {
	var params url.Values
	switch unit.Kind {
	case provider.UnitEvent:
		params = url.Values{"event": {unit.EventID}}
	case provider.UnitDate:
		params = url.Values{"dates": {unit.Date.Format("20060102")}}
	default:
		return provider.Batch{}, fmt.Errorf("golf: unsupported unit %s", unit)
	}

	var batch provider.Batch
	resp, err := a.client.GetJSON(ctx, "/scoreboard", params)
	if err != nil {
		return batch, fmt.Errorf("fetch golf scoreboard: %w", err)
	}
	for _, ev := range provider.LookupSlice(resp, "events") {
		event := asMap(ev)
		id := provider.LookupString(event, "id")
		if id == "" {
			continue
		}
		batch.Add(provider.Record{Entity: provider.EntityGames, Data: event})
		meta := map[string]interface{}{"tournament_id": id}
		for _, c := range provider.LookupSlice(event, "competitions.0.competitors") {
			batch.Add(provider.Record{Entity: provider.EntityResults, Data: asMap(c), Meta: meta})
		}
	}
	return batch, nil
}

var golfTournamentSchema = provider.Schema{
	{Column: "tournament_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "name", Path: "name", Kind: provider.NullString},
	{Column: "season", Path: "season.year", Kind: provider.Int},
	{Column: "start_date", Path: "date", Kind: provider.Time},
	{Column: "end_date", Path: "endDate", Kind: provider.Time},
	{Column: "status", Path: "status.type.name", Kind: provider.String},
	{Column: "course", Path: "courses.0.name", Kind: provider.NullString},
}

var golfResultSchema = provider.Schema{
	{Column: "tournament_id", Path: "meta.tournament_id", Kind: provider.String, Required: true},
	{Column: "player_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "player_name", Path: "athlete.displayName", Kind: provider.NullString},
	{Column: "country", Path: "athlete.flag.alt", Kind: provider.NullString},
	{Column: "position", Path: "order", Kind: provider.Int},
	// "E" (even par) is not numeric and falls back to 0.
	{Column: "to_par", Path: "score", Kind: provider.Int},
	{Column: "round_1", Path: "linescores.0.value", Kind: provider.Int},
	{Column: "round_2", Path: "linescores.1.value", Kind: provider.Int},
	{Column: "round_3", Path: "linescores.2.value", Kind: provider.Int},
	{Column: "round_4", Path: "linescores.3.value", Kind: provider.Int},
	{Column: "total_strokes", Extract: totalStrokes, Kind: provider.Int},
}

func totalStrokes(rec provider.Record) (interface{}, bool) {
	lines := provider.LookupSlice(rec.Data, "linescores")
	if len(lines) == 0 {
		return nil, false
	}
	total := 0
	for _, l := range lines {
		if v, ok := provider.ExtractInt(asMap(l)["value"]); ok {
			total += v
		}
	}
	return total, true
}

// GolfMapper returns the golf tournaments and results mapper.
func GolfMapper() provider.SchemaMapper {
	return provider.SchemaMapper{
		provider.EntityGames: {
			Table:  provider.Table{Name: "golf_tournaments", Key: []string{"tournament_id"}},
			Schema: golfTournamentSchema,
		},
		provider.EntityResults: {
			Table:  provider.Table{Name: "golf_results", Key: []string{"tournament_id", "player_id"}},
			Schema: golfResultSchema,
		},
	}
}
