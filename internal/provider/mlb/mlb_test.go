package mlb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/sink"
)

const schedule = `{
  "dates": [{
    "date": "2024-07-04",
    "games": [
      {"gamePk": 745455, "gameType": "R", "season": "2024", "gameDate": "2024-07-04T17:05:00Z",
       "status": {"abstractGameState": "Final", "detailedState": "Final"},
       "teams": {"home": {"score": 5, "team": {"id": 147, "name": "New York Yankees"}},
                 "away": {"score": 3, "team": {"id": 111, "name": "Boston Red Sox"}}},
       "venue": {"name": "Yankee Stadium"}},
      {"gamePk": 745456, "gameType": "R", "season": "2024",
       "status": {"abstractGameState": "Final", "detailedState": "Postponed"}},
      {"gamePk": 745457, "gameType": "F", "season": "2024",
       "status": {"abstractGameState": "Preview", "detailedState": "Scheduled"}}
    ]
  }]
}`

const boxscore = `{
  "teams": {
    "home": {
      "team": {"id": 147, "abbreviation": "NYY"},
      "players": {
        "ID592450": {"person": {"id": 592450, "fullName": "Aaron Judge"}, "position": {"abbreviation": "RF"},
                     "battingOrder": "200", "stats": {"batting": {"atBats": 4, "hits": 2, "homeRuns": 1, "rbi": 3}, "pitching": {}}},
        "ID543037": {"person": {"id": 543037, "fullName": "Gerrit Cole"}, "position": {"abbreviation": "P"},
                     "stats": {"batting": {}, "pitching": {"inningsPitched": "6.2", "strikeOuts": 9, "earnedRuns": 2}}},
        "ID999999": {"person": {"id": 999999, "fullName": "Bench Player"}, "stats": {"batting": {}, "pitching": {}}}
      }
    },
    "away": {"team": {"id": 111, "abbreviation": "BOS"}, "players": {}}
  }
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schedule":
			assert.Equal(t, "2024-07-04", r.URL.Query().Get("date"))
			w.Write([]byte(schedule))
		case "/game/745455/boxscore":
			w.Write([]byte(boxscore))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScheduleAndTerminal(t *testing.T) {
	a := NewAdapter(newServer(t).URL, provider.ClientOptions{})
	units, err := a.Units(provider.Scope{Seasons: []int{2024}})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", units[0].String())

	batch, err := a.FetchUnit(context.Background(), provider.Unit{Kind: provider.UnitDate, Date: mustDate(t, "2024-07-04")})
	require.NoError(t, err)
	games := batch.Group(provider.EntityGames)
	require.Len(t, games, 3)

	assert.True(t, a.Terminal(games[0]))
	assert.False(t, a.Terminal(games[1]), "postponed games are not final")
	assert.False(t, a.Terminal(games[2]))
	assert.Equal(t, "745455", a.DetailID(games[0]))

	row, err := Mapper().Map(games[0])
	require.NoError(t, err)
	assert.Equal(t, "745455", row.Values["game_id"])
	assert.Equal(t, 2024, row.Values["season"])
	assert.Equal(t, "regular", row.Values["game_type"])
	assert.Equal(t, "147", row.Values["home_team_id"])
	assert.Equal(t, 5, row.Values["home_score"])
	assert.Equal(t, 1, row.Values["game_number"])

	row, err = Mapper().Map(games[2])
	require.NoError(t, err)
	assert.Equal(t, "postseason", row.Values["game_type"])
	assert.Nil(t, row.Values["game_date"])
}

func TestBoxscore(t *testing.T) {
	a := NewAdapter(newServer(t).URL, provider.ClientOptions{})
	recs, err := a.FetchDetail(context.Background(), "745455")
	require.NoError(t, err)
	require.Len(t, recs, 2, "bench players without stat lines are dropped")

	m := Mapper()
	byPlayer := map[string]provider.Row{}
	for _, rec := range recs {
		row, err := m.Map(rec)
		require.NoError(t, err)
		byPlayer[row.Values["player_id"].(string)] = row
	}

	judge := byPlayer["592450"]
	assert.Equal(t, "NYY", judge.Values["team"])
	assert.Equal(t, 4, judge.Values["at_bats"])
	assert.Equal(t, 1, judge.Values["home_runs"])
	assert.Equal(t, 200, judge.Values["batting_order"])
	assert.Equal(t, 0, judge.Values["outs_pitched"])

	cole := byPlayer["543037"]
	assert.Equal(t, 20, cole.Values["outs_pitched"])
	assert.InDelta(t, 6.6667, cole.Values["innings_pitched"], 1e-4)
	assert.Equal(t, 9, cole.Values["pitching_strikeouts"])
	assert.Equal(t, 0, cole.Values["at_bats"])
}

func TestOutsPitchedRejectsBadNotation(t *testing.T) {
	rec := provider.Record{Data: map[string]interface{}{
		"stats": map[string]interface{}{"pitching": map[string]interface{}{"inningsPitched": "5.4"}},
	}}
	_, ok := outsPitched(rec)
	assert.False(t, ok)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestTerminalStates(t *testing.T) {
	const game = `{"dates": [{"date": "2024-07-04", "games": [
	  {"gamePk": 745455, "gameType": "R", "season": "2024", "status": {"abstractGameState": %q, "detailedState": %q}}
	]}]}`
	tests := []struct {
		abstract, detailed string
		terminal           bool
	}{
		{"Final", "Final", true},
		{"Final", "Game Over", true},
		{"Final", "Completed Early", true},
		{"Final", "Postponed", false},
		{"Final", "Cancelled", false},
		{"Live", "In Progress", false},
		{"Live", "Delayed", false},
		{"Preview", "Scheduled", false},
		{"Preview", "Pre-Game", false},
		{"Other", "Suspended", false},
	}
	day := mustDate(t, "2024-07-04")

	for _, tt := range tests {
		t.Run(tt.abstract+"/"+tt.detailed, func(t *testing.T) {
			var boxscores atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/schedule":
					fmt.Fprintf(w, game, tt.abstract, tt.detailed)
				case "/game/745455/boxscore":
					boxscores.Add(1)
					w.Write([]byte(boxscore))
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()
			a := NewAdapter(srv.URL, provider.ClientOptions{})

			batch, err := a.FetchUnit(context.Background(), provider.Unit{Kind: provider.UnitDate, Date: day})
			require.NoError(t, err)
			games := batch.Group(provider.EntityGames)
			require.Len(t, games, 1)
			assert.Equal(t, tt.terminal, a.Terminal(games[0]))

			d := ingest.New(ingest.Options{Adapter: a, Mapper: Mapper(), Sink: sink.NewMemory(), Pacer: ingest.NoDelay{}})
			stats, err := d.Run(context.Background(), provider.Scope{From: day, To: day})
			require.NoError(t, err)
			want := 0
			if tt.terminal {
				want = 1
			}
			assert.Equal(t, want, stats.DetailFetches)
			assert.Equal(t, int32(want), boxscores.Load())
			assert.Zero(t, stats.DetailFailures)
		})
	}
}
