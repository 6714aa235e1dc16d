package nhl

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

const scores = `{
  "games": [
    {"id": 2024020500, "season": 20242025, "gameType": 2, "gameDate": "2024-12-20",
     "startTimeUTC": "2024-12-21T00:00:00Z", "gameState": "OFF", "period": 3,
     "venue": {"default": "Rogers Place"},
     "homeTeam": {"abbrev": "EDM", "score": 4, "sog": 33},
     "awayTeam": {"abbrev": "CGY", "score": 2, "sog": 25}},
    {"id": 2024020501, "season": 20242025, "gameType": 2, "gameDate": "2024-12-20", "gameState": "LIVE"},
    {"id": 2024020480, "season": 20242025, "gameType": 2, "gameDate": "2024-12-19", "gameState": "OFF"}
  ]
}`

const boxscore = `{
  "homeTeam": {"abbrev": "EDM"},
  "awayTeam": {"abbrev": "CGY"},
  "playerByGameStats": {
    "homeTeam": {
      "forwards": [{"playerId": 8478402, "name": {"default": "C. McDavid"}, "position": "C",
                    "goals": 1, "assists": 2, "points": 3, "toi": "21:30", "faceoffWinningPctg": 0.55}],
      "defense": [],
      "goalies": [{"playerId": 8479973, "name": {"default": "S. Skinner"}, "position": "G",
                   "saveShotsAgainst": "23/25", "savePctg": 0.92, "toi": "60:00", "decision": "W"}]
    },
    "awayTeam": {"forwards": [{"playerId": 8474150, "name": {"default": "J. Huberdeau"}}]}
  }
}`

func TestScoresAndBoxscore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/score/2024-12-20":
			w.Write([]byte(scores))
		case "/gamecenter/2024020500/boxscore":
			w.Write([]byte(boxscore))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	a := NewAdapter(srv.URL, provider.ClientOptions{})

	batch, err := a.FetchUnit(context.Background(), provider.Unit{
		Kind: provider.UnitDate,
		Date: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	games := batch.Group(provider.EntityGames)
	require.Len(t, games, 2, "games from neighbouring days are dropped")
	assert.True(t, a.Terminal(games[0]))
	assert.False(t, a.Terminal(games[1]))

	m := Mapper()
	row, err := m.Map(games[0])
	require.NoError(t, err)
	assert.Equal(t, "2024020500", row.Values["game_id"])
	assert.Equal(t, 2024, row.Values["season"])
	assert.Equal(t, "regular", row.Values["game_type"])
	assert.Equal(t, "EDM", row.Values["home_team_id"])
	assert.Equal(t, 4, row.Values["home_score"])
	assert.Equal(t, "Rogers Place", row.Values["venue"])

	recs, err := a.FetchDetail(context.Background(), a.DetailID(games[0]))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	away, err := m.Map(recs[0])
	require.NoError(t, err)
	assert.Equal(t, "CGY", away.Values["team_id"])
	assert.Equal(t, "J. Huberdeau", away.Values["player_name"])

	mcdavid, err := m.Map(recs[1])
	require.NoError(t, err)
	assert.Equal(t, "game_id=2024020500,player_id=8478402", mcdavid.Key())
	assert.Equal(t, 21.5, mcdavid.Values["toi_minutes"])
	assert.Equal(t, 3, mcdavid.Values["points"])
	assert.Equal(t, 0, mcdavid.Values["saves"])

	goalie, err := m.Map(recs[2])
	require.NoError(t, err)
	assert.Equal(t, 23, goalie.Values["saves"])
	assert.Equal(t, 25, goalie.Values["shots_against"])
	assert.Equal(t, 0.92, goalie.Values["save_pct"])
	assert.Equal(t, "W", goalie.Values["decision"])
}

func TestStandingsTeams(t *testing.T) {
	rec := provider.Record{Entity: provider.EntityTeams, Data: map[string]interface{}{
		"teamAbbrev":     map[string]interface{}{"default": "EDM"},
		"teamName":       map[string]interface{}{"default": "Edmonton Oilers"},
		"conferenceName": "Western",
	}}
	row, err := Mapper().Map(rec)
	require.NoError(t, err)
	assert.Equal(t, "team_id=EDM", row.Key())
	assert.Equal(t, "Edmonton Oilers", row.Values["display_name"])
}

func TestWindow(t *testing.T) {
	from, to := Window(2024)
	assert.Equal(t, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), to)
}

func TestTerminalStatusVocabulary(t *testing.T) {
	const game = `{"games": [{"id": 2024020500, "season": 20242025, "gameType": 2, "gameDate": "2024-12-20", "gameState": %q}]}`
	day := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	require.Len(t, StatusVocabulary, 6)

	for state, terminal := range StatusVocabulary {
		t.Run(state, func(t *testing.T) {
			var boxscores atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/score/2024-12-20":
					fmt.Fprintf(w, game, state)
				case "/gamecenter/2024020500/boxscore":
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
			assert.Equal(t, terminal, a.Terminal(games[0]))

			d := ingest.New(ingest.Options{Adapter: a, Mapper: Mapper(), Sink: sink.NewMemory(), Pacer: ingest.NoDelay{}})
			stats, err := d.Run(context.Background(), provider.Scope{From: day, To: day})
			require.NoError(t, err)
			want := 0
			if terminal {
				want = 1
			}
			assert.Equal(t, want, stats.DetailFetches)
			assert.Equal(t, int32(want), boxscores.Load())
			assert.Zero(t, stats.DetailFailures)
		})
	}
}
