package espn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-ingest/internal/ingest"
	"github.com/albapepper/scoracle-ingest/internal/provider"
	"github.com/albapepper/scoracle-ingest/internal/sink"
)

const nflScoreboard = `{
  "events": [
    {
      "id": "401671789",
      "date": "2024-09-08T17:00Z",
      "season": {"year": 2024, "type": 2},
      "week": {"number": 1},
      "status": {"type": {"name": "STATUS_FINAL", "detail": "Final"}},
      "competitions": [{
        "attendance": 70123,
        "neutralSite": false,
        "venue": {"fullName": "Acrisure Stadium"},
        "competitors": [
          {"homeAway": "home", "score": "24", "team": {"id": "23", "abbreviation": "PIT"}},
          {"homeAway": "away", "score": "17", "team": {"id": "1", "abbreviation": "ATL"}}
        ]
      }]
    },
    {
      "id": "401671790",
      "date": "2024-09-08T20:25Z",
      "season": {"year": 2024, "type": 2},
      "week": {"number": 1},
      "status": {"type": {"name": "STATUS_SCHEDULED", "detail": "Sun, September 8th"}},
      "competitions": [{"competitors": []}]
    }
  ]
}`

const nflSummary = `{
  "boxscore": {
    "players": [{
      "team": {"id": "23", "abbreviation": "PIT"},
      "statistics": [
        {
          "name": "passing",
          "keys": ["completions/passingAttempts", "passingYards", "passingTouchdowns", "interceptions", "sacks-sackYardsLost", "QBRating"],
          "athletes": [
            {"athlete": {"id": "3915511", "displayName": "Justin Fields", "position": {"abbreviation": "QB"}}, "stats": ["17/23", "156", "0", "0", "2-16", "86.8"]}
          ]
        },
        {
          "name": "rushing",
          "keys": ["rushingAttempts", "rushingYards", "rushingTouchdowns", "longRushing"],
          "athletes": [
            {"athlete": {"id": "3915511", "displayName": "Justin Fields"}, "stats": ["14", "57", "0", "15"]},
            {"athlete": {"id": "4241457", "displayName": "Najee Harris"}, "stats": ["18", "70", "0", "11"]}
          ]
        }
      ]
    }]
  }
}`

func newESPNServer(t *testing.T, handlers map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+"?"+r.URL.RawQuery)
		body, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestWeekUnits(t *testing.T) {
	t.Run("default season types", func(t *testing.T) {
		units, err := weekUnits(NFL, provider.Scope{Seasons: []int{2024}})
		require.NoError(t, err)
		assert.Len(t, units, 23)
		assert.Equal(t, "2024/regular/week-1", units[0].String())
		assert.Equal(t, "2024/postseason/week-5", units[22].String())
	})

	t.Run("out of range week skipped across types", func(t *testing.T) {
		weeks := make([]int, 18)
		for i := range weeks {
			weeks[i] = i + 1
		}
		units, err := weekUnits(NFL, provider.Scope{Seasons: []int{2024}, Weeks: weeks})
		require.NoError(t, err)
		assert.Len(t, units, 23)
	})

	t.Run("out of range week for single type", func(t *testing.T) {
		_, err := weekUnits(NFL, provider.Scope{Seasons: []int{2024}, SeasonTypes: []string{"postseason"}, Weeks: []int{6}})
		assert.True(t, errors.Is(err, provider.ErrScope))
	})

	t.Run("teams first", func(t *testing.T) {
		units, err := weekUnits(CFB, provider.Scope{Seasons: []int{2024}, SeasonTypes: []string{"regular"}, Weeks: []int{3}, Teams: true})
		require.NoError(t, err)
		require.Len(t, units, 2)
		assert.Equal(t, provider.UnitCatalog, units[0].Kind)
		assert.Equal(t, 3, units[1].Week)
	})

	t.Run("unknown season type", func(t *testing.T) {
		_, err := weekUnits(CFB, provider.Scope{Seasons: []int{2024}, SeasonTypes: []string{"preseason"}})
		assert.True(t, errors.Is(err, provider.ErrScope))
	})

	t.Run("no season", func(t *testing.T) {
		_, err := weekUnits(NFL, provider.Scope{})
		assert.True(t, errors.Is(err, provider.ErrScope))
	})
}

func TestAdapterFetchWeek(t *testing.T) {
	srv, seen := newESPNServer(t, map[string]string{"/football/nfl/scoreboard": nflScoreboard})
	a := NewAdapter(NFL, srv.URL, provider.ClientOptions{})

	batch, err := a.FetchUnit(context.Background(), provider.Unit{Kind: provider.UnitWeek, Season: 2024, SeasonType: "regular", Week: 1})
	require.NoError(t, err)

	games := batch.Group(provider.EntityGames)
	require.Len(t, games, 2)
	assert.True(t, a.Terminal(games[0]))
	assert.False(t, a.Terminal(games[1]))
	assert.Equal(t, "401671789", a.DetailID(games[0]))

	require.Len(t, *seen, 1)
	assert.Contains(t, (*seen)[0], "seasontype=2")
	assert.Contains(t, (*seen)[0], "week=1")
	assert.Contains(t, (*seen)[0], "dates=2024")
	assert.NotContains(t, (*seen)[0], "groups=")
}

func TestAdapterFetchDetail(t *testing.T) {
	srv, seen := newESPNServer(t, map[string]string{"/football/nfl/summary": nflSummary})
	a := NewAdapter(NFL, srv.URL, provider.ClientOptions{})

	recs, err := a.FetchDetail(context.Background(), "401671789")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "/football/nfl/summary?event=401671789", (*seen)[0])

	fields := recs[0]
	assert.Equal(t, "401671789", fields.Meta["game_id"])
	assert.Contains(t, fields.Data, "passing")
	assert.Contains(t, fields.Data, "rushing")

	row, err := FootballMapper("nfl").Map(fields)
	require.NoError(t, err)
	assert.Equal(t, "nfl_player_stats", row.Table.Name)
	assert.Equal(t, "game_id=401671789,player_id=3915511", row.Key())
	assert.Equal(t, 17, row.Values["pass_completions"])
	assert.Equal(t, 23, row.Values["pass_attempts"])
	assert.Equal(t, 156, row.Values["pass_yards"])
	assert.Equal(t, 2, row.Values["sacks_taken"])
	assert.Equal(t, 86.8, row.Values["qb_rating"])
	assert.Equal(t, 57, row.Values["rush_yards"])
	assert.Equal(t, "PIT", row.Values["team"])
	assert.Equal(t, 0, row.Values["receptions"])

	row, err = FootballMapper("nfl").Map(recs[1])
	require.NoError(t, err)
	assert.Equal(t, 0, row.Values["pass_attempts"])
	assert.Equal(t, 70, row.Values["rush_yards"])
}

func TestFootballGameMapping(t *testing.T) {
	srv, _ := newESPNServer(t, map[string]string{"/football/nfl/scoreboard": nflScoreboard})
	a := NewAdapter(NFL, srv.URL, provider.ClientOptions{})
	batch, err := a.FetchUnit(context.Background(), provider.Unit{Kind: provider.UnitWeek, Season: 2024, SeasonType: "regular", Week: 1})
	require.NoError(t, err)

	m := FootballMapper("nfl")
	row, err := m.Map(batch.Group(provider.EntityGames)[0])
	require.NoError(t, err)
	assert.Equal(t, "nfl_games", row.Table.Name)
	assert.Equal(t, "401671789", row.Values["game_id"])
	assert.Equal(t, 2024, row.Values["season"])
	assert.Equal(t, "regular", row.Values["game_type"])
	assert.Equal(t, 1, row.Values["week"])
	assert.Equal(t, "2024-09-08T17:00:00Z", row.Values["game_date"])
	assert.Equal(t, "STATUS_FINAL", row.Values["status"])
	assert.Equal(t, "PIT", row.Values["home_team"])
	assert.Equal(t, "ATL", row.Values["away_team"])
	assert.Equal(t, 24, row.Values["home_score"])
	assert.Equal(t, 17, row.Values["away_score"])
	assert.Equal(t, 70123, row.Values["attendance"])

	scheduled, err := m.Map(batch.Group(provider.EntityGames)[1])
	require.NoError(t, err)
	assert.Nil(t, scheduled.Values["home_team"])
	assert.Equal(t, 0, scheduled.Values["home_score"])
}

func TestFootballMalformedPair(t *testing.T) {
	rec := provider.Record{
		Entity: provider.EntityPlayerStats,
		Data: map[string]interface{}{
			"athlete": map[string]interface{}{"id": "1"},
			"passing": map[string]interface{}{"completions/passingAttempts": "--"},
		},
		Meta: map[string]interface{}{"game_id": "9"},
	}
	row, err := FootballMapper("cfb").Map(rec)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Values["pass_completions"])
	assert.Equal(t, 0, row.Values["pass_attempts"])
}

func TestUnknownSeasonTypeMapsToRegular(t *testing.T) {
	rec := provider.Record{
		Entity: provider.EntityGames,
		Data:   map[string]interface{}{"id": "1", "season": map[string]interface{}{"year": 2024.0, "type": 7.0}},
	}
	row, err := FootballMapper("nfl").Map(rec)
	require.NoError(t, err)
	assert.Equal(t, "regular", row.Values["game_type"])
}

func TestBasketballDateUnitsAndBoxscore(t *testing.T) {
	a := NewAdapter(NBA, BaseURL, provider.ClientOptions{})
	units, err := a.Units(provider.Scope{Seasons: []int{2024}})
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01", units[0].String())
	assert.Equal(t, "2025-06-30", units[len(units)-1].String())

	summary := map[string]interface{}{
		"boxscore": map[string]interface{}{
			"players": []interface{}{
				map[string]interface{}{
					"team": map[string]interface{}{"id": "13", "abbreviation": "LAL"},
					"statistics": []interface{}{
						map[string]interface{}{
							"keys": []interface{}{"minutes", "fieldGoalsMade-fieldGoalsAttempted", "points"},
							"athletes": []interface{}{
								map[string]interface{}{
									"athlete": map[string]interface{}{"id": "1966"},
									"starter": true,
									"stats":   []interface{}{"35", "10-18", "28"},
								},
								map[string]interface{}{
									"athlete":    map[string]interface{}{"id": "4066457"},
									"didNotPlay": true,
									"stats":      []interface{}{},
								},
							},
						},
					},
				},
			},
		},
	}
	recs := boxscoreRecords(summary, "401", true)
	require.Len(t, recs, 2)

	m := BasketballMapper("nba")
	row, err := m.Map(recs[0])
	require.NoError(t, err)
	assert.Equal(t, 35.0, row.Values["minutes"])
	assert.Equal(t, 10, row.Values["fgm"])
	assert.Equal(t, 18, row.Values["fga"])
	assert.Equal(t, 28, row.Values["pts"])
	assert.Equal(t, true, row.Values["starter"])

	dnp, err := m.Map(recs[1])
	require.NoError(t, err)
	assert.Equal(t, true, dnp.Values["did_not_play"])
	assert.Equal(t, 0.0, dnp.Values["minutes"])
	assert.Equal(t, 0, dnp.Values["pts"])
}

func TestGolf(t *testing.T) {
	const scoreboard = `{
	  "events": [{
	    "id": "401580344",
	    "name": "The Masters",
	    "date": "2024-04-11T04:00Z",
	    "endDate": "2024-04-14T04:00Z",
	    "season": {"year": 2024},
	    "status": {"type": {"name": "STATUS_FINAL"}},
	    "competitions": [{
	      "competitors": [
	        {"id": "9478", "order": 1, "score": "-11", "athlete": {"displayName": "Scottie Scheffler", "flag": {"alt": "USA"}},
	         "linescores": [{"value": 66}, {"value": 72}, {"value": 71}, {"value": 68}]},
	        {"id": "10140", "order": 2, "score": "E", "athlete": {"displayName": "Ludvig Aberg"}}
	      ]
	    }]
	  }]
	}`
	srv, seen := newESPNServer(t, map[string]string{"/golf/pga/scoreboard": scoreboard})
	a := NewGolfAdapter(srv.URL, provider.ClientOptions{})

	units, err := a.Units(provider.Scope{Events: []string{"401580344"}})
	require.NoError(t, err)
	require.Len(t, units, 1)

	batch, err := a.FetchUnit(context.Background(), units[0])
	require.NoError(t, err)
	assert.Equal(t, "/golf/pga/scoreboard?event=401580344", (*seen)[0])
	require.Len(t, batch.Group(provider.EntityGames), 1)
	require.Len(t, batch.Group(provider.EntityResults), 2)

	m := GolfMapper()
	row, err := m.Map(batch.Group(provider.EntityGames)[0])
	require.NoError(t, err)
	assert.Equal(t, "golf_tournaments", row.Table.Name)
	assert.Equal(t, "The Masters", row.Values["name"])

	winner, err := m.Map(batch.Group(provider.EntityResults)[0])
	require.NoError(t, err)
	assert.Equal(t, "tournament_id=401580344,player_id=9478", winner.Key())
	assert.Equal(t, -11, winner.Values["to_par"])
	assert.Equal(t, 277, winner.Values["total_strokes"])
	assert.Equal(t, 68, winner.Values["round_4"])

	even, err := m.Map(batch.Group(provider.EntityResults)[1])
	require.NoError(t, err)
	assert.Equal(t, 0, even.Values["to_par"])
	assert.Equal(t, 0, even.Values["total_strokes"])
}

func TestGolfWeeklyUnits(t *testing.T) {
	a := NewGolfAdapter(BaseURL, provider.ClientOptions{})
	units, err := a.Units(provider.Scope{
		From: time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 4, 21, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, time.Thursday, units[0].Date.Weekday())
	assert.Equal(t, "2024-04-11", units[0].String())
	assert.Equal(t, "2024-04-18", units[1].String())
}

func TestTerminalStatusVocabulary(t *testing.T) {
	const event = `{"events": [{
	  "id": "401671789", "date": "2024-09-08T17:00Z", "season": {"year": 2024, "type": 2}, "week": {"number": 1},
	  "status": {"type": {"name": %q}},
	  "competitions": [{"competitors": []}]
	}]}`
	require.Len(t, StatusVocabulary, 14)

	for status, terminal := range StatusVocabulary {
		t.Run(status, func(t *testing.T) {
			srv, seen := newESPNServer(t, map[string]string{
				"/football/nfl/scoreboard": fmt.Sprintf(event, status),
				"/football/nfl/summary":    nflSummary,
			})
			a := NewAdapter(NFL, srv.URL, provider.ClientOptions{})

			batch, err := a.FetchUnit(context.Background(), provider.Unit{Kind: provider.UnitWeek, Season: 2024, SeasonType: "regular", Week: 1})
			require.NoError(t, err)
			games := batch.Group(provider.EntityGames)
			require.Len(t, games, 1)
			assert.Equal(t, terminal, a.Terminal(games[0]))

			d := ingest.New(ingest.Options{Adapter: a, Mapper: FootballMapper("nfl"), Sink: sink.NewMemory(), Pacer: ingest.NoDelay{}})
			stats, err := d.Run(context.Background(), provider.Scope{Seasons: []int{2024}, SeasonTypes: []string{"regular"}, Weeks: []int{1}})
			require.NoError(t, err)
			want := 0
			if terminal {
				want = 1
			}
			assert.Equal(t, want, stats.DetailFetches)
			assert.Zero(t, stats.DetailFailures)
			assert.Len(t, *seen, 2+want, "one scoreboard per fetch plus a summary per terminal game")
		})
	}
}
