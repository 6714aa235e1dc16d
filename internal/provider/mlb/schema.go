package mlb

import (
	"strconv"
	"strings"

	"github.com/albapepper/scoracle-ingest/internal/provider"
)

var teamSchema = provider.Schema{
	{Column: "team_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "abbreviation", Path: "abbreviation", Kind: provider.NullString},
	{Column: "display_name", Path: "name", Kind: provider.NullString},
	{Column: "name", Path: "teamName", Kind: provider.NullString},
	{Column: "location", Path: "locationName", Kind: provider.NullString},
	{Column: "league", Path: "league.name", Kind: provider.NullString},
	{Column: "division", Path: "division.name", Kind: provider.NullString},
	{Column: "venue", Path: "venue.name", Kind: provider.NullString},
}

var gameSchema = provider.Schema{
	{Column: "game_id", Path: "gamePk", Kind: provider.String, Required: true},
	{Column: "season", Path: "season", Kind: provider.Int},
	{Column: "game_type", Path: "gameType", Kind: provider.Enum, Enum: GameTypes},
	{Column: "game_date", Path: "gameDate", Kind: provider.Time},
	{Column: "official_date", Path: "officialDate", Kind: provider.NullString},
	{Column: "status", Path: "status.abstractGameState", Kind: provider.String},
	{Column: "status_detail", Path: "status.detailedState", Kind: provider.NullString},
	{Column: "home_team_id", Path: "teams.home.team.id", Kind: provider.NullString},
	{Column: "home_team", Path: "teams.home.team.name", Kind: provider.NullString},
	{Column: "away_team_id", Path: "teams.away.team.id", Kind: provider.NullString},
	{Column: "away_team", Path: "teams.away.team.name", Kind: provider.NullString},
	{Column: "home_score", Path: "teams.home.score", Kind: provider.Int},
	{Column: "away_score", Path: "teams.away.score", Kind: provider.Int},
	{Column: "venue", Path: "venue.name", Kind: provider.NullString},
	{Column: "double_header", Path: "doubleHeader", Kind: provider.NullString},
	{Column: "game_number", Path: "gameNumber", Kind: provider.Int, Default: 1},
}

var playerStatSchema = provider.Schema{
	{Column: "game_id", Path: "meta.game_id", Kind: provider.String, Required: true},
	{Column: "player_id", Path: "person.id", Kind: provider.String, Required: true},
	{Column: "player_name", Path: "person.fullName", Kind: provider.NullString},
	{Column: "position", Path: "position.abbreviation", Kind: provider.NullString},
	{Column: "team_id", Path: "meta.team_id", Kind: provider.NullString},
	{Column: "team", Path: "meta.team", Kind: provider.NullString},
	{Column: "batting_order", Path: "battingOrder", Kind: provider.Int},

	{Column: "at_bats", Path: "stats.batting.atBats", Kind: provider.Int},
	{Column: "runs", Path: "stats.batting.runs", Kind: provider.Int},
	{Column: "hits", Path: "stats.batting.hits", Kind: provider.Int},
	{Column: "doubles", Path: "stats.batting.doubles", Kind: provider.Int},
	{Column: "triples", Path: "stats.batting.triples", Kind: provider.Int},
	{Column: "home_runs", Path: "stats.batting.homeRuns", Kind: provider.Int},
	{Column: "rbi", Path: "stats.batting.rbi", Kind: provider.Int},
	{Column: "walks", Path: "stats.batting.baseOnBalls", Kind: provider.Int},
	{Column: "strikeouts", Path: "stats.batting.strikeOuts", Kind: provider.Int},
	{Column: "stolen_bases", Path: "stats.batting.stolenBases", Kind: provider.Int},
	{Column: "left_on_base", Path: "stats.batting.leftOnBase", Kind: provider.Int},

	{Column: "outs_pitched", Extract: outsPitched, Kind: provider.Int},
	{Column: "innings_pitched", Extract: inningsPitched, Kind: provider.Float},
	{Column: "hits_allowed", Path: "stats.pitching.hits", Kind: provider.Int},
	{Column: "runs_allowed", Path: "stats.pitching.runs", Kind: provider.Int},
	{Column: "earned_runs", Path: "stats.pitching.earnedRuns", Kind: provider.Int},
	{Column: "walks_allowed", Path: "stats.pitching.baseOnBalls", Kind: provider.Int},
	{Column: "pitching_strikeouts", Path: "stats.pitching.strikeOuts", Kind: provider.Int},
	{Column: "home_runs_allowed", Path: "stats.pitching.homeRuns", Kind: provider.Int},
	{Column: "pitches", Path: "stats.pitching.pitchesThrown", Kind: provider.Int},
	{Column: "strikes", Path: "stats.pitching.strikes", Kind: provider.Int},
}

// outsPitched converts the box-score innings notation ("6.2" is six innings
// and two outs) into outs.
func outsPitched(rec provider.Record) (interface{}, bool) {
	v, ok := provider.Lookup(rec.Data, "stats.pitching.inningsPitched")
	if !ok {
		return nil, false
	}
	s, ok := provider.ExtractString(v)
	if !ok {
		return nil, false
	}
	whole, frac, _ := strings.Cut(s, ".")
	innings, err := strconv.Atoi(whole)
	if err != nil {
		return nil, false
	}
	outs := 0
	if frac != "" {
		if outs, err = strconv.Atoi(frac); err != nil || outs > 2 {
			return nil, false
		}
	}
	return innings*3 + outs, true
}

func inningsPitched(rec provider.Record) (interface{}, bool) {
	outs, ok := outsPitched(rec)
	if !ok {
		return nil, false
	}
	return float64(outs.(int)) / 3, true
}

// Mapper returns the MLB mapper.
func Mapper() provider.SchemaMapper {
	return provider.SchemaMapper{
		provider.EntityTeams: {
			Table:  provider.Table{Name: "mlb_teams", Key: []string{"team_id"}},
			Schema: teamSchema,
		},
		provider.EntityGames: {
			Table:  provider.Table{Name: "mlb_games", Key: []string{"game_id"}},
			Schema: gameSchema,
		},
		provider.EntityPlayerStats: {
			Table:  provider.Table{Name: "mlb_player_stats", Key: []string{"game_id", "player_id"}},
			Schema: playerStatSchema,
		},
	}
}
