package nhl

import (
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

var teamSchema = provider.Schema{
	{Column: "team_id", Path: "teamAbbrev", Kind: provider.String, Required: true},
	{Column: "abbreviation", Path: "teamAbbrev", Kind: provider.NullString},
	{Column: "display_name", Path: "teamName", Kind: provider.NullString},
	{Column: "name", Path: "teamCommonName", Kind: provider.NullString},
	{Column: "location", Path: "placeName", Kind: provider.NullString},
	{Column: "conference", Path: "conferenceName", Kind: provider.NullString},
	{Column: "division", Path: "divisionName", Kind: provider.NullString},
	{Column: "logo_url", Path: "teamLogo", Kind: provider.NullString},
}

var gameSchema = provider.Schema{
	{Column: "game_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "season", Extract: startYear, Kind: provider.Int},
	{Column: "game_type", Path: "gameType", Kind: provider.Enum, Enum: GameTypes},
	{Column: "game_date", Path: "startTimeUTC", Kind: provider.Time},
	{Column: "status", Path: "gameState", Kind: provider.String},
	{Column: "home_team_id", Path: "homeTeam.abbrev", Kind: provider.NullString},
	{Column: "away_team_id", Path: "awayTeam.abbrev", Kind: provider.NullString},
	{Column: "home_score", Path: "homeTeam.score", Kind: provider.Int},
	{Column: "away_score", Path: "awayTeam.score", Kind: provider.Int},
	{Column: "home_shots", Path: "homeTeam.sog", Kind: provider.Int},
	{Column: "away_shots", Path: "awayTeam.sog", Kind: provider.Int},
	{Column: "periods", Path: "period", Kind: provider.Int},
	{Column: "venue", Path: "venue", Kind: provider.NullString},
}

// startYear turns the feed's 20242025 season into 2024.
func startYear(rec provider.Record) (interface{}, bool) {
	v, ok := provider.Lookup(rec.Data, "season")
	if !ok {
		return nil, false
	}
	s, ok := provider.ExtractInt(v)
	if !ok {
		return nil, false
	}
	if s > 10000000 {
		s /= 10000
	}
	return s, true
}

var playerStatSchema = provider.Schema{
	{Column: "game_id", Path: "meta.game_id", Kind: provider.String, Required: true},
	{Column: "player_id", Path: "playerId", Kind: provider.String, Required: true},
	{Column: "player_name", Path: "name", Kind: provider.NullString},
	{Column: "position", Path: "position", Kind: provider.NullString},
	{Column: "team_id", Path: "meta.team", Kind: provider.NullString},
	{Column: "sweater_number", Path: "sweaterNumber", Kind: provider.Int},
	{Column: "toi_minutes", Path: "toi", Kind: provider.Minutes},

	{Column: "goals", Path: "goals", Kind: provider.Int},
	{Column: "assists", Path: "assists", Kind: provider.Int},
	{Column: "points", Path: "points", Kind: provider.Int},
	{Column: "plus_minus", Path: "plusMinus", Kind: provider.Int},
	{Column: "pim", Path: "pim", Kind: provider.Int},
	{Column: "hits", Path: "hits", Kind: provider.Int},
	{Column: "shots", Path: "sog", Kind: provider.Int},
	{Column: "blocked_shots", Path: "blockedShots", Kind: provider.Int},
	{Column: "power_play_goals", Path: "powerPlayGoals", Kind: provider.Int},
	{Column: "faceoff_pct", Path: "faceoffWinningPctg", Kind: provider.Float},

	{Column: "saves", Path: "saveShotsAgainst", Kind: provider.PairFirst, Sep: "/"},
	{Column: "shots_against", Path: "saveShotsAgainst", Kind: provider.PairSecond, Sep: "/"},
	{Column: "goals_against", Path: "goalsAgainst", Kind: provider.Int},
	{Column: "save_pct", Path: "savePctg", Kind: provider.Float},
	{Column: "decision", Path: "decision", Kind: provider.NullString},
}

// Mapper returns the NHL mapper.
func Mapper() provider.SchemaMapper {
	return provider.SchemaMapper{
		provider.EntityTeams: {
			Table:  provider.Table{Name: "nhl_teams", Key: []string{"team_id"}},
			Schema: teamSchema,
		},
		provider.EntityGames: {
			Table:  provider.Table{Name: "nhl_games", Key: []string{"game_id"}},
			Schema: gameSchema,
		},
		provider.EntityPlayerStats: {
			Table:  provider.Table{Name: "nhl_player_stats", Key: []string{"game_id", "player_id"}},
			Schema: playerStatSchema,
		},
	}
}
