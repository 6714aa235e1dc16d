package espn

import (
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

// teamSchema maps an entry of ESPN's /teams list.
var teamSchema = provider.Schema{
	{Column: "team_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "abbreviation", Path: "abbreviation", Kind: provider.NullString},
	{Column: "display_name", Path: "displayName", Kind: provider.NullString},
	{Column: "short_name", Path: "shortDisplayName", Kind: provider.NullString},
	{Column: "location", Path: "location", Kind: provider.NullString},
	{Column: "name", Path: "name", Kind: provider.NullString},
	{Column: "color", Path: "color", Kind: provider.NullString},
	{Column: "logo_url", Path: "logos.0.href", Kind: provider.NullString},
}

// eventSchema maps the columns every ESPN scoreboard event shares.
var eventSchema = provider.Schema{
	{Column: "game_id", Path: "id", Kind: provider.String, Required: true},
	{Column: "season", Path: "season.year", Kind: provider.Int},
	{Column: "game_type", Path: "season.type", Kind: provider.Enum, Enum: SeasonTypes},
	{Column: "game_date", Path: "date", Kind: provider.Time},
	{Column: "status", Path: "status.type.name", Kind: provider.String},
	{Column: "status_detail", Path: "status.type.detail", Kind: provider.NullString},
	{Column: "home_team_id", Extract: competitor("home", "team.id"), Kind: provider.NullString},
	{Column: "home_team", Extract: competitor("home", "team.abbreviation"), Kind: provider.NullString},
	{Column: "away_team_id", Extract: competitor("away", "team.id"), Kind: provider.NullString},
	{Column: "away_team", Extract: competitor("away", "team.abbreviation"), Kind: provider.NullString},
	{Column: "home_score", Extract: competitor("home", "score"), Kind: provider.Int},
	{Column: "away_score", Extract: competitor("away", "score"), Kind: provider.Int},
	{Column: "venue", Path: "competitions.0.venue.fullName", Kind: provider.NullString},
	{Column: "attendance", Path: "competitions.0.attendance", Kind: provider.Int},
	{Column: "neutral_site", Path: "competitions.0.neutralSite", Kind: provider.Bool},
}

// athleteSchema maps the identity columns of a box-score line.
var athleteSchema = provider.Schema{
	{Column: "game_id", Path: "meta.game_id", Kind: provider.String, Required: true},
	{Column: "player_id", Path: "athlete.id", Kind: provider.String, Required: true},
	{Column: "player_name", Path: "athlete.displayName", Kind: provider.NullString},
	{Column: "position", Path: "athlete.position.abbreviation", Kind: provider.NullString},
	{Column: "team_id", Path: "team.id", Kind: provider.NullString},
	{Column: "team", Path: "team.abbreviation", Kind: provider.NullString},
}

func concat(parts ...provider.Schema) provider.Schema {
	var out provider.Schema
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func tables(prefix string) (teams, games, stats provider.Table) {
	teams = provider.Table{Name: prefix + "_teams", Key: []string{"team_id"}}
	games = provider.Table{Name: prefix + "_games", Key: []string{"game_id"}}
	stats = provider.Table{Name: prefix + "_player_stats", Key: []string{"game_id", "player_id"}}
	return teams, games, stats
}
