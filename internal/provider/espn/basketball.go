package espn

import (
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

var basketballGameSchema = concat(eventSchema, provider.Schema{
	{Column: "home_record", Extract: competitor("home", "records.0.summary"), Kind: provider.NullString},
	{Column: "away_record", Extract: competitor("away", "records.0.summary"), Kind: provider.NullString},
})

// basketballStatSchema reads the single merged "stats" category of an ESPN
// basketball summary. Shooting lines arrive as "made-attempted".
var basketballStatSchema = concat(athleteSchema, provider.Schema{
	{Column: "starter", Path: "starter", Kind: provider.Bool},
	{Column: "did_not_play", Path: "didNotPlay", Kind: provider.Bool},
	{Column: "minutes", Path: "stats.minutes", Kind: provider.Minutes},
	{Column: "fgm", Path: "stats.fieldGoalsMade-fieldGoalsAttempted", Kind: provider.PairFirst, Sep: "-"},
	{Column: "fga", Path: "stats.fieldGoalsMade-fieldGoalsAttempted", Kind: provider.PairSecond, Sep: "-"},
	{Column: "fg3m", Path: "stats.threePointFieldGoalsMade-threePointFieldGoalsAttempted", Kind: provider.PairFirst, Sep: "-"},
	{Column: "fg3a", Path: "stats.threePointFieldGoalsMade-threePointFieldGoalsAttempted", Kind: provider.PairSecond, Sep: "-"},
	{Column: "ftm", Path: "stats.freeThrowsMade-freeThrowsAttempted", Kind: provider.PairFirst, Sep: "-"},
	{Column: "fta", Path: "stats.freeThrowsMade-freeThrowsAttempted", Kind: provider.PairSecond, Sep: "-"},
	{Column: "oreb", Path: "stats.offensiveRebounds", Kind: provider.Int},
	{Column: "dreb", Path: "stats.defensiveRebounds", Kind: provider.Int},
	{Column: "reb", Path: "stats.rebounds", Kind: provider.Int},
	{Column: "ast", Path: "stats.assists", Kind: provider.Int},
	{Column: "stl", Path: "stats.steals", Kind: provider.Int},
	{Column: "blk", Path: "stats.blocks", Kind: provider.Int},
	{Column: "turnovers", Path: "stats.turnovers", Kind: provider.Int},
	{Column: "fouls", Path: "stats.fouls", Kind: provider.Int},
	{Column: "plus_minus", Path: "stats.plusMinus", Kind: provider.Int},
	{Column: "pts", Path: "stats.points", Kind: provider.Int},
})

// BasketballMapper returns the mapper for an ESPN basketball league.
func BasketballMapper(prefix string) provider.SchemaMapper {
	teams, games, stats := tables(prefix)
	return provider.SchemaMapper{
		provider.EntityTeams:       {Table: teams, Schema: teamSchema},
		provider.EntityGames:       {Table: games, Schema: basketballGameSchema},
		provider.EntityPlayerStats: {Table: stats, Schema: basketballStatSchema},
	}
}
