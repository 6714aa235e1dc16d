package espn

import (
	"github.com/albapepper/scoracle-ingest/internal/provider"
)

var footballGameSchema = concat(eventSchema, provider.Schema{
	{Column: "week", Path: "week.number", Kind: provider.Int},
	{Column: "home_win_probability", Path: "competitions.0.situation.lastPlay.probability.homeWinPercentage", Kind: provider.Float},
})

// footballStatSchema reads the zipped passing, rushing, receiving, fumbles,
// defensive and interceptions categories of an ESPN football summary.
var footballStatSchema = concat(athleteSchema, provider.Schema{
	{Column: "pass_completions", Path: "passing.completions/passingAttempts", Kind: provider.PairFirst, Sep: "/"},
	{Column: "pass_attempts", Path: "passing.completions/passingAttempts", Kind: provider.PairSecond, Sep: "/"},
	{Column: "pass_yards", Path: "passing.passingYards", Kind: provider.Int},
	{Column: "pass_tds", Path: "passing.passingTouchdowns", Kind: provider.Int},
	{Column: "interceptions_thrown", Path: "passing.interceptions", Kind: provider.Int},
	{Column: "sacks_taken", Path: "passing.sacks-sackYardsLost", Kind: provider.PairFirst, Sep: "-"},
	{Column: "qb_rating", Path: "passing.QBRating", Kind: provider.Float},
	{Column: "rush_attempts", Path: "rushing.rushingAttempts", Kind: provider.Int},
	{Column: "rush_yards", Path: "rushing.rushingYards", Kind: provider.Int},
	{Column: "rush_tds", Path: "rushing.rushingTouchdowns", Kind: provider.Int},
	{Column: "rush_long", Path: "rushing.longRushing", Kind: provider.Int},
	{Column: "receptions", Path: "receiving.receptions", Kind: provider.Int},
	{Column: "targets", Path: "receiving.receivingTargets", Kind: provider.Int},
	{Column: "rec_yards", Path: "receiving.receivingYards", Kind: provider.Int},
	{Column: "rec_tds", Path: "receiving.receivingTouchdowns", Kind: provider.Int},
	{Column: "fumbles", Path: "fumbles.fumbles", Kind: provider.Int},
	{Column: "fumbles_lost", Path: "fumbles.fumblesLost", Kind: provider.Int},
	{Column: "tackles", Path: "defensive.totalTackles", Kind: provider.Int},
	{Column: "solo_tackles", Path: "defensive.soloTackles", Kind: provider.Int},
	{Column: "sacks", Path: "defensive.sacks", Kind: provider.Float},
	{Column: "tackles_for_loss", Path: "defensive.tacklesForLoss", Kind: provider.Int},
	{Column: "passes_defended", Path: "defensive.passesDefended", Kind: provider.Int},
	{Column: "interceptions", Path: "interceptions.interceptions", Kind: provider.Int},
})

// FootballMapper returns the mapper for an ESPN football league; prefix is
// the table prefix ("nfl", "cfb").
func FootballMapper(prefix string) provider.SchemaMapper {
	teams, games, stats := tables(prefix)
	return provider.SchemaMapper{
		provider.EntityTeams:       {Table: teams, Schema: teamSchema},
		provider.EntityGames:       {Table: games, Schema: footballGameSchema},
		provider.EntityPlayerStats: {Table: stats, Schema: footballStatSchema},
	}
}
