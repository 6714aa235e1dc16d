package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"number", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"numeric string", "0.250", 0.25, true},
		{"signed string", "+3", 3, true},
		{"dash", "--", 0, false},
		{"empty", "", 0, false},
		{"nested total", map[string]interface{}{"total": 15.0}, 15, true},
		{"nested value", map[string]interface{}{"value": "12.5", "displayValue": "12.5"}, 12.5, true},
		{"nested unknown", map[string]interface{}{"foo": 1.0}, 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractIntRange(t *testing.T) {
	n, ok := ExtractInt("3.0")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	for _, v := range []interface{}{1e20, -1e20, "9.3e18"} {
		_, ok := ExtractInt(v)
		assert.False(t, ok, "%v", v)
	}

	got, err := Schema{{Column: "yards", Path: "yards", Kind: Int}}.Apply(Record{Data: map[string]interface{}{"yards": 1e20}})
	require.NoError(t, err)
	assert.Equal(t, 0, got["yards"])
}

func TestExtractString(t *testing.T) {
	s, ok := ExtractString(745455.0)
	assert.True(t, ok)
	assert.Equal(t, "745455", s)

	s, ok = ExtractString(map[string]interface{}{"default": "Connor McDavid"})
	assert.True(t, ok)
	assert.Equal(t, "Connor McDavid", s)

	_, ok = ExtractString("   ")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	data := map[string]interface{}{
		"competitions": []interface{}{
			map[string]interface{}{
				"status": map[string]interface{}{"type": map[string]interface{}{"name": "STATUS_FINAL"}},
			},
		},
		"stats": map[string]interface{}{"completions/passingAttempts": "18/27"},
	}

	v, ok := Lookup(data, "competitions.0.status.type.name")
	require.True(t, ok)
	assert.Equal(t, "STATUS_FINAL", v)

	v, ok = Lookup(data, "stats.completions/passingAttempts")
	require.True(t, ok)
	assert.Equal(t, "18/27", v)

	_, ok = Lookup(data, "competitions.3.status")
	assert.False(t, ok)
	_, ok = Lookup(data, "competitions.x")
	assert.False(t, ok)
	assert.Nil(t, LookupMap(data, "stats.missing"))
	assert.Len(t, LookupSlice(data, "competitions"), 1)
}

func TestSplitPair(t *testing.T) {
	a, b := SplitPair("18/27", "/")
	assert.Equal(t, 18, a)
	assert.Equal(t, 27, b)

	a, b = SplitPair("7-15", "-")
	assert.Equal(t, 7, a)
	assert.Equal(t, 15, b)

	a, b = SplitPair("abc", "/")
	assert.Zero(t, a)
	assert.Zero(t, b)

	a, b = SplitPair("x/27", "/")
	assert.Zero(t, a)
	assert.Zero(t, b)
}

func TestParseMinutes(t *testing.T) {
	m, ok := ParseMinutes("33:30")
	require.True(t, ok)
	assert.InDelta(t, 33.5, m, 1e-9)

	m, ok = ParseMinutes("33")
	require.True(t, ok)
	assert.InDelta(t, 33.0, m, 1e-9)

	_, ok = ParseMinutes("DNP")
	assert.False(t, ok)
}

func TestParseTime(t *testing.T) {
	got, ok := ParseTime("2024-09-08T17:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC), got)

	got, ok = ParseTime("2024-09-08T13:00:00-04:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC), got)

	_, ok = ParseTime("next tuesday")
	assert.False(t, ok)
}

func TestEnumTable(t *testing.T) {
	e := EnumTable{Values: map[string]string{"2": "regular", "3": "postseason"}, Default: "regular"}
	assert.Equal(t, "postseason", e.Map(3.0))
	assert.Equal(t, "regular", e.Map("9"))
	assert.Equal(t, "regular", e.Map(nil))
}

func TestSchemaApply(t *testing.T) {
	schema := Schema{
		{Column: "game_id", Path: "meta.game_id", Kind: String, Required: true},
		{Column: "completions", Path: "stats.c_att", Kind: PairFirst, Sep: "/"},
		{Column: "attempts", Path: "stats.c_att", Kind: PairSecond, Sep: "/"},
		{Column: "yards", Path: "stats.yards", Kind: Int},
		{Column: "rating", Path: "stats.rating", Kind: Float},
		{Column: "minutes", Path: "stats.minutes", Kind: Minutes},
		{Column: "nickname", Path: "nickname", Kind: NullString},
		{Column: "starter", Path: "starter", Kind: Bool},
		{Column: "played_at", Path: "date", Kind: Time},
		{Column: "season_type", Path: "type", Kind: Enum, Enum: EnumTable{Values: map[string]string{"3": "postseason"}, Default: "regular"}},
		{Column: "status", Path: "status", Kind: String, Default: "scheduled"},
	}

	t.Run("present values", func(t *testing.T) {
		rec := Record{
			Data: map[string]interface{}{
				"stats":   map[string]interface{}{"c_att": "18/27", "yards": "245", "rating": 101.23456, "minutes": "12:30"},
				"starter": true,
				"date":    "2024-09-08T17:00Z",
				"type":    3.0,
				"status":  "final",
			},
			Meta: map[string]interface{}{"game_id": "401"},
		}
		got, err := schema.Apply(rec)
		require.NoError(t, err)
		assert.Equal(t, "401", got["game_id"])
		assert.Equal(t, 18, got["completions"])
		assert.Equal(t, 27, got["attempts"])
		assert.Equal(t, 245, got["yards"])
		assert.Equal(t, 101.2346, got["rating"])
		assert.Equal(t, 12.5, got["minutes"])
		assert.Nil(t, got["nickname"])
		assert.Equal(t, true, got["starter"])
		assert.Equal(t, "2024-09-08T17:00:00Z", got["played_at"])
		assert.Equal(t, "postseason", got["season_type"])
		assert.Equal(t, "final", got["status"])
	})

	t.Run("missing and malformed fall back", func(t *testing.T) {
		rec := Record{
			Data: map[string]interface{}{
				"stats": map[string]interface{}{"c_att": "abc/def", "yards": "--"},
				"type":  "99",
			},
			Meta: map[string]interface{}{"game_id": 401.0},
		}
		got, err := schema.Apply(rec)
		require.NoError(t, err)
		assert.Equal(t, "401", got["game_id"])
		assert.Equal(t, 0, got["completions"])
		assert.Equal(t, 0, got["attempts"])
		assert.Equal(t, 0, got["yards"])
		assert.Equal(t, 0.0, got["rating"])
		assert.Equal(t, 0.0, got["minutes"])
		assert.Equal(t, false, got["starter"])
		assert.Nil(t, got["played_at"])
		assert.Equal(t, "regular", got["season_type"])
		assert.Equal(t, "scheduled", got["status"])
	})

	t.Run("required field missing", func(t *testing.T) {
		_, err := schema.Apply(Record{Data: map[string]interface{}{}})
		assert.True(t, errors.Is(err, ErrUnmappable))
	})
}

func TestSchemaMapper(t *testing.T) {
	teams := Table{Name: "x_teams", Key: []string{"id"}}
	games := Table{Name: "x_games", Key: []string{"game_id"}}
	m := SchemaMapper{
		EntityGames: {Table: games, Schema: Schema{{Column: "game_id", Path: "id", Kind: String, Required: true}}},
		EntityTeams: {Table: teams, Schema: Schema{{Column: "id", Path: "id", Kind: Int, Required: true}}},
	}

	row, err := m.Map(Record{Entity: EntityGames, Data: map[string]interface{}{"id": "401"}})
	require.NoError(t, err)
	assert.Equal(t, "x_games", row.Table.Name)
	assert.Equal(t, "game_id=401", row.Key())

	_, err = m.Map(Record{Entity: EntityPlayerStats})
	assert.True(t, errors.Is(err, ErrUnmappable))

	tables := m.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "x_teams", tables[0].Name)
	assert.Equal(t, "x_games", tables[1].Name)
}

func TestBatchOrdered(t *testing.T) {
	var b Batch
	b.Add(
		Record{Entity: EntityPlayerStats},
		Record{Entity: EntityGames},
		Record{Entity: EntityTeams},
	)
	got := b.Ordered()
	require.Len(t, got, 3)
	assert.Equal(t, EntityTeams, got[0].Entity)
	assert.Equal(t, EntityGames, got[1].Entity)
	assert.Equal(t, EntityPlayerStats, got[2].Entity)
	assert.Equal(t, 3, b.Len())
}

func TestDateUnits(t *testing.T) {
	window := func(season int) (time.Time, time.Time) {
		return time.Date(season, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(season, 10, 3, 0, 0, 0, 0, time.UTC)
	}

	t.Run("season window with teams", func(t *testing.T) {
		units, err := DateUnits(Scope{Seasons: []int{2024}, Teams: true}, 1, window)
		require.NoError(t, err)
		require.Len(t, units, 4)
		assert.Equal(t, UnitCatalog, units[0].Kind)
		assert.Equal(t, "2024-10-01", units[1].String())
		assert.Equal(t, "2024-10-03", units[3].String())
	})

	t.Run("explicit range wins", func(t *testing.T) {
		from := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
		units, err := DateUnits(Scope{Seasons: []int{2024}, From: from, To: from.AddDate(0, 0, 14)}, 7, window)
		require.NoError(t, err)
		require.Len(t, units, 3)
		assert.Equal(t, "2024-01-15", units[2].String())
	})

	t.Run("single date", func(t *testing.T) {
		units, err := DateUnits(Scope{To: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, 1, window)
		require.NoError(t, err)
		require.Len(t, units, 1)
	})

	t.Run("reversed range", func(t *testing.T) {
		_, err := DateUnits(Scope{From: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, 1, window)
		assert.True(t, errors.Is(err, ErrScope))
	})

	t.Run("nothing requested", func(t *testing.T) {
		_, err := DateUnits(Scope{}, 1, window)
		assert.True(t, errors.Is(err, ErrScope))
	})
}
