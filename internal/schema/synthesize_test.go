package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/identity"
	"github.com/kyleking/mdschema/internal/idgen"
	"github.com/kyleking/mdschema/internal/infer"
	"github.com/kyleking/mdschema/internal/parser"
	"github.com/kyleking/mdschema/internal/testutil"
)

func build(t *testing.T, text string, uniqueDepth int) (*Schema, error) {
	t.Helper()

	doc, err := parser.Parse(text)
	require.NoError(t, err)

	return Build(doc, identity.Options{UniqueDepth: uniqueDepth}, &idgen.Sequential{})
}

func mustBuild(t *testing.T, text string, uniqueDepth int) *Schema {
	t.Helper()

	s, err := build(t, text, uniqueDepth)
	require.NoError(t, err)

	return s
}

func cell(t *testing.T, table *Table, row int, column string) Cell {
	t.Helper()

	idx, ok := table.ColumnIndex(column)
	require.True(t, ok, "column %s missing from %s", column, table.Name)

	return table.Rows[row][idx]
}

func TestSynthesize_BuildingScenario(t *testing.T) {
	s := mustBuild(t, testutil.BuildingMarkdown, 0)

	require.Len(t, s.Tables, 2)

	buildings, ok := s.Table("building")
	require.True(t, ok)
	assert.Equal(t, "buildings", buildings.Name)
	assert.Equal(t, []string{"building_uuid", "building_house_number"}, buildings.ColumnNames())
	assert.Equal(t, infer.Text, buildings.Columns[1].Type)
	assert.Equal(t, []string{"building_uuid"}, buildings.Keys.Primary)
	assert.Empty(t, buildings.Keys.Foreign)
	require.Len(t, buildings.Rows, 1)

	occupants, ok := s.Table("occupant")
	require.True(t, ok)
	assert.Equal(t, "occupants", occupants.Name)
	assert.Equal(t, []string{
		"occupant_building_uuid",
		"occupant_uuid",
		"occupant_forename",
		"occupant_surname",
	}, occupants.ColumnNames())
	assert.Equal(t, []string{"occupant_building_uuid", "occupant_uuid"}, occupants.Keys.Primary)
	assert.Equal(t, []ForeignKey{{
		Column:    "occupant_building_uuid",
		RefTable:  "buildings",
		RefColumn: "building_uuid",
	}}, occupants.Keys.Foreign)

	require.Len(t, occupants.Rows, 2)

	buildingID := cell(t, buildings, 0, "building_uuid").Text
	for row := range occupants.Rows {
		assert.Equal(t, buildingID, cell(t, occupants, row, "occupant_building_uuid").Text)
	}

	assert.Equal(t, "Sherlock", cell(t, occupants, 0, "occupant_forename").Text)
	assert.Equal(t, "Watson", cell(t, occupants, 1, "occupant_surname").Text)

	assert.True(t, occupants.Columns[0].Required)
	assert.True(t, occupants.Columns[1].Required)
	assert.False(t, occupants.Columns[2].Required)
}

func TestSynthesize_EpisodeMerge(t *testing.T) {
	t.Run("merged at unique depth 0", func(t *testing.T) {
		s := mustBuild(t, testutil.EpisodeMarkdown, 0)

		episodes, ok := s.Table("episode")
		require.True(t, ok)
		require.Len(t, episodes.Rows, 1)

		assert.Equal(t, []string{
			"episode_uuid", "episode_title", "episode_runtime", "episode_aired",
		}, episodes.ColumnNames())
		assert.Equal(t, "Pilot (Director's Cut)", cell(t, episodes, 0, "episode_title").Text)
		assert.Equal(t, "42", cell(t, episodes, 0, "episode_runtime").Text)
		assert.Equal(t, "1", cell(t, episodes, 0, "episode_aired").Text)
	})

	t.Run("distinct at unique depth 1", func(t *testing.T) {
		s := mustBuild(t, testutil.EpisodeMarkdown, 1)

		episodes, ok := s.Table("episode")
		require.True(t, ok)
		require.Len(t, episodes.Rows, 2)

		assert.NotEqual(t,
			cell(t, episodes, 0, "episode_uuid").Text,
			cell(t, episodes, 1, "episode_uuid").Text)
		assert.Equal(t, "Pilot", cell(t, episodes, 0, "episode_title").Text)
		assert.True(t, cell(t, episodes, 0, "episode_aired").Null)
		assert.True(t, cell(t, episodes, 1, "episode_runtime").Null)
	})
}

func TestSynthesize_DanglingReference(t *testing.T) {
	s, err := build(t, testutil.DanglingReferenceMarkdown, 0)

	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.IsType(err, errors.ErrTypeReference))
	assert.Contains(t, err.Error(), `"pilot"`)
}

func TestSynthesize_UniqueRecordsAreNotReferenceable(t *testing.T) {
	text := "# pilot (episode)\n# season 1 (season)\n- first: {pilot}"

	_, err := build(t, text, 0)
	require.NoError(t, err)

	_, err = build(t, text, 1)
	assert.True(t, errors.IsType(err, errors.ErrTypeReference))
}

func TestSynthesize_References(t *testing.T) {
	s := mustBuild(t, testutil.ReferenceMarkdown, 0)

	streets, ok := s.Table("street")
	require.True(t, ok)
	assert.Equal(t, infer.Real, streets.Columns[1].Type)

	people, ok := s.Table("person")
	require.True(t, ok)
	assert.Equal(t, "people", people.Name)
	assert.Equal(t, []string{
		"person_street_uuid",
		"person_uuid",
		"person_age",
		"person_landlady_person_uuid",
		"person_home_street_uuid",
	}, people.ColumnNames())
	assert.Equal(t, infer.Integer, people.Columns[2].Type)

	assert.Equal(t, []ForeignKey{
		{Column: "person_street_uuid", RefTable: "streets", RefColumn: "street_uuid"},
		{Column: "person_landlady_person_uuid", RefTable: "people", RefColumn: "person_uuid"},
		{Column: "person_home_street_uuid", RefTable: "streets", RefColumn: "street_uuid"},
	}, people.Keys.Foreign)

	streetID := cell(t, streets, 0, "street_uuid").Text
	hudsonID := cell(t, people, 1, "person_uuid").Text

	// forward reference from Sherlock to Mrs Hudson
	assert.Equal(t, hudsonID, cell(t, people, 0, "person_landlady_person_uuid").Text)
	assert.True(t, cell(t, people, 1, "person_landlady_person_uuid").Null)
	assert.Equal(t, streetID, cell(t, people, 0, "person_home_street_uuid").Text)
	assert.Equal(t, streetID, cell(t, people, 1, "person_home_street_uuid").Text)
}

func TestSynthesize_MixedMarkersResolve(t *testing.T) {
	text := "# a (thing)\n- link: {b}\n# b (thing)\n- link: plain"

	s := mustBuild(t, text, 0)
	things, _ := s.Table("thing")

	assert.Equal(t, []string{"thing_uuid", "thing_link"}, things.ColumnNames())
	assert.Equal(t, infer.Text, things.Columns[1].Type)
	assert.Equal(t, cell(t, things, 1, "thing_uuid").Text, cell(t, things, 0, "thing_link").Text)
	assert.Equal(t, "plain", cell(t, things, 1, "thing_link").Text)
	assert.Len(t, things.Keys.Foreign, 0)
}

func TestSynthesize_MixedColumnDanglingReference(t *testing.T) {
	text := "# a (thing)\n- link: {pilot}\n# b (thing)\n- link: plain"

	s, err := build(t, text, 0)

	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.IsType(err, errors.ErrTypeReference))
	assert.Contains(t, err.Error(), `"pilot"`)
}

// A type gets a parent column when any occurrence is nested, even if its
// first occurrence is a root.
func TestSynthesize_ParentFromLaterOccurrence(t *testing.T) {
	text := "# bob (member)\n- age: 40\n# red (team)\n## bob (member)\n- age: 41"

	s := mustBuild(t, text, 0)
	members, ok := s.Table("member")
	require.True(t, ok)

	assert.Equal(t, []string{"member_team_uuid", "member_uuid", "member_age"}, members.ColumnNames())
	assert.Equal(t, []ForeignKey{
		{Column: "member_team_uuid", RefTable: "teams", RefColumn: "team_uuid"},
	}, members.Keys.Foreign)

	require.Len(t, members.Rows, 1)
	assert.True(t, cell(t, members, 0, "member_team_uuid").Null)
	assert.Equal(t, "41", cell(t, members, 0, "member_age").Text)
}

func TestSynthesize_BooleanColumn(t *testing.T) {
	text := "# a (flag)\n- on: 1\n# b (flag)\n- on: 0"

	s := mustBuild(t, text, 0)
	flags, _ := s.Table("flag")

	assert.Equal(t, infer.Boolean, flags.Columns[1].Type)
}

// Only the first parent type of a record type is modeled; later parents of
// another type still land in the same parent column.
func TestSynthesize_FirstParentTypeOnly(t *testing.T) {
	text := `# north (region)
## bob (member)
# red (team)
## alice (member)
# carol (member)`

	s := mustBuild(t, text, 0)
	members, ok := s.Table("member")
	require.True(t, ok)

	assert.Equal(t, "member_region_uuid", members.Columns[0].Name)
	require.Len(t, members.Keys.Foreign, 1)
	assert.Equal(t, "regions", members.Keys.Foreign[0].RefTable)

	teams, _ := s.Table("team")
	teamID := cell(t, teams, 0, "team_uuid").Text

	assert.Equal(t, teamID, cell(t, members, 1, "member_region_uuid").Text)
	assert.True(t, cell(t, members, 2, "member_region_uuid").Null)
}

func TestSynthesize_PrimaryKeyShape(t *testing.T) {
	docs := []string{
		testutil.BuildingMarkdown,
		testutil.EpisodeMarkdown,
		testutil.ReferenceMarkdown,
		"# a (x)\n## b (y)\n### c (z)\n# d (y)",
	}

	for _, text := range docs {
		s := mustBuild(t, text, 0)

		for _, table := range s.Tables {
			hasParent := table.Columns[0].Role == RoleParent

			if hasParent {
				assert.Equal(t, []string{table.Columns[0].Name, IDColumn(table.Type)}, table.Keys.Primary)
			} else {
				assert.Equal(t, []string{IDColumn(table.Type)}, table.Keys.Primary)
			}
		}
	}
}

func TestSynthesize_SharedChildAcrossParents(t *testing.T) {
	text := `# show a (series)
## guest (person)
- role: villain
# show b (series)
## guest (person)
- role: hero`

	s := mustBuild(t, text, 0)
	people, _ := s.Table("person")
	series, _ := s.Table("series")

	require.Len(t, people.Rows, 1)
	assert.Equal(t, "hero", cell(t, people, 0, "person_role").Text)
	assert.Equal(t, cell(t, series, 0, "series_uuid").Text, cell(t, people, 0, "person_series_uuid").Text)
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "tv_show", Sanitize("tv show"))
	assert.Equal(t, "a_b_c", Sanitize("a-b.c"))
	assert.Equal(t, "buildings", TableName("building"))
	assert.Equal(t, "occupants", TableName("occupant"))
	assert.Equal(t, "categories", TableName("category"))
	assert.Equal(t, "tv_shows", TableName("tv show"))
	assert.Equal(t, TableName("episode"), TableName("episode"))
	assert.Equal(t, "occupant_building_uuid", ParentColumn("occupant", "building"))
	assert.Equal(t, "building_house_number", ValueColumn("building", "house number"))
	assert.Equal(t, "season_first_episode_episode_uuid", ReferenceColumn("season", "first episode", "episode"))
}

func TestSynthesize_ForwardReferenceUsesTargetIdentifier(t *testing.T) {
	text := testutil.NewOutline().
		Heading(1, "Season 1", "season", testutil.WithReference("premiere", "Pilot")).
		Heading(2, "Pilot", "episode", testutil.WithProperty("runtime", "42")).
		String()

	doc, err := parser.Parse(text)
	require.NoError(t, err)

	s, err := Build(doc, identity.Options{}, testutil.NewMockGenerator(testutil.WithIDs("s1", "p1")))
	require.NoError(t, err)

	seasons, ok := s.Table("season")
	require.True(t, ok)
	assert.Equal(t, []string{"season_uuid", "season_premiere_episode_uuid"}, seasons.ColumnNames())
	assert.Equal(t, Cell{Text: "p1"}, cell(t, seasons, 0, "season_premiere_episode_uuid"))

	episodes, ok := s.Table("episode")
	require.True(t, ok)
	assert.Equal(t, []string{"episode_season_uuid", "episode_uuid", "episode_runtime"}, episodes.ColumnNames())
	assert.Equal(t, Cell{Text: "s1"}, cell(t, episodes, 0, "episode_season_uuid"))
	assert.Equal(t, infer.Integer, episodes.Columns[2].Type)
}
