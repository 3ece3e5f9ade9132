package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/idgen"
	"github.com/kyleking/mdschema/internal/parser"
	"github.com/kyleking/mdschema/internal/testutil"
)

func resolve(t *testing.T, text string, uniqueDepth int) *Resolution {
	t.Helper()

	doc, err := parser.Parse(text)
	require.NoError(t, err)

	return Resolve(document.Flatten(doc), Options{UniqueDepth: uniqueDepth}, &idgen.Sequential{})
}

func TestResolve_MergesRepeatedRoots(t *testing.T) {
	res := resolve(t, testutil.EpisodeMarkdown, 0)

	require.Len(t, res.Entities, 2)
	assert.Equal(t, res.Entities[0].ID, res.Entities[1].ID)
	assert.Len(t, res.Identities(), 1)

	survivors := res.Survivors()
	require.Len(t, survivors, 1)

	props := survivors[0].Properties
	assert.Equal(t, []string{"title", "runtime", "aired"}, props.Keys())

	title, _ := props.Get("title")
	assert.Equal(t, "Pilot (Director's Cut)", title.Text)

	runtime, _ := props.Get("runtime")
	assert.Equal(t, "42", runtime.Text)

	// both occurrences carry the same final property set
	assert.Equal(t, res.Entities[0].Properties, res.Entities[1].Properties)
	assert.NotSame(t, res.Entities[0].Properties, res.Entities[1].Properties)
}

func TestResolve_UniqueDepthKeepsRecordsApart(t *testing.T) {
	res := resolve(t, testutil.EpisodeMarkdown, 1)

	require.Len(t, res.Entities, 2)
	assert.NotEqual(t, res.Entities[0].ID, res.Entities[1].ID)
	assert.Len(t, res.Survivors(), 2)

	_, ok := res.Lookup("episode 1")
	assert.False(t, ok, "unique records are not referenceable by name")

	title, _ := res.Entities[0].Properties.Get("title")
	assert.Equal(t, "Pilot", title.Text)

	_, hasAired := res.Entities[0].Properties.Get("aired")
	assert.False(t, hasAired)
}

func TestResolve_DepthThreshold(t *testing.T) {
	text := `# show a (series)
## guest (person)
- role: villain
# show b (series)
## guest (person)
- role: hero
# show a (series)`

	tests := []struct {
		name        string
		uniqueDepth int
		identities  int
		guestMerged bool
		showsMerged bool
	}{
		{"no threshold", 0, 3, true, true},
		{"roots unique", 1, 4, true, false},
		{"everything unique", 2, 5, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, text, tt.uniqueDepth)

			assert.Len(t, res.Identities(), tt.identities)
			assert.Equal(t, tt.guestMerged, res.Entities[1].ID == res.Entities[3].ID)
			assert.Equal(t, tt.showsMerged, res.Entities[0].ID == res.Entities[4].ID)
		})
	}
}

func TestResolve_IdentifiersInFirstSeenOrder(t *testing.T) {
	res := resolve(t, testutil.BuildingMarkdown, 0)

	ids := make([]string, 0, 3)
	for _, ident := range res.Identities() {
		ids = append(ids, ident.ID)
	}

	assert.Equal(t, []string{
		"00000000-0000-4000-8000-000000000001",
		"00000000-0000-4000-8000-000000000002",
		"00000000-0000-4000-8000-000000000003",
	}, ids)
}

func TestResolve_LookupAndParent(t *testing.T) {
	res := resolve(t, testutil.ReferenceMarkdown, 0)

	hudson, ok := res.Lookup("mrs hudson")
	require.True(t, ok)
	assert.Equal(t, "person", hudson.Type)
	assert.Equal(t, []int{2}, hudson.Positions)

	sherlock := &res.Entities[1]
	parent, ok := res.Parent(sherlock)
	require.True(t, ok)
	assert.Equal(t, "baker street", parent.Record.Name)

	_, ok = res.Parent(&res.Entities[0])
	assert.False(t, ok)
}

func TestResolve_DoesNotMutateDocument(t *testing.T) {
	doc, err := parser.Parse(testutil.EpisodeMarkdown)
	require.NoError(t, err)

	Resolve(document.Flatten(doc), Options{}, &idgen.Sequential{})

	assert.Equal(t, []string{"title", "runtime"}, doc.Records[0].Properties.Keys())
}

func TestKey(t *testing.T) {
	rec := &document.Record{Depth: 2, Name: "guest"}

	assert.Equal(t, "guest", Key(rec, 4, 1))
	assert.NotEqual(t, "guest", Key(rec, 4, 2))
	assert.NotEqual(t, Key(rec, 4, 2), Key(rec, 5, 2))
}

func TestResolve_OneIdentifierPerIdentity(t *testing.T) {
	text := testutil.NewOutline().
		Heading(1, "Acme", "company").
		Heading(2, "Alice", "employee", testutil.WithProperty("role", "dev")).
		Heading(2, "Bob", "employee", testutil.WithProperty("role", "ops")).
		Heading(1, "Acme", "company", testutil.WithProperty("founded", "1999")).
		Heading(2, "Alice", "employee", testutil.WithProperty("role", "lead")).
		String()

	doc, err := parser.Parse(text)
	require.NoError(t, err)

	gen := testutil.NewMockGenerator(testutil.WithIDs("c1", "e1", "e2"))
	res := Resolve(document.Flatten(doc), Options{}, gen)

	assert.Equal(t, 3, gen.Calls())
	require.Len(t, res.Entities, 5)

	ids := make([]string, len(res.Entities))
	for i, e := range res.Entities {
		ids[i] = e.ID
	}

	assert.Equal(t, []string{"c1", "e1", "e2", "c1", "e1"}, ids)

	for _, pos := range []int{1, 4} {
		role, ok := res.Entities[pos].Properties.Get("role")
		require.True(t, ok)
		assert.Equal(t, "lead", role.Text)
	}

	founded, ok := res.Entities[0].Properties.Get("founded")
	require.True(t, ok)
	assert.Equal(t, "1999", founded.Text)
}
