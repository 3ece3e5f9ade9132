package document

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds: show > (pilot > scene), finale ; and a second root
func sample() *Document {
	doc := New()
	show := doc.Add(Record{Depth: 1, Name: "show", Type: "series"}, NoParent)
	pilot := doc.Add(Record{Depth: 2, Name: "pilot", Type: "episode"}, show)
	doc.Add(Record{Depth: 3, Name: "cold open", Type: "scene"}, pilot)
	doc.Add(Record{Depth: 2, Name: "finale", Type: "episode"}, show)
	doc.Add(Record{Depth: 1, Name: "spinoff", Type: "series"}, NoParent)
	doc.Record(pilot).Properties.Set("rating", Lit("7"))

	return doc
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw      string
		expected Value
	}{
		{"plain", Lit("plain")},
		{"  padded  ", Lit("padded")},
		{"{Mrs Hudson}", Ref("mrs hudson")},
		{"{ x }", Ref("x")},
		{"{a}{b}", Lit("{a}{b}")},
		{"{}", Lit("{}")},
		{"prefix {a}", Lit("prefix {a}")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseValue(tt.raw))
		})
	}
}

func TestValueRaw(t *testing.T) {
	assert.Equal(t, "{pilot}", Ref("Pilot").Raw())
	assert.Equal(t, "42", Lit("42").Raw())
	assert.True(t, IsMarker(" {pilot} "))
	assert.False(t, IsMarker("pilot"))
}

func TestProperties_OrderAndOverwrite(t *testing.T) {
	var p Properties

	p.Set("b", Lit("1"))
	p.Set("a", Lit("2"))
	p.Set("b", Lit("3"))

	assert.Equal(t, []string{"b", "a"}, p.Keys())
	assert.Equal(t, 2, p.Len())

	v, ok := p.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", v.Text)

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestProperties_CloneIsDeep(t *testing.T) {
	p := NewProperties()
	p.Set("x", Lit("1"))

	c := p.Clone()
	c.Set("x", Lit("2"))
	c.Set("y", Lit("3"))

	v, _ := p.Get("x")
	assert.Equal(t, "1", v.Text)
	assert.Equal(t, 1, p.Len())

	var nilProps *Properties
	assert.Equal(t, 0, nilProps.Clone().Len())
}

func TestProperties_OverlayLaterWins(t *testing.T) {
	base := NewProperties()
	base.Set("title", Lit("Pilot"))
	base.Set("runtime", Lit("42"))

	later := NewProperties()
	later.Set("title", Lit("Pilot (Director's Cut)"))
	later.Set("aired", Lit("1"))

	base.Overlay(later)

	assert.Equal(t, []string{"title", "runtime", "aired"}, base.Keys())
	title, _ := base.Get("title")
	assert.Equal(t, "Pilot (Director's Cut)", title.Text)
}

func TestProperties_JSONKeepsOrder(t *testing.T) {
	p := NewProperties()
	p.Set("zeta", Lit("1"))
	p.Set("alpha", Ref("pilot"))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":"1","alpha":"{pilot}"}`, string(data))
	assert.Equal(t, `{"zeta":"1","alpha":"{pilot}"}`, string(data))

	var back Properties
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"zeta", "alpha"}, back.Keys())

	alpha, _ := back.Get("alpha")
	assert.True(t, alpha.IsReference())
}

func TestProperties_UnmarshalScalars(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"Count": 12, "ok": true, "no": false, "gone": null, "x": "y"}`), &p))

	assert.Equal(t, []string{"count", "ok", "no", "x"}, p.Keys())

	count, _ := p.Get("count")
	assert.Equal(t, "12", count.Text)

	ok, _ := p.Get("ok")
	assert.Equal(t, "1", ok.Text)

	no, _ := p.Get("no")
	assert.Equal(t, "0", no.Text)

	assert.Error(t, json.Unmarshal([]byte(`{"nested": {"a": 1}}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
}

func TestFlatten_PreorderWithParents(t *testing.T) {
	doc := sample()
	seq := Flatten(doc)

	names := make([]string, len(seq))
	for i, e := range seq {
		names[i] = e.Record.Name
	}

	assert.Equal(t, []string{"show", "pilot", "cold open", "finale", "spinoff"}, names)
	assert.Equal(t, []int{NoParent, 0, 1, 0, NoParent}, []int{
		seq[0].Parent, seq[1].Parent, seq[2].Parent, seq[3].Parent, seq[4].Parent,
	})

	for pos, e := range seq {
		if e.Parent != NoParent {
			assert.Less(t, e.Parent, pos)
			assert.Less(t, seq[e.Parent].Record.Depth, e.Record.Depth)
		}
	}
}

func TestChildNamed(t *testing.T) {
	doc := sample()

	assert.Equal(t, 1, doc.ChildNamed(0, "pilot"))
	assert.Equal(t, -1, doc.ChildNamed(0, "cold open"))
	assert.Equal(t, 4, doc.ChildNamed(NoParent, "spinoff"))
}

func TestJoin(t *testing.T) {
	depth := 2
	second := New()
	second.FrontMatter.UniqueDepth = &depth
	second.Add(Record{Depth: 1, Name: "show", Type: "series"}, NoParent)

	joined := Join(sample(), nil, second)

	require.Len(t, joined.Roots, 3)
	assert.Equal(t, 6, joined.Len())
	assert.Equal(t, "show", joined.Records[joined.Roots[2]].Name)
	require.NotNil(t, joined.FrontMatter.UniqueDepth)
	assert.Equal(t, 2, *joined.FrontMatter.UniqueDepth)

	// the joined copy owns its properties
	joined.Record(1).Properties.Set("rating", Lit("1"))
	original := sample()
	rating, _ := original.Record(1).Properties.Get("rating")
	assert.Equal(t, "7", rating.Text)
}

func TestExchange_RoundTrip(t *testing.T) {
	doc := sample()

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, doc, 2))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"depth\": 1,"))
	assert.NotContains(t, buf.String(), "parent")

	back, err := DecodeJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, doc.Nodes(), back.Nodes())
}

func TestFromNodes_Validation(t *testing.T) {
	_, err := FromNodes([]*Node{{Depth: 2, Name: "x", Type: "t"}})
	assert.Error(t, err)

	_, err = FromNodes([]*Node{{Depth: 1, Name: "x", Type: "t", Children: []*Node{{Depth: 1, Name: "y", Type: "t"}}}})
	assert.Error(t, err)

	doc, err := FromNodes([]*Node{{Name: "X", Type: "T", Children: []*Node{{Name: "Y", Type: "T"}}}})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Records[1].Depth)
	assert.Equal(t, "x", doc.Records[0].Name)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestNormalizeAndDisplayName(t *testing.T) {
	assert.Equal(t, "221b baker street", Normalize("  221B   Baker Street "))
	assert.Equal(t, "Baker Street", DisplayName("baker street"))
	assert.Equal(t, "Mrs Hudson", DisplayName(Normalize("MRS HUDSON")))
}
