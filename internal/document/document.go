// Package document holds the record tree parsed from a markdown document.
//
// Records live in an arena owned by Document and refer to each other by
// index. Parent links are never stored on a Record: the parser keeps its own
// cursor and Flatten reports parents as positions in the flattened sequence,
// so anything exported from a Document is a plain tree.
package document

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoParent marks a root entry
const NoParent = -1

// Record is one heading and the properties listed beneath it
type Record struct {
	Depth      int
	Name       string
	Type       string
	Properties *Properties
	Children   []int
}

// FrontMatter carries per-document options declared in a YAML header
type FrontMatter struct {
	UniqueDepth *int `yaml:"unique_depth" json:"unique_depth,omitempty"`
}

// Document is an ordered forest of records
type Document struct {
	Records     []Record
	Roots       []int
	FrontMatter FrontMatter
}

// New returns an empty document
func New() *Document {
	return &Document{}
}

// Record returns the record stored at index i. The pointer is only valid
// until the next Add.
func (d *Document) Record(i int) *Record {
	return &d.Records[i]
}

// Add appends rec to the arena, attaching it under parent (or as a root when
// parent is NoParent), and returns its index
func (d *Document) Add(rec Record, parent int) int {
	if rec.Properties == nil {
		rec.Properties = NewProperties()
	}

	idx := len(d.Records)
	d.Records = append(d.Records, rec)

	if parent == NoParent {
		d.Roots = append(d.Roots, idx)
	} else {
		d.Records[parent].Children = append(d.Records[parent].Children, idx)
	}

	return idx
}

// ChildNamed returns the index of the child of parent with the given
// normalized name, or -1. With parent NoParent the roots are searched.
func (d *Document) ChildNamed(parent int, name string) int {
	siblings := d.Roots
	if parent != NoParent {
		siblings = d.Records[parent].Children
	}

	for _, idx := range siblings {
		if d.Records[idx].Name == name {
			return idx
		}
	}

	return -1
}

// Len returns the number of records in the arena
func (d *Document) Len() int {
	return len(d.Records)
}

// Join concatenates documents into a single forest, keeping root order.
// The first document that declares a unique depth wins.
func Join(docs ...*Document) *Document {
	out := New()

	for _, doc := range docs {
		if doc == nil {
			continue
		}

		if out.FrontMatter.UniqueDepth == nil && doc.FrontMatter.UniqueDepth != nil {
			depth := *doc.FrontMatter.UniqueDepth
			out.FrontMatter.UniqueDepth = &depth
		}

		for _, root := range doc.Roots {
			copySubtree(out, doc, root, NoParent)
		}
	}

	return out
}

func copySubtree(dst, src *Document, idx, parent int) {
	rec := src.Records[idx]

	newIdx := dst.Add(Record{
		Depth:      rec.Depth,
		Name:       rec.Name,
		Type:       rec.Type,
		Properties: rec.Properties.Clone(),
	}, parent)

	for _, child := range rec.Children {
		copySubtree(dst, src, child, newIdx)
	}
}

// Normalize lowercases s, trims it and collapses inner whitespace
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DisplayName reverses normalization for output: "221b baker street"
// becomes "221b Baker Street"
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}
