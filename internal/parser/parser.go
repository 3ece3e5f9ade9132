// Package parser builds a record tree from the heading/property markdown
// dialect:
//
//	# 221B Baker Street (building)
//	- house number: 221b
//	## Sherlock (occupant)
//	- forename: Sherlock
//	- landlady: {mrs hudson}
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/errors"
)

var (
	headingPattern   = regexp.MustCompile(`^(#+)\s+(.*)$`)
	typedNamePattern = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)$`)
	propertyPattern  = regexp.MustCompile(`^(?:-\s*)?([^:]+):(.*)$`)
)

// state is the cursor threaded through a single parse
type state struct {
	doc      *document.Document
	parents  []int
	previous int
}

// ParseDocument extracts optional YAML front matter and parses the body
func ParseDocument(src []byte) (*document.Document, error) {
	var fm document.FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeParse, "invalid front matter")
	}

	doc, err := Parse(string(body))
	if err != nil {
		return nil, err
	}

	doc.FrontMatter = fm

	return doc, nil
}

// Parse builds the record forest from markdown text. Lines that are neither
// headings nor properties are ignored, as are properties before the first
// heading.
func Parse(text string) (*document.Document, error) {
	s := &state{
		doc:      document.New(),
		previous: document.NoParent,
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if err := s.heading(line, len(m[1]), m[2]); err != nil {
				return nil, err
			}

			continue
		}

		if m := propertyPattern.FindStringSubmatch(line); m != nil {
			s.property(m[1], m[2])
		}
	}

	return s.doc, nil
}

func (s *state) heading(line string, depth int, rest string) error {
	m := typedNamePattern.FindStringSubmatch(strings.TrimSpace(rest))
	if m == nil || strings.TrimSpace(m[2]) == "" {
		return errors.NewParseError(line, "heading is missing a parenthesized type")
	}

	name := document.Normalize(m[1])
	if name == "" {
		return errors.NewParseError(line, "heading has no name")
	}

	parent, err := s.parentFor(line, depth)
	if err != nil {
		return err
	}

	typ := document.Normalize(m[2])

	// a repeated heading under the same parent continues the existing record
	if parent != document.NoParent {
		if existing := s.doc.ChildNamed(parent, name); existing >= 0 {
			s.previous = existing
			return nil
		}
	}

	idx := s.doc.Add(document.Record{
		Depth: depth,
		Name:  name,
		Type:  typ,
	}, parent)

	s.parents = append(s.parents, parent)
	s.previous = idx

	return nil
}

// parentFor applies the single-step placement rules relative to the
// previous heading: same depth is a sibling, shallower goes two levels up,
// deeper is a child. Jumps those rules cannot place are rejected rather
// than attached to the wrong ancestor.
func (s *state) parentFor(line string, depth int) (int, error) {
	if depth == 1 {
		return document.NoParent, nil
	}

	if s.previous == document.NoParent {
		return 0, errors.NewParseError(line,
			fmt.Sprintf("heading at depth %d has no enclosing heading", depth))
	}

	prev := s.doc.Records[s.previous]

	var parent int

	switch {
	case depth == prev.Depth:
		parent = s.parents[s.previous]
	case depth < prev.Depth:
		up := s.parents[s.previous]
		if up == document.NoParent {
			return 0, errors.NewParseError(line,
				fmt.Sprintf("dedent from depth %d to %d has no ancestor to attach to", prev.Depth, depth))
		}

		parent = s.parents[up]
	default:
		parent = s.previous
	}

	if parent == document.NoParent || s.doc.Records[parent].Depth >= depth {
		return 0, errors.NewParseError(line,
			fmt.Sprintf("dedent from depth %d to %d skips levels and cannot be placed", prev.Depth, depth))
	}

	return parent, nil
}

func (s *state) property(name, value string) {
	if s.previous == document.NoParent {
		return
	}

	key := document.Normalize(name)
	if key == "" {
		return
	}

	s.doc.Record(s.previous).Properties.Set(key, document.ParseValue(value))
}
