package testutil

import (
	"fmt"
	"strings"
)

// HeadingOption is a functional option for configuring an outline heading
type HeadingOption func(*heading)

type heading struct {
	depth      int
	name       string
	typ        string
	properties [][2]string
}

// WithProperty adds a "- key: value" line under the heading
func WithProperty(key, value string) HeadingOption {
	return func(h *heading) {
		h.properties = append(h.properties, [2]string{key, value})
	}
}

// WithReference adds a property whose value is a {name} marker
func WithReference(key, target string) HeadingOption {
	return WithProperty(key, "{"+target+"}")
}

// Outline builds markdown heading outlines for tests
type Outline struct {
	frontMatter []string
	headings    []heading
}

// NewOutline starts an empty outline
func NewOutline() *Outline {
	return &Outline{}
}

// FrontMatter adds a "key: value" line to the YAML front matter block
func (o *Outline) FrontMatter(key string, value interface{}) *Outline {
	o.frontMatter = append(o.frontMatter, fmt.Sprintf("%s: %v", key, value))
	return o
}

// Heading appends a "## name (type)" heading at the given depth
func (o *Outline) Heading(depth int, name, typ string, opts ...HeadingOption) *Outline {
	h := heading{depth: depth, name: name, typ: typ}

	for _, opt := range opts {
		opt(&h)
	}

	o.headings = append(o.headings, h)

	return o
}

// String renders the outline
func (o *Outline) String() string {
	var b strings.Builder

	if len(o.frontMatter) > 0 {
		b.WriteString("---\n")

		for _, line := range o.frontMatter {
			b.WriteString(line + "\n")
		}

		b.WriteString("---\n")
	}

	for i, h := range o.headings {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "%s %s (%s)\n", strings.Repeat("#", h.depth), h.name, h.typ)

		for _, p := range h.properties {
			fmt.Fprintf(&b, "- %s: %s\n", p[0], p[1])
		}
	}

	return b.String()
}

// Bytes renders the outline as bytes
func (o *Outline) Bytes() []byte {
	return []byte(o.String())
}
