package document

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Node is the nested structural exchange form of a record. It carries no
// parent link.
type Node struct {
	Depth      int         `json:"depth"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Children   []*Node     `json:"children"`
	Properties *Properties `json:"properties"`
}

// Nodes converts the arena into nested nodes
func (d *Document) Nodes() []*Node {
	out := make([]*Node, 0, len(d.Roots))
	for _, root := range d.Roots {
		out = append(out, d.node(root))
	}

	return out
}

func (d *Document) node(idx int) *Node {
	rec := d.Records[idx]

	n := &Node{
		Depth:      rec.Depth,
		Name:       rec.Name,
		Type:       rec.Type,
		Children:   make([]*Node, 0, len(rec.Children)),
		Properties: rec.Properties.Clone(),
	}

	for _, child := range rec.Children {
		n.Children = append(n.Children, d.node(child))
	}

	return n
}

// FromNodes builds a document from nested nodes. A missing depth is taken
// from the nesting level; roots must sit at depth 1 and every child must be
// deeper than its parent.
func FromNodes(nodes []*Node) (*Document, error) {
	doc := New()

	var add func(n *Node, parent, level int) error
	add = func(n *Node, parent, level int) error {
		if n == nil {
			return nil
		}

		depth := n.Depth
		if depth == 0 {
			depth = level
		}

		if parent == NoParent && depth != 1 {
			return fmt.Errorf("root node %q has depth %d, want 1", n.Name, depth)
		}

		if parent != NoParent && depth <= doc.Records[parent].Depth {
			return fmt.Errorf("node %q at depth %d is not deeper than its parent", n.Name, depth)
		}

		idx := doc.Add(Record{
			Depth:      depth,
			Name:       Normalize(n.Name),
			Type:       Normalize(n.Type),
			Properties: n.Properties.Clone(),
		}, parent)

		for _, child := range n.Children {
			if err := add(child, idx, depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	for _, n := range nodes {
		if err := add(n, NoParent, 1); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// EncodeJSON writes the document in the structural exchange format
func EncodeJSON(w io.Writer, doc *Document, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	return enc.Encode(doc.Nodes())
}

// DecodeJSON reads a document in the structural exchange format
func DecodeJSON(r io.Reader) (*Document, error) {
	var nodes []*Node
	if err := json.NewDecoder(r).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	return FromNodes(nodes)
}
