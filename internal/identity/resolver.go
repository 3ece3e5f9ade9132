// Package identity merges flattened records that describe the same entity.
//
// Records are matched by normalized name. Every record sharing an identity
// key ends up with the same property set: the union of all occurrences in
// document order, later values overwriting earlier ones. This is how a
// document records change over time, and it means merged occurrences are
// indistinguishable apart from depth, type and children.
package identity

import (
	"strconv"

	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/idgen"
)

// Options controls identity matching
type Options struct {
	// UniqueDepth keeps every record at or above this depth distinct, even
	// when names repeat. Such records cannot be referenced by {name}.
	UniqueDepth int
}

// Identity is one logical entity and the positions of its occurrences
type Identity struct {
	Key       string
	ID        string
	Type      string
	Positions []int
}

// Entity is a flattened record after resolution
type Entity struct {
	Position   int
	Record     *document.Record
	Parent     int
	Key        string
	ID         string
	Properties *document.Properties

	identity *Identity
}

// First reports whether this entity is the first occurrence of its identity
func (e *Entity) First() bool {
	return e.Position == e.identity.Positions[0]
}

// Resolution is the result of Resolve
type Resolution struct {
	Entities   []Entity
	identities map[string]*Identity
	order      []string
}

// Key returns the identity key for a record at position pos
func Key(rec *document.Record, pos, uniqueDepth int) string {
	if rec.Depth <= uniqueDepth {
		return rec.Name + "\x00" + strconv.Itoa(pos)
	}

	return rec.Name
}

// Resolve assigns identities to a flattened sequence. The first record seen
// for a key gets a fresh identifier from gen.
func Resolve(seq []document.Entry, opts Options, gen idgen.Generator) *Resolution {
	res := &Resolution{
		Entities:   make([]Entity, len(seq)),
		identities: make(map[string]*Identity),
	}

	bags := make(map[string]*document.Properties)

	for pos, entry := range seq {
		key := Key(entry.Record, pos, opts.UniqueDepth)

		ident, ok := res.identities[key]
		if !ok {
			ident = &Identity{
				Key:  key,
				ID:   gen.NewID(),
				Type: entry.Record.Type,
			}
			res.identities[key] = ident
			res.order = append(res.order, key)
			bags[key] = document.NewProperties()
		}

		ident.Positions = append(ident.Positions, pos)
		bags[key].Overlay(entry.Record.Properties)

		res.Entities[pos] = Entity{
			Position: pos,
			Record:   entry.Record,
			Parent:   entry.Parent,
			Key:      key,
			ID:       ident.ID,
		}
	}

	for pos := range res.Entities {
		e := &res.Entities[pos]
		e.Properties = bags[e.Key].Clone()
		e.identity = res.identities[e.Key]
	}

	return res
}

// Lookup finds an identity by key. Reference markers are looked up by
// their bare normalized name.
func (r *Resolution) Lookup(key string) (*Identity, bool) {
	ident, ok := r.identities[key]
	return ident, ok
}

// Identities returns every identity in first-seen order
func (r *Resolution) Identities() []*Identity {
	out := make([]*Identity, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.identities[key])
	}

	return out
}

// Survivors returns the first occurrence of each identity, in sequence order
func (r *Resolution) Survivors() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for pos := range r.Entities {
		if r.Entities[pos].First() {
			out = append(out, &r.Entities[pos])
		}
	}

	return out
}

// Parent returns the resolved parent of e, if any
func (r *Resolution) Parent(e *Entity) (*Entity, bool) {
	if e.Parent == document.NoParent {
		return nil, false
	}

	return &r.Entities[e.Parent], true
}
