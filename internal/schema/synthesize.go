package schema

import (
	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/identity"
	"github.com/kyleking/mdschema/internal/idgen"
	"github.com/kyleking/mdschema/internal/infer"
)

// group collects the entities of one sanitized type
type group struct {
	typ        string
	entities   []*identity.Entity
	parentType string
	hasParent  bool
	properties []string
	values     map[string][]document.Value
}

// Build runs the whole pipeline: flatten, resolve identities, synthesize
func Build(doc *document.Document, opts identity.Options, gen idgen.Generator) (*Schema, error) {
	res := identity.Resolve(document.Flatten(doc), opts, gen)
	return Synthesize(res)
}

// Synthesize builds one table per record type from a resolution.
//
// Only the first parent type seen for a record type is modeled. Instances
// nested under a different parent type still carry their parent's
// identifier in the parent column.
func Synthesize(res *identity.Resolution) (*Schema, error) {
	groups := groupByType(res)

	s := &Schema{byType: make(map[string]*Table, len(groups))}

	for _, g := range groups {
		t, err := buildTable(res, g)
		if err != nil {
			return nil, err
		}

		s.Tables = append(s.Tables, t)
		s.byType[g.typ] = t
	}

	return s, nil
}

// groupByType takes rows from survivors but table shape from every resolved
// instance
func groupByType(res *identity.Resolution) []*group {
	var groups []*group

	index := make(map[string]*group)

	for _, e := range res.Survivors() {
		typ := Sanitize(e.Record.Type)

		g, ok := index[typ]
		if !ok {
			g = &group{typ: typ, values: make(map[string][]document.Value)}
			index[typ] = g
			groups = append(groups, g)
		}

		g.entities = append(g.entities, e)
	}

	for pos := range res.Entities {
		e := &res.Entities[pos]
		g := index[Sanitize(e.Record.Type)]

		if parent, ok := res.Parent(e); ok && !g.hasParent {
			g.hasParent = true
			g.parentType = Sanitize(parent.Record.Type)
		}

		for _, key := range e.Properties.Keys() {
			if _, seen := g.values[key]; !seen {
				g.properties = append(g.properties, key)
			}

			v, _ := e.Properties.Get(key)
			g.values[key] = append(g.values[key], v)
		}
	}

	return groups
}

func buildTable(res *identity.Resolution, g *group) (*Table, error) {
	t := &Table{
		Type: g.typ,
		Name: TableName(g.typ),
	}

	if g.hasParent {
		col := ParentColumn(g.typ, g.parentType)
		t.Columns = append(t.Columns, Column{Name: col, Type: infer.Text, Required: true, Role: RoleParent})
		t.Keys.Primary = append(t.Keys.Primary, col)
		t.Keys.Foreign = append(t.Keys.Foreign, ForeignKey{
			Column:    col,
			RefTable:  TableName(g.parentType),
			RefColumn: IDColumn(g.parentType),
		})
	}

	idCol := IDColumn(g.typ)
	t.Columns = append(t.Columns, Column{Name: idCol, Type: infer.Text, Required: true, Role: RoleID})
	t.Keys.Primary = append(t.Keys.Primary, idCol)

	for _, prop := range g.properties {
		values := g.values[prop]

		if !allReferences(values) {
			raw := make([]string, len(values))
			for i, v := range values {
				raw[i] = v.Raw()

				if !v.IsReference() {
					continue
				}

				ident, ok := res.Lookup(v.Text)
				if !ok {
					return nil, errors.NewReferenceError(v.Text)
				}

				raw[i] = ident.ID
			}

			t.Columns = append(t.Columns, Column{
				Name:     ValueColumn(g.typ, prop),
				Type:     infer.Infer(raw),
				Role:     RoleValue,
				Property: prop,
			})

			continue
		}

		var target *identity.Identity

		for _, v := range values {
			ident, ok := res.Lookup(v.Text)
			if !ok {
				return nil, errors.NewReferenceError(v.Text)
			}

			if target == nil {
				target = ident
			}
		}

		refType := Sanitize(target.Type)
		col := ReferenceColumn(g.typ, prop, refType)

		t.Columns = append(t.Columns, Column{
			Name:     col,
			Type:     infer.Text,
			Role:     RoleReference,
			Property: prop,
		})
		t.Keys.Foreign = append(t.Keys.Foreign, ForeignKey{
			Column:    col,
			RefTable:  TableName(refType),
			RefColumn: IDColumn(refType),
		})
	}

	for _, e := range g.entities {
		t.Rows = append(t.Rows, buildRow(res, t.Columns, e))
	}

	return t, nil
}

// buildRow assumes every reference was already checked by buildTable
func buildRow(res *identity.Resolution, columns []Column, e *identity.Entity) []Cell {
	row := make([]Cell, len(columns))

	for i, col := range columns {
		row[i] = NullCell

		switch col.Role {
		case RoleID:
			row[i] = Cell{Text: e.ID}
		case RoleParent:
			if parent, ok := res.Parent(e); ok {
				row[i] = Cell{Text: parent.ID}
			}
		case RoleValue:
			if v, ok := e.Properties.Get(col.Property); ok {
				row[i] = Cell{Text: v.Raw()}

				if ident, found := res.Lookup(v.Text); v.IsReference() && found {
					row[i] = Cell{Text: ident.ID}
				}
			}
		case RoleReference:
			if v, ok := e.Properties.Get(col.Property); ok {
				if ident, found := res.Lookup(v.Text); found {
					row[i] = Cell{Text: ident.ID}
				}
			}
		}
	}

	return row
}

func allReferences(values []document.Value) bool {
	for _, v := range values {
		if !v.IsReference() {
			return false
		}
	}

	return len(values) > 0
}
