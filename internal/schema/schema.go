// Package schema turns resolved records into relational tables: columns
// with inferred types, primary and foreign keys, and one row per entity.
package schema

import (
	"github.com/kyleking/mdschema/internal/infer"
)

// Role says where a column's values come from
type Role int

const (
	RoleID Role = iota
	RoleParent
	RoleValue
	RoleReference
)

// Column is one table column
type Column struct {
	Name     string
	Type     infer.Type
	Required bool
	Role     Role
	// Property is the source field for value and reference columns
	Property string
}

// Key reports whether the column is part of the primary key
func (c Column) Key() bool {
	return c.Role == RoleID || c.Role == RoleParent
}

// ForeignKey links Column to RefColumn in RefTable
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Keys holds a table's primary key and foreign keys
type Keys struct {
	Primary []string
	Foreign []ForeignKey
}

// Cell is one row value. Text holds the literal or resolved identifier.
type Cell struct {
	Null bool
	Text string
}

// NullCell is an absent value
var NullCell = Cell{Null: true}

// Table is the synthesized definition and contents of one record type
type Table struct {
	Type    string
	Name    string
	Columns []Column
	Keys    Keys
	Rows    [][]Cell
}

// ColumnIndex returns the position of the named column
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}

	return -1, false
}

// ColumnNames lists column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// Schema is every table, in the order their types were first seen
type Schema struct {
	Tables []*Table
	byType map[string]*Table
}

// Table returns the table for a type name
func (s *Schema) Table(typ string) (*Table, bool) {
	t, ok := s.byType[Sanitize(typ)]
	return t, ok
}
