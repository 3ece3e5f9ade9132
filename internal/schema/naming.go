package schema

import (
	"regexp"

	"github.com/gertd/go-pluralize"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	plurals     = pluralize.NewClient()
)

// Sanitize replaces every character that is not a letter, digit or
// underscore with an underscore
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// TableName is the plural of the sanitized type name
func TableName(typ string) string {
	return plurals.Plural(Sanitize(typ))
}

// IDColumn names the identifier column of a type
func IDColumn(typ string) string {
	return Sanitize(typ) + "_uuid"
}

// ParentColumn names the column linking typ to its parent type
func ParentColumn(typ, parentType string) string {
	return Sanitize(typ) + "_" + Sanitize(parentType) + "_uuid"
}

// ValueColumn names the column holding a plain property
func ValueColumn(typ, property string) string {
	return Sanitize(typ) + "_" + Sanitize(property)
}

// ReferenceColumn names the column holding a {identity} reference
func ReferenceColumn(typ, property, refType string) string {
	return Sanitize(typ) + "_" + Sanitize(property) + "_" + Sanitize(refType) + "_uuid"
}
