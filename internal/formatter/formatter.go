package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gertd/go-pluralize"

	"github.com/kyleking/mdschema/internal/identity"
	"github.com/kyleking/mdschema/internal/schema"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatLong  OutputFormat = "long"
	FormatShort OutputFormat = "short"
)

// Formatter handles table and identity summaries for inspection
type Formatter struct {
	plurals *pluralize.Client
}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{plurals: pluralize.NewClient()}
}

// FormatTable formats one synthesized table
func (f *Formatter) FormatTable(t *schema.Table, format OutputFormat) string {
	switch format {
	case FormatLong:
		return f.formatLong(t)
	default:
		return f.formatShort(t)
	}
}

// formatLong lists every column with its type and constraints, then keys
func (f *Formatter) formatLong(t *schema.Table) string {
	lines := []string{
		fmt.Sprintf("%s  (type: %s)", t.Name, t.Type),
		"Columns:",
	}

	width := 0
	for _, c := range t.Columns {
		width = max(width, len(c.Name))
	}

	for _, c := range t.Columns {
		parts := []string{fmt.Sprintf("  %-*s  %s", width, c.Name, c.Type.SQL())}

		if c.Required {
			parts = append(parts, "NOT NULL")
		}

		if c.Key() {
			parts = append(parts, "KEY")
		}

		if c.Property != "" {
			parts = append(parts, fmt.Sprintf("<- %s", c.Property))
		}

		lines = append(lines, strings.Join(parts, "  "))
	}

	lines = append(lines, "Primary Key: "+strings.Join(t.Keys.Primary, ", "))

	if len(t.Keys.Foreign) > 0 {
		lines = append(lines, "Foreign Keys:")
		for _, fk := range t.Keys.Foreign {
			lines = append(lines, fmt.Sprintf("  %s -> %s.%s", fk.Column, fk.RefTable, fk.RefColumn))
		}
	}

	lines = append(lines, "Rows: "+f.formatInt(len(t.Rows)))

	return strings.Join(lines, "\n")
}

// formatShort is a single summary line
func (f *Formatter) formatShort(t *schema.Table) string {
	return fmt.Sprintf("%s (%s)  %s  %s  parent: %s",
		t.Name, t.Type,
		f.count(len(t.Columns), "column"),
		f.count(len(t.Rows), "row"),
		ParentTable(t))
}

// FormatIdentity describes an identity and where it occurs
func (f *Formatter) FormatIdentity(ident *identity.Identity) string {
	name := ident.Key
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i] + " #" + name[i+1:]
	}

	positions := make([]string, len(ident.Positions))
	for i, p := range ident.Positions {
		positions[i] = strconv.Itoa(p)
	}

	return fmt.Sprintf("%s (%s)  %s  at %s",
		name, ident.Type,
		f.count(len(ident.Positions), "occurrence"),
		strings.Join(positions, ", "))
}

// ParentTable names the table a table nests under, or "-"
func ParentTable(t *schema.Table) string {
	for _, c := range t.Columns {
		if c.Role != schema.RoleParent {
			continue
		}

		for _, fk := range t.Keys.Foreign {
			if fk.Column == c.Name {
				return fk.RefTable
			}
		}
	}

	return "-"
}

func (f *Formatter) count(n int, noun string) string {
	return f.plurals.Pluralize(noun, n, true)
}

// formatInt formats an integer, returning "?" for negative values (unknown)
func (f *Formatter) formatInt(value int) string {
	if value < 0 {
		return "?"
	}

	return strconv.Itoa(value)
}
