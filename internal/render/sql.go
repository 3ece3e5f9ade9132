package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kyleking/mdschema/internal/infer"
	"github.com/kyleking/mdschema/internal/schema"
)

// SQLOptions controls SQL output
type SQLOptions struct {
	Indent int
}

// SQL writes a CREATE TABLE statement per table followed by its rows
func SQL(w io.Writer, s *schema.Schema, opts SQLOptions) error {
	bw := bufio.NewWriter(w)
	pad := strings.Repeat(" ", opts.Indent)

	for i, t := range s.Tables {
		if i > 0 {
			bw.WriteString("\n")
		}

		writeCreate(bw, t, pad)

		if len(t.Rows) > 0 {
			bw.WriteString("\n")
			writeInsert(bw, t, pad)
		}
	}

	return bw.Flush()
}

func writeCreate(w *bufio.Writer, t *schema.Table, pad string) {
	lines := make([]string, 0, len(t.Columns)+1+len(t.Keys.Foreign))

	for _, c := range t.Columns {
		line := fmt.Sprintf("%s%s %s", pad, quoteIdent(c.Name), c.Type.SQL())
		if c.Required {
			line += " NOT NULL"
		}

		lines = append(lines, line)
	}

	lines = append(lines, fmt.Sprintf("%sPRIMARY KEY (%s)", pad, quoteIdents(t.Keys.Primary)))

	for _, fk := range t.Keys.Foreign {
		lines = append(lines, fmt.Sprintf("%sFOREIGN KEY (%s) REFERENCES %s (%s)",
			pad, quoteIdent(fk.Column), quoteIdent(fk.RefTable), quoteIdent(fk.RefColumn)))
	}

	fmt.Fprintf(w, "CREATE TABLE IF NOT EXISTS %s (\n%s\n);\n", quoteIdent(t.Name), strings.Join(lines, ",\n"))
}

func writeInsert(w *bufio.Writer, t *schema.Table, pad string) {
	fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES\n", quoteIdent(t.Name), quoteIdents(t.ColumnNames()))

	for i, row := range t.Rows {
		values := make([]string, len(row))
		for j, c := range row {
			values[j] = Literal(c)
		}

		sep := ","
		if i == len(t.Rows)-1 {
			sep = ";"
		}

		fmt.Fprintf(w, "%s(%s)%s\n", pad, strings.Join(values, ", "), sep)
	}
}

// Literal renders a cell as a SQL value: NULL, a bare number or a quoted
// string
func Literal(c schema.Cell) string {
	switch {
	case c.Null:
		return "NULL"
	case infer.IsNumeric(c.Text):
		return c.Text
	default:
		return "'" + strings.ReplaceAll(c.Text, "'", "''") + "'"
	}
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}

	return strings.Join(quoted, ", ")
}
