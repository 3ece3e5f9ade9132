package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ettle/strcase"

	"github.com/kyleking/mdschema/internal/schema"
)

// TypeScriptOptions controls declaration output
type TypeScriptOptions struct {
	Indent int
	Export bool
}

// TypeScript writes one interface per table. Key columns are required,
// every other property is optional.
func TypeScript(w io.Writer, s *schema.Schema, opts TypeScriptOptions) error {
	bw := bufio.NewWriter(w)
	pad := strings.Repeat(" ", opts.Indent)

	prefix := ""
	if opts.Export {
		prefix = "export "
	}

	for i, t := range s.Tables {
		if i > 0 {
			bw.WriteString("\n")
		}

		fmt.Fprintf(bw, "%sinterface %s {\n", prefix, InterfaceName(t.Type))

		for _, c := range t.Columns {
			optional := "?"
			if c.Key() {
				optional = ""
			}

			fmt.Fprintf(bw, "%s%s%s: %s;\n", pad, c.Name, optional, c.Type.TypeScript())
		}

		bw.WriteString("}\n")
	}

	return bw.Flush()
}

// InterfaceName converts a sanitized type name to PascalCase
func InterfaceName(typ string) string {
	return strcase.ToPascal(typ)
}
