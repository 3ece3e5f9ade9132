package render

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/kyleking/mdschema/internal/document"
)

// JSON writes the record tree in the structural exchange format
func JSON(w io.Writer, doc *document.Document, indent int) error {
	return document.EncodeJSON(w, doc, indent)
}

// Markdown pretty-prints the record tree. Parsing the output yields the
// same tree.
func Markdown(w io.Writer, doc *document.Document) error {
	bw := bufio.NewWriter(w)

	first := true

	var visit func(idx int)
	visit = func(idx int) {
		rec := doc.Records[idx]

		if !first {
			bw.WriteString("\n")
		}

		first = false

		fmt.Fprintf(bw, "%s %s (%s)\n", strings.Repeat("#", rec.Depth), document.DisplayName(rec.Name), rec.Type)

		for _, key := range rec.Properties.Keys() {
			v, _ := rec.Properties.Get(key)
			fmt.Fprintf(bw, "- %s: %s\n", key, v.Raw())
		}

		for _, child := range rec.Children {
			visit(child)
		}
	}

	for _, root := range doc.Roots {
		visit(root)
	}

	return bw.Flush()
}

// HTML renders the pretty-printed markdown as a standalone page
func HTML(w io.Writer, doc *document.Document) error {
	var md bytes.Buffer
	if err := Markdown(&md, doc); err != nil {
		return err
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := engine.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("markdown render: %w", err)
	}

	title := "Document"
	if len(doc.Roots) > 0 {
		title = document.DisplayName(doc.Records[doc.Roots[0]].Name)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.String())

	return err
}
