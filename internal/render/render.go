// Package render writes synthesized schemas and record trees as text
package render

import (
	"path/filepath"
	"strings"

	"github.com/kyleking/mdschema/internal/errors"
)

// Format is an output format
type Format string

const (
	FormatSQL        Format = "sql"
	FormatTypeScript Format = "ts"
	FormatJSON       Format = "json"
	FormatMarkdown   Format = "md"
	FormatHTML       Format = "html"
)

// Formats lists every supported output format
var Formats = []Format{FormatSQL, FormatTypeScript, FormatJSON, FormatMarkdown, FormatHTML}

// NeedsSchema reports whether the format renders the synthesized schema
// rather than the record tree
func (f Format) NeedsSchema() bool {
	return f == FormatSQL || f == FormatTypeScript
}

// ParseFormat accepts a format name, with or without a leading dot
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "sql":
		return FormatSQL, nil
	case "ts", "typescript", "d.ts":
		return FormatTypeScript, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", errors.NewUnsupportedFormatError("destination", name)
	}
}

// FormatFromPath picks the format from a destination file extension
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.NewUnsupportedFormatError("destination", path)
	}

	return ParseFormat(ext)
}
