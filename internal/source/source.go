// Package source loads documents from disk, choosing a reader by file
// extension
package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/parser"
)

// Kind is a source format
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindJSON     Kind = "json"
	KindHTML     Kind = "html"
)

// KindFromPath picks the source format from a file extension
func KindFromPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return KindMarkdown, nil
	case ".json":
		return KindJSON, nil
	case ".html", ".htm":
		return KindHTML, nil
	default:
		return "", errors.NewUnsupportedFormatError("source", path)
	}
}

// Decode reads a document of the given kind from raw bytes
func Decode(kind Kind, data []byte) (*document.Document, error) {
	switch kind {
	case KindMarkdown:
		return parser.ParseDocument(data)
	case KindJSON:
		doc, err := document.DecodeJSON(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeValidation, "invalid structural JSON document")
		}

		return doc, nil
	case KindHTML:
		md, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeParse, "failed to convert HTML to markdown")
		}

		return parser.ParseDocument([]byte(md))
	default:
		return nil, errors.NewUnsupportedFormatError("source", string(kind))
	}
}

// Load reads and decodes a single file
func Load(path string) (*document.Document, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to read %s", path)
	}

	return Decode(kind, data)
}

// LoadAll loads every path and joins the documents in argument order
func LoadAll(paths []string) (*document.Document, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrTypeValidation, "no source documents given")
	}

	docs := make([]*document.Document, 0, len(paths))

	for _, path := range paths {
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	if len(docs) == 1 {
		return docs[0], nil
	}

	return document.Join(docs...), nil
}
