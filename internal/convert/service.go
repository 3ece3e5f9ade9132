// Package convert runs the load, resolve, synthesize and render pipeline
// behind the convert and inspect commands
package convert

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/kyleking/mdschema/internal/config"
	"github.com/kyleking/mdschema/internal/document"
	"github.com/kyleking/mdschema/internal/errors"
	"github.com/kyleking/mdschema/internal/identity"
	"github.com/kyleking/mdschema/internal/idgen"
	"github.com/kyleking/mdschema/internal/logging"
	"github.com/kyleking/mdschema/internal/render"
	"github.com/kyleking/mdschema/internal/schema"
	"github.com/kyleking/mdschema/internal/source"
)

const outputFilePerm = 0644

// Request describes one conversion
type Request struct {
	Sources []string
	// Destination is a file path; empty writes to the service's output
	Destination string
	// Format overrides the format implied by Destination
	Format string
	// UniqueDepth overrides front matter and configuration when set
	UniqueDepth *int
}

// Result is what a conversion produced
type Result struct {
	Document    *document.Document
	Resolution  *identity.Resolution
	Schema      *schema.Schema
	Format      render.Format
	UniqueDepth int
	Destination string
	Bytes       int
}

// Service converts documents using one configuration
type Service struct {
	cfg    *config.Config
	logger *logging.Logger
	gen    idgen.Generator
	out    io.Writer
}

// NewService builds a service, choosing the identifier generator from cfg
func NewService(cfg *config.Config, logger *logging.Logger) (*Service, error) {
	gen, err := idgen.FromName(cfg.Schema.IDGenerator, cfg.Schema.Seed)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), "schema.id_generator")
	}

	if logger == nil {
		logger = logging.Discard()
	}

	return &Service{cfg: cfg, logger: logger, gen: gen, out: os.Stdout}, nil
}

// WithGenerator replaces the identifier generator
func (s *Service) WithGenerator(gen idgen.Generator) *Service {
	s.gen = gen
	return s
}

// WithOutput replaces the writer used when a request has no destination
func (s *Service) WithOutput(w io.Writer) *Service {
	s.out = w
	return s
}

// UniqueDepth picks the effective unique depth: an explicit override, then
// the document's front matter, then configuration
func (s *Service) UniqueDepth(doc *document.Document, override *int) int {
	switch {
	case override != nil:
		if fm := doc.FrontMatter.UniqueDepth; fm != nil && *fm != *override {
			s.logger.Warnf("unique depth %d overrides front matter value %d", *override, *fm)
		}

		return *override
	case doc.FrontMatter.UniqueDepth != nil:
		return *doc.FrontMatter.UniqueDepth
	default:
		return s.cfg.Schema.UniqueDepth
	}
}

// Format picks the output format for a request
func (s *Service) Format(req Request) (render.Format, error) {
	switch {
	case req.Format != "":
		return render.ParseFormat(req.Format)
	case req.Destination != "":
		return render.FormatFromPath(req.Destination)
	default:
		return render.ParseFormat(s.cfg.Output.DefaultFormat)
	}
}

// Load reads and joins the request's sources
func (s *Service) Load(ctx context.Context, sources []string) (*document.Document, error) {
	var doc *document.Document

	err := s.logger.Stage("load", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.logger.Debugf("loading %d source(s)", len(sources))

		var err error

		doc, err = source.LoadAll(sources)
		if err != nil {
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"sources": len(sources),
			"records": doc.Len(),
		}).Debug("documents loaded")

		return nil
	})

	return doc, err
}

// Analyze resolves identities and synthesizes the schema for doc
func (s *Service) Analyze(ctx context.Context, doc *document.Document, uniqueDepth int) (*identity.Resolution, *schema.Schema, error) {
	var (
		res *identity.Resolution
		sch *schema.Schema
	)

	err := s.logger.Stage("resolve", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		res = identity.Resolve(document.Flatten(doc), identity.Options{UniqueDepth: uniqueDepth}, s.gen)

		s.logger.WithFields(map[string]interface{}{
			"occurrences":  len(res.Entities),
			"identities":   len(res.Identities()),
			"unique_depth": uniqueDepth,
		}).Debug("identities resolved")

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.logger.Stage("synthesize", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error

		sch, err = schema.Synthesize(res)
		if err != nil {
			return err
		}

		s.logger.WithField("tables", len(sch.Tables)).Debug("schema synthesized")

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return res, sch, nil
}

// Render writes doc or sch in the given format
func (s *Service) Render(w io.Writer, format render.Format, doc *document.Document, sch *schema.Schema) error {
	indent := s.cfg.Output.Indent

	switch format {
	case render.FormatSQL:
		return render.SQL(w, sch, render.SQLOptions{Indent: indent})
	case render.FormatTypeScript:
		return render.TypeScript(w, sch, render.TypeScriptOptions{
			Indent: indent,
			Export: s.cfg.Output.DeclarationExport,
		})
	case render.FormatJSON:
		return render.JSON(w, doc, indent)
	case render.FormatMarkdown:
		return render.Markdown(w, doc)
	case render.FormatHTML:
		return render.HTML(w, doc)
	default:
		return errors.NewUnsupportedFormatError("destination", string(format))
	}
}

// Run converts the request's sources into its destination. Nothing is
// written unless every stage succeeds.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	format, err := s.Format(req)
	if err != nil {
		return nil, err
	}

	doc, err := s.Load(ctx, req.Sources)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Document:    doc,
		Format:      format,
		UniqueDepth: s.UniqueDepth(doc, req.UniqueDepth),
		Destination: req.Destination,
	}

	if format.NeedsSchema() {
		result.Resolution, result.Schema, err = s.Analyze(ctx, doc, result.UniqueDepth)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer

	err = s.logger.Stage("render", func() error {
		return s.Render(&buf, format, doc, result.Schema)
	})
	if err != nil {
		return nil, err
	}

	result.Bytes = buf.Len()

	if err := s.write(req.Destination, buf.Bytes()); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"format":      string(format),
		"bytes":       result.Bytes,
		"destination": displayDestination(req.Destination),
	}).Info("conversion complete")

	return result, nil
}

func (s *Service) write(destination string, data []byte) error {
	if destination == "" {
		if _, err := s.out.Write(data); err != nil {
			return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to write output")
		}

		return nil
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to create %s", dir)
		}
	}

	if err := os.WriteFile(destination, data, outputFilePerm); err != nil {
		return errors.Wrapf(err, errors.ErrTypeFileSystem, "failed to write %s", destination)
	}

	s.logger.Infof("wrote %s", destination)

	return nil
}

func displayDestination(destination string) string {
	if destination == "" {
		return "stdout"
	}

	return destination
}
