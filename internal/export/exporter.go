// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export converts a presentation snapshot into downloadable
// artifacts. Each format is an Exporter registered in a Registry; the
// Pipeline validates input, runs the exporter with failure containment,
// and falls back to the native JSON format when a richer encoder fails.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"deckpress/internal/models"
	"deckpress/internal/slug"
)

// Format names an export target.
type Format string

const (
	FormatJSON Format = "json"
	FormatPPTX Format = "pptx"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatRTF  Format = "rtf"
	FormatTXT  Format = "txt"
	FormatODP  Format = "odp"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Job is the input of one export. Document is a private copy owned by the
// exporter for the duration of the call.
type Job struct {
	Document models.Document
	Filename string // base name without extension
}

// Artifact is a finished export.
type Artifact struct {
	Filename     string
	ContentType  string
	Data         []byte
	Format       Format
	Pages        int
	FallbackFrom Format // set when a JSON fallback replaced the requested format
}

// Exporter converts a Job into an Artifact. Implementations are stateless
// across calls.
type Exporter interface {
	Format() Format
	Extension() string
	ContentType() string
	Export(ctx context.Context, job Job) (*Artifact, error)
}

// Registry maps formats to exporters.
type Registry struct {
	mu        sync.RWMutex
	exporters map[Format]Exporter
}

// NewRegistry creates a registry holding exps.
func NewRegistry(exps ...Exporter) *Registry {
	r := &Registry{exporters: make(map[Format]Exporter)}
	for _, e := range exps {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the exporter for e.Format().
func (r *Registry) Register(e Exporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[e.Format()] = e
}

// Lookup returns the exporter for f.
func (r *Registry) Lookup(f Format) (Exporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exporters[f]
	return e, ok
}

// Formats lists the registered formats in name order.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat normalises a user-supplied format name.
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch s {
	case "jpg":
		return FormatJPEG
	case "text":
		return FormatTXT
	case "htm":
		return FormatHTML
	}
	return Format(s)
}

// SafeBaseName picks the artifact base name from the caller's filename,
// then the document title.
func SafeBaseName(filename, title string) string {
	return slug.Filename(filename, title)
}

// Pipeline runs exports against a registry.
type Pipeline struct {
	registry *Registry
	logger   *slog.Logger
}

// NewPipeline creates a pipeline. The registry must contain a JSON
// exporter for the fallback path.
func NewPipeline(r *Registry, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: r, logger: logger}
}

// Registry returns the pipeline's registry.
func (p *Pipeline) Registry() *Registry { return p.registry }

// Export converts doc into format. When the requested encoder fails the
// document is exported as JSON instead and Artifact.FallbackFrom names the
// failed format; the encoder error is logged. Partial output is never
// returned.
func (p *Pipeline) Export(ctx context.Context, doc models.Document, filename string, format Format) (*Artifact, error) {
	if len(doc.Slides) == 0 {
		return nil, EmptyInputError{}
	}
	exp, ok := p.registry.Lookup(format)
	if !ok {
		return nil, &ValidationError{Field: "format", Msg: fmt.Sprintf("unsupported format %q", format)}
	}

	job := Job{Document: doc.Clone(), Filename: SafeBaseName(filename, doc.Meta.Title)}
	art, err := run(ctx, exp, job)
	if err == nil {
		return art, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if format == FormatJSON {
		return nil, err
	}

	p.logger.Warn("export failed, falling back to json",
		"format", format, "slides", len(doc.Slides), "error", err)

	fallback, ok := p.registry.Lookup(FormatJSON)
	if !ok {
		return nil, err
	}
	job.Document = doc.Clone()
	art, ferr := run(ctx, fallback, job)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	art.FallbackFrom = format
	return art, nil
}

// run calls the exporter, turning panics and untyped failures into an
// EncodeError.
func run(ctx context.Context, exp Exporter, job Job) (art *Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			art, err = nil, &EncodeError{Format: exp.Format(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	art, err = exp.Export(ctx, job)
	if err != nil {
		var enc *EncodeError
		if !errors.As(err, &enc) && ctx.Err() == nil {
			err = &EncodeError{Format: exp.Format(), Err: err}
		}
		return nil, err
	}
	if art == nil || len(art.Data) == 0 {
		return nil, &EncodeError{Format: exp.Format(), Err: errors.New("empty artifact")}
	}
	if art.Filename == "" {
		art.Filename = job.Filename + "." + exp.Extension()
	}
	if art.ContentType == "" {
		art.ContentType = exp.ContentType()
	}
	art.Format = exp.Format()
	return art, nil
}

// WriteFile delivers art into dir, returning the written path. The file
// is written to a temporary name and renamed so readers never see a
// partial artifact.
func WriteFile(dir string, art *Artifact) (string, error) {
	path := filepath.Join(dir, art.Filename)
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	if _, err := tmp.Write(art.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", &IOError{Path: path, Err: err}
	}
	return path, nil
}

// DefaultRegistry registers every built-in format. r paints slides for the
// bitmap formats; when nil, pdf, png and jpeg are left out.
func DefaultRegistry(r Rasterizer, logger *slog.Logger) *Registry {
	reg := NewRegistry(
		JSONExporter{},
		PPTXExporter{Logger: logger},
		DOCXExporter{},
		HTMLExporter{Logger: logger},
		RTFExporter{},
		TextExporter{},
		ODPExporter{},
	)
	if r != nil {
		reg.Register(PDFExporter{Rasterizer: r, Logger: logger})
		reg.Register(ImageExporter{Kind: FormatPNG, Rasterizer: r, Logger: logger})
		reg.Register(ImageExporter{Kind: FormatJPEG, Rasterizer: r, Logger: logger})
	}
	return reg
}
