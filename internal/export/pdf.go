// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	mimage "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func init() {
	// pdfcpu would otherwise create a config directory under $HOME.
	api.DisableConfigDir()
}

// PDF page geometry in millimetres: a 16:9 page with the slide bitmap in a
// single full-width row.
const (
	pdfPageWidth  = 254.0
	pdfPageHeight = 142.875
	pdfMargin     = 4.0
	pdfImageRow   = 112.0
)

// PDFExporter writes one page per slide. Each page holds the rasterized
// slide; a slide that fails to render gets its placeholder instead, so the
// page count always equals the slide count.
type PDFExporter struct {
	Rasterizer Rasterizer
	Logger     *slog.Logger
	// Quality is the JPEG quality of embedded slide images (default 90).
	Quality int
}

func (PDFExporter) Format() Format      { return FormatPDF }
func (PDFExporter) Extension() string   { return "pdf" }
func (PDFExporter) ContentType() string { return "application/pdf" }

func (e PDFExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	if e.Rasterizer == nil {
		return nil, &EncodeError{Format: FormatPDF, Err: fmt.Errorf("no rasterizer configured")}
	}
	doc := job.Document

	b := config.NewBuilder().
		WithDimensions(pdfPageWidth, pdfPageHeight).
		WithLeftMargin(pdfMargin).
		WithTopMargin(pdfMargin).
		WithRightMargin(pdfMargin).
		WithDefaultFont(&props.Font{Family: fontfamily.Arial, Size: 10})
	if doc.Meta.Title != "" {
		b = b.WithTitle(doc.Meta.Title, true)
	}
	if doc.Meta.Author != "" {
		b = b.WithAuthor(doc.Meta.Author, true)
	}
	m := maroto.New(b.WithCreator("deckpress", true).Build())

	pages := make([]core.Page, 0, len(doc.Slides))
	err := rasterizeAll(ctx, e.Rasterizer, doc, loggerOr(e.Logger), func(i int, img image.Image) error {
		data, err := e.encode(img)
		if err != nil {
			return &RenderError{Index: i, Err: err}
		}
		pages = append(pages, page.New().Add(
			row.New(pdfImageRow).Add(
				col.New(12).Add(mimage.NewFromBytes(data, extension.Jpg, props.Rect{Center: true, Percent: 100})),
			),
		))
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.AddPages(pages...)

	out, err := m.Generate()
	if err != nil {
		return nil, &EncodeError{Format: FormatPDF, Err: err}
	}
	data := out.GetBytes()
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return nil, &EncodeError{Format: FormatPDF, Err: fmt.Errorf("validate: %w", err)}
	}
	return &Artifact{Data: data, Pages: len(pages)}, nil
}

func (e PDFExporter) encode(img image.Image) ([]byte, error) {
	q := e.Quality
	if q <= 0 || q > 100 {
		q = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PageCount reports the number of pages of a PDF.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}
