// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"image"
	"log/slog"

	"deckpress/internal/models"
	"deckpress/internal/raster"
)

// Rasterizer paints slides for the bitmap-based formats. Placeholder is
// used for a slide whose full render failed.
type Rasterizer interface {
	raster.SlideRenderer
	Placeholder(s models.Slide) (image.Image, error)
}

// rasterizeAll renders every slide of doc. A slide that fails to render is
// replaced by its placeholder so the output always has one page per slide.
// Only a failing placeholder aborts the export.
func rasterizeAll(ctx context.Context, r Rasterizer, doc models.Document, logger *slog.Logger, each func(i int, img image.Image) error) error {
	total := len(doc.Slides)
	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := r.Render(ctx, s, raster.Frame{Meta: doc.Meta, Number: i + 1, Total: total})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rerr := &RenderError{Index: i, Err: err}
			logger.Warn("slide render failed, using placeholder", "slide", i+1, "error", rerr)
			img, err = r.Placeholder(s)
			if err != nil {
				return &RenderError{Index: i, Err: err}
			}
		}
		if err := each(i, img); err != nil {
			return err
		}
	}
	return nil
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
