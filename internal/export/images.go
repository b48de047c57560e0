// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
)

// ImageExporter writes a zip archive holding one bitmap per slide, named
// "{base}_slide_{n}.{ext}".
type ImageExporter struct {
	Kind       Format // FormatPNG or FormatJPEG
	Rasterizer Rasterizer
	Logger     *slog.Logger
}

func (e ImageExporter) Format() Format      { return e.Kind }
func (e ImageExporter) Extension() string   { return "zip" }
func (e ImageExporter) ContentType() string { return "application/zip" }

func (e ImageExporter) ext() string {
	if e.Kind == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func (e ImageExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	if e.Rasterizer == nil {
		return nil, &EncodeError{Format: e.Kind, Err: fmt.Errorf("no rasterizer configured")}
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := rasterizeAll(ctx, e.Rasterizer, job.Document, loggerOr(e.Logger), func(i int, img image.Image) error {
		name := fmt.Sprintf("%s_slide_%d.%s", job.Filename, i+1, e.ext())
		// Compressed bitmaps gain nothing from deflate.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return err
		}
		if e.Kind == FormatJPEG {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		}
		return png.Encode(w, img)
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, &EncodeError{Format: e.Kind, Err: err}
	}
	return &Artifact{
		Filename: fmt.Sprintf("%s_%s.zip", job.Filename, e.Kind),
		Data:     buf.Bytes(),
		Pages:    len(job.Document.Slides),
	}, nil
}
