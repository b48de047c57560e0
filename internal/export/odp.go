// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"

	"deckpress/internal/models"
	"deckpress/internal/raster"
	"deckpress/internal/richtext"
	"deckpress/internal/slides"
)

// ODP page size in centimetres for a 16:9 slide.
const (
	odpWidthCM  = 28.0
	odpHeightCM = 15.75
)

const odpNamespaces = `xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
	`xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" ` +
	`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" ` +
	`xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0" ` +
	`xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" ` +
	`xmlns:svg="urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0" ` +
	`xmlns:xlink="http://www.w3.org/1999/xlink" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
	`xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" ` +
	`xmlns:presentation="urn:oasis:names:tc:opendocument:xmlns:presentation:1.0" ` +
	`office:version="1.2"`

// ODPExporter writes an OpenDocument presentation with one text frame per
// layout region. Markup is stripped from all text.
type ODPExporter struct{}

func (ODPExporter) Format() Format    { return FormatODP }
func (ODPExporter) Extension() string { return "odp" }
func (ODPExporter) ContentType() string {
	return "application/vnd.oasis.opendocument.presentation"
}

type odpPicture struct {
	path string
	mime string
	data []byte
}

func (ODPExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	doc := job.Document
	var styles, pages strings.Builder
	var pictures []odpPicture

	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := i + 1
		bg := raster.ColorOr(s.Background, color.RGBA{0xff, 0xff, 0xff, 0xff})
		fg := raster.ColorOr(s.TextColor, color.RGBA{0, 0, 0, 0xff})
		fmt.Fprintf(&styles,
			`<style:style style:name="dp%d" style:family="drawing-page"><style:drawing-page-properties draw:fill="solid" draw:fill-color="#%s"/></style:style>`,
			n, strings.ToLower(raster.Hex(bg)))
		fmt.Fprintf(&styles,
			`<style:style style:name="T%d" style:family="text"><style:text-properties fo:color="#%s"/></style:style>`,
			n, strings.ToLower(raster.Hex(fg)))
		fmt.Fprintf(&styles,
			`<style:style style:name="TB%d" style:family="text"><style:text-properties fo:color="#%s" fo:font-weight="bold"/></style:style>`,
			n, strings.ToLower(raster.Hex(fg)))

		fmt.Fprintf(&pages, `<draw:page draw:name="%s" draw:style-name="dp%d" draw:master-page-name="Default">`,
			xmlEscape(fmt.Sprintf("Slide %d", n)), n)

		if box, ok := slides.ImageBox(s); ok {
			if pic, ok := odpImage(s.ImageURL, len(pictures)+1); ok {
				pictures = append(pictures, pic)
				pages.WriteString(odpImageFrame(box, pic.path))
			}
		}
		for _, r := range slides.Regions(s) {
			text := richtext.PlainText(r.Text)
			if text == "" {
				continue
			}
			class := "outline"
			span := fmt.Sprintf("T%d", n)
			if r.Name == slides.RegionTitle {
				class = "title"
			}
			if r.Bold {
				span = fmt.Sprintf("TB%d", n)
			}
			pages.WriteString(odpTextFrame(r.Box, class, span, text))
		}
		for _, el := range s.Elements {
			box := slides.Box{X: el.X, Y: el.Y, W: el.Width, H: el.Height}
			switch el.Type {
			case models.ElementImage:
				if pic, ok := odpImage(el.Src, len(pictures)+1); ok {
					pictures = append(pictures, pic)
					pages.WriteString(odpImageFrame(box, pic.path))
				}
			case models.ElementTable:
				if t := tableText(el.Rows); t != "" {
					pages.WriteString(odpTextFrame(box, "", fmt.Sprintf("T%d", n), t))
				}
			case models.ElementChart:
				if t := chartText(el.Chart); t != "" {
					pages.WriteString(odpTextFrame(box, "", fmt.Sprintf("T%d", n), t))
				}
			default:
				if t := richtext.PlainText(el.Text); t != "" {
					pages.WriteString(odpTextFrame(box, "", fmt.Sprintf("T%d", n), t))
				}
			}
		}
		if notes := richtext.PlainText(s.Notes); notes != "" {
			pages.WriteString(`<presentation:notes><draw:frame presentation:class="notes" svg:x="2cm" svg:y="14cm" svg:width="17cm" svg:height="12cm"><draw:text-box>`)
			pages.WriteString(odpParagraphs(notes, ""))
			pages.WriteString(`</draw:text-box></draw:frame></presentation:notes>`)
		}
		pages.WriteString(`</draw:page>`)
	}

	content := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-content ` + odpNamespaces + `>` +
		`<office:automatic-styles>` + styles.String() + `</office:automatic-styles>` +
		`<office:body><office:presentation>` + pages.String() + `</office:presentation></office:body>` +
		`</office:document-content>`

	var buf bytes.Buffer
	if err := writeODP(&buf, doc.Meta, content, pictures); err != nil {
		return nil, &EncodeError{Format: FormatODP, Err: err}
	}
	return &Artifact{Data: buf.Bytes(), Pages: len(doc.Slides)}, nil
}

func writeODP(buf *bytes.Buffer, meta models.Meta, content string, pictures []odpPicture) error {
	zw := zip.NewWriter(buf)

	// The mimetype entry must come first and be stored uncompressed.
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(ODPExporter{}.ContentType())); err != nil {
		return err
	}

	manifest := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">` +
		`<manifest:file-entry manifest:full-path="/" manifest:media-type="application/vnd.oasis.opendocument.presentation"/>` +
		`<manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>` +
		`<manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>` +
		`<manifest:file-entry manifest:full-path="meta.xml" manifest:media-type="text/xml"/>`
	for _, p := range pictures {
		manifest += `<manifest:file-entry manifest:full-path="` + p.path + `" manifest:media-type="` + xmlEscape(p.mime) + `"/>`
	}
	manifest += `</manifest:manifest>`

	styles := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-styles ` + odpNamespaces + `>` +
		`<office:automatic-styles><style:page-layout style:name="PM1">` +
		fmt.Sprintf(`<style:page-layout-properties fo:page-width="%.2fcm" fo:page-height="%.2fcm" style:print-orientation="landscape"/>`, odpWidthCM, odpHeightCM) +
		`</style:page-layout></office:automatic-styles>` +
		`<office:master-styles><style:master-page style:name="Default" style:page-layout-name="PM1"/></office:master-styles>` +
		`</office:document-styles>`

	metaXML := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-meta ` + odpNamespaces + `><office:meta>` +
		`<meta:generator>deckpress</meta:generator>` +
		`<dc:title>` + xmlEscape(meta.Title) + `</dc:title>` +
		`<dc:creator>` + xmlEscape(meta.Author) + `</dc:creator>` +
		`</office:meta></office:document-meta>`

	files := []struct {
		name string
		data []byte
	}{
		{"META-INF/manifest.xml", []byte(manifest)},
		{"content.xml", []byte(content)},
		{"styles.xml", []byte(styles)},
		{"meta.xml", []byte(metaXML)},
	}
	for _, p := range pictures {
		files = append(files, struct {
			name string
			data []byte
		}{p.path, p.data})
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := w.Write(f.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func odpImage(src string, n int) (odpPicture, bool) {
	mime, data, err := raster.DecodeDataURL(src)
	if err != nil || !strings.HasPrefix(mime, "image/") {
		return odpPicture{}, false
	}
	ext := strings.TrimPrefix(mime, "image/")
	if ext == "jpeg" {
		ext = "jpg"
	}
	return odpPicture{path: fmt.Sprintf("Pictures/image%d.%s", n, ext), mime: mime, data: data}, true
}

func cm(px, total, size float64) string {
	return fmt.Sprintf("%.3fcm", px/total*size)
}

func odpGeometry(b slides.Box) string {
	return fmt.Sprintf(`svg:x="%s" svg:y="%s" svg:width="%s" svg:height="%s"`,
		cm(b.X, slides.CanvasWidth, odpWidthCM), cm(b.Y, slides.CanvasHeight, odpHeightCM),
		cm(b.W, slides.CanvasWidth, odpWidthCM), cm(b.H, slides.CanvasHeight, odpHeightCM))
}

func odpTextFrame(b slides.Box, class, span, text string) string {
	attr := ""
	if class != "" {
		attr = ` presentation:class="` + class + `"`
	}
	return `<draw:frame ` + odpGeometry(b) + attr + `><draw:text-box>` + odpParagraphs(text, span) + `</draw:text-box></draw:frame>`
}

func odpImageFrame(b slides.Box, path string) string {
	return `<draw:frame ` + odpGeometry(b) + `><draw:image xlink:href="` + path +
		`" xlink:type="simple" xlink:show="embed" xlink:actuate="onLoad"/></draw:frame>`
}

func odpParagraphs(text, span string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("<text:p>")
		if span != "" {
			b.WriteString(`<text:span text:style-name="` + span + `">` + xmlEscape(line) + `</text:span>`)
		} else {
			b.WriteString(xmlEscape(line))
		}
		b.WriteString("</text:p>")
	}
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
