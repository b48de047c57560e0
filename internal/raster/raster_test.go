package raster_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deckpress/internal/models"
	"deckpress/internal/raster"
)

func pngDataURL(w, h int, c color.Color) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

var _ = Describe("Renderer", func() {
	var (
		r   *raster.Renderer
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		r, err = raster.New(0, 0)
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("renders at the default size", func() {
		img, err := r.Render(ctx, models.Slide{Title: "Hello", Layout: models.LayoutTitleContent}, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(raster.DefaultWidth))
		Expect(img.Bounds().Dy()).To(Equal(raster.DefaultHeight))
	})

	It("fills the background colour", func() {
		img, err := r.Render(ctx, models.Slide{Background: "#336699", Layout: models.LayoutBlank}, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rgbaAt(img, 5, 5)).To(Equal(color.RGBA{0x33, 0x66, 0x99, 0xff}))
	})

	It("uses the first stop of a gradient background", func() {
		s := models.Slide{Background: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)", Layout: models.LayoutBlank}
		img, err := r.Render(ctx, s, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rgbaAt(img, 1, 1)).To(Equal(color.RGBA{0x66, 0x7e, 0xea, 0xff}))
	})

	It("draws text in the title region", func() {
		s := models.Slide{Title: "<b>Quarterly results</b>", Background: "#ffffff", TextColor: "#000000", Layout: models.LayoutTitleOnly}
		img, err := r.Render(ctx, s, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())

		dark := 0
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y += 2 {
			for x := b.Min.X; x < b.Max.X; x += 2 {
				if rgbaAt(img, x, y).R < 100 {
					dark++
				}
			}
		}
		Expect(dark).To(BeNumerically(">", 50))
	})

	It("paints filled shapes", func() {
		s := models.Slide{
			Layout:     models.LayoutBlank,
			Background: "#ffffff",
			Elements: []models.Element{{
				ID: "r1", Type: models.ElementShape, Shape: models.ShapeRectangle,
				X: 100, Y: 100, Width: 200, Height: 100, Fill: "#ff0000",
			}},
		}
		img, err := r.Render(ctx, s, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
		// Centre of the rectangle at 1280/960 scale.
		Expect(rgbaAt(img, 266, 200)).To(Equal(color.RGBA{255, 0, 0, 255}))
	})

	It("scales embedded images into their box", func() {
		s := models.Slide{
			Layout:     models.LayoutBlank,
			Background: "#ffffff",
			Elements: []models.Element{{
				ID: "i1", Type: models.ElementImage, Src: pngDataURL(10, 10, color.RGBA{0, 0, 255, 255}),
				X: 0, Y: 0, Width: 96, Height: 54,
			}},
		}
		img, err := r.Render(ctx, s, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
		c := rgbaAt(img, 64, 36)
		Expect(c.B).To(BeNumerically(">", 200))
		Expect(c.R).To(BeNumerically("<", 50))
	})

	It("skips undecodable images without failing", func() {
		s := models.Slide{
			Layout:   models.LayoutImageText,
			ImageURL: "data:image/png;base64,bm90IGFuIGltYWdl",
			Elements: []models.Element{{Type: models.ElementImage, Src: "https://example.com/x.png", Width: 10, Height: 10}},
		}
		_, err := r.Render(ctx, s, raster.Frame{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders tables and charts", func() {
		s := models.Slide{
			Layout: models.LayoutBlank,
			Elements: []models.Element{
				{Type: models.ElementTable, X: 40, Y: 40, Width: 400, Height: 120, Rows: [][]string{{"Q", "Rev"}, {"Q1", "10"}}},
				{Type: models.ElementChart, X: 500, Y: 40, Width: 300, Height: 200, Chart: &models.Chart{Kind: "bar", Values: []float64{1, 3, 2}}},
				{Type: models.ElementChart, X: 500, Y: 300, Width: 200, Height: 200, Chart: &models.Chart{Kind: "pie", Values: []float64{1, 1}}},
				{Type: models.ElementChart, X: 40, Y: 300, Width: 300, Height: 200, Chart: &models.Chart{Kind: "line", Values: []float64{1, 4, 2}}},
			},
		}
		_, err := r.Render(ctx, s, raster.Frame{Meta: models.Meta{Footer: models.HeaderFooter{Enabled: true, ShowSlideNumber: true}}, Number: 1, Total: 3})
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to render with a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Render(cctx, models.Slide{}, raster.Frame{})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("paints a placeholder from raw text", func() {
		img, err := r.Placeholder(models.Slide{Title: "Broken", Content: "<p>raw</p>", Background: "#eeeeee"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rgbaAt(img, 2, 2)).To(Equal(color.RGBA{0xee, 0xee, 0xee, 0xff}))
	})
})

var _ = Describe("ParseColor", func() {
	DescribeTable("parses CSS colours",
		func(in string, want color.RGBA, ok bool) {
			got, parsed := raster.ParseColor(in)
			Expect(parsed).To(Equal(ok))
			if ok {
				Expect(got).To(Equal(want))
			}
		},
		Entry("six digit hex", "#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 0xff}, true),
		Entry("three digit hex", "#fff", color.RGBA{255, 255, 255, 255}, true),
		Entry("rgb function", "rgb(10, 20, 30)", color.RGBA{10, 20, 30, 255}, true),
		Entry("rgba function", "rgba(1,2,3,0.5)", color.RGBA{1, 2, 3, 255}, true),
		Entry("named", "White", color.RGBA{255, 255, 255, 255}, true),
		Entry("gradient with rgb first", "linear-gradient(rgb(5,6,7), #000000)", color.RGBA{5, 6, 7, 255}, true),
		Entry("garbage", "not-a-colour", color.RGBA{}, false),
		Entry("empty", "", color.RGBA{}, false),
	)

	It("formats hex without a hash", func() {
		Expect(raster.Hex(color.RGBA{0xab, 0x01, 0xff, 0xff})).To(Equal("AB01FF"))
	})
})

var _ = Describe("DecodeDataURL", func() {
	It("decodes base64 payloads", func() {
		mime, data, err := raster.DecodeDataURL("data:image/png;base64,aGVsbG8=")
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal("image/png"))
		Expect(string(data)).To(Equal("hello"))
	})

	It("decodes percent-encoded payloads", func() {
		mime, data, err := raster.DecodeDataURL("data:text/plain,a%20b")
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal("text/plain"))
		Expect(string(data)).To(Equal("a b"))
	})

	It("rejects remote urls", func() {
		_, _, err := raster.DecodeDataURL("https://example.com/a.png")
		Expect(err).To(MatchError(raster.ErrNotDataURL))
	})
})
