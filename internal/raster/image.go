package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/url"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrNotDataURL is returned for image sources that are not inline data.
var ErrNotDataURL = errors.New("not a data url")

// DecodeDataURL splits a data: URL into its MIME type and payload.
func DecodeDataURL(src string) (mime string, data []byte, err error) {
	if !strings.HasPrefix(src, "data:") {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("data url: missing payload")
	}

	mime = meta
	isBase64 := false
	if m, rest, found := strings.Cut(meta, ";"); found {
		mime = m
		isBase64 = strings.Contains(rest, "base64")
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Browsers sometimes emit unpadded payloads.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("data url: %w", err)
		}
		return mime, data, nil
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data url: %w", err)
	}
	return mime, []byte(s), nil
}

// DecodeImage decodes an inline image source into an image.
func DecodeImage(src string) (image.Image, error) {
	_, data, err := DecodeDataURL(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fit scales src into r preserving aspect ratio, centred.
func fit(dst draw.Image, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || r.Dx() <= 0 || r.Dy() <= 0 {
		return
	}
	scale := min(float64(r.Dx())/float64(sb.Dx()), float64(r.Dy())/float64(sb.Dy()))
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-h)/2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), src, sb, draw.Over, nil)
}
