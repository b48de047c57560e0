package raster

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexColor = regexp.MustCompile(`#([0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	rgbColor = regexp.MustCompile(`rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)
)

var namedColors = map[string]color.RGBA{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"yellow":      {255, 255, 0, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor reads a CSS colour: #rgb, #rrggbb, #rrggbbaa, rgb()/rgba(),
// a few names, or a gradient whose first colour stop is used.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := namedColors[s]; ok {
		return c, true
	}

	hexAt := hexColor.FindStringSubmatchIndex(s)
	rgbAt := rgbColor.FindStringSubmatchIndex(s)
	switch {
	case hexAt != nil && (rgbAt == nil || hexAt[0] < rgbAt[0]):
		return parseHex(s[hexAt[2]:hexAt[3]])
	case rgbAt != nil:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			n, _ := strconv.Atoi(s[rgbAt[2+2*i]:rgbAt[3+2*i]])
			if n > 255 {
				n = 255
			}
			v[i] = uint8(n)
		}
		return color.RGBA{v[0], v[1], v[2], 255}, true
	}
	return color.RGBA{}, false
}

func parseHex(h string) (color.RGBA, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	if len(h) == 8 {
		return color.RGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, true
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
}

// ColorOr parses s and falls back to def.
func ColorOr(s string, def color.RGBA) color.RGBA {
	if c, ok := ParseColor(s); ok {
		return c
	}
	return def
}

// Hex formats c as RRGGBB without a leading hash.
func Hex(c color.RGBA) string {
	const digits = "0123456789ABCDEF"
	b := []byte{
		digits[c.R>>4], digits[c.R&0xf],
		digits[c.G>>4], digits[c.G&0xf],
		digits[c.B>>4], digits[c.B&0xf],
	}
	return string(b)
}
