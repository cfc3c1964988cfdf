package qtypes

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is the Go side of a native color: four 8-bit channels.
type Color struct {
	A, R, G, B uint8
}

// Named colors.
var (
	ColorTransparent = Color{A: 0x00, R: 0x00, G: 0x00, B: 0x00}
	ColorBlack       = Color{A: 0xff, R: 0x00, G: 0x00, B: 0x00}
	ColorWhite       = Color{A: 0xff, R: 0xff, G: 0xff, B: 0xff}
	ColorRed         = Color{A: 0xff, R: 0xff, G: 0x00, B: 0x00}
	ColorGreen       = Color{A: 0xff, R: 0x00, G: 0xff, B: 0x00}
	ColorBlue        = Color{A: 0xff, R: 0x00, G: 0x00, B: 0xff}
)

// ARGB constructs a Color from alpha, red, green and blue bytes.
func ARGB(a, r, g, b uint8) Color {
	return Color{A: a, R: r, G: g, B: b}
}

// RGB constructs an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{A: 0xff, R: r, G: g, B: b}
}

// ColorFromARGB unpacks 0xAARRGGBB.
func ColorFromARGB(v uint32) Color {
	return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// ARGB packs the color as 0xAARRGGBB.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String renders #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08x", c.ARGB())
}

// ColorByName looks up an SVG color keyword such as "orchid".
func ColorByName(name string) (Color, bool) {
	rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Color{}, false
	}
	return Color{A: rgba.A, R: rgba.R, G: rgba.G, B: rgba.B}, true
}

// ParseColor accepts #RRGGBB, #AARRGGBB or an SVG color keyword.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return ColorByName(s)
	}
	hex := s[1:]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	switch len(hex) {
	case 6:
		return ColorFromARGB(0xff000000 | uint32(v)), true
	case 8:
		return ColorFromARGB(uint32(v)), true
	}
	return Color{}, false
}
