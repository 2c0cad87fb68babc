package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Cyan        = Color{0, 1, 1, 1}
	Magenta     = Color{1, 0, 1, 1}
	Transparent = Color{0, 0, 0, 0}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.25, 0.25, 0.25, 1}
	LightGray   = Color{0.75, 0.75, 0.75, 1}
)

func RGB(r, g, b float32) Color { return Color{r, g, b, 1} }

// FromHex converts 0xRRGGBB to an opaque colour.
func FromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

// FromHexRGBA converts 0xRRGGBBAA.
func FromHexRGBA(hex uint32) Color {
	return Color{
		R: float32((hex>>24)&0xff) / 255,
		G: float32((hex>>16)&0xff) / 255,
		B: float32((hex>>8)&0xff) / 255,
		A: float32(hex&0xff) / 255,
	}
}

// ParseColor accepts "#rrggbb", "#rrggbbaa" or a palette name such as "red".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := paletteByName[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	switch len(hex) {
	case 6:
		return FromHex(uint32(v)), nil
	case 8:
		return FromHexRGBA(uint32(v)), nil
	}
	return Color{}, fmt.Errorf("parse color %q: want 6 or 8 hex digits", s)
}

var paletteByName = map[string]Color{
	"white":       White,
	"black":       Black,
	"red":         Red,
	"green":       Green,
	"blue":        Blue,
	"yellow":      Yellow,
	"cyan":        Cyan,
	"magenta":     Magenta,
	"transparent": Transparent,
	"gray":        Gray,
	"dark_gray":   DarkGray,
	"light_gray":  LightGray,
}

func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

func (c Color) Vec4() mgl32.Vec4 { return mgl32.Vec4{c.R, c.G, c.B, c.A} }

// ApproxEqual compares per component within 1e-5.
func (c Color) ApproxEqual(o Color) bool {
	return c.Vec4().ApproxEqualThreshold(o.Vec4(), 1e-5)
}
