package render

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Glyph metrics of the debug overlay at scale 1, in world units.
const (
	glyphWidth     = 12
	glyphHeight    = 20
	glyphThickness = 2.5
	digitSpacing   = 2
	textSpacing    = 3
)

// Seven segments, in order: top, top-right, bottom-right, bottom,
// bottom-left, top-left, middle.
var digitSegments = [10][7]bool{
	{true, true, true, true, true, true, false},
	{false, true, true, false, false, false, false},
	{true, true, false, true, true, false, true},
	{true, true, true, true, false, false, true},
	{false, true, true, false, false, true, true},
	{true, false, true, true, false, true, true},
	{true, false, true, true, true, true, true},
	{true, true, true, false, false, false, false},
	{true, true, true, true, true, true, true},
	{true, true, true, true, false, true, true},
}

var overlayCase = cases.Upper(language.Und)

// DrawNumber draws n with seven-segment digits, left edge at pos.X and
// vertical centre at pos.Y. It returns the drawn width.
func (r *Renderer) DrawNumber(pos mgl32.Vec2, n int, scale float32, color Color) (float32, error) {
	w := float32(glyphWidth) * scale
	spacing := float32(digitSpacing) * scale
	x := pos[0]
	for _, ch := range strconv.Itoa(n) {
		var err error
		if ch == '-' {
			err = r.DrawQuad(mgl32.Vec2{x + w*0.5, pos[1]}, mgl32.Vec2{w * 0.6, 2 * scale}, 0, color)
		} else {
			err = r.drawDigit(mgl32.Vec2{x, pos[1]}, int(ch-'0'), scale, color)
		}
		if err != nil {
			return 0, err
		}
		x += w + spacing
	}
	return x - pos[0] - spacing, nil
}

// DrawText draws a label using the overlay glyph set: digits, F, P, S, colon
// and space. Other runes render as a faint box. Input is upper-cased first.
func (r *Renderer) DrawText(pos mgl32.Vec2, text string, scale float32, color Color) (float32, error) {
	w := float32(glyphWidth) * scale
	spacing := float32(textSpacing) * scale
	x := pos[0]
	for _, ch := range overlayCase.String(text) {
		at := mgl32.Vec2{x, pos[1]}
		var err error
		switch {
		case ch >= '0' && ch <= '9':
			err = r.drawDigit(at, int(ch-'0'), scale, color)
		case ch == 'S':
			err = r.drawDigit(at, 5, scale, color)
		case ch == 'F':
			err = r.drawLetterF(at, scale, color)
		case ch == 'P':
			err = r.drawLetterP(at, scale, color)
		case ch == ':':
			t := glyphThickness * scale
			if err = r.DrawQuad(mgl32.Vec2{x + w*0.3, pos[1] + 5*scale}, mgl32.Vec2{t, t}, 0, color); err == nil {
				err = r.DrawQuad(mgl32.Vec2{x + w*0.3, pos[1] - 5*scale}, mgl32.Vec2{t, t}, 0, color)
			}
		case ch == ' ':
		default:
			err = r.DrawQuad(mgl32.Vec2{x + w*0.5, pos[1]}, mgl32.Vec2{w * 0.8, glyphHeight * scale}, 0, color.WithAlpha(0.3))
		}
		if err != nil {
			return 0, err
		}
		x += w + spacing
	}
	return x - pos[0] - spacing, nil
}

type segment struct {
	center mgl32.Vec2
	size   mgl32.Vec2
}

func (r *Renderer) drawSegments(segs []segment, color Color) error {
	for _, s := range segs {
		if err := r.DrawQuad(s.center, s.size, 0, color); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawDigit(pos mgl32.Vec2, digit int, scale float32, color Color) error {
	if digit < 0 || digit > 9 {
		return nil
	}
	w, h, t := glyphWidth*scale, glyphHeight*scale, glyphThickness*scale
	cx, cy := pos[0]+w*0.5, pos[1]
	horiz := mgl32.Vec2{w - 2*t, t}
	vert := mgl32.Vec2{t, h*0.5 - t}
	all := [7]segment{
		{mgl32.Vec2{cx, cy + h*0.5 - t*0.5}, horiz},
		{mgl32.Vec2{cx + w*0.5 - t*0.5, cy + h*0.25}, vert},
		{mgl32.Vec2{cx + w*0.5 - t*0.5, cy - h*0.25}, vert},
		{mgl32.Vec2{cx, cy - h*0.5 + t*0.5}, horiz},
		{mgl32.Vec2{cx - w*0.5 + t*0.5, cy - h*0.25}, vert},
		{mgl32.Vec2{cx - w*0.5 + t*0.5, cy + h*0.25}, vert},
		{mgl32.Vec2{cx, cy}, horiz},
	}
	lit := make([]segment, 0, 7)
	for i, on := range digitSegments[digit] {
		if on {
			lit = append(lit, all[i])
		}
	}
	return r.drawSegments(lit, color)
}

func (r *Renderer) drawLetterF(pos mgl32.Vec2, scale float32, color Color) error {
	w, h, t := glyphWidth*scale, glyphHeight*scale, glyphThickness*scale
	cx, cy := pos[0]+w*0.5, pos[1]
	return r.drawSegments([]segment{
		{mgl32.Vec2{cx, cy + h*0.5 - t*0.5}, mgl32.Vec2{w - t, t}},
		{mgl32.Vec2{cx - w*0.5 + t*0.5, cy}, mgl32.Vec2{t, h}},
		{mgl32.Vec2{cx - t*0.5, cy}, mgl32.Vec2{w * 0.6, t}},
	}, color)
}

func (r *Renderer) drawLetterP(pos mgl32.Vec2, scale float32, color Color) error {
	w, h, t := glyphWidth*scale, glyphHeight*scale, glyphThickness*scale
	cx, cy := pos[0]+w*0.5, pos[1]
	return r.drawSegments([]segment{
		{mgl32.Vec2{cx, cy + h*0.5 - t*0.5}, mgl32.Vec2{w - t, t}},
		{mgl32.Vec2{cx - w*0.5 + t*0.5, cy}, mgl32.Vec2{t, h}},
		{mgl32.Vec2{cx + w*0.5 - t*0.5, cy + h*0.25}, mgl32.Vec2{t, h*0.5 - t}},
		{mgl32.Vec2{cx, cy}, mgl32.Vec2{w - t, t}},
	}, color)
}
