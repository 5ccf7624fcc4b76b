package hagl

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// RenderChar draws one glyph with its top-left corner at (x, y) and returns the
// advance width in pixels. The glyph cell background is painted black so text
// overwrites whatever was below it. Runes missing from the face draw nothing and
// return 0.
func RenderChar(s *Surface, f font.Face, r rune, x, y int, c Color) int {
	m := f.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()

	dot := fixed.P(x, y+ascent)
	dr, mask, maskp, advance, ok := f.Glyph(dot, r)
	if !ok {
		return 0
	}
	w := advance.Ceil()

	for py := y; py < y+height; py++ {
		for px := x; px < x+w; px++ {
			col := Color(0)
			if (image.Point{X: px, Y: py}).In(dr) {
				_, _, _, a := mask.At(maskp.X+px-dr.Min.X, maskp.Y+py-dr.Min.Y).RGBA()
				if a > 0x7fff {
					col = c
				}
			}
			s.PutPixel(px, py, col)
		}
	}
	return w
}

// RenderText draws text starting at (x, y) and returns the x position after
// the last character.
func RenderText(s *Surface, f font.Face, x, y int, text string, c Color) int {
	curX := x
	for _, r := range text {
		curX += RenderChar(s, f, r, curX, y, c)
	}
	return curX
}

// MeasureText returns the width in pixels of the rendered text.
func MeasureText(f font.Face, text string) int {
	width := 0
	for _, r := range text {
		if adv, ok := f.GlyphAdvance(r); ok {
			width += adv.Ceil()
		}
	}
	return width
}

// FontHeight returns the height of a glyph cell in pixels.
func FontHeight(f font.Face) int {
	m := f.Metrics()
	return m.Ascent.Ceil() + m.Descent.Ceil()
}

// PutChar draws one character in the current font and returns its width.
func (s *Surface) PutChar(r rune, x, y int, c Color) int {
	return RenderChar(s, s.Font(), r, x, y, c)
}

// PutText draws text in the current font and returns its width.
func (s *Surface) PutText(text string, x, y int, c Color) int {
	return RenderText(s, s.Font(), x, y, text, c) - x
}
