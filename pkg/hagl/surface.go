// Package hagl is a small hardware agnostic graphics library for RGB565 displays.
//
// A Surface is the display handle. It draws pixels, lines, shapes and bitmap text
// through a hal.Backend, honouring a rectangular clip window. Coordinates are in
// pixels with the origin at the top-left corner; all rectangle style arguments are
// inclusive corner pairs (x0, y0)-(x1, y1).
package hagl

import (
	"image"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/sagostin/hagl-demo/pkg/hal"
)

// Color is an RGB565 colour.
type Color = hal.Color

// Surface is a display handle.
//
// Drawing calls are not serialised. Callers sharing a Surface between goroutines
// must decide themselves which operations need exclusive access; the clip window
// is published atomically so readers never see a torn rectangle.
type Surface struct {
	backend hal.Backend
	clip    atomic.Pointer[image.Rectangle]
	font    atomic.Pointer[fontRef]
}

type fontRef struct{ face font.Face }

// DefaultFont is the bitmap font used when none is set.
var DefaultFont font.Face = basicfont.Face7x13

// Init creates a display handle over the backend with the clip window covering
// the whole display.
func Init(backend hal.Backend) *Surface {
	s := &Surface{backend: backend}
	s.SetClip(0, 0, backend.Width()-1, backend.Height()-1)
	s.font.Store(&fontRef{face: DefaultFont})
	return s
}

// Width returns the display width in pixels.
func (s *Surface) Width() int { return s.backend.Width() }

// Height returns the display height in pixels.
func (s *Surface) Height() int { return s.backend.Height() }

// Depth returns the colour depth in bits per pixel.
func (s *Surface) Depth() int { return s.backend.Depth() }

// HasBackBuffer reports whether drawing goes to an off-screen buffer that must be
// flushed to become visible.
func (s *Surface) HasBackBuffer() bool { return s.backend.Buffer() != nil }

// Color converts 8-bit channels to the display colour format.
func (s *Surface) Color(r, g, b uint8) Color { return hal.RGB565(r, g, b) }

// SetFont sets the face used by PutChar and PutText.
func (s *Surface) SetFont(f font.Face) {
	if f == nil {
		f = DefaultFont
	}
	s.font.Store(&fontRef{face: f})
}

// Font returns the current face.
func (s *Surface) Font() font.Face { return s.font.Load().face }

// SetClip restricts drawing to the inclusive window (x0, y0)-(x1, y1). The window
// is clamped to the display.
func (s *Surface) SetClip(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(image.Rect(0, 0, s.Width(), s.Height()))
	s.clip.Store(&r)
}

// Clip returns the current clip window. Max is exclusive.
func (s *Surface) Clip() image.Rectangle { return *s.clip.Load() }

// Clear blanks the whole display regardless of the clip window.
func (s *Surface) Clear() {
	if f, ok := s.backend.(interface{ Fill(Color) }); ok {
		f.Fill(0)
		return
	}
	w, h := s.Width(), s.Height()
	for y := 0; y < h; y++ {
		s.backend.HLine(0, y, w, 0)
	}
}

// Flush copies the back buffer to the panel and returns the bytes transferred.
func (s *Surface) Flush() (int, error) { return s.backend.Flush() }

// Close releases the backend.
func (s *Surface) Close() error { return s.backend.Close() }

// PutPixel sets one pixel if it lies inside the clip window.
func (s *Surface) PutPixel(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}).In(*s.clip.Load()) {
		return
	}
	s.backend.PutPixel(x, y, c)
}

// GetPixel reads one pixel back. Backends without a back buffer return 0.
func (s *Surface) GetPixel(x, y int) Color {
	return s.backend.GetPixel(x, y)
}
