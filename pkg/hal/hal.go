// Package hal provides the display hardware abstraction used by the hagl graphics
// library.
//
// A Backend owns the pixels of one display. Buffered backends keep an off-screen
// RGB565 copy that is copied to the panel on Flush; direct backends write every
// pixel straight to the panel and have nothing to flush.
//
// Panels are anything implementing the TinyGo drivers.Displayer contract, so the
// same backend drives an SPI LCD driver on a microcontroller or one of the host
// panels in package panel.
package hal

import (
	"image/color"

	"github.com/go-errors/errors"
	"tinygo.org/x/drivers"
)

// Depth is the colour depth of every backend in bits per pixel.
const Depth = 16

// ErrNoPanel is returned when a backend is created without a panel.
var ErrNoPanel error = errors.New("hal: nil panel")

// Color is a 16-bit RGB565 colour, red in the high bits.
type Color uint16

// RGB565 packs 8-bit red, green and blue channels into a Color.
func RGB565(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGBA expands the colour to 8 bits per channel, opaque.
func (c Color) RGBA() color.RGBA {
	r := uint8(c>>11) & 0x1f
	g := uint8(c>>5) & 0x3f
	b := uint8(c) & 0x1f
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xff,
	}
}

// Backend is the pixel store behind a display handle.
type Backend interface {
	// Width and Height return the display extents in pixels.
	Width() int
	Height() int

	// Depth returns the colour depth in bits per pixel.
	Depth() int

	// PutPixel sets one pixel. Coordinates outside the display are ignored.
	PutPixel(x, y int, c Color)

	// GetPixel returns the pixel at (x, y), or 0 outside the display or when the
	// backend cannot read back.
	GetPixel(x, y int) Color

	// HLine draws a horizontal run of w pixels starting at (x, y).
	HLine(x, y, w int, c Color)

	// Flush copies the back buffer to the panel and returns the number of bytes
	// transferred. Direct backends return 0.
	Flush() (int, error)

	// Buffer returns the back buffer, or nil when the backend has none.
	Buffer() []Color

	// Close releases the panel.
	Close() error
}

// FrameWriter is implemented by panels that accept a whole RGB565 frame in
// display byte order in one transfer, which is far cheaper than per-pixel
// SetPixel calls.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

// PixelWriter is implemented by panels that accept RGB565 pixels directly,
// skipping the colour expansion of drivers.Displayer.
type PixelWriter interface {
	WritePixel(x, y int, c uint16) error
}

func panelSize(p drivers.Displayer) (int, int) {
	w, h := p.Size()
	return int(w), int(h)
}

func closePanel(p drivers.Displayer) error {
	if c, ok := p.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
