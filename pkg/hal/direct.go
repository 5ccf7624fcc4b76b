package hal

import (
	"tinygo.org/x/drivers"
)

// Direct is an unbuffered backend. Every pixel goes straight to the panel, so
// there is no back buffer, nothing to flush and no read-back.
type Direct struct {
	panel  drivers.Displayer
	raw    PixelWriter
	width  int
	height int
}

// NewDirect creates a backend that writes through to the panel.
func NewDirect(panel drivers.Displayer) (*Direct, error) {
	if panel == nil {
		return nil, ErrNoPanel
	}
	w, h := panelSize(panel)
	d := &Direct{panel: panel, width: w, height: h}
	if pw, ok := panel.(PixelWriter); ok {
		d.raw = pw
	}
	return d, nil
}

// Width of the display in pixels.
func (d *Direct) Width() int { return d.width }

// Height of the display in pixels.
func (d *Direct) Height() int { return d.height }

// Depth returns the colour depth in bits per pixel.
func (d *Direct) Depth() int { return Depth }

// Buffer returns nil: the direct backend has no back buffer.
func (d *Direct) Buffer() []Color { return nil }

// PutPixel writes one pixel to the panel.
func (d *Direct) PutPixel(x, y int, c Color) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	if d.raw != nil {
		// write errors on a single pixel are not recoverable here
		_ = d.raw.WritePixel(x, y, uint16(c))
		return
	}
	d.panel.SetPixel(int16(x), int16(y), c.RGBA())
}

// GetPixel always returns 0; panels are write-only.
func (d *Direct) GetPixel(x, y int) Color { return 0 }

// HLine writes a horizontal run pixel by pixel.
func (d *Direct) HLine(x, y, w int, c Color) {
	for i := 0; i < w; i++ {
		d.PutPixel(x+i, y, c)
	}
}

// Flush is a no-op for the direct backend.
func (d *Direct) Flush() (int, error) { return 0, nil }

// Close releases the panel.
func (d *Direct) Close() error {
	return closePanel(d.panel)
}
