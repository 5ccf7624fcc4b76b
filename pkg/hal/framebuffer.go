package hal

import (
	"tinygo.org/x/drivers"
)

// FrameBuffer is a buffered backend: an RGB565 back buffer the size of the panel.
//
// Drawing only touches memory. Flush pushes the whole buffer to the panel, either
// as one big-endian RGB565 frame (panels implementing FrameWriter) or pixel by
// pixel followed by Display().
//
// The wire format is the one used by ST7789/ILI9341 style controllers:
//   - row-major, top-left pixel first
//   - two bytes per pixel, high byte first
type FrameBuffer struct {
	panel  drivers.Displayer
	width  int
	height int
	// data is organised as [y*width+x]
	data  []Color
	frame []byte
}

// NewFrameBuffer creates a back buffer matching the panel extents.
func NewFrameBuffer(panel drivers.Displayer) (*FrameBuffer, error) {
	if panel == nil {
		return nil, ErrNoPanel
	}
	w, h := panelSize(panel)
	return &FrameBuffer{
		panel:  panel,
		width:  w,
		height: h,
		data:   make([]Color, w*h),
		frame:  make([]byte, w*h*2),
	}, nil
}

// Width of the display in pixels.
func (fb *FrameBuffer) Width() int { return fb.width }

// Height of the display in pixels.
func (fb *FrameBuffer) Height() int { return fb.height }

// Depth returns the colour depth in bits per pixel.
func (fb *FrameBuffer) Depth() int { return Depth }

// Buffer returns the back buffer.
func (fb *FrameBuffer) Buffer() []Color { return fb.data }

// Fill sets all pixels to c.
func (fb *FrameBuffer) Fill(c Color) {
	for i := range fb.data {
		fb.data[i] = c
	}
}

// PutPixel sets a pixel at (x, y).
// Coordinates are clipped to display bounds.
func (fb *FrameBuffer) PutPixel(x, y int, c Color) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return
	}
	fb.data[y*fb.width+x] = c
}

// GetPixel returns the colour of a pixel at (x, y).
// Returns 0 for out-of-bounds coordinates.
func (fb *FrameBuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return 0
	}
	return fb.data[y*fb.width+x]
}

// HLine fills w pixels starting at (x, y), clipped to the display.
func (fb *FrameBuffer) HLine(x, y, w int, c Color) {
	if y < 0 || y >= fb.height {
		return
	}
	x0, x1 := x, x+w
	if x0 < 0 {
		x0 = 0
	}
	if x1 > fb.width {
		x1 = fb.width
	}
	row := fb.data[y*fb.width : (y+1)*fb.width]
	for i := x0; i < x1; i++ {
		row[i] = c
	}
}

func (fb *FrameBuffer) encode(out []byte) {
	for i, c := range fb.data {
		out[2*i] = byte(c >> 8)
		out[2*i+1] = byte(c)
	}
}

// Flush sends the back buffer to the panel and returns the bytes transferred.
func (fb *FrameBuffer) Flush() (int, error) {
	if fw, ok := fb.panel.(FrameWriter); ok {
		fb.encode(fb.frame)
		if err := fw.WriteFrame(fb.frame); err != nil {
			return 0, err
		}
		return len(fb.frame), nil
	}

	for y := 0; y < fb.height; y++ {
		row := fb.data[y*fb.width : (y+1)*fb.width]
		for x, c := range row {
			fb.panel.SetPixel(int16(x), int16(y), c.RGBA())
		}
	}
	if err := fb.panel.Display(); err != nil {
		return 0, err
	}
	return len(fb.frame), nil
}

// Close releases the panel.
func (fb *FrameBuffer) Close() error {
	return closePanel(fb.panel)
}
