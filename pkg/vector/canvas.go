// Package vector is an anti-aliased renderer for the demo built on gogpu/gg.
//
// A Canvas draws the same primitives as a hagl display handle but as sub-pixel
// paths into an RGBA pixmap. Flush converts the pixmap to RGB565 and sends it
// to the panel, so a Canvas always behaves as a back-buffered display.
package vector

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-errors/errors"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"tinygo.org/x/drivers"

	"github.com/sagostin/hagl-demo/pkg/hal"
)

// DefaultFontSize is the text size in pixels.
const DefaultFontSize = 11

// Canvas is a gg backed display handle. All methods are safe for concurrent
// use; gg contexts keep path state that must not be shared between goroutines.
type Canvas struct {
	mu     sync.Mutex
	dc     *gg.Context
	panel  drivers.Displayer
	face   text.Face
	width  int
	height int
	clip   image.Rectangle
	frame  []byte
}

// New creates a black canvas the size of the panel.
func New(panel drivers.Displayer) (*Canvas, error) {
	if panel == nil {
		return nil, hal.ErrNoPanel
	}
	w16, h16 := panel.Size()
	w, h := int(w16), int(h16)

	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, errors.WrapPrefix(err, "vector: load font", 0)
	}

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(gg.RGB(0, 0, 0))
	dc.SetLineWidth(1)
	face := source.Face(DefaultFontSize)
	dc.SetFont(face)

	return &Canvas{
		dc:     dc,
		panel:  panel,
		face:   face,
		width:  w,
		height: h,
		clip:   image.Rect(0, 0, w, h),
		frame:  make([]byte, 2*w*h),
	}, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Depth returns the panel colour depth.
func (c *Canvas) Depth() int { return hal.Depth }

// HasBackBuffer is always true: drawing goes to the pixmap.
func (c *Canvas) HasBackBuffer() bool { return true }

// Color converts 8-bit channels to RGB565.
func (c *Canvas) Color(r, g, b uint8) hal.Color { return hal.RGB565(r, g, b) }

// SetClip restricts drawing to the inclusive window (x0, y0)-(x1, y1).
func (c *Canvas) SetClip(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(image.Rect(0, 0, c.width, c.height))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyClip(r)
}

// applyClip replaces the gg clip stack; c.mu is held.
func (c *Canvas) applyClip(r image.Rectangle) {
	c.clip = r
	c.dc.ResetClip()
	c.dc.ClipRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

// Clip returns the current clip window. Max is exclusive.
func (c *Canvas) Clip() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip
}

// Clear blanks the whole canvas regardless of the clip window.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.ClearWithColor(gg.RGB(0, 0, 0))
}

func (c *Canvas) setColor(col hal.Color) {
	c.dc.SetColor(col.RGBA())
}

func (c *Canvas) stroke(col hal.Color) {
	c.setColor(col)
	_ = c.dc.Stroke()
}

func (c *Canvas) fill(col hal.Color) {
	c.setColor(col)
	_ = c.dc.Fill()
}

// PutPixel sets one pixel inside the clip window.
func (c *Canvas) PutPixel(x, y int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !(image.Point{X: x, Y: y}).In(c.clip) {
		return
	}
	c.dc.SetPixel(x, y, gg.FromColor(col.RGBA()))
}

// DrawLine strokes a one pixel wide line through the pixel centres.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawLine(centre(x0), centre(y0), centre(x1), centre(y1))
	c.stroke(col)
}

// DrawRectangle strokes a rectangle outline.
func (c *Canvas) DrawRectangle(x0, y0, x1, y1 int, col hal.Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawRectangle(centre(x0), centre(y0), float64(x1-x0), float64(y1-y0))
	c.stroke(col)
}

// FillRectangle fills a rectangle including both corners.
func (c *Canvas) FillRectangle(x0, y0, x1, y1 int, col hal.Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawRectangle(float64(x0), float64(y0), float64(x1-x0+1), float64(y1-y0+1))
	c.fill(col)
}

// DrawRoundedRectangle strokes a rectangle with rounded corners.
func (c *Canvas) DrawRoundedRectangle(x0, y0, x1, y1, r int, col hal.Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawRoundedRectangle(centre(x0), centre(y0), float64(x1-x0), float64(y1-y0), float64(max(r, 0)))
	c.stroke(col)
}

// FillRoundedRectangle fills a rectangle with rounded corners.
func (c *Canvas) FillRoundedRectangle(x0, y0, x1, y1, r int, col hal.Color) {
	x0, x1 = order(x0, x1)
	y0, y1 = order(y0, y1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawRoundedRectangle(float64(x0), float64(y0), float64(x1-x0+1), float64(y1-y0+1), float64(max(r, 0)))
	c.fill(col)
}

// DrawCircle strokes a circle.
func (c *Canvas) DrawCircle(cx, cy, r int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawCircle(centre(cx), centre(cy), float64(r))
	c.stroke(col)
}

// FillCircle fills a circle.
func (c *Canvas) FillCircle(cx, cy, r int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawCircle(centre(cx), centre(cy), float64(r)+0.5)
	c.fill(col)
}

// DrawEllipse strokes an ellipse with semi-axes a and b.
func (c *Canvas) DrawEllipse(cx, cy, a, b int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawEllipse(centre(cx), centre(cy), float64(a), float64(b))
	c.stroke(col)
}

// FillEllipse fills an ellipse with semi-axes a and b.
func (c *Canvas) FillEllipse(cx, cy, a, b int, col hal.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.DrawEllipse(centre(cx), centre(cy), float64(a)+0.5, float64(b)+0.5)
	c.fill(col)
}

// DrawTriangle strokes a triangle.
func (c *Canvas) DrawTriangle(x0, y0, x1, y1, x2, y2 int, col hal.Color) {
	c.DrawPolygon([]image.Point{{X: x0, Y: y0}, {X: x1, Y: y1}, {X: x2, Y: y2}}, col)
}

// FillTriangle fills a triangle.
func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2 int, col hal.Color) {
	c.FillPolygon([]image.Point{{X: x0, Y: y0}, {X: x1, Y: y1}, {X: x2, Y: y2}}, col)
}

func (c *Canvas) polygon(vertices []image.Point) {
	for i, v := range vertices {
		if i == 0 {
			c.dc.MoveTo(centre(v.X), centre(v.Y))
			continue
		}
		c.dc.LineTo(centre(v.X), centre(v.Y))
	}
	c.dc.ClosePath()
}

// DrawPolygon strokes a closed polygon.
func (c *Canvas) DrawPolygon(vertices []image.Point, col hal.Color) {
	if len(vertices) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polygon(vertices)
	c.stroke(col)
}

// FillPolygon fills a polygon with the even-odd rule.
func (c *Canvas) FillPolygon(vertices []image.Point, col hal.Color) {
	if len(vertices) < 3 {
		c.DrawPolygon(vertices, col)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.SetFillRule(gg.FillRuleEvenOdd)
	c.polygon(vertices)
	c.fill(col)
	c.dc.SetFillRule(gg.FillRuleNonZero)
}

// PutChar draws one character with its cell's top-left corner at (x, y).
func (c *Canvas) PutChar(r rune, x, y int, col hal.Color) int {
	return c.PutText(string(r), x, y, col)
}

// PutText draws text over a black cell background and returns its width.
// Glyphs are rasterised straight into the pixmap and are not clipped.
func (c *Canvas) PutText(s string, x, y int, col hal.Color) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.face.Metrics()
	w := int(math.Ceil(c.face.Advance(s)))
	h := int(math.Ceil(m.Ascent + m.Descent))
	if w == 0 {
		return 0
	}
	cell := image.Rect(x, y, x+w, y+h)
	if !cell.Overlaps(c.clip) {
		return w
	}

	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.fill(0)
	c.setColor(col)
	c.dc.DrawString(s, float64(x), float64(y)+m.Ascent)
	return w
}

// Flush converts the pixmap to RGB565 and sends it to the panel. It returns
// the bytes transferred.
func (c *Canvas) Flush() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.dc.FlushGPU()
	img := c.dc.Image()
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			v := rgb565(img.At(x, y))
			i := 2 * (y*c.width + x)
			c.frame[i] = byte(v >> 8)
			c.frame[i+1] = byte(v)
		}
	}

	if fw, ok := c.panel.(hal.FrameWriter); ok {
		if err := fw.WriteFrame(c.frame); err != nil {
			return 0, err
		}
		return len(c.frame), nil
	}
	for i := 0; i < len(c.frame); i += 2 {
		p := i / 2
		col := hal.Color(uint16(c.frame[i])<<8 | uint16(c.frame[i+1]))
		c.panel.SetPixel(int16(p%c.width), int16(p/c.width), col.RGBA())
	}
	if err := c.panel.Display(); err != nil {
		return 0, err
	}
	return len(c.frame), nil
}

// Image returns a snapshot of the pixmap.
func (c *Canvas) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.dc.FlushGPU()
	return c.dc.Image()
}

// Close releases the gg context and the panel.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dc.Close(); err != nil {
		return err
	}
	if cl, ok := c.panel.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}

func rgb565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
}

func centre(v int) float64 { return float64(v) + 0.5 }

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
