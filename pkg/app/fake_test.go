package app

import (
	"image"
	"sync"

	"github.com/sagostin/hagl-demo/pkg/hal"
)

// fakeDisplay counts drawing calls. It is safe for concurrent use so the tasks
// can run under the race detector.
type fakeDisplay struct {
	mu       sync.Mutex
	w, h     int
	buffered bool
	calls    map[string]int
	texts    []placedText
	clip     image.Rectangle
	flushes  int

	// flushHook runs inside Flush when set.
	flushHook func()
	// flushErr is returned by Flush when set.
	flushErr error
}

type placedText struct {
	text string
	at   image.Point
	clip image.Rectangle
}

func newFakeDisplay(w, h int, buffered bool) *fakeDisplay {
	return &fakeDisplay{w: w, h: h, buffered: buffered, calls: make(map[string]int)}
}

func (f *fakeDisplay) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeDisplay) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeDisplay) Texts() []placedText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]placedText(nil), f.texts...)
}

func (f *fakeDisplay) Clip() image.Rectangle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clip
}

func (f *fakeDisplay) Width() int { return f.w }
func (f *fakeDisplay) Height() int { return f.h }
func (f *fakeDisplay) Depth() int { return hal.Depth }
func (f *fakeDisplay) HasBackBuffer() bool { return f.buffered }
func (f *fakeDisplay) Color(r, g, b uint8) hal.Color { return hal.RGB565(r, g, b) }
func (f *fakeDisplay) Clear() { f.count("clear") }
func (f *fakeDisplay) PutPixel(x, y int, c hal.Color) { f.count("pixel") }
func (f *fakeDisplay) DrawCircle(x, y, r int, c hal.Color) { f.count("circle") }
func (f *fakeDisplay) FillCircle(x, y, r int, c hal.Color) { f.count("fillcircle") }
func (f *fakeDisplay) DrawPolygon(v []image.Point, c hal.Color) { f.count("polygon") }
func (f *fakeDisplay) FillPolygon(v []image.Point, c hal.Color) { f.count("fillpolygon") }

func (f *fakeDisplay) SetClip(x0, y0, x1, y1 int) {
	f.mu.Lock()
	f.clip = image.Rect(x0, y0, x1+1, y1+1)
	f.mu.Unlock()
}

func (f *fakeDisplay) DrawLine(x0, y0, x1, y1 int, c hal.Color) { f.count("line") }
func (f *fakeDisplay) DrawRectangle(x0, y0, x1, y1 int, c hal.Color) { f.count("rect") }
func (f *fakeDisplay) FillRectangle(x0, y0, x1, y1 int, c hal.Color) { f.count("fillrect") }

func (f *fakeDisplay) DrawRoundedRectangle(x0, y0, x1, y1, r int, c hal.Color) {
	f.count("rrect")
}

func (f *fakeDisplay) FillRoundedRectangle(x0, y0, x1, y1, r int, c hal.Color) {
	f.count("fillrrect")
}

func (f *fakeDisplay) DrawEllipse(x, y, a, b int, c hal.Color) { f.count("ellipse") }
func (f *fakeDisplay) FillEllipse(x, y, a, b int, c hal.Color) { f.count("fillellipse") }

func (f *fakeDisplay) DrawTriangle(x0, y0, x1, y1, x2, y2 int, c hal.Color) {
	f.count("triangle")
}

func (f *fakeDisplay) FillTriangle(x0, y0, x1, y1, x2, y2 int, c hal.Color) {
	f.count("filltriangle")
}

func (f *fakeDisplay) PutChar(r rune, x, y int, c hal.Color) int {
	f.count("char")
	return 7
}

func (f *fakeDisplay) PutText(text string, x, y int, c hal.Color) int {
	f.mu.Lock()
	f.calls["text"]++
	f.texts = append(f.texts, placedText{text: text, at: image.Pt(x, y), clip: f.clip})
	f.mu.Unlock()
	return 7 * len([]rune(text))
}

func (f *fakeDisplay) Flush() (int, error) {
	if f.flushHook != nil {
		f.flushHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.flushErr != nil {
		return 0, f.flushErr
	}
	if !f.buffered {
		return 0, nil
	}
	return f.w * f.h * 2, nil
}

func (f *fakeDisplay) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}
