// Package panel provides physical display stand-ins for running the demo on a
// host. Every panel implements the TinyGo drivers.Displayer contract; panels that
// can take a whole RGB565 frame at once also implement WriteFrame.
package panel

import (
	"image"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/go-errors/errors"
	"golang.org/x/image/bmp"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Memory)(nil)

// Memory is an in-memory panel. It is used headless, in tests and for BMP
// snapshots.
type Memory struct {
	mu       sync.Mutex
	img      *image.RGBA
	displays int
}

// NewMemory creates a black memory panel of the given size.
func NewMemory(width, height int) *Memory {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &Memory{img: img}
}

// Size returns the panel extents.
func (m *Memory) Size() (x, y int16) {
	b := m.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel stores one pixel.
func (m *Memory) SetPixel(x, y int16, c color.RGBA) {
	m.mu.Lock()
	m.img.SetRGBA(int(x), int(y), c)
	m.mu.Unlock()
}

// Display counts completed frames.
func (m *Memory) Display() error {
	m.mu.Lock()
	m.displays++
	m.mu.Unlock()
	return nil
}

// WriteFrame stores a whole big-endian RGB565 frame.
func (m *Memory) WriteFrame(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.img.Bounds().Dx()
	if len(frame) != 2*w*m.img.Bounds().Dy() {
		return errors.Errorf("panel: frame is %d bytes, want %d", len(frame), 2*w*m.img.Bounds().Dy())
	}
	for i := 0; i < len(frame)/2; i++ {
		m.img.SetRGBA(i%w, i/w, expand565(uint16(frame[2*i])<<8|uint16(frame[2*i+1])))
	}
	m.displays++
	return nil
}

// WritePixel stores one RGB565 pixel.
func (m *Memory) WritePixel(x, y int, c uint16) error {
	m.mu.Lock()
	m.img.SetRGBA(x, y, expand565(c))
	m.mu.Unlock()
	return nil
}

// Displays returns the number of frames shown so far.
func (m *Memory) Displays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displays
}

// At returns the colour of one pixel.
func (m *Memory) At(x, y int) color.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.img.RGBAAt(x, y)
}

// Image returns a copy of the panel contents.
func (m *Memory) Image() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := image.NewRGBA(m.img.Bounds())
	copy(cp.Pix, m.img.Pix)
	return cp
}

// EncodeBMP writes the panel contents as a BMP image.
func (m *Memory) EncodeBMP(w io.Writer) error {
	if err := bmp.Encode(w, m.Image()); err != nil {
		return errors.WrapPrefix(err, "panel: encode bmp", 0)
	}
	return nil
}

// SaveBMP writes the panel contents to a BMP file.
func (m *Memory) SaveBMP(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapPrefix(err, "panel: create snapshot", 0)
	}
	if err := m.EncodeBMP(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapPrefix(err, "panel: close snapshot", 0)
	}
	return nil
}

// expand565 widens an RGB565 value to 8 bits per channel.
func expand565(c uint16) color.RGBA {
	r := uint8(c>>11) & 0x1f
	g := uint8(c>>5) & 0x3f
	b := uint8(c) & 0x1f
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xff}
}

func encode565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}
