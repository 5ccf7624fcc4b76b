package panel

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRGB565Conversion(t *testing.T) {
	assert.Equal(t, red, expand565(0xf800))
	assert.Equal(t, uint16(0xf800), encode565(red))
	assert.Equal(t, uint16(0x001f), encode565(blue))
	for _, v := range []uint16{0, 0x1234, 0xffff, 0x8410} {
		assert.Equal(t, v, encode565(expand565(v)))
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(4, 2)
	w, h := m.Size()
	assert.Equal(t, int16(4), w)
	assert.Equal(t, int16(2), h)
	assert.Equal(t, color.RGBA{A: 255}, m.At(3, 1))

	m.SetPixel(1, 1, red)
	require.NoError(t, m.WritePixel(2, 1, 0x001f))
	assert.Equal(t, red, m.At(1, 1))
	assert.Equal(t, blue, m.At(2, 1))

	require.NoError(t, m.Display())
	assert.Equal(t, 1, m.Displays())

	frame := make([]byte, 4*2*2)
	frame[0], frame[1] = 0xf8, 0x00
	require.NoError(t, m.WriteFrame(frame))
	assert.Equal(t, red, m.At(0, 0))
	assert.Equal(t, color.RGBA{A: 255}, m.At(1, 1))
	assert.Equal(t, 2, m.Displays())

	assert.Error(t, m.WriteFrame(frame[:3]))

	img := m.Image()
	img.SetRGBA(0, 0, blue)
	assert.Equal(t, red, m.At(0, 0), "Image returns a copy")
}

func TestMemory_BMP(t *testing.T) {
	m := NewMemory(8, 4)
	m.SetPixel(7, 3, red)

	var buf bytes.Buffer
	require.NoError(t, m.EncodeBMP(&buf))
	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	r, g, b, _ := img.At(7, 3).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)

	path := filepath.Join(t.TempDir(), "shot.bmp")
	require.NoError(t, m.SaveBMP(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDevice_RegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb0")
	d, err := OpenDevice(path, 4, 2, quietLogger())
	require.NoError(t, err)
	assert.True(t, d.seekable)
	assert.Equal(t, path, d.Path())

	frame := bytes.Repeat([]byte{0x12, 0x34}, 8)
	require.NoError(t, d.WriteFrame(frame))
	require.NoError(t, d.WriteFrame(frame))
	assert.Equal(t, 2, d.Frames())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, frame, data, "frames overwrite each other at offset 0")

	require.NoError(t, d.WritePixel(1, 1, 0xf800))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xf8, 0x00}, data[10:12])
	assert.Equal(t, 2, d.Frames(), "pixel writes are not frames")

	assert.Error(t, d.WriteFrame(frame[:4]))

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Error(t, d.Display())
}

func TestDevice_SetPixelDisplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fb0")
	d, err := OpenDevice(path, 2, 2, nil)
	require.NoError(t, err)
	defer d.Close()

	d.SetPixel(1, 0, blue)
	d.SetPixel(5, 5, red)
	require.NoError(t, d.Display())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0x00, 0x1f, 0, 0, 0, 0}, data)
}

func TestDevice_OpenFailure(t *testing.T) {
	_, err := OpenDevice(filepath.Join(t.TempDir(), "missing", "fb0"), 2, 2, nil)
	assert.Error(t, err)
}

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	term, err := NewTerminalScreen(screen, w, h, quietLogger())
	require.NoError(t, err)
	screen.SetSize(80, 25)
	t.Cleanup(func() { term.Close() })
	return term, screen
}

func cellColors(t *testing.T, screen tcell.SimulationScreen, x, y int) (fg, bg tcell.Color) {
	t.Helper()
	cells, width, _ := screen.GetContents()
	cell := cells[y*width+x]
	require.Equal(t, []rune{upperHalf}, cell.Runes)
	fg, bg, _ = cell.Style.Decompose()
	return fg, bg
}

func TestTerminal_HalfBlocks(t *testing.T) {
	term, screen := newSimTerminal(t, 64, 48)
	w, h := term.Size()
	assert.Equal(t, int16(64), w)
	assert.Equal(t, int16(48), h)

	term.SetPixel(0, 0, red)
	term.SetPixel(0, 1, blue)
	require.NoError(t, term.Display())

	fg, bg := cellColors(t, screen, 0, 0)
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)

	frame := make([]byte, 64*48*2)
	for i := 0; i < len(frame); i += 2 {
		frame[i], frame[i+1] = 0x07, 0xe0
	}
	require.NoError(t, term.WriteFrame(frame))
	fg, bg = cellColors(t, screen, 63, 23)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), bg)

	assert.Error(t, term.WriteFrame(frame[:10]))
}

func TestTerminal_DownSamples(t *testing.T) {
	term, screen := newSimTerminal(t, 320, 240)
	require.NoError(t, term.WritePixel(0, 0, 0xf800))
	require.NoError(t, term.Display())

	// 320x240 needs a scale of 5 to fit 80x25 cells
	cells, width, _ := screen.GetContents()
	assert.Equal(t, []rune{upperHalf}, cells[0].Runes)
	assert.Equal(t, []rune{upperHalf}, cells[23*width+63].Runes)
	assert.NotEqual(t, []rune{upperHalf}, cells[24*width+64].Runes)
}

func TestTerminal_QuitKey(t *testing.T) {
	term, screen := newSimTerminal(t, 8, 8)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-term.Quit():
	case <-time.After(time.Second):
		t.Fatal("quit key was not reported")
	}
}

func TestTerminal_Refresh(t *testing.T) {
	term, screen := newSimTerminal(t, 8, 8)
	term.SetPixel(0, 0, red)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		term.Refresh(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		cells, _, _ := screen.GetContents()
		fg, _, _ := cells[0].Style.Decompose()
		return fg == tcell.NewRGBColor(255, 0, 0)
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not stop")
	}
}
