package panel

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serialPort struct {
	bytes.Buffer
	closed bool
	err    error
}

func (p *serialPort) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.Buffer.Write(b)
}

func (p *serialPort) Close() error {
	p.closed = true
	return nil
}

func TestEZIO_Init(t *testing.T) {
	port := &serialPort{}
	e, err := NewEZIO(port, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []byte{0x1B, 0x40, 0x0C}, port.Bytes())
	w, h := e.Size()
	assert.Equal(t, int16(128), w)
	assert.Equal(t, int16(64), h)
}

func TestEZIO_Display(t *testing.T) {
	port := &serialPort{}
	e, err := NewEZIO(port, quietLogger())
	require.NoError(t, err)
	port.Reset()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	e.SetPixel(0, 0, white)
	e.SetPixel(0, 9, white)
	e.SetPixel(64, 7, white)
	e.SetPixel(1, 0, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	e.SetPixel(200, 0, white)
	require.NoError(t, e.Display())

	out := port.Bytes()
	require.Len(t, out, 2+1024)
	assert.Equal(t, []byte{0x1B, 0x47}, out[:2])
	frame := out[2:]
	assert.Equal(t, byte(0x01), frame[0], "column 0, band 0")
	assert.Equal(t, byte(0x00), frame[1], "dark pixel stays off")
	assert.Equal(t, byte(0x02), frame[64], "column 0, band 1")
	assert.Equal(t, byte(0x80), frame[512], "right half starts at column 64")
	assert.Equal(t, 1, e.Frames())
}

func TestEZIO_WriteFrame(t *testing.T) {
	port := &serialPort{}
	e, err := NewEZIO(port, quietLogger())
	require.NoError(t, err)

	assert.Error(t, e.WriteFrame(make([]byte, 10)))

	frame := bytes.Repeat([]byte{0xff, 0xff}, 128*64)
	port.Reset()
	require.NoError(t, e.WriteFrame(frame))
	assert.Equal(t, bytes.Repeat([]byte{0xff}, 1024), port.Bytes()[2:])
}

func TestEZIO_WriteError(t *testing.T) {
	port := &serialPort{}
	e, err := NewEZIO(port, quietLogger())
	require.NoError(t, err)

	port.err = errors.New("unplugged")
	assert.Error(t, e.Display())
	assert.Equal(t, 0, e.Frames())
}

func TestEZIO_Close(t *testing.T) {
	port := &serialPort{}
	e, err := NewEZIO(port, quietLogger())
	require.NoError(t, err)
	port.Reset()

	require.NoError(t, e.Close())
	assert.True(t, port.closed)
	assert.Equal(t, []byte{0x0C}, port.Bytes())
	require.NoError(t, e.Close())
	assert.Error(t, e.Display())
}
