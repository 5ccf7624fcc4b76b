package panel

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/go-errors/errors"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*EZIO)(nil)

// EZIO G500 geometry and protocol.
const (
	EZIOWidth    = 128
	EZIOHeight   = 64
	EZIOBaudRate = 115200

	ezioFrameSize = EZIOWidth * EZIOHeight / 8

	esc       = 0x1B
	cmdClear  = 0x0C
	cmdInit   = 0x40 // '@'
	cmdUpload = 0x47 // 'G'
)

// EZIO is the 128x64 monochrome EZIO-G500 LCD found in some firewall
// appliances, driven over its serial port. Pixels brighter than mid grey are
// lit.
type EZIO struct {
	mu     sync.Mutex
	port   io.WriteCloser
	path   string
	pix    [EZIOHeight][EZIOWidth]bool
	out    bytes.Buffer
	frames int
	logger *slog.Logger
}

// OpenEZIO configures the serial port at path with stty, opens it and
// initialises the LCD. The port is /dev/ttyS1 on most Linux appliances and
// /dev/cuau1 on FreeBSD.
func OpenEZIO(path string, logger *slog.Logger) (*EZIO, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("opening ezio panel", "path", path, "baud", EZIOBaudRate)

	cmd := exec.Command("stty", "-f", path, fmt.Sprintf("%d", EZIOBaudRate), "cs8", "-cstopb", "-parenb", "raw", "-echo")
	if err := cmd.Run(); err != nil {
		logger.Debug("stty failed, continuing", "path", path, "error", err)
	}

	port, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to open serial port", 0)
	}
	e, err := NewEZIO(port, logger)
	if err != nil {
		port.Close()
		return nil, err
	}
	e.path = path
	return e, nil
}

// NewEZIO initialises an LCD attached to an already open port.
func NewEZIO(port io.WriteCloser, logger *slog.Logger) (*EZIO, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &EZIO{port: port, logger: logger}
	e.out.Write([]byte{esc, cmdInit, cmdClear})
	if err := e.send(); err != nil {
		return nil, err
	}
	return e, nil
}

// Size returns the LCD extents.
func (e *EZIO) Size() (x, y int16) {
	return EZIOWidth, EZIOHeight
}

// SetPixel stages one pixel. It becomes visible on the next Display.
func (e *EZIO) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= EZIOWidth || y < 0 || y >= EZIOHeight {
		return
	}
	// Rec. 601 luma
	lit := 299*int(c.R)+587*int(c.G)+114*int(c.B) >= 128*1000
	e.mu.Lock()
	e.pix[y][x] = lit
	e.mu.Unlock()
}

// WriteFrame stages a whole big-endian RGB565 frame and shows it.
func (e *EZIO) WriteFrame(frame []byte) error {
	if len(frame) != 2*EZIOWidth*EZIOHeight {
		return errors.Errorf("panel: frame is %d bytes, want %d", len(frame), 2*EZIOWidth*EZIOHeight)
	}
	for i := 0; i < EZIOWidth*EZIOHeight; i++ {
		e.SetPixel(int16(i%EZIOWidth), int16(i/EZIOWidth), expand565(uint16(frame[2*i])<<8|uint16(frame[2*i+1])))
	}
	return e.Display()
}

// Display uploads the staged picture.
func (e *EZIO) Display() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	frame := e.encode()
	e.out.Write([]byte{esc, cmdUpload})
	e.out.Write(frame[:])
	if err := e.send(); err != nil {
		return err
	}
	e.frames++
	return nil
}

// encode packs the picture in the LCD wire format. Each byte holds eight
// vertical pixels, bit 0 on top. The left 64 columns of all eight bands come
// first, then the right 64.
func (e *EZIO) encode() [ezioFrameSize]byte {
	var frame [ezioFrameSize]byte
	i := 0
	for _, half := range [2]int{0, EZIOWidth / 2} {
		for band := 0; band < EZIOHeight/8; band++ {
			for x := half; x < half+EZIOWidth/2; x++ {
				var b byte
				for bit := 0; bit < 8; bit++ {
					if e.pix[band*8+bit][x] {
						b |= 1 << bit
					}
				}
				frame[i] = b
				i++
			}
		}
	}
	return frame
}

// send writes the pending bytes; e.mu is held or e is not shared yet.
func (e *EZIO) send() error {
	if e.port == nil {
		return errors.Errorf("serial port not open")
	}
	if _, err := e.port.Write(e.out.Bytes()); err != nil {
		e.out.Reset()
		return errors.WrapPrefix(err, "failed to write to serial port", 0)
	}
	e.out.Reset()
	return nil
}

// Frames returns the number of pictures uploaded.
func (e *EZIO) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Close clears the LCD and closes the port.
func (e *EZIO) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.port == nil {
		return nil
	}
	e.logger.Debug("closing ezio panel", "path", e.path, "frames", e.frames)
	e.out.WriteByte(cmdClear)
	err := e.send()
	if cerr := e.port.Close(); err == nil {
		err = cerr
	}
	e.port = nil
	return err
}
