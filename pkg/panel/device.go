package panel

import (
	"context"
	"image/color"
	"log/slog"
	"os"
	"sync"

	"github.com/go-errors/errors"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Device)(nil)

// Device is a raw RGB565 panel backed by a file.
//
// The file may be a Linux framebuffer node configured for 16 bpp (/dev/fb0), a
// FIFO read by an external viewer, or a regular file that always holds the last
// frame. Seekable files get every frame written at offset 0 and single pixels
// written in place; streams get whole frames appended one after another.
type Device struct {
	path     string
	port     *os.File
	mu       sync.Mutex
	width    int
	height   int
	seekable bool
	buffer   []byte // staging frame for SetPixel and stream writes
	frames   int
	logger   *slog.Logger
}

// OpenDevice opens a connection to the panel file at path. Regular files are
// created when missing.
func OpenDevice(path string, width, height int, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("opening panel device", "path", path, "width", width, "height", height)

	port, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to open panel device", 0)
	}
	info, err := port.Stat()
	if err != nil {
		port.Close()
		return nil, errors.WrapPrefix(err, "failed to stat panel device", 0)
	}

	d := &Device{
		path:     path,
		port:     port,
		width:    width,
		height:   height,
		seekable: info.Mode()&(os.ModeNamedPipe|os.ModeSocket) == 0,
		buffer:   make([]byte, 2*width*height),
		logger:   logger,
	}
	return d, nil
}

// Close closes the connection to the panel.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Debug("closing panel device", "path", d.path, "frames", d.frames)

	if d.port != nil {
		err := d.port.Close()
		d.port = nil
		return err
	}
	return nil
}

// Size returns the panel extents.
func (d *Device) Size() (x, y int16) {
	return int16(d.width), int16(d.height)
}

// SetPixel stages one pixel. It becomes visible on the next Display.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	if int(x) < 0 || int(x) >= d.width || int(y) < 0 || int(y) >= d.height {
		return
	}
	v := encode565(c)
	off := 2 * (int(y)*d.width + int(x))
	d.mu.Lock()
	d.buffer[off] = byte(v >> 8)
	d.buffer[off+1] = byte(v)
	d.mu.Unlock()
}

// Display writes the staged frame to the file.
func (d *Device) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeFrame(d.buffer)
}

// WriteFrame writes a whole big-endian RGB565 frame to the file.
func (d *Device) WriteFrame(frame []byte) error {
	if len(frame) != len(d.buffer) {
		return errors.Errorf("panel: frame is %d bytes, want %d", len(frame), len(d.buffer))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.seekable {
		// keep the staging copy current so pixel writes between frames land on
		// top of the last picture
		copy(d.buffer, frame)
	}
	return d.writeFrame(frame)
}

// WritePixel writes one RGB565 pixel in place. On streams the pixel is staged
// and sent with the next frame.
func (d *Device) WritePixel(x, y int, c uint16) error {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return nil
	}
	off := 2 * (y*d.width + x)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffer[off] = byte(c >> 8)
	d.buffer[off+1] = byte(c)
	if !d.seekable {
		return nil
	}
	if d.port == nil {
		return errors.Errorf("panel device not open")
	}
	if _, err := d.port.WriteAt(d.buffer[off:off+2], int64(off)); err != nil {
		return errors.WrapPrefix(err, "failed to write pixel", 0)
	}
	return nil
}

// writeFrame sends one frame; d.mu is held.
func (d *Device) writeFrame(frame []byte) error {
	if d.port == nil {
		return errors.Errorf("panel device not open")
	}
	var err error
	if d.seekable {
		_, err = d.port.WriteAt(frame, 0)
	} else {
		_, err = d.port.Write(frame)
	}
	if err != nil {
		return errors.WrapPrefix(err, "failed to write frame", 0)
	}
	d.frames++
	if d.logger.Enabled(context.Background(), slog.LevelDebug) && d.frames%300 == 0 {
		d.logger.Debug("panel frames written", "path", d.path, "frames", d.frames)
	}
	return nil
}

// Frames returns the number of frames written.
func (d *Device) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Path returns the panel file path.
func (d *Device) Path() string {
	return d.path
}
