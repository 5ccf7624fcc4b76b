package panel

import (
	"context"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-errors/errors"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Terminal)(nil)

// upperHalf renders two vertically stacked pixels per cell: the foreground
// colour is the top pixel, the background the bottom one.
const upperHalf = '▀'

// Terminal is a panel emulated in a terminal with tcell. Every character cell
// shows two pixels; displays larger than the terminal are down-sampled.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	width    int
	height   int
	pix      []color.RGBA
	logger   *slog.Logger
	quit     chan struct{}
	quitOnce sync.Once
}

// NewTerminal takes over the controlling terminal.
func NewTerminal(width, height int, logger *slog.Logger) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to create terminal screen", 0)
	}
	return NewTerminalScreen(screen, width, height, logger)
}

// NewTerminalScreen uses an existing, not yet initialised tcell screen.
func NewTerminalScreen(screen tcell.Screen, width, height int, logger *slog.Logger) (*Terminal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := screen.Init(); err != nil {
		return nil, errors.WrapPrefix(err, "failed to initialise terminal screen", 0)
	}
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen: screen,
		width:  width,
		height: height,
		pix:    make([]color.RGBA, width*height),
		logger: logger,
		quit:   make(chan struct{}),
	}
	for i := range t.pix {
		t.pix[i].A = 0xff
	}
	go t.events()
	return t, nil
}

// Size returns the emulated panel extents.
func (t *Terminal) Size() (x, y int16) {
	return int16(t.width), int16(t.height)
}

// SetPixel stores one pixel. It becomes visible on the next Display.
func (t *Terminal) SetPixel(x, y int16, c color.RGBA) {
	if int(x) < 0 || int(x) >= t.width || int(y) < 0 || int(y) >= t.height {
		return
	}
	t.mu.Lock()
	t.pix[int(y)*t.width+int(x)] = c
	t.mu.Unlock()
}

// WritePixel stores one RGB565 pixel.
func (t *Terminal) WritePixel(x, y int, c uint16) error {
	t.SetPixel(int16(x), int16(y), expand565(c))
	return nil
}

// WriteFrame stores a whole big-endian RGB565 frame and shows it.
func (t *Terminal) WriteFrame(frame []byte) error {
	if len(frame) != 2*len(t.pix) {
		return errors.Errorf("panel: frame is %d bytes, want %d", len(frame), 2*len(t.pix))
	}
	t.mu.Lock()
	for i := range t.pix {
		t.pix[i] = expand565(uint16(frame[2*i])<<8 | uint16(frame[2*i+1]))
	}
	t.mu.Unlock()
	return t.Display()
}

// Display renders the stored pixels into the terminal.
func (t *Terminal) Display() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	scale := 1
	for (t.width+scale-1)/scale > cols || (t.height+scale-1)/scale > 2*rows {
		scale++
	}

	for cy := 0; cy*2*scale < t.height; cy++ {
		top := cy * 2 * scale
		bottom := top + scale
		for cx := 0; cx*scale < t.width; cx++ {
			x := cx * scale
			fg := t.pix[top*t.width+x]
			bg := color.RGBA{A: 0xff}
			if bottom < t.height {
				bg = t.pix[bottom*t.width+x]
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
				Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
			t.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Refresh redraws the terminal at a fixed period until ctx is done. It stands in
// for the scan-out of panels that are written without a back buffer.
func (t *Terminal) Refresh(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.quit:
			return
		case <-ticker.C:
			_ = t.Display()
		}
	}
}

// Quit is closed when the user presses Escape, Ctrl-C or q.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

func (t *Terminal) events() {
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// screen finalised
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				t.logger.Debug("terminal quit requested", "key", ev.Name())
				t.quitOnce.Do(func() { close(t.quit) })
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.quitOnce.Do(func() { close(t.quit) })
	t.screen.Fini()
	return nil
}
