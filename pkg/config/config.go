// Package config holds the demo settings shared by the commands.
package config

import (
	"time"

	"github.com/go-errors/errors"

	"github.com/sagostin/hagl-demo/pkg/demo"
)

// Backends and renderers.
const (
	BackendFramebuffer = "framebuffer"
	BackendDirect      = "direct"

	RendererHagl   = "hagl"
	RendererVector = "vector"

	PanelTerminal = "terminal"
	PanelDevice   = "device"
	PanelMemory   = "memory"
	PanelEZIO     = "ezio"
)

// Config selects the display stack and the task timing.
type Config struct {
	Width  int
	Height int

	// Backend is framebuffer (back buffer flushed by its own task) or direct.
	Backend string
	// Renderer is hagl (pixel exact) or vector (anti-aliased gg).
	Renderer string
	// Panel is terminal, device, ezio or memory.
	Panel string
	// Device is the file written by the device panel, or the serial port of
	// the ezio panel.
	Device string

	FlushRate       int
	SwitchInterval  time.Duration
	OverlayInterval time.Duration
	Cores           int
	Start           string
	Seed            uint64

	// Duration stops the demo after a while; 0 runs until interrupted.
	Duration time.Duration
}

// Default returns the settings of the original board: a 320x240 panel with a
// back buffer flushed 30 times a second on a dual core target.
func Default() Config {
	return Config{
		Width:          320,
		Height:         240,
		Backend:        BackendFramebuffer,
		Renderer:       RendererHagl,
		Panel:          PanelTerminal,
		Device:         "/dev/fb0",
		FlushRate:      30,
		SwitchInterval: 10 * time.Second,
		Cores:          2,
		Start:          demo.RGBBars.String(),
	}
}

// Buffered reports whether the display keeps a back buffer.
func (c Config) Buffered() bool {
	return c.Backend == BackendFramebuffer || c.Renderer == RendererVector
}

// StartKind returns the first demo.
func (c Config) StartKind() (demo.Kind, error) {
	if c.Start == "" {
		return demo.RGBBars, nil
	}
	return demo.Parse(c.Start)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0 || c.Width > 4096 || c.Height > 4096:
		return errors.Errorf("config: invalid display size %dx%d", c.Width, c.Height)
	case c.FlushRate <= 0 || c.FlushRate > 1000:
		return errors.Errorf("config: flush rate %d out of range 1..1000", c.FlushRate)
	case c.SwitchInterval <= 0:
		return errors.Errorf("config: switch interval must be positive")
	case c.OverlayInterval < 0:
		return errors.Errorf("config: overlay interval must not be negative")
	case c.Cores <= 0:
		return errors.Errorf("config: cores must be positive")
	case c.Duration < 0:
		return errors.Errorf("config: duration must not be negative")
	}
	if !oneOf(c.Backend, BackendFramebuffer, BackendDirect) {
		return errors.Errorf("config: unknown backend %q", c.Backend)
	}
	if !oneOf(c.Renderer, RendererHagl, RendererVector) {
		return errors.Errorf("config: unknown renderer %q", c.Renderer)
	}
	if c.Renderer == RendererVector && c.Backend == BackendDirect {
		return errors.Errorf("config: the vector renderer needs the framebuffer backend")
	}
	if !oneOf(c.Panel, PanelTerminal, PanelDevice, PanelMemory, PanelEZIO) {
		return errors.Errorf("config: unknown panel %q", c.Panel)
	}
	if (c.Panel == PanelDevice || c.Panel == PanelEZIO) && c.Device == "" {
		return errors.Errorf("config: %s panel needs a device path", c.Panel)
	}
	if _, err := c.StartKind(); err != nil {
		return err
	}
	return nil
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
