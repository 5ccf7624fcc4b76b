package main

import (
	"log/slog"

	"github.com/go-errors/errors"
	"tinygo.org/x/drivers"

	"github.com/sagostin/hagl-demo/pkg/app"
	"github.com/sagostin/hagl-demo/pkg/config"
	"github.com/sagostin/hagl-demo/pkg/hagl"
	"github.com/sagostin/hagl-demo/pkg/hal"
	"github.com/sagostin/hagl-demo/pkg/panel"
	"github.com/sagostin/hagl-demo/pkg/vector"
)

// closingDisplay is a display that owns its panel.
type closingDisplay interface {
	app.Display
	Close() error
}

// openPanel opens the panel named by the config.
func openPanel(cfg config.Config, logger *slog.Logger) (drivers.Displayer, error) {
	switch cfg.Panel {
	case config.PanelTerminal:
		t, err := panel.NewTerminal(cfg.Width, cfg.Height, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.PanelDevice:
		d, err := panel.OpenDevice(cfg.Device, cfg.Width, cfg.Height, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.PanelEZIO:
		e, err := panel.OpenEZIO(cfg.Device, logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	case config.PanelMemory:
		return panel.NewMemory(cfg.Width, cfg.Height), nil
	}
	return nil, errors.Errorf("unknown panel %q", cfg.Panel)
}

// openDisplay puts the configured backend and renderer on top of the panel.
func openDisplay(cfg config.Config, p drivers.Displayer) (closingDisplay, error) {
	if cfg.Renderer == config.RendererVector {
		c, err := vector.New(p)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	var backend hal.Backend
	var err error
	if cfg.Backend == config.BackendDirect {
		backend, err = hal.NewDirect(p)
	} else {
		backend, err = hal.NewFrameBuffer(p)
	}
	if err != nil {
		return nil, err
	}
	return hagl.Init(backend), nil
}
