package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/sagostin/hagl-demo/pkg/app"
	"github.com/sagostin/hagl-demo/pkg/config"
	"github.com/sagostin/hagl-demo/pkg/logx"
	"github.com/sagostin/hagl-demo/pkg/panel"
)

var cfg = config.Default()

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntVar(&cfg.Width, `width`, cfg.Width, `display width in pixels`)
	f.IntVar(&cfg.Height, `height`, cfg.Height, `display height in pixels`)
	f.StringVar(&cfg.Backend, `backend`, cfg.Backend, `hal backend (framebuffer, direct)`)
	f.StringVar(&cfg.Renderer, `renderer`, cfg.Renderer, `renderer (hagl, vector)`)
	f.StringVar(&cfg.Panel, `panel`, cfg.Panel, `panel (terminal, device, ezio, memory)`)
	f.StringVar(&cfg.Device, `device`, cfg.Device, `RGB565 device file, or serial port of the ezio panel`)
	f.IntVar(&cfg.FlushRate, `flush-rate`, cfg.FlushRate, `back buffer flushes per second`)
	f.DurationVar(&cfg.SwitchInterval, `switch`, cfg.SwitchInterval, `time each demo runs`)
	f.DurationVar(&cfg.OverlayInterval, `overlay`, cfg.OverlayInterval, `overlay refresh period (0 picks one for the backend)`)
	f.IntVar(&cfg.Cores, `cores`, cfg.Cores, `processor cores of the emulated target`)
	f.StringVar(&cfg.Start, `start`, cfg.Start, `first demo`)
	f.Uint64Var(&cfg.Seed, `seed`, cfg.Seed, `random seed (0 picks one)`)
	f.DurationVar(&cfg.Duration, `duration`, cfg.Duration, `stop after this long (0 runs until interrupted)`)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the demo",
	Long:  "cycle through the drawing demos until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error { return runDemo(cmd.Context(), cfg) })
	},
}

func runDemo(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	start, err := cfg.StartKind()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Panel == config.PanelTerminal)
	if err != nil {
		return err
	}
	defer closeLog()
	gg.SetLogger(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, err := openPanel(cfg, logger)
	if err != nil {
		return err
	}
	display, err := openDisplay(cfg, p)
	if err != nil {
		if c, ok := p.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return err
	}
	defer func() {
		logx.IsErr(display.Close(), logger, slog.LevelWarn, "op", "close display")
	}()

	if term, ok := p.(*panel.Terminal); ok {
		go func() {
			select {
			case <-term.Quit():
				cancel()
			case <-ctx.Done():
			}
		}()
		if !display.HasBackBuffer() {
			go term.Refresh(ctx, time.Second/time.Duration(cfg.FlushRate))
		}
	}

	a := app.New(display, app.Options{
		FlushRate:       cfg.FlushRate,
		SwitchInterval:  cfg.SwitchInterval,
		OverlayInterval: cfg.OverlayInterval,
		Cores:           cfg.Cores,
		Start:           start,
		Seed:            cfg.Seed,
		Version:         version,
	}, logger)
	return a.Run(ctx)
}
