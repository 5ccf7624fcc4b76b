package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sagostin/hagl-demo/pkg/demo"
	"github.com/sagostin/hagl-demo/pkg/rtos"
	"github.com/sagostin/hagl-demo/pkg/stats"
)

// demoTask draws primitives of the current demo without pause.
func (a *App) demoTask(ctx context.Context) error {
	for i := 0; ; i++ {
		if i&0xff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		a.drawOne()
	}
}

func (a *App) drawOne() {
	demo.Render(a.Current(), a.display, a.rand)
	a.drawn.Add(1)
}

// Flush copies the back buffer to the panel under the framebuffer lock and
// feeds the flush counters. Concurrent calls are serialised.
func (a *App) Flush(ctx context.Context) (int, error) {
	if a.display == nil {
		return 0, ErrNoDisplay
	}
	if err := a.lock.Lock(ctx); err != nil {
		return 0, err
	}
	n, err := a.display.Flush()
	a.lock.Unlock()
	if err != nil {
		return n, err
	}

	a.bps.Update(uint64(n))
	a.fps.Update(1)
	return n, nil
}

// flushTask flushes at FlushRate on a fixed grid.
func (a *App) flushTask(ctx context.Context) error {
	period := time.Second / time.Duration(a.opts.FlushRate)
	last := time.Now()
	for {
		if _, err := a.Flush(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("flush failed", "err", err)
		}
		if err := rtos.DelayUntil(ctx, &last, period); err != nil {
			return err
		}
	}
}

// overlayTask refreshes the rate overlay.
func (a *App) overlayTask(ctx context.Context) error {
	period := a.OverlayInterval()
	for {
		a.drawOverlay()
		if err := rtos.Delay(ctx, period); err != nil {
			return err
		}
	}
}

// drawOverlay moves the drawn count into the primitive rate and prints the
// rates outside the demo area.
func (a *App) drawOverlay() {
	d := a.display
	w, h := d.Width(), d.Height()

	a.pps.Update(a.drawn.Swap(0))

	d.SetClip(0, 0, w-1, h-1)
	message := fmt.Sprintf("%.0f %s PER SECOND       ", a.pps.Current(), a.Current())
	if d.HasBackBuffer() {
		d.PutText(message, 6, 4, a.green)
		d.PutText(fmt.Sprintf("%.1f FPS  ", a.fps.Current()), w-56, h-14, a.green)
	} else {
		d.PutText(message, 8, 4, a.green)
	}
	d.SetClip(0, 20, w-1, h-21)
}

// switchTask moves to the next demo every SwitchInterval.
func (a *App) switchTask(ctx context.Context) error {
	for {
		if err := rtos.Delay(ctx, a.opts.SwitchInterval); err != nil {
			return err
		}
		a.Advance()
	}
}

// Advance logs the rates of the current demo and switches to the next one.
func (a *App) Advance() demo.Kind {
	k := a.Current()
	a.logger.Info(fmt.Sprintf("%.0f %s per second, FB %.1f FPS", a.pps.Current(), k, a.fps.Current()),
		"throughput", stats.FormatRate(a.bps.Current()),
	)

	next := k.Next()
	a.current.Store(uint32(next))
	a.pps.Reset()
	a.drawn.Store(0)
	return next
}
