// Package app runs the graphics demo: a set of tasks sharing one display.
//
// The demo task draws primitives as fast as it can, the flush task copies the
// back buffer to the panel at a fixed rate, the overlay task prints the current
// rates in the header and footer, and the switch task moves on to the next demo
// at a fixed interval. Only the flush takes the framebuffer lock; the demo and
// overlay tasks draw unguarded and may overlap.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-errors/errors"

	"github.com/sagostin/hagl-demo/pkg/demo"
	"github.com/sagostin/hagl-demo/pkg/hal"
	"github.com/sagostin/hagl-demo/pkg/rtos"
	"github.com/sagostin/hagl-demo/pkg/stats"
)

// Display is the display handle the tasks share.
type Display interface {
	demo.Canvas

	Depth() int
	HasBackBuffer() bool
	Clear()
	Flush() (int, error)
}

// ErrNoDisplay is returned by Flush when the app has no display.
var ErrNoDisplay error = errors.New("app: no display")

// Options tune the task timing.
type Options struct {
	// FlushRate is the number of flushes per second.
	FlushRate int
	// SwitchInterval is how long each demo runs.
	SwitchInterval time.Duration
	// OverlayInterval overrides the overlay refresh period, which is one second
	// with a back buffer and two seconds without.
	OverlayInterval time.Duration
	// Cores is the number of processor cores available to the demo tasks.
	Cores int
	// Start is the first demo shown.
	Start demo.Kind
	// Seed seeds the geometry generator; 0 picks a random seed.
	Seed uint64
	// Version is logged at startup.
	Version string
}

// DefaultOptions returns the timing of the original firmware.
func DefaultOptions() Options {
	return Options{
		FlushRate:      30,
		SwitchInterval: 10 * time.Second,
		Cores:          2,
	}
}

// App is the application context shared by every task.
type App struct {
	display Display
	opts    Options
	logger  *slog.Logger

	lock *rtos.Mutex
	fps  *stats.Counter
	bps  *stats.Counter
	pps  *stats.Counter

	current atomic.Uint32
	drawn   atomic.Uint64
	rand    *rand.Rand
	green   hal.Color

	mu    sync.Mutex
	sched *rtos.Scheduler
}

// New creates the application context. A nil display is reported by Run.
func New(display Display, opts Options, logger *slog.Logger) *App {
	def := DefaultOptions()
	if opts.FlushRate <= 0 {
		opts.FlushRate = def.FlushRate
	}
	if opts.SwitchInterval <= 0 {
		opts.SwitchInterval = def.SwitchInterval
	}
	if opts.Cores <= 0 {
		opts.Cores = 1
	}
	if !opts.Start.Valid() {
		opts.Start = demo.RGBBars
	}
	if logger == nil {
		logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	a := &App{
		display: display,
		opts:    opts,
		logger:  logger,
		lock:    rtos.NewMutex(),
		fps:     stats.New(time.Second),
		bps:     stats.New(time.Second),
		pps:     stats.New(time.Second),
		rand:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	a.current.Store(uint32(opts.Start))
	return a
}

// Current returns the demo being drawn.
func (a *App) Current() demo.Kind { return demo.Kind(a.current.Load()) }

// Drawn returns the primitives drawn since the last overlay or switch reset.
func (a *App) Drawn() uint64 { return a.drawn.Load() }

// FPS returns the flush rate counter.
func (a *App) FPS() *stats.Counter { return a.fps }

// BPS returns the flushed bytes per second counter.
func (a *App) BPS() *stats.Counter { return a.bps }

// PPS returns the primitives per second counter.
func (a *App) PPS() *stats.Counter { return a.pps }

// Tasks returns the tasks created by Run.
func (a *App) Tasks() []rtos.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched == nil {
		return nil
	}
	return a.sched.Tasks()
}

// OverlayInterval returns the overlay refresh period for the display.
func (a *App) OverlayInterval() time.Duration {
	if a.opts.OverlayInterval > 0 {
		return a.opts.OverlayInterval
	}
	if a.display != nil && a.display.HasBackBuffer() {
		return time.Second
	}
	return 2 * time.Second
}

// Run initialises the display and runs the tasks until ctx is done. Without a
// display no task is started; Run logs the failure and waits for ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting hagl demo",
		"version", a.opts.Version,
		"go", runtime.Version(),
		"heap", stats.FormatBytes(stats.HeapInUse()),
		"free", stats.FormatBytes(stats.FreeMemory()),
	)

	if a.display == nil {
		a.logger.Error("no display")
		<-ctx.Done()
		return nil
	}

	d := a.display
	if d.HasBackBuffer() {
		a.logger.Info(fmt.Sprintf("Back buffer: %dx%dx%d", d.Width(), d.Height(), d.Depth()))
	}

	d.Clear()
	a.fps.Reset()
	a.bps.Reset()
	a.pps.Reset()
	a.green = d.Color(0, 255, 0)
	a.logger.Info("heap after init", "heap", stats.FormatBytes(stats.HeapInUse()), "free", stats.FormatBytes(stats.FreeMemory()))

	d.SetClip(0, 20, d.Width()-1, d.Height()-21)

	sched := rtos.NewScheduler(ctx, a.logger)
	a.mu.Lock()
	a.sched = sched
	a.mu.Unlock()

	for _, t := range a.taskSet() {
		if err := sched.Spawn(t); err != nil {
			return err
		}
	}
	return sched.Wait()
}

// taskSet returns the tasks for the display. Single core targets run
// everything on core 0; otherwise the demo tasks go to core 1.
func (a *App) taskSet() []rtos.Task {
	core := 0
	if a.opts.Cores > 1 {
		core = 1
	}

	var tasks []rtos.Task
	if a.display.HasBackBuffer() {
		tasks = append(tasks, rtos.Task{Name: "Framebuffer", StackSize: 8192, Priority: 1, Core: 0, Run: a.flushTask})
	}
	return append(tasks,
		rtos.Task{Name: "FPS", StackSize: 8192, Priority: 2, Core: core, Run: a.overlayTask},
		rtos.Task{Name: "Demo", StackSize: 8192, Priority: 1, Core: core, Run: a.demoTask},
		rtos.Task{Name: "Switch", StackSize: 2048, Priority: 2, Core: core, Run: a.switchTask},
	)
}
