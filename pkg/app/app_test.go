package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagostin/hagl-demo/pkg/demo"
	"github.com/sagostin/hagl-demo/pkg/hagl"
	"github.com/sagostin/hagl-demo/pkg/hal"
	"github.com/sagostin/hagl-demo/pkg/panel"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(d Display, opts Options) *App {
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	return New(d, opts, quietLogger())
}

func TestApp_SwitchAdvancesAndResets(t *testing.T) {
	a := newTestApp(newFakeDisplay(320, 240, true), DefaultOptions())
	require.Equal(t, demo.RGBBars, a.Current())

	for i := 0; i < 100; i++ {
		a.drawOne()
	}
	a.pps.Update(100)

	next := a.Advance()
	assert.Equal(t, demo.Pixels, next)
	assert.Equal(t, "PIXELS", a.Current().String())
	assert.Zero(t, a.Drawn())
	assert.Zero(t, a.PPS().Current())
	assert.Zero(t, a.PPS().Pending())
}

func TestApp_SwitchTaskAfterInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestApp(newFakeDisplay(320, 240, true), Options{SwitchInterval: 20 * time.Millisecond})
	done := make(chan error, 1)
	go func() { done <- a.switchTask(ctx) }()

	// the first demo runs for a full interval before the first switch
	assert.Equal(t, demo.RGBBars, a.Current())
	require.Eventually(t, func() bool { return a.Current() == demo.Pixels }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestApp_AdvanceCyclesEveryStart(t *testing.T) {
	for i := 0; i < demo.Count; i++ {
		a := newTestApp(newFakeDisplay(320, 240, true), Options{Start: demo.Kind(i)})
		for j := 0; j < demo.Count; j++ {
			a.Advance()
			assert.True(t, a.Current().Valid())
		}
		assert.Equal(t, demo.Kind(i), a.Current())
	}
}

func TestApp_OverlayResetsDrawn(t *testing.T) {
	d := newFakeDisplay(320, 240, true)
	a := newTestApp(d, DefaultOptions())

	for i := 0; i < 57; i++ {
		a.drawOne()
	}
	require.Equal(t, uint64(57), a.Drawn())

	a.drawOverlay()
	assert.Zero(t, a.Drawn())
	assert.Equal(t, uint64(57), a.PPS().Pending())

	for i := 1; i <= 10; i++ {
		a.drawOne()
		assert.Equal(t, uint64(i), a.Drawn())
	}
}

func TestApp_OverlayText(t *testing.T) {
	for _, buffered := range []bool{true, false} {
		d := newFakeDisplay(320, 240, buffered)
		a := newTestApp(d, Options{Start: demo.FilledCircles})
		a.drawOverlay()

		texts := d.Texts()
		if buffered {
			require.Len(t, texts, 2)
			assert.Equal(t, "0 FILLED CIRCLES PER SECOND       ", texts[0].text)
			assert.Equal(t, 6, texts[0].at.X)
			assert.Equal(t, "0.0 FPS  ", texts[1].text)
			assert.Equal(t, 320-56, texts[1].at.X)
			assert.Equal(t, 240-14, texts[1].at.Y)
			assert.Equal(t, time.Second, a.OverlayInterval())
		} else {
			require.Len(t, texts, 1)
			assert.Equal(t, 8, texts[0].at.X)
			assert.Equal(t, 2*time.Second, a.OverlayInterval())
		}
		assert.Equal(t, 4, texts[0].at.Y)
		for _, tx := range texts {
			assert.Equal(t, 320, tx.clip.Dx(), "overlay draws with the full screen clip")
			assert.Equal(t, 240, tx.clip.Dy())
		}
		assert.Equal(t, 0, d.Clip().Min.X)
		assert.Equal(t, 20, d.Clip().Min.Y)
		assert.Equal(t, 320, d.Clip().Max.X)
		assert.Equal(t, 240-20, d.Clip().Max.Y)
	}
}

func TestApp_ConcurrentFlushesSerialise(t *testing.T) {
	d := newFakeDisplay(320, 240, true)
	a := newTestApp(d, DefaultOptions())

	var inside, maxInside atomic.Int32
	entered := make(chan int, 2)
	release := make(chan struct{})
	var order atomic.Int32
	d.flushHook = func() {
		n := inside.Add(1)
		if n > maxInside.Load() {
			maxInside.Store(n)
		}
		entered <- int(order.Add(1))
		<-release
		inside.Add(-1)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.Flush(context.Background())
		assert.NoError(t, err)
	}()
	require.Equal(t, 1, <-entered)

	secondDone := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.Flush(context.Background())
		assert.NoError(t, err)
		close(secondDone)
	}()

	select {
	case <-entered:
		t.Fatal("second flush entered while the first was in progress")
	case <-secondDone:
		t.Fatal("second flush completed while the first was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	release <- struct{}{}
	require.Equal(t, 2, <-entered)
	release <- struct{}{}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 2, d.Flushes())
	assert.Equal(t, uint64(2), a.FPS().Pending())
	assert.Equal(t, uint64(2*320*240*2), a.BPS().Pending())
}

func TestApp_FailedFlushNotCounted(t *testing.T) {
	d := newFakeDisplay(32, 24, true)
	d.flushErr = errors.New("spi timeout")
	a := newTestApp(d, DefaultOptions())

	_, err := a.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, d.Flushes())
	assert.Zero(t, a.FPS().Pending())
	assert.Zero(t, a.BPS().Pending())

	d.mu.Lock()
	d.flushErr = nil
	d.mu.Unlock()
	_, err = a.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.FPS().Pending())
	assert.Equal(t, uint64(32*24*2), a.BPS().Pending())
}

func TestApp_FlushCancelledWhileWaiting(t *testing.T) {
	a := newTestApp(newFakeDisplay(32, 24, true), DefaultOptions())
	require.NoError(t, a.lock.Lock(context.Background()))
	defer a.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := a.Flush(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestApp_FlushWithoutDisplay(t *testing.T) {
	a := newTestApp(nil, DefaultOptions())
	_, err := a.Flush(context.Background())
	assert.ErrorIs(t, err, ErrNoDisplay)
}

func TestApp_RunWithoutDisplay(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	a := New(nil, DefaultOptions(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	assert.Empty(t, a.Tasks())
	assert.Contains(t, buf.String(), "level=ERROR msg=\"no display\"")
}

func TestApp_RunTaskSets(t *testing.T) {
	tests := []struct {
		name     string
		buffered bool
		cores    int
		want     []string
		core     int
	}{
		{"buffered dual core", true, 2, []string{"Framebuffer", "FPS", "Demo", "Switch"}, 1},
		{"buffered single core", true, 1, []string{"Framebuffer", "FPS", "Demo", "Switch"}, 0},
		{"unbuffered", false, 2, []string{"FPS", "Demo", "Switch"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDisplay(64, 48, tt.buffered)
			a := newTestApp(d, Options{
				Cores:           tt.cores,
				FlushRate:       200,
				SwitchInterval:  15 * time.Millisecond,
				OverlayInterval: 5 * time.Millisecond,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			require.NoError(t, a.Run(ctx))

			var names []string
			for _, task := range a.Tasks() {
				names = append(names, task.Name)
				switch task.Name {
				case "Framebuffer":
					assert.Equal(t, 0, task.Core)
					assert.Equal(t, 1, task.Priority)
					assert.Equal(t, 8192, task.StackSize)
				case "Switch":
					assert.Equal(t, tt.core, task.Core)
					assert.Equal(t, 2048, task.StackSize)
					assert.Equal(t, 2, task.Priority)
				default:
					assert.Equal(t, tt.core, task.Core)
					assert.Equal(t, 8192, task.StackSize)
				}
			}
			assert.Equal(t, tt.want, names)

			assert.Equal(t, 1, d.Calls("clear"))
			assert.NotZero(t, d.Calls("text"), "overlay ran")
			assert.NotEqual(t, demo.RGBBars, a.Current(), "switch ran")
			if tt.buffered {
				assert.NotZero(t, d.Flushes())
			} else {
				assert.Zero(t, d.Flushes())
			}
		})
	}
}

func TestApp_RunOnMemoryPanel(t *testing.T) {
	p := panel.NewMemory(64, 48)
	backend, err := hal.NewDirect(p)
	require.NoError(t, err)
	s := hagl.Init(backend)

	var buf bytes.Buffer
	a := New(s, Options{Seed: 3, OverlayInterval: 5 * time.Millisecond}, slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	// RGB BARS fills the demo area; the header row keeps the overlay text
	assert.Equal(t, hal.RGB565(255, 0, 0).RGBA(), p.At(0, 30))
	assert.Equal(t, hal.RGB565(0, 0, 255).RGBA(), p.At(63, 30))
	assert.False(t, strings.Contains(buf.String(), "Back buffer"))
	assert.Contains(t, buf.String(), "starting hagl demo")
}
