// Package rtos is a small real-time style task layer on top of goroutines.
//
// Tasks carry the attributes an embedded scheduler would use (name, stack size,
// priority and core affinity). The Go runtime schedules them preemptively; the
// attributes are kept for logging and inspection.
package rtos

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-errors/errors"
	"golang.org/x/sync/errgroup"
)

// Task describes one independently scheduled unit of work.
type Task struct {
	Name      string
	StackSize int
	Priority  int
	Core      int
	Run       func(ctx context.Context) error
}

// Scheduler runs tasks until one fails or the context is cancelled.
type Scheduler struct {
	group  *errgroup.Group
	ctx    context.Context
	logger *slog.Logger

	mu    sync.Mutex
	tasks []Task
}

// NewScheduler creates a scheduler whose tasks stop when ctx is done.
func NewScheduler(ctx context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	group, ctx := errgroup.WithContext(ctx)
	return &Scheduler{group: group, ctx: ctx, logger: logger}
}

// Spawn starts a task.
func (s *Scheduler) Spawn(t Task) error {
	if t.Run == nil {
		return errors.Errorf("rtos: task %q has no body", t.Name)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	s.logger.Debug("task created",
		"name", t.Name,
		"stack", t.StackSize,
		"priority", t.Priority,
		"core", t.Core,
	)

	s.group.Go(func() error {
		err := t.Run(s.ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return errors.Errorf("task %s: %w", t.Name, err)
		}
		s.logger.Debug("task stopped", "name", t.Name)
		return nil
	})
	return nil
}

// Tasks returns the spawned tasks in creation order.
func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks...)
}

// Wait blocks until every task has returned and reports the first failure.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}
