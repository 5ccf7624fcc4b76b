package rtos

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Mutex is a binary semaphore whose acquire can be abandoned through a
// context.
type Mutex struct {
	sem *semaphore.Weighted
}

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the mutex is held or ctx is done.
func (m *Mutex) Lock(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

// Unlock releases the mutex. It panics if the mutex is not held.
func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
