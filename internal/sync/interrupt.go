package sync

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// Interrupter converts operator interrupts into cooperative stop points.
// The first interrupt raises a flag that long passes poll between entities;
// a second interrupt before the flag is consumed escalates to a hard abort
// of the whole run.
type Interrupter struct {
	mu      sync.Mutex
	fired   bool
	aborted bool
}

// NewInterrupter returns an idle Interrupter.
func NewInterrupter() *Interrupter {
	return &Interrupter{}
}

// Trigger records one interrupt. Called from the signal watcher or tests.
func (i *Interrupter) Trigger() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fired {
		i.aborted = true
		return
	}
	i.fired = true
}

// Fired reports whether an unconsumed interrupt is pending.
func (i *Interrupter) Fired() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fired
}

// Aborted reports whether the run was interrupted twice.
func (i *Interrupter) Aborted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.aborted
}

// Reset consumes the pending interrupt so the run can continue with the
// next stage. The abort flag is sticky.
func (i *Interrupter) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fired = false
}

// Watch forwards SIGINT to the interrupter until ctx ends.
func (i *Interrupter) Watch(ctx context.Context) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				i.Trigger()
			}
		}
	}()
}
