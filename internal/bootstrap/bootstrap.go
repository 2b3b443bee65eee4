// Package bootstrap provides an explicit process-wide initialization state
// machine: Uninitialized -> Initializing -> Ready | Failed.
//
// It replaces implicit "already connected" flags: store connections are
// established through a single init function guarded by a single-entry lock.
// A long-running server calls Run once at startup and fails fast on error; a
// request-triggered cold-start path may call Run from handlers and degrade
// gracefully, since concurrent callers simply wait for the first outcome.
package bootstrap

import (
	"context"
	"sync"
	"sync/atomic"
)

// State of the initialization machine.
type State int32

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

// String implements fmt.Stringer for logging.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Bootstrapper runs an init function at most once per process lifetime.
// The zero value is ready to use.
type Bootstrapper struct {
	mu    sync.Mutex
	state atomic.Int32
	err   error
}

// State reports the current state without blocking, so it stays observable
// while an init function is running.
func (b *Bootstrapper) State() State { return State(b.state.Load()) }

// Run executes init unless a previous call already settled the state.
// Concurrent callers block until the first caller finishes and then observe
// its outcome. A failure is sticky: later calls return the original error
// without re-running init.
func (b *Bootstrapper) Run(ctx context.Context, init func(ctx context.Context) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch State(b.state.Load()) {
	case Ready:
		return nil
	case Failed:
		return b.err
	}

	b.state.Store(int32(Initializing))
	if err := init(ctx); err != nil {
		b.err = err
		b.state.Store(int32(Failed))
		return err
	}
	b.state.Store(int32(Ready))
	return nil
}
