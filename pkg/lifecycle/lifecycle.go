// Package lifecycle coordinates startup hooks, shutdown hooks, and readiness
// across the subsystems of a process.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

type watched struct {
	name    string
	checker ReadinessChecker
}

// Coordinator runs startup and shutdown hooks and aggregates readiness.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	started  atomic.Bool

	mu      sync.RWMutex
	watched []watched
}

// New creates a Coordinator whose context is cancelled by Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine. WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn in its own goroutine. Shutdown waits for it.
// Hooks block on <-Context().Done() before releasing resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Watch adds a named subsystem whose readiness gates Ready.
func (c *Coordinator) Watch(name string, checker ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watched = append(c.watched, watched{name: name, checker: checker})
}

// Ready reports whether startup has finished and no watched subsystem is pending.
func (c *Coordinator) Ready() bool {
	return c.started.Load() && len(c.Pending()) == 0
}

// Pending returns the names of watched subsystems that are not ready.
func (c *Coordinator) Pending() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pending []string
	for _, w := range c.watched {
		if !w.checker.Ready() {
			pending = append(pending, w.name)
		}
	}
	return pending
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.started.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
