// Package task runs cancellable background work for a single browser
// session: the location floor timer, the staged analysis animation and the
// fire-and-forget persistence calls. Every timer the flow starts is owned by a
// Handle so leaving a state can stop it.
package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Handle struct {
	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}
}

// Go starts fn on its own goroutine. fn must return promptly once ctx is done.
func Go(parent context.Context, fn func(ctx context.Context)) *Handle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Handle{parent: parent, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		fn(ctx)
	}()
	return h
}

// Cancel stops the task. It is idempotent and safe after completion.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled.Store(true)
	h.cancel()
}

// IsCancelled reports whether Cancel was called or the parent context ended.
// A task that finished on its own is not cancelled.
func (h *Handle) IsCancelled() bool {
	if h == nil {
		return false
	}
	return h.cancelled.Load() || h.parent.Err() != nil
}

func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Wait() { <-h.done }

// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter
// case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Group tracks the live handles of one owner.
type Group struct {
	mu      sync.Mutex
	handles map[*Handle]struct{}
}

func NewGroup() *Group {
	return &Group{handles: make(map[*Handle]struct{})}
}

func (g *Group) Go(parent context.Context, fn func(ctx context.Context)) *Handle {
	h := Go(parent, fn)
	g.mu.Lock()
	g.handles[h] = struct{}{}
	g.mu.Unlock()
	go func() {
		<-h.done
		g.mu.Lock()
		delete(g.handles, h)
		g.mu.Unlock()
	}()
	return h
}

// CancelAll cancels every live handle and returns how many were cancelled.
func (g *Group) CancelAll() int {
	g.mu.Lock()
	live := make([]*Handle, 0, len(g.handles))
	for h := range g.handles {
		live = append(live, h)
	}
	g.mu.Unlock()
	for _, h := range live {
		h.Cancel()
	}
	return len(live)
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}
