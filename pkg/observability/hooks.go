// Package observability provides hooks for metrics and tracing.
//
// Library packages emit events through the hooks registered here without
// depending on any metrics backend. The default hooks do nothing; the serve
// command registers Prometheus-backed implementations at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetInspectHooks(&myInspectHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	err := v.Refresh()
//	observability.Inspect().OnRefresh(ctx, graphName, v.Len(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Inspect Hooks
// =============================================================================

// InspectHooks receives events from the poll cycle.
type InspectHooks interface {
	// OnRefresh records one snapshot rebuild.
	OnRefresh(ctx context.Context, graph string, nodeCount int, duration time.Duration, err error)

	// OnLayout records one layout pass.
	OnLayout(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// OnPoll records the display state a poll ended in.
	OnPoll(ctx context.Context, state string)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the output sinks.
type RenderHooks interface {
	OnRender(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Roster Hooks
// =============================================================================

// RosterHooks receives graph lifecycle events.
type RosterHooks interface {
	OnGraphRegistered(ctx context.Context, total int)
	OnGraphUnregistered(ctx context.Context, total int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopInspectHooks is a no-op implementation of InspectHooks.
type NoopInspectHooks struct{}

func (NoopInspectHooks) OnRefresh(context.Context, string, int, time.Duration, error) {}
func (NoopInspectHooks) OnLayout(context.Context, int, time.Duration, error)          {}
func (NoopInspectHooks) OnPoll(context.Context, string)                               {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRender(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRosterHooks is a no-op implementation of RosterHooks.
type NoopRosterHooks struct{}

func (NoopRosterHooks) OnGraphRegistered(context.Context, int)   {}
func (NoopRosterHooks) OnGraphUnregistered(context.Context, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	inspectHooks InspectHooks = NoopInspectHooks{}
	renderHooks  RenderHooks  = NoopRenderHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	rosterHooks  RosterHooks  = NoopRosterHooks{}
	hooksMu      sync.RWMutex
)

// SetInspectHooks registers custom inspect hooks. Nil is ignored.
func SetInspectHooks(h InspectHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		inspectHooks = h
	}
}

// SetRenderHooks registers custom render hooks. Nil is ignored.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetRosterHooks registers custom roster hooks. Nil is ignored.
func SetRosterHooks(h RosterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		rosterHooks = h
	}
}

// Inspect returns the registered inspect hooks.
func Inspect() InspectHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return inspectHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Roster returns the registered roster hooks.
func Roster() RosterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return rosterHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	inspectHooks = NoopInspectHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	rosterHooks = NoopRosterHooks{}
}
