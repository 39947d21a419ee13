// Package observability provides hooks for metrics, tracing, and logging.
//
// Library packages stay free of any observability backend. Callers register
// hook implementations at startup and the pipeline reports events to them.
//
// # Architecture
//
// Each event category is a hook interface with a no-op default. A global
// registry holds the current implementation; hooks are registered by main,
// never by libraries, which avoids import cycles.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTraceHooks(&myTraceHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// The pipeline emits events around each stage:
//
//	observability.Trace().OnTraceStart(ctx, "L")
//	// ... trace ...
//	observability.Trace().OnTraceComplete(ctx, "L", nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Trace Hooks
// =============================================================================

// TraceHooks receives events from the build, trace and render stages.
// root is the label of the expression's root value ("" when unlabeled).
type TraceHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, source string)
	OnBuildComplete(ctx context.Context, source, root string, duration time.Duration, err error)

	// Trace events
	OnTraceStart(ctx context.Context, root string)
	OnTraceComplete(ctx context.Context, root string, nodeCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events when documents are read or artifacts written.
type StorageHooks interface {
	// OnRead records a document read from url.
	OnRead(ctx context.Context, url string, size int)

	// OnWrite records an artifact written to url.
	OnWrite(ctx context.Context, url string, size int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the artifact cache.
type CacheHooks interface {
	// OnCacheHit records a cache hit for an artifact format.
	OnCacheHit(ctx context.Context, format string)

	// OnCacheMiss records a cache miss for an artifact format.
	OnCacheMiss(ctx context.Context, format string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, format string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTraceHooks is a no-op implementation of TraceHooks.
type NoopTraceHooks struct{}

func (NoopTraceHooks) OnBuildStart(context.Context, string)                                  {}
func (NoopTraceHooks) OnBuildComplete(context.Context, string, string, time.Duration, error) {}
func (NoopTraceHooks) OnTraceStart(context.Context, string)                                  {}
func (NoopTraceHooks) OnTraceComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopTraceHooks) OnRenderStart(context.Context, []string)                               {}
func (NoopTraceHooks) OnRenderComplete(context.Context, []string, time.Duration, error)      {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnRead(context.Context, string, int)  {}
func (NoopStorageHooks) OnWrite(context.Context, string, int) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	traceHooks   TraceHooks   = NoopTraceHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetTraceHooks registers custom trace hooks. A nil argument is ignored.
func SetTraceHooks(h TraceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		traceHooks = h
	}
}

// SetStorageHooks registers custom storage hooks. A nil argument is ignored.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Trace returns the registered trace hooks.
func Trace() TraceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return traceHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	traceHooks = NoopTraceHooks{}
	storageHooks = NoopStorageHooks{}
	cacheHooks = NoopCacheHooks{}
}
