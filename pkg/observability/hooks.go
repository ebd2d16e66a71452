// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional. Libraries emit events through small hook
// interfaces; the binary decides at startup where those events go. The
// defaults are no-ops, so a library used on its own costs nothing.
//
// # Hook Categories
//
//   - [EngineHooks]: graph builds, layouts, reorganizations and drags
//   - [StoreHooks]: persistence gateway reads and writes
//   - [HTTPHooks]: outgoing requests to the extraction service
//
// # Usage
//
// Register hooks at application startup:
//
//	reg := prometheus.NewRegistry()
//	hooks := observability.NewPrometheusHooks(reg)
//	observability.SetEngineHooks(hooks)
//	observability.SetStoreHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	next, err := reorg.Apply(f, op, opts)
//	observability.Engine().OnApply(ctx, string(op.Kind), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the graph engine.
type EngineHooks interface {
	// OnBuild records a tree to graph build.
	OnBuild(ctx context.Context, nodeCount int, duration time.Duration, err error)

	// OnLayout records a full or subtree layout pass.
	OnLayout(ctx context.Context, orientation string, nodeCount int, duration time.Duration)

	// OnApply records a reorganization attempt. op is the operation kind or a
	// manual edit name such as "rename".
	OnApply(ctx context.Context, op string, duration time.Duration, err error)

	// OnDragEnd records how a drag finished ("candidate-found", "no-candidate",
	// "cancelled").
	OnDragEnd(ctx context.Context, outcome string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the persistence gateway.
type StoreHooks interface {
	// OnLoad records a read. hit is false when the key was absent.
	OnLoad(ctx context.Context, backend, kind string, hit bool, duration time.Duration, err error)

	// OnSave records a write of size bytes.
	OnSave(ctx context.Context, backend, kind string, size int, duration time.Duration, err error)

	// OnRollback records a published state restored after a failed save.
	OnRollback(ctx context.Context, backend string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout, open breaker).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBuild(context.Context, int, time.Duration, error)    {}
func (NoopEngineHooks) OnLayout(context.Context, string, int, time.Duration)  {}
func (NoopEngineHooks) OnApply(context.Context, string, time.Duration, error) {}
func (NoopEngineHooks) OnDragEnd(context.Context, string)                     {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error)  {}
func (NoopStoreHooks) OnRollback(context.Context, string)                                 {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks. Nil is ignored.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
