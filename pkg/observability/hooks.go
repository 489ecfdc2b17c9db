// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about layout passes, chart storage, and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Layout hooks are called synchronously from inside a pointer event, so
// implementations must return quickly and must not call back into the
// engine.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(observability.NewLogLayoutHooks(logger))
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnSnap(blockID, targetID, moved)
//	observability.Store().OnGet(ctx, "sqlite", hit)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout coordinator.
type LayoutHooks interface {
	// OnSnap records a committed parent link; moved counts the blocks that
	// joined the tree (1 for a new block, the subtree size for a rearrange).
	OnSnap(blockID, targetID, moved int)

	// OnDetach records a block (and its subtree) leaving the tree for a drag.
	OnDetach(blockID, size int)

	// OnRestore records a cancelled drag returning to its original place.
	OnRestore(blockID int)

	// OnOverflow records an overflow correction shift.
	OnOverflow(shift float64)

	// OnRelayout records a full layout pass.
	OnRelayout(blocks int, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from chart storage backends.
type StoreHooks interface {
	// OnGet records a lookup and whether it found a document.
	OnGet(ctx context.Context, backend string, hit bool)

	// OnPut records a write.
	OnPut(ctx context.Context, backend string, size int)

	// OnDelete records a removal.
	OnDelete(ctx context.Context, backend string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnSnap(int, int, int)          {}
func (NoopLayoutHooks) OnDetach(int, int)             {}
func (NoopLayoutHooks) OnRestore(int)                 {}
func (NoopLayoutHooks) OnOverflow(float64)            {}
func (NoopLayoutHooks) OnRelayout(int, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGet(context.Context, string, bool) {}
func (NoopStoreHooks) OnPut(context.Context, string, int)  {}
func (NoopStoreHooks) OnDelete(context.Context, string)    {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Logging Implementations
// =============================================================================

// LogLayoutHooks writes layout events to a logger at debug level.
type LogLayoutHooks struct {
	Logger *log.Logger
}

// NewLogLayoutHooks returns layout hooks that log to logger.
func NewLogLayoutHooks(logger *log.Logger) *LogLayoutHooks {
	return &LogLayoutHooks{Logger: logger}
}

func (h *LogLayoutHooks) OnSnap(blockID, targetID, moved int) {
	h.Logger.Debug("snap", "block", blockID, "target", targetID, "moved", moved)
}

func (h *LogLayoutHooks) OnDetach(blockID, size int) {
	h.Logger.Debug("detach", "block", blockID, "size", size)
}

func (h *LogLayoutHooks) OnRestore(blockID int) {
	h.Logger.Debug("restore", "block", blockID)
}

func (h *LogLayoutHooks) OnOverflow(shift float64) {
	h.Logger.Debug("overflow corrected", "shift", shift)
}

func (h *LogLayoutHooks) OnRelayout(blocks int, duration time.Duration) {
	h.Logger.Debug("relayout", "blocks", blocks, "duration", duration)
}

// LogHTTPHooks writes completed requests to a logger at info level.
type LogHTTPHooks struct {
	Logger *log.Logger
}

func (h *LogHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *LogHTTPHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("request", "method", method, "path", path, "status", status, "duration", d)
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any engine is created.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
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
	layoutHooks = NoopLayoutHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
