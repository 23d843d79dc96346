// Package observability provides hooks for instrumenting the ordiview
// pipeline.
//
// Hooks let a host program observe loading, processing and writing without
// the pipeline depending on a particular metrics or tracing backend. The
// default hooks do nothing.
//
// # Usage
//
// Register hooks once at startup:
//
//	observability.SetPipelineHooks(observability.LogHooks{Logger: logger})
//
// The pipeline reports each stage:
//
//	observability.Pipeline().OnStageStart(ctx, "biplot")
//	// ... compute ...
//	observability.Pipeline().OnStageComplete(ctx, "biplot", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the ordination pipeline.
type PipelineHooks interface {
	// Input events, one per coordinates, mapping or counts file.
	OnLoadStart(ctx context.Context, kind, path string)
	OnLoadComplete(ctx context.Context, kind, path string, samples int, duration time.Duration, err error)

	// Processing stages (align, custom-axes, jackknife, biplot, serialize).
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnWrite records the output bundle being written.
	OnWrite(ctx context.Context, dir string, files, bytes int, err error)
}

// =============================================================================
// Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnStageStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnWrite(context.Context, string, int, int, error)             {}

// LogHooks reports pipeline events at debug level.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

func (h LogHooks) OnLoadStart(_ context.Context, kind, path string) {
	h.logger().Debug("loading", "kind", kind, "path", path)
}

func (h LogHooks) OnLoadComplete(_ context.Context, kind, path string, samples int, d time.Duration, err error) {
	if err != nil {
		h.logger().Debug("load failed", "kind", kind, "path", path, "error", err)
		return
	}
	h.logger().Debug("loaded", "kind", kind, "samples", samples, "duration", d)
}

func (h LogHooks) OnStageStart(_ context.Context, stage string) {
	h.logger().Debug("stage started", "stage", stage)
}

func (h LogHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger().Debug("stage failed", "stage", stage, "duration", d, "error", err)
		return
	}
	h.logger().Debug("stage done", "stage", stage, "duration", d)
}

func (h LogHooks) OnWrite(_ context.Context, dir string, files, bytes int, err error) {
	if err != nil {
		h.logger().Debug("write failed", "dir", dir, "error", err)
		return
	}
	h.logger().Debug("wrote bundle", "dir", dir, "files", files, "bytes", bytes)
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
