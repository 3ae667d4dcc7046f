package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/editor"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the periodic profiler summary.
//
// Parameters:
//   - enabled: if true, logs a summary every profiler interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler ticks are reported to. Defaults to a new profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithDocument registers a document during engine construction.
//
// Parameters:
//   - doc: the document to tick
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDocument(doc editor.Document) EngineBuilderOption {
	return func(e *engine) {
		e.documents[doc.Name()] = doc
	}
}

// WithSink sets where resolved skinning palettes are uploaded after every tick.
//
// Parameters:
//   - sink: the palette sink, e.g. a wgpu storage buffer sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSink(sink skinning.Sink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = sink
	}
}

func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
