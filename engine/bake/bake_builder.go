package bake

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// BakerBuilderOption is a functional option for configuring a Baker.
type BakerBuilderOption func(*baker)

// WithWorkers sets how many frames are evaluated in parallel.
//
// Parameters:
//   - n: the worker count; values <= 0 keep the default
//
// Returns:
//   - BakerBuilderOption: a function that applies the worker count to a baker
func WithWorkers(n int) BakerBuilderOption {
	return func(b *baker) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize sets how many frames may wait for a free worker.
func WithQueueSize(n int) BakerBuilderOption {
	return func(b *baker) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithRange limits baking to frames start through end inclusive.
// An end below zero bakes up to the timeline's frame max.
//
// Parameters:
//   - start: the first frame
//   - end: the last frame, or -1
//
// Returns:
//   - BakerBuilderOption: a function that applies the range to a baker
func WithRange(start, end int) BakerBuilderOption {
	return func(b *baker) {
		b.start = start
		b.end = end
	}
}

// WithProfiler counts baked frames on p.
func WithProfiler(p *profiler.Profiler) BakerBuilderOption {
	return func(b *baker) {
		b.profiler = p
	}
}

func WithLogger(logger *slog.Logger) BakerBuilderOption {
	return func(b *baker) {
		if logger != nil {
			b.logger = logger
		}
	}
}
