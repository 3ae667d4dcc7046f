package editor

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
)

// DocumentBuilderOption is a functional option for configuring a Document.
type DocumentBuilderOption func(*document)

// WithName sets the document's display name.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - DocumentBuilderOption: a function that applies the name option to a document
func WithName(name string) DocumentBuilderOption {
	return func(d *document) {
		d.name = name
	}
}

// WithScene sets the entity registry the document's rows resolve against.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - DocumentBuilderOption: a function that applies the scene option to a document
func WithScene(s scene.Scene) DocumentBuilderOption {
	return func(d *document) {
		if s != nil {
			d.scene = s
		}
	}
}

// WithLibrary sets the clip library Animation rows resolve against.
//
// Parameters:
//   - lib: the library
//
// Returns:
//   - DocumentBuilderOption: a function that applies the library option to a document
func WithLibrary(lib *model.Library) DocumentBuilderOption {
	return func(d *document) {
		if lib != nil {
			d.library = lib
		}
	}
}

// WithAnimator sets the blend scheduler that owns the document's clock.
//
// Parameters:
//   - a: the animator
//
// Returns:
//   - DocumentBuilderOption: a function that applies the animator option to a document
func WithAnimator(a animator.Animator) DocumentBuilderOption {
	return func(d *document) {
		if a != nil {
			d.animator = a
		}
	}
}

// WithSequencer opens seq as the document's timeline.
//
// Parameters:
//   - seq: the timeline
//
// Returns:
//   - DocumentBuilderOption: a function that applies the sequencer option to a document
func WithSequencer(seq timeline.Sequencer) DocumentBuilderOption {
	return func(d *document) {
		d.sequencer = seq
	}
}

// WithLogger sets the logger used for document diagnostics.
func WithLogger(logger *slog.Logger) DocumentBuilderOption {
	return func(d *document) {
		if logger != nil {
			d.logger = logger
		}
	}
}
