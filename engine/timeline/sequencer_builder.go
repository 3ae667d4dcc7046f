package timeline

import (
	"log/slog"

	"github.com/google/uuid"
)

// SequencerBuilderOption is a functional option for configuring a Sequencer.
type SequencerBuilderOption func(s *sequencer)

// WithScope sets whether the timeline is a composition or an animation timeline.
//
// Parameters:
//   - scope: the timeline scope
//
// Returns:
//   - SequencerBuilderOption: option function to apply
func WithScope(scope Scope) SequencerBuilderOption {
	return func(s *sequencer) {
		s.scope = scope
	}
}

// WithID sets the document identifier instead of generating one.
//
// Parameters:
//   - id: the identifier
//
// Returns:
//   - SequencerBuilderOption: option function to apply
func WithID(id uuid.UUID) SequencerBuilderOption {
	return func(s *sequencer) {
		s.id = id
	}
}

// WithFrameMax sets the last frame of the timeline.
//
// Parameters:
//   - frame: the frame bound, values below 1 are ignored
//
// Returns:
//   - SequencerBuilderOption: option function to apply
func WithFrameMax(frame int) SequencerBuilderOption {
	return func(s *sequencer) {
		s.SetFrameMax(frame)
	}
}

// WithTracks appends top-level rows.
//
// Parameters:
//   - tracks: the rows to append
//
// Returns:
//   - SequencerBuilderOption: option function to apply
func WithTracks(tracks ...*Track) SequencerBuilderOption {
	return func(s *sequencer) {
		for _, t := range tracks {
			s.AddTrack(t)
		}
	}
}

// WithKeyFrameSet registers the keyframe callback.
func WithKeyFrameSet(fn KeyFrameSetFunc) SequencerBuilderOption {
	return func(s *sequencer) {
		s.onKeyFrameSet = fn
	}
}

// WithLogger sets the logger used for edit diagnostics.
func WithLogger(logger *slog.Logger) SequencerBuilderOption {
	return func(s *sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}
