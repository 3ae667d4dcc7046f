package animator

import (
	"log/slog"

	"github.com/tanema/gween/ease"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithMode sets the initial playback mode.
//
// Parameters:
//   - mode: the mode
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the mode option to an animator
func WithMode(mode Mode) AnimatorBuilderOption {
	return func(a *animator) {
		a.mode = mode
	}
}

// WithClock replaces the default clock.
//
// Parameters:
//   - clock: the playback clock; nil keeps the default
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clock option to an animator
func WithClock(clock *Clock) AnimatorBuilderOption {
	return func(a *animator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithRootMotion enables translation stripping on root-motion joints.
//
// Parameters:
//   - enabled: true to strip root translation
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the root motion option to an animator
func WithRootMotion(enabled bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.rootMotion = enabled
	}
}

// WithBlendEasing shapes crossfade ramps with an easing function from the gween ease package.
// Factors of exactly 0 or 1 are never reshaped, so hard cuts stay hard.
//
// Parameters:
//   - fn: the easing function; nil or ease.Linear leaves factors untouched
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the easing option to an animator
func WithBlendEasing(fn ease.TweenFunc) AnimatorBuilderOption {
	return func(a *animator) {
		a.shape = shaper(fn)
	}
}

// WithLogger sets the logger used for playback diagnostics.
func WithLogger(logger *slog.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}
