package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Clock is the playback context of one open document: it replaces global playback state so pose
// resolution can be driven, and tested, without an editor.
type Clock struct {
	// CurrentTime is the playback position in frames. Runtime sequences whose entity has no stack
	// tracks hold -1.
	CurrentTime float32

	// StartTime is the lower wrap bound.
	StartTime float32

	// EndTime bounds playback in ModeMap and whenever no other bound applies.
	EndTime float32

	// SequencerEnd bounds playback in ModeSequence.
	SequencerEnd float32

	// FPS converts seconds into frames.
	FPS float32

	// Direction is +1 for forward playback and -1 for reverse.
	Direction float32

	// Stopped pauses playback and snaps CurrentTime to whole frames.
	Stopped bool

	// Exporting steps exactly one frame per Advance regardless of dt.
	Exporting bool
}

// NewClock returns a stopped clock at frame 0 with 60 fps, forward direction and 300-frame bounds.
func NewClock() *Clock {
	return &Clock{
		EndTime:      300,
		SequencerEnd: 300,
		FPS:          60,
		Direction:    1,
		Stopped:      true,
	}
}

// Advance moves the clock by dt seconds and wraps it into [StartTime, end).
// A playing clock without a positive bound keeps its time.
//
// Parameters:
//   - dt: elapsed seconds since the last tick
//   - end: the wrap bound for the active mode
func (c *Clock) Advance(dt, end float32) {
	if c.Exporting {
		if !c.Stopped {
			c.CurrentTime++
		}
		return
	}
	if c.Stopped {
		c.CurrentTime = float32(math.Floor(float64(c.CurrentTime)))
		return
	}
	if end <= 0 {
		return
	}
	c.CurrentTime = wrap(c.CurrentTime+c.FPS*dt*c.Direction, c.StartTime, end)
}

// Frame returns CurrentTime truncated to a whole frame.
func (c *Clock) Frame() int {
	return int(c.CurrentTime)
}

// SetDirection selects forward or reverse playback.
func (c *Clock) SetDirection(reverse bool) {
	c.Direction = 1
	if reverse {
		c.Direction = -1
	}
}

// wrap loops t into [start, end) in either direction.
func wrap(t, start, end float32) float32 {
	return float32(math.Max(float64(start), float64(common.Fmod(end+t, end))))
}
