package animator

import (
	"log/slog"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
)

// StackedClipInstance places one clip on a timeline. Instances are rebuilt from timeline tracks
// every tick and never persisted.
type StackedClipInstance struct {
	Clip     *model.AnimationClip
	Start    float32
	End      float32
	Offset   float32
	Duration float32

	// Weight is carried for future use; blending is driven by temporal overlap only.
	Weight float32
}

// NewStackedClipInstance places clip between start and end, shifted by offset.
//
// Parameters:
//   - clip: the placed clip
//   - start: the first timeline frame of the placement
//   - end: the last timeline frame of the placement
//   - offset: the re-timing offset produced by edge drags
//
// Returns:
//   - *StackedClipInstance: the instance with Duration taken from the clip and Weight 1
func NewStackedClipInstance(clip *model.AnimationClip, start, end, offset float32) *StackedClipInstance {
	if clip == nil {
		panic("animator: NewStackedClipInstance requires a clip")
	}
	return &StackedClipInstance{
		Clip:     clip,
		Start:    start,
		End:      end,
		Offset:   offset,
		Duration: clip.Duration(),
		Weight:   1,
	}
}

// Contains reports whether t falls inside [Start, End].
func (i *StackedClipInstance) Contains(t float32) bool {
	return t >= i.Start && t <= i.End
}

// LocalTime maps timeline time t into the clip's own time.
func (i *StackedClipInstance) LocalTime(t float32) float32 {
	return WrappedTime(t, i.Start-i.Offset, i.End, i.Offset, i.Duration)
}

// WrappedTime maps timeline time into clip time, looping over duration.
// Negative offsets before start wrap backwards from the clip end; results past end snap back to
// start. A time of -1 is returned unchanged.
//
// Parameters:
//   - t: the timeline time
//   - start: the placement start minus its offset
//   - end: the placement end
//   - offset: the placement offset
//   - duration: the clip duration
//
// Returns:
//   - float32: the clip-local time
func WrappedTime(t, start, end, offset, duration float32) float32 {
	if t == -1 {
		return t
	}
	var w float32
	if offset < 0 && t+offset < start+offset {
		w = duration - float32(math.Abs(float64(common.Fmod(t-start, duration))))
	} else {
		w = common.Fmod(t-start, duration)
	}
	if w > end {
		w = start
	}
	return w
}

// BlendFactor returns how much cur replaces the accumulated pose at time t, given the instance
// folded in just before it.
//
//   - no previous instance, or t == -1: 1
//   - one interval nested in the other: half the progress through the outer interval while t is
//     inside the inner one, otherwise 1 if cur starts first and 0 if it does not
//   - partial or no overlap: 1 or 0 by which starts first before the overlap, by which ends last
//     after it, and a linear ramp across it
//
// Parameters:
//   - prev: the previously folded instance, may be nil
//   - cur: the instance being folded
//   - t: the timeline time
//
// Returns:
//   - float32: the blend factor
func BlendFactor(prev, cur *StackedClipInstance, t float32) float32 {
	if t == -1 || prev == nil {
		return 1
	}

	startA, endA := cur.Start, cur.End
	startB, endB := prev.Start, prev.End
	curFirst := startA <= startB

	first := func() float32 {
		if curFirst {
			return 1
		}
		return 0
	}

	switch {
	case startA >= startB && endA <= endB:
		if t >= startA && t <= endA {
			return 0.5 * ratio(t-startB, endB-startB)
		}
		return first()
	case startB >= startA && endB <= endA:
		if t >= startB && t <= endB {
			return 0.5 * ratio(t-startA, endA-startA)
		}
		return first()
	}

	overlapStart := float32(math.Max(float64(startA), float64(startB)))
	overlapEnd := float32(math.Min(float64(endA), float64(endB)))
	switch {
	case t < overlapStart:
		return first()
	case t > overlapEnd:
		if endA > endB {
			return 1
		}
		return 0
	}
	return ratio(t-overlapStart, overlapEnd-overlapStart)
}

// ratio divides a by b, returning 1 for an empty span.
func ratio(a, b float32) float32 {
	if b == 0 {
		return 1
	}
	return a / b
}

// BuildInstances turns the Animation rows of a track list into instances sorted by start.
// Rows whose clip id is not in the library are skipped.
//
// Parameters:
//   - rows: timeline rows; non-Animation rows are ignored
//   - library: resolves clip ids
//   - logger: receives a warning per unresolved clip, may be nil
//
// Returns:
//   - []*StackedClipInstance: one instance per segment
func BuildInstances(rows []*timeline.Track, library *model.Library, logger *slog.Logger) []*StackedClipInstance {
	if logger == nil {
		logger = slog.Default()
	}
	var out []*StackedClipInstance
	for _, row := range rows {
		if row.Type != timeline.TrackAnimation || len(row.Segments) == 0 {
			continue
		}
		clip, err := library.Clip(row.ID)
		if err != nil {
			logger.Warn("animation track references an unknown clip", "track", row.Name, "clip", row.ID, "error", err)
			continue
		}
		for _, seg := range row.Segments {
			out = append(out, NewStackedClipInstance(clip, float32(seg.FrameStart), float32(seg.FrameEnd), float32(seg.Offset)))
		}
	}
	sortByStart(out)
	return out
}

// HasStackTracks reports whether any row places a clip.
func HasStackTracks(rows []*timeline.Track) bool {
	for _, row := range rows {
		if row.Type == timeline.TrackAnimation && len(row.Segments) > 0 {
			return true
		}
	}
	return false
}

func sortByStart(instances []*StackedClipInstance) {
	sort.SliceStable(instances, func(i, j int) bool { return instances[i].Start < instances[j].Start })
}
