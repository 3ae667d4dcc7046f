package timeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe is a discrete, toggleable transform override at one frame.
type Keyframe struct {
	Active    bool
	Value     float32
	Transform mgl32.Mat4
}

// Segment places a clip on a track between FrameStart and FrameEnd.
// Dragging a segment's edges adjusts Offset; moving it whole shifts InitialIndex.
type Segment struct {
	InitialIndex int
	FrameStart   int
	FrameEnd     int
	Offset       int
}

// Span returns FrameEnd - FrameStart.
func (s Segment) Span() int {
	return s.FrameEnd - s.FrameStart
}

// Track is one timeline row.
// ID is an entity id for Actor, Camera and Light rows, a clip id for Animation rows, and a bone or
// mesh entity id on animation timelines.
type Track struct {
	ID        int
	Name      string
	Type      TrackType
	Missing   bool
	Options   Options
	Keyframes map[int]*Keyframe
	Segments  []Segment
	SubTracks []*Track
}

// NewTrack creates an empty track with the default options for its type.
//
// Parameters:
//   - id: the referenced entity, clip or bone id
//   - name: the display name
//   - typ: the track type
//
// Returns:
//   - *Track: the new track
func NewTrack(id int, name string, typ TrackType) *Track {
	t := &Track{
		ID:        id,
		Name:      name,
		Type:      typ,
		Keyframes: make(map[int]*Keyframe),
	}
	switch {
	case typ.IsEntity():
		t.Options = defaultEntityOption
	case typ == TrackAnimation:
		t.Options = defaultClipOptions
	default:
		t.Options = OptionEditNone
	}
	return t
}

// NewClipTrack creates an Animation track with one segment spanning frameStart to frameEnd.
//
// Parameters:
//   - clipID: the library id of the placed clip
//   - name: the display name
//   - frameStart: the first frame of the placement
//   - frameEnd: the last frame of the placement
//
// Returns:
//   - *Track: the new track
func NewClipTrack(clipID int, name string, frameStart, frameEnd int) *Track {
	t := NewTrack(clipID, name, TrackAnimation)
	t.Segments = append(t.Segments, Segment{
		InitialIndex: frameStart,
		FrameStart:   frameStart,
		FrameEnd:     frameEnd,
	})
	return t
}

// NewEntityTrack creates an entity row with a Transform sub-track at index 0, which is where
// composition keyframes are toggled.
//
// Parameters:
//   - entityID: the scene entity id
//   - name: the entity name
//   - typ: TrackActor, TrackCamera or TrackLight
//
// Returns:
//   - *Track: the new track
func NewEntityTrack(entityID int, name string, typ TrackType) *Track {
	t := NewTrack(entityID, name, typ)
	t.SubTracks = append(t.SubTracks, NewTrack(entityID, name, TrackTransform))
	return t
}

// AddSegment appends a segment right after the last one with the same length and initial index.
// Returns false when the track has no segment to copy.
func (t *Track) AddSegment() bool {
	if len(t.Segments) == 0 {
		return false
	}
	last := t.Segments[len(t.Segments)-1]
	t.Segments = append(t.Segments, Segment{
		InitialIndex: last.InitialIndex,
		FrameStart:   last.FrameEnd + 1,
		FrameEnd:     last.FrameEnd + 1 + last.Span(),
	})
	return true
}

// Keyframe returns the keyframe at frame, if one exists.
func (t *Track) Keyframe(frame int) (*Keyframe, bool) {
	k, ok := t.Keyframes[frame]
	return k, ok
}

// keyframe returns the keyframe at frame, creating an inactive identity keyframe when absent.
func (t *Track) keyframe(frame int) *Keyframe {
	if t.Keyframes == nil {
		t.Keyframes = make(map[int]*Keyframe)
	}
	k, ok := t.Keyframes[frame]
	if !ok {
		k = &Keyframe{Transform: mgl32.Ident4()}
		t.Keyframes[frame] = k
	}
	return k
}

// ToggleKeyframe flips the active flag of the keyframe at frame and returns the new state.
func (t *Track) ToggleKeyframe(frame int) bool {
	k := t.keyframe(frame)
	k.Active = !k.Active
	return k.Active
}

// Frames returns every frame holding a keyframe, active or not, in ascending order.
func (t *Track) Frames() []int {
	return common.SortedKeys(t.Keyframes)
}

// ActiveFrames returns the frames of active keyframes in ascending order.
func (t *Track) ActiveFrames() []int {
	out := make([]int, 0, len(t.Keyframes))
	for f, k := range t.Keyframes {
		if k.Active {
			out = append(out, f)
		}
	}
	sort.Ints(out)
	return out
}

// PreviousKeyframe returns the nearest keyframe strictly before frame.
func (t *Track) PreviousKeyframe(frame int) (*Keyframe, bool) {
	best, found := 0, false
	for f := range t.Keyframes {
		if f < frame && (!found || f > best) {
			best, found = f, true
		}
	}
	if !found {
		return nil, false
	}
	return t.Keyframes[best], true
}

// TransformAt blends the active keyframes around time.
// At or before the first active keyframe it returns that keyframe, past the last it returns the
// last one, and between two keyframes it interpolates their decomposed transforms.
//
// Parameters:
//   - time: the query frame
//
// Returns:
//   - mgl32.Mat4: the blended transform
//   - bool: false if the track has no active keyframe
func (t *Track) TransformAt(time float32) (mgl32.Mat4, bool) {
	frames := t.ActiveFrames()
	if len(frames) == 0 {
		return mgl32.Ident4(), false
	}

	i := sort.Search(len(frames), func(i int) bool { return float32(frames[i]) >= time })
	switch {
	case i == 0:
		return t.Keyframes[frames[0]].Transform, true
	case i == len(frames):
		return t.Keyframes[frames[len(frames)-1]].Transform, true
	case float32(frames[i]) == time:
		return t.Keyframes[frames[i]].Transform, true
	}

	prev, next := frames[i-1], frames[i]
	f := (time - float32(prev)) / float32(next-prev)
	f = mgl32.Clamp(f, 0, 1)
	return common.Interpolate(t.Keyframes[prev].Transform, t.Keyframes[next].Transform, f), true
}
