package timeline

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newComposition builds an actor row with a Transform sub-track and one clip sub-track.
func newComposition(t *testing.T) Sequencer {
	t.Helper()
	hero := NewEntityTrack(7, "hero", TrackActor)
	hero.SubTracks = append(hero.SubTracks, NewClipTrack(0, "walk", 0, 30))
	cam := NewEntityTrack(3, "cam", TrackCamera)
	return NewSequencer(WithTracks(hero, cam))
}

func TestNewSequencerDefaults(t *testing.T) {
	s := NewSequencer()
	assert.Equal(t, ScopeComposition, s.Scope())
	assert.Equal(t, 0, s.FrameMin())
	assert.Equal(t, DefaultFrameMax, s.FrameMax())
	assert.Equal(t, StageSequence, s.Stage())
	assert.Equal(t, -1, s.CompositionIndex())
	assert.Equal(t, -1, s.SelectedEntry())
	assert.Zero(t, s.ItemCount())
}

func TestDoubleClickTogglesStage(t *testing.T) {
	s := newComposition(t)

	require.NoError(t, s.DoubleClick(0))
	assert.Equal(t, StageSubSequence, s.Stage())
	assert.Equal(t, 0, s.CompositionIndex())
	assert.Equal(t, 0, s.SelectedEntry())
	assert.Equal(t, 2, s.ItemCount())

	require.NoError(t, s.DoubleClick(5))
	assert.Equal(t, StageSequence, s.Stage())
	assert.Equal(t, -1, s.CompositionIndex())
	assert.Equal(t, 2, s.ItemCount())

	err := s.DoubleClick(9)
	assert.True(t, errors.Is(err, ErrInvalidIndex))

	anim := NewSequencer(WithScope(ScopeAnimation))
	assert.True(t, errors.Is(anim.DoubleClick(0), ErrStageMismatch))
}

func TestAddKeyFrameToggleIsIdempotent(t *testing.T) {
	var calls [][2]int
	s := newComposition(t)
	s.OnKeyFrameSet(func(track, frame int) { calls = append(calls, [2]int{track, frame}) })

	assert.True(t, errors.Is(s.AddKeyFrame(), ErrStageMismatch))

	require.NoError(t, s.DoubleClick(0))
	s.SetCurrentFrame(12)

	require.NoError(t, s.AddKeyFrame())
	k, ok := s.Items()[0].Keyframe(12)
	require.True(t, ok)
	assert.True(t, k.Active)

	require.NoError(t, s.AddKeyFrame())
	assert.False(t, k.Active)

	assert.Equal(t, [][2]int{{0, 12}, {0, 12}}, calls)
}

func TestAddKeyFrameAnimationScopeUsesSelection(t *testing.T) {
	s := NewSequencer(WithScope(ScopeAnimation), WithTracks(
		NewTrack(1, "hip", TrackBone),
		NewTrack(2, "spine", TrackBone),
	))

	assert.True(t, errors.Is(s.AddKeyFrame(), ErrInvalidIndex))

	s.Select(1)
	s.SetCurrentFrame(4)
	require.NoError(t, s.AddKeyFrame())

	k, ok := s.Tracks()[1].Keyframe(4)
	require.True(t, ok)
	assert.True(t, k.Active)
	_, ok = s.Tracks()[0].Keyframe(4)
	assert.False(t, ok)
}

func TestAddKeyFrameRangeAllOrNothing(t *testing.T) {
	s := NewSequencer(WithScope(ScopeAnimation), WithTracks(
		NewTrack(1, "hip", TrackBone),
		NewTrack(2, "spine", TrackBone),
	))
	var frames []int
	s.OnKeyFrameSet(func(_, frame int) { frames = append(frames, frame) })

	sel := []FrameRange{{Track: 0, Start: 2, End: 4}, {Track: 1, Start: 3, End: 3}}

	// one frame already active: the whole selection becomes active
	s.Tracks()[0].ToggleKeyframe(3)
	require.NoError(t, s.AddKeyFrameRange(sel))
	assert.Equal(t, []int{2, 3, 4}, s.Tracks()[0].ActiveFrames())
	assert.Equal(t, []int{3}, s.Tracks()[1].ActiveFrames())
	assert.Equal(t, []int{2, 3, 4, 3}, frames)

	// everything active: cleared from end to start
	frames = nil
	require.NoError(t, s.AddKeyFrameRange(sel))
	assert.Empty(t, s.Tracks()[0].ActiveFrames())
	assert.Empty(t, s.Tracks()[1].ActiveFrames())
	assert.Equal(t, []int{4, 3, 2, 3}, frames)
}

func TestAddKeyFrameRangeRejectsBadSelection(t *testing.T) {
	s := NewSequencer(WithScope(ScopeAnimation), WithTracks(NewTrack(1, "hip", TrackBone)))

	err := s.AddKeyFrameRange([]FrameRange{{Track: 4, Start: 0, End: 1}})
	assert.True(t, errors.Is(err, ErrInvalidIndex))

	err = s.AddKeyFrameRange([]FrameRange{{Track: 0, Start: 5, End: 1}})
	assert.True(t, errors.Is(err, ErrInvalidIndex))
	assert.Empty(t, s.Tracks()[0].Keyframes)
}

func TestDuplicateAppendsAdjacentSegment(t *testing.T) {
	s := newComposition(t)

	assert.True(t, errors.Is(s.Duplicate(1), ErrStageMismatch))

	require.NoError(t, s.DoubleClick(0))
	require.NoError(t, s.Duplicate(1))

	segs := s.Items()[1].Segments
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{InitialIndex: 0, FrameStart: 31, FrameEnd: 61, Offset: 0}, segs[1])

	assert.True(t, errors.Is(s.Duplicate(0), ErrTypeMismatch))
	assert.True(t, errors.Is(s.Duplicate(7), ErrInvalidIndex))
}

func TestDeleteSegments(t *testing.T) {
	s := newComposition(t)
	require.NoError(t, s.DoubleClick(0))
	require.NoError(t, s.Duplicate(1))
	require.NoError(t, s.Duplicate(1))

	clip := s.Items()[1]
	require.Len(t, clip.Segments, 3)

	require.NoError(t, s.Delete(1, 10))
	require.Len(t, clip.Segments, 2)
	assert.Equal(t, 31, clip.Segments[1].FrameStart)

	require.NoError(t, s.Delete(1, 0))
	require.Len(t, clip.Segments, 1)
	assert.Equal(t, 31, clip.Segments[0].FrameStart)

	require.NoError(t, s.Delete(1, -1))
	assert.Empty(t, clip.Segments)

	require.NoError(t, s.Delete(1, 0))
	assert.Equal(t, 1, s.ItemCount())
}

func TestDeleteRejectsLastTrack(t *testing.T) {
	s := NewSequencer(WithScope(ScopeAnimation), WithTracks(NewClipTrack(0, "walk", 0, 10)))

	err := s.Delete(0, 0)
	assert.True(t, errors.Is(err, ErrLastTrack))
	assert.True(t, errors.Is(s.Duplicate(0), ErrLastTrack))
	assert.Len(t, s.Tracks()[0].Segments, 1)
}

func TestEditSegmentRetiming(t *testing.T) {
	s := newComposition(t)
	require.NoError(t, s.DoubleClick(0))

	assert.True(t, errors.Is(s.EditSegment(1, 0, 5, 35), ErrNotEditing))

	s.BeginEdit(1, 0)
	assert.Equal(t, 0, s.SelectedEntry())

	// same length: the placement moves and InitialIndex follows
	require.NoError(t, s.EditSegment(1, 0, 5, 35))
	seg := s.Items()[1].Segments[0]
	assert.Equal(t, Segment{InitialIndex: 5, FrameStart: 5, FrameEnd: 35}, seg)

	// left edge dragged: length changes, Offset absorbs the shift
	require.NoError(t, s.EditSegment(1, 0, 10, 35))
	seg = s.Items()[1].Segments[0]
	assert.Equal(t, Segment{InitialIndex: 5, FrameStart: 10, FrameEnd: 35, Offset: 5}, seg)

	s.EndEdit()
	assert.True(t, errors.Is(s.EditSegment(1, 0, 0, 10), ErrNotEditing))
}

func TestBeginEditOnTransformTrackDoesNotEdit(t *testing.T) {
	s := newComposition(t)
	require.NoError(t, s.DoubleClick(0))

	s.BeginEdit(0, 0)
	assert.True(t, errors.Is(s.EditSegment(0, 0, 1, 2), ErrNotEditing))
}

func TestMarkMissingAndRebind(t *testing.T) {
	s := newComposition(t)

	n := s.MarkMissing(func(id int) bool { return id == 3 })
	assert.Equal(t, 1, n)
	assert.True(t, s.Tracks()[0].Missing)
	assert.False(t, s.Tracks()[1].Missing)

	_, err := s.Rebind(7, 11, "hero2", TrackCamera)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = s.Rebind(99, 11, "hero2", TrackActor)
	assert.True(t, errors.Is(err, ErrInvalidIndex))

	require.NoError(t, s.DoubleClick(0))
	_, err = s.Rebind(7, 11, "hero2", TrackActor)
	assert.True(t, errors.Is(err, ErrStageMismatch))
	require.NoError(t, s.DoubleClick(0))

	n, err = s.Rebind(7, 11, "hero2", TrackActor)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hero := s.Tracks()[0]
	assert.Equal(t, 11, hero.ID)
	assert.Equal(t, "hero2", hero.Name)
	assert.False(t, hero.Missing)
	assert.Equal(t, 11, hero.SubTracks[0].ID)
	assert.Equal(t, 0, hero.SubTracks[1].ID)
}

func TestTransformAtUsesActiveKeyframes(t *testing.T) {
	tr := NewTrack(1, "cam", TrackTransform)
	_, ok := tr.TransformAt(3)
	assert.False(t, ok)

	tr.ToggleKeyframe(0)
	tr.ToggleKeyframe(10)
	tr.Keyframes[10].Transform = mgl32.Translate3D(10, 0, 0)
	tr.keyframe(5).Transform = mgl32.Translate3D(0, 100, 0)

	cases := []struct {
		time float32
		want mgl32.Vec3
	}{
		{-4, mgl32.Vec3{0, 0, 0}},
		{0, mgl32.Vec3{0, 0, 0}},
		{5, mgl32.Vec3{5, 0, 0}},
		{10, mgl32.Vec3{10, 0, 0}},
		{40, mgl32.Vec3{10, 0, 0}},
	}
	for _, c := range cases {
		m, ok := tr.TransformAt(c.time)
		require.True(t, ok)
		assert.True(t, m.Col(3).Vec3().ApproxEqualThreshold(c.want, 1e-5), "time %v got %v", c.time, m.Col(3))
	}
}

func TestPreviousKeyframe(t *testing.T) {
	tr := NewTrack(1, "cam", TrackTransform)
	tr.ToggleKeyframe(2)
	tr.ToggleKeyframe(8)

	k, ok := tr.PreviousKeyframe(8)
	require.True(t, ok)
	assert.Same(t, tr.Keyframes[2], k)

	_, ok = tr.PreviousKeyframe(2)
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	s := newComposition(t)
	s.Tracks()[0].SubTracks[0].ToggleKeyframe(4)

	c, err := s.Clone()
	require.NoError(t, err)
	assert.Equal(t, s.ID(), c.ID())

	c.Tracks()[0].Name = "changed"
	c.Tracks()[0].SubTracks[0].Keyframes[4].Active = false
	c.Tracks()[0].SubTracks[1].Segments[0].FrameEnd = 99

	assert.Equal(t, "hero", s.Tracks()[0].Name)
	assert.True(t, s.Tracks()[0].SubTracks[0].Keyframes[4].Active)
	assert.Equal(t, 30, s.Tracks()[0].SubTracks[1].Segments[0].FrameEnd)
}
