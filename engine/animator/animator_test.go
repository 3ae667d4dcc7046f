package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetModeResetsPoses(t *testing.T) {
	a := NewAnimator()
	p := a.Pose(4)
	p.Final[3] = mgl32.Translate3D(1, 0, 0)

	a.SetMode(ModeSequence)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), p.Final[3], "same mode keeps poses")

	a.SetMode(ModeAnimation)
	assert.Equal(t, ModeAnimation, a.Mode())
	assert.Equal(t, mgl32.Ident4(), p.Final[3])
	assert.Same(t, p, a.Pose(4))
}

func TestEndTimeByMode(t *testing.T) {
	a := NewAnimator()
	a.Clock().SequencerEnd = 120
	a.Clock().EndTime = 250
	assert.Equal(t, float32(120), a.EndTime())

	a.SetMode(ModeAnimation)
	assert.Equal(t, float32(250), a.EndTime())
	a.SetActiveClip(positionClip("walk", 30, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	assert.Equal(t, float32(30), a.EndTime())

	a.SetMode(ModeMap)
	assert.Equal(t, float32(250), a.EndTime())
}

func TestAdvanceWrapsInAnimationMode(t *testing.T) {
	a := NewAnimator(WithMode(ModeAnimation))
	a.SetActiveClip(positionClip("walk", 30, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	a.Play()

	a.Advance(0.25)
	assert.InDelta(t, 15, a.Clock().CurrentTime, 1e-4)
	a.Advance(0.5)
	assert.InDelta(t, 15, a.Clock().CurrentTime, 1e-4)

	a.Stop()
	a.Clock().CurrentTime = 7.5
	a.Advance(0.5)
	assert.Equal(t, float32(7), a.Clock().CurrentTime)
}

func TestRuntimeSequencesRunOnOwnClocks(t *testing.T) {
	hero := timeline.NewEntityTrack(7, "hero", timeline.TrackActor)
	hero.SubTracks = append(hero.SubTracks, timeline.NewClipTrack(0, "walk", 0, 30))
	stacked := timeline.NewSequencer(timeline.WithFrameMax(40), timeline.WithTracks(hero))
	bare := timeline.NewSequencer(timeline.WithTracks(timeline.NewEntityTrack(8, "cam", timeline.TrackCamera)))

	a := NewAnimator(WithMode(ModeMap))
	a.AddRuntimeSequence(&RuntimeSequence{EntityID: 7, Sequencer: stacked})
	a.AddRuntimeSequence(&RuntimeSequence{EntityID: 8, Sequencer: bare})
	a.Play()

	a.Advance(0.5)
	runs := a.RuntimeSequences()
	require.Len(t, runs, 2)
	assert.Equal(t, 7, runs[0].EntityID)
	assert.InDelta(t, 30, runs[0].Clock.CurrentTime, 1e-4)
	assert.Equal(t, float32(-1), runs[1].Clock.CurrentTime)

	a.Advance(0.5)
	assert.InDelta(t, 20, runs[0].Clock.CurrentTime, 1e-4)
	assert.InDelta(t, 60, a.Clock().CurrentTime, 1e-4)

	assert.True(t, a.RemoveRuntimeSequence(8))
	assert.False(t, a.RemoveRuntimeSequence(8))
	assert.Len(t, a.RuntimeSequences(), 1)
}

func TestAddRuntimeSequenceRequiresSequencer(t *testing.T) {
	a := NewAnimator()
	assert.Panics(t, func() { a.AddRuntimeSequence(&RuntimeSequence{EntityID: 1}) })
}

func TestEasingByName(t *testing.T) {
	fn, err := EasingByName("")
	require.NoError(t, err)
	assert.NotNil(t, fn)

	_, err = EasingByName("In_Out_Sine")
	assert.NoError(t, err)

	_, err = EasingByName("bounce_forever")
	assert.ErrorContains(t, err, "linear")

	names := EasingNames()
	assert.Contains(t, names, "out_expo")
	assert.IsIncreasing(t, names)
}

func TestRootMotionToggle(t *testing.T) {
	a := NewAnimator(WithRootMotion(true))
	assert.True(t, a.RootMotion())
	a.SetRootMotion(false)
	assert.False(t, a.RootMotion())
}
