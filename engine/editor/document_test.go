package editor

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	doc  Document
	hero game_object.GameObject
	cam  game_object.GameObject
	walk *model.AnimationClip
}

// newFixture opens a composition with an actor playing "walk" over frames 0-30 and a camera.
func newFixture(t *testing.T) fixture {
	t.Helper()
	skel, err := model.NewSkeleton([]model.Joint{
		{Name: "hip", BoneID: 0, ParentIndex: -1, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
		{Name: "spine", BoneID: 1, ParentIndex: 0, Bindpose: mgl32.Translate3D(0, 1, 0), InverseBindOffset: mgl32.Translate3D(0, -1, 0)},
	})
	require.NoError(t, err)

	walk := model.NewAnimationClip("walk", "walk.glb", 30)
	hip := model.NewBoneTrack("hip", mgl32.Ident4())
	hip.Positions.Set(0, mgl32.Vec3{0, 0, 0})
	hip.Positions.Set(30, mgl32.Vec3{30, 0, 0})
	walk.AddBone(hip)
	lib := model.NewLibrary(nil)
	walkID, _ := lib.Register(walk)

	hero := game_object.NewGameObject(
		game_object.WithName("hero"),
		game_object.WithSkeleton(skel),
		game_object.WithClip(model.NewAnimationClip("hero", "", 30)),
	)
	cam := game_object.NewGameObject(game_object.WithName("cam"), game_object.WithKind(game_object.KindCamera))
	sc := scene.NewScene(scene.WithObjects(hero, cam))

	heroRow := timeline.NewEntityTrack(hero.ID(), "hero", timeline.TrackActor)
	heroRow.SubTracks = append(heroRow.SubTracks, timeline.NewClipTrack(walkID, "walk", 0, 30))
	camRow := timeline.NewEntityTrack(cam.ID(), "cam", timeline.TrackCamera)

	doc := NewDocument(
		WithName("intro"),
		WithScene(sc),
		WithLibrary(lib),
		WithSequencer(timeline.NewSequencer(timeline.WithTracks(heroRow, camRow))),
	)
	return fixture{doc: doc, hero: hero, cam: cam, walk: walk}
}

func TestCaptureAtClockTimeUsesLivePose(t *testing.T) {
	f := newFixture(t)
	seq := f.doc.Sequencer()
	f.cam.SetLocal(mgl32.Translate3D(1, 2, 3))

	require.NoError(t, seq.DoubleClick(1))
	require.NoError(t, seq.AddKeyFrame())

	xf := seq.Tracks()[1].SubTracks[0]
	kf, ok := xf.Keyframe(0)
	require.True(t, ok)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), kf.Transform)

	// Away from the clock the previous keyframe is copied instead of the live pose.
	f.cam.SetLocal(mgl32.Translate3D(9, 9, 9))
	seq.SetCurrentFrame(10)
	require.NoError(t, seq.AddKeyFrame())
	kf, _ = xf.Keyframe(10)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), kf.Transform)
}

func TestEvaluateBlendsCameraKeyframes(t *testing.T) {
	f := newFixture(t)
	xf := f.doc.Sequencer().Tracks()[1].SubTracks[0]
	xf.Keyframes[0] = &timeline.Keyframe{Active: true, Transform: mgl32.Ident4()}
	xf.Keyframes[10] = &timeline.Keyframe{Active: true, Transform: mgl32.Translate3D(10, 0, 0)}

	f.doc.Animator().Clock().CurrentTime = 5
	f.doc.Evaluate()

	assert.InDelta(t, 5, f.cam.Local().Col(3).X(), 1e-4)
}

func TestTickResolvesActorFromClips(t *testing.T) {
	f := newFixture(t)
	a := f.doc.Animator()
	a.Play()

	f.doc.Tick(0.25)

	assert.Equal(t, 15, f.doc.Sequencer().CurrentFrame())
	assert.InDelta(t, 15, f.hero.Local().Col(3).X(), 1e-3)
	assert.InDelta(t, 15, f.doc.Pose(f.hero.ID()).Final[0].Col(3).X(), 1e-3)
	assert.InDelta(t, 1, f.doc.Pose(f.hero.ID()).Model[1].Col(3).Y(), 1e-3)
}

func TestActorKeyframesAreWrittenIntoClip(t *testing.T) {
	f := newFixture(t)
	seq := f.doc.Sequencer()
	f.hero.SetLocal(mgl32.Translate3D(0, 0, 2))

	require.NoError(t, seq.DoubleClick(0))
	seq.SetCurrentFrame(0)
	require.NoError(t, seq.AddKeyFrame())
	f.doc.Evaluate()

	bone, ok := f.hero.Clip().FindBone("hero")
	require.True(t, ok)
	assert.InDelta(t, 2, bone.LocalTransform(0).Col(3).Z(), 1e-4)

	require.NoError(t, seq.AddKeyFrame())
	assert.False(t, bone.Positions.Has(0))
}

func TestMissingEntityIsFlaggedAndRebound(t *testing.T) {
	f := newFixture(t)
	f.doc.Scene().Remove(f.cam.ID())
	f.doc.Evaluate()
	assert.True(t, f.doc.Sequencer().Tracks()[1].Missing)

	other := game_object.NewGameObject(game_object.WithName("cam2"), game_object.WithKind(game_object.KindCamera))
	f.doc.Scene().Add(other)

	n, err := f.doc.Rebind(f.cam.ID(), other.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	row := f.doc.Sequencer().Tracks()[1]
	assert.False(t, row.Missing)
	assert.Equal(t, "cam2", row.Name)

	mesh := game_object.NewGameObject(game_object.WithName("rock"), game_object.WithKind(game_object.KindMesh))
	f.doc.Scene().Add(mesh)
	_, err = f.doc.Rebind(other.ID(), mesh.ID())
	assert.True(t, errors.Is(err, ErrNotBindable))

	_, err = f.doc.Rebind(other.ID(), 999)
	assert.True(t, errors.Is(err, scene.ErrEntityNotFound))
}

func TestLoadReresolvesEntities(t *testing.T) {
	f := newFixture(t)
	data, err := f.doc.Save()
	require.NoError(t, err)

	f.doc.Scene().Remove(f.hero.ID())
	require.NoError(t, f.doc.Load(data))
	assert.True(t, f.doc.Sequencer().Tracks()[0].Missing)
	assert.False(t, f.doc.Sequencer().Tracks()[1].Missing)

	err = f.doc.Load([]byte("frame_max: [nope"))
	assert.True(t, errors.Is(err, timeline.ErrMalformedDocument))
	assert.Zero(t, f.doc.Sequencer().ItemCount())
}

func TestEditClipBuildsBoneRows(t *testing.T) {
	f := newFixture(t)
	f.hero.SetClip(f.walk)

	require.NoError(t, f.doc.EditClip(f.hero.ID()))
	assert.Equal(t, f.hero.ID(), f.doc.Editing())
	assert.Equal(t, animator.ModeAnimation, f.doc.Animator().Mode())

	seq := f.doc.Sequencer()
	assert.Equal(t, timeline.ScopeAnimation, seq.Scope())
	assert.Equal(t, 30, seq.FrameMax())
	require.Equal(t, 2, seq.ItemCount())
	hip := seq.Tracks()[0]
	assert.Equal(t, []int{0, 30}, hip.ActiveFrames())

	// Toggling an existing key off removes it from the clip.
	seq.SetCurrentFrame(30)
	require.NoError(t, seq.AddKeyFrame())
	bone, _ := f.walk.FindBone("hip")
	assert.Equal(t, []float32{0}, bone.Times())

	cam := f.cam.ID()
	assert.True(t, errors.Is(f.doc.EditClip(cam), ErrNoSkeleton))
}

func TestEditClipCapturesLiveBone(t *testing.T) {
	f := newFixture(t)
	f.hero.SetClip(f.walk)
	require.NoError(t, f.doc.EditClip(f.hero.ID()))

	f.doc.Animator().Clock().CurrentTime = 12
	f.doc.Evaluate()
	pose := f.doc.Pose(f.hero.ID())
	assert.InDelta(t, 12, pose.Local[0].Col(3).X(), 1e-3)

	// Nudge the live bone as a gizmo drag would before capturing it.
	pose.Local[0] = mgl32.Translate3D(12, 5, 0)
	seq := f.doc.Sequencer()
	seq.SetCurrentFrame(12)
	require.NoError(t, seq.AddKeyFrame())

	kf, ok := seq.Tracks()[0].Keyframe(12)
	require.True(t, ok)
	assert.InDelta(t, 5, kf.Transform.Col(3).Y(), 1e-4)
	bone, _ := f.walk.FindBone("hip")
	assert.InDelta(t, 5, bone.Sample(12).Translation[1], 1e-4)
}

func TestPlayRuntimeSwitchesToMapMode(t *testing.T) {
	f := newFixture(t)
	runtime, err := f.doc.Sequencer().Clone()
	require.NoError(t, err)

	f.doc.PlayRuntime(f.hero.ID(), runtime)
	assert.Equal(t, animator.ModeMap, f.doc.Animator().Mode())

	f.doc.Animator().Play()
	f.doc.Tick(0.25)
	assert.InDelta(t, 15, f.hero.Local().Col(3).X(), 1e-3)
}
