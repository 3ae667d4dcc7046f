package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/editor"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newDocument opens a composition where "hero" walks x=0..30 over frames 0-30, plus a row bound
// to an entity that does not exist.
func newDocument(t *testing.T) (editor.Document, game_object.GameObject) {
	t.Helper()
	skel, err := model.NewSkeleton([]model.Joint{
		{Name: "hip", BoneID: 0, ParentIndex: -1, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
	})
	require.NoError(t, err)

	walk := model.NewAnimationClip("walk", "walk.glb", 30)
	hip := model.NewBoneTrack("hip", mgl32.Ident4())
	hip.Positions.Set(0, mgl32.Vec3{0, 0, 0})
	hip.Positions.Set(30, mgl32.Vec3{30, 0, 0})
	walk.AddBone(hip)
	lib := model.NewLibrary(quiet)
	walkID, _ := lib.Register(walk)

	hero := game_object.NewGameObject(game_object.WithName("hero"), game_object.WithSkeleton(skel))
	sc := scene.NewScene(scene.WithObjects(hero), scene.WithLogger(quiet))

	row := timeline.NewEntityTrack(hero.ID(), "hero", timeline.TrackActor)
	row.SubTracks = append(row.SubTracks, timeline.NewClipTrack(walkID, "walk", 0, 30))
	ghost := timeline.NewEntityTrack(99, "ghost", timeline.TrackCamera)

	doc := editor.NewDocument(
		editor.WithName("intro"),
		editor.WithScene(sc),
		editor.WithLibrary(lib),
		editor.WithLogger(quiet),
		editor.WithSequencer(timeline.NewSequencer(timeline.WithTracks(row, ghost))),
	)
	return doc, hero
}

func TestStepTicksDocumentsAndUploads(t *testing.T) {
	doc, hero := newDocument(t)
	sink := skinning.NewMemorySink()
	p := profiler.NewProfiler(profiler.WithLogger(quiet))
	e := NewEngine(WithDocument(doc), WithSink(sink), WithProfiler(p), WithLogger(quiet))

	var seen float32
	e.SetTickCallback(func(dt float32) { seen = dt })
	e.Step(0.25)

	assert.Equal(t, float32(0.25), seen)
	assert.Equal(t, 15, doc.Sequencer().CurrentFrame())

	palette, ok := sink.Palette(hero.ID())
	require.True(t, ok)
	assert.InDelta(t, 15, palette.Bones[0][12], 1e-4)
	assert.Equal(t, 1, sink.Uploads())

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `oxyanim_missing_tracks{document="intro"} 1`)
	assert.Contains(t, body, `oxyanim_document_tick_seconds_count{document="intro"} 1`)
}

func TestDocumentsOrderedByName(t *testing.T) {
	e := NewEngine(WithLogger(quiet))
	e.AddDocument(editor.NewDocument(editor.WithName("outro"), editor.WithLogger(quiet)))
	e.AddDocument(editor.NewDocument(editor.WithName("intro"), editor.WithLogger(quiet)))

	docs := e.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "intro", docs[0].Name())
	assert.Equal(t, "outro", docs[1].Name())
	assert.NotNil(t, e.Document("outro"))

	e.RemoveDocument("outro")
	assert.Nil(t, e.Document("outro"))
	assert.Len(t, e.Documents(), 1)
}

func TestRunStopsOnContext(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithLogger(quiet))
	var ticks atomic.Int32
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Greater(t, ticks.Load(), int32(0))
}

func TestRunStopsOnQuit(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithLogger(quiet))
	var ticks atomic.Int32
	e.SetTickCallback(func(float32) {
		if ticks.Add(1) == 3 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run(context.Background()))
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
	e.Quit()
}

func TestRunRecoversFromPanic(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithLogger(quiet))
	e.SetTickCallback(func(float32) { panic("boom") })

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrTickPanic)
	assert.ErrorContains(t, err, "boom")
}

func TestSetTickRateWhileRunning(t *testing.T) {
	e := NewEngine(WithTickRate(1), WithLogger(quiet))
	var ticks atomic.Int32
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() {
		time.Sleep(20 * time.Millisecond)
		e.SetTickRate(500)
	}()
	require.NoError(t, e.Run(ctx))
	assert.Greater(t, ticks.Load(), int32(1))
}
