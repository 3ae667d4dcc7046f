package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/editor"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/go-gl/mathgl/mgl32"
)

// heroID is the entity id of the built-in rig's actor.
const heroID = 1

// newHeroModel builds the built-in rig: an armature node over a hip and spine joint, with a
// "walk" clip moving the hip 30 units along x and a "wave" clip bending the spine a quarter turn,
// both over 30 frames.
func newHeroModel() (model.Model, error) {
	skel, err := model.NewSkeleton([]model.Joint{
		{Name: "armature", BoneID: model.NoBone, ParentIndex: -1, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
		{Name: "hip", BoneID: 0, ParentIndex: 0, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
		{Name: "spine", BoneID: 1, ParentIndex: 1, Bindpose: mgl32.Translate3D(0, 1, 0), InverseBindOffset: mgl32.Translate3D(0, -1, 0)},
	})
	if err != nil {
		return nil, err
	}

	walk := model.NewAnimationClip("walk", "hero.glb#walk", 30)
	hip := model.NewBoneTrack("hip", mgl32.Ident4())
	hip.Positions.Set(0, mgl32.Vec3{0, 0, 0})
	hip.Positions.Set(30, mgl32.Vec3{30, 0, 0})
	walk.AddBone(hip)

	wave := model.NewAnimationClip("wave", "hero.glb#wave", 30)
	spine := model.NewBoneTrack("spine", mgl32.Translate3D(0, 1, 0))
	spine.Rotations.Set(0, mgl32.QuatIdent())
	spine.Rotations.Set(30, mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1}))
	wave.AddBone(spine)

	return model.NewModel(
		model.WithName("hero"),
		model.WithSkeleton(skel),
		model.WithAnimations(walk, wave),
	), nil
}

// newRig returns the scene and clip library documents are opened against. Only the hero actor is
// real; other rows are bound to stand-ins by bindStandIns.
func newRig(logger *slog.Logger) (scene.Scene, *model.Library, error) {
	hero, err := newHeroModel()
	if err != nil {
		return nil, nil, err
	}
	lib := model.NewLibrary(logger)
	hero.Register(lib)

	sc := scene.NewScene(scene.WithLogger(logger), scene.WithObjects(game_object.NewGameObject(
		game_object.WithID(heroID),
		game_object.WithName(hero.Name()),
		game_object.WithSkeleton(hero.Skeleton()),
		game_object.WithClip(model.NewAnimationClip(hero.Name(), "", 30)),
	)))
	return sc, lib, nil
}

// demoSequencer places walk over frames 0-20 and wave over 10-30 on the hero, so the two clips
// crossfade between frames 10 and 20.
func demoSequencer(lib *model.Library, frameMax int) (timeline.Sequencer, error) {
	walk, err := lib.ClipByName("walk")
	if err != nil {
		return nil, err
	}
	wave, err := lib.ClipByName("wave")
	if err != nil {
		return nil, err
	}
	row := timeline.NewEntityTrack(heroID, "hero", timeline.TrackActor)
	row.SubTracks = append(row.SubTracks,
		timeline.NewClipTrack(walk.ID, walk.Name, 0, 20),
		timeline.NewClipTrack(wave.ID, wave.Name, 10, 30),
	)
	return timeline.NewSequencer(timeline.WithFrameMax(frameMax), timeline.WithTracks(row)), nil
}

// bindStandIns registers a placeholder entity for every row that references an unknown entity,
// so camera and light keyframes still play. Actor stand-ins have no skeleton and only follow
// their transform keys.
func bindStandIns(doc editor.Document) int {
	added := 0
	for _, row := range doc.Sequencer().Tracks() {
		if !row.Missing {
			continue
		}
		kind := game_object.KindActor
		switch row.Type {
		case timeline.TrackCamera:
			kind = game_object.KindCamera
		case timeline.TrackLight:
			kind = game_object.KindLight
		}
		doc.Scene().Add(game_object.NewGameObject(
			game_object.WithID(row.ID),
			game_object.WithName(row.Name),
			game_object.WithKind(kind),
		))
		added++
	}
	if added > 0 {
		doc.MarkMissing()
	}
	return added
}

// openDocument loads a timeline file against the built-in rig with an animator configured from
// the playback section.
func (a *app) openDocument(path string) (editor.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	sc, lib, err := newRig(a.logger)
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.Playback.AnimatorOptions()
	if err != nil {
		return nil, err
	}
	anim := animator.NewAnimator(append(opts, animator.WithLogger(a.logger))...)

	doc := editor.NewDocument(
		editor.WithName(documentName(path)),
		editor.WithScene(sc),
		editor.WithLibrary(lib),
		editor.WithAnimator(anim),
		editor.WithLogger(a.logger),
	)
	if err := doc.Load(data); err != nil {
		return nil, err
	}
	if n := bindStandIns(doc); n > 0 {
		a.logger.Info("bound stand-in entities", "document", doc.Name(), "count", n)
	}
	return doc, nil
}

// documentName is the file name without its extension.
func documentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
