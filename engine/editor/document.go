package editor

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/go-gl/mathgl/mgl32"
)

// document implements the Document interface.
type document struct {
	name      string
	scene     scene.Scene
	library   *model.Library
	animator  animator.Animator
	sequencer timeline.Sequencer

	// editing is the entity whose clip an animation timeline edits, or 0.
	editing int

	logger *slog.Logger
}

// Document is one open sequence: a timeline bound to a scene, a clip library and an animator.
// Keyframe toggles on the timeline capture the live pose of the bound entity, and every tick the
// timeline is turned into stacked clip instances and resolved into poses.
//
// A Document is not safe for concurrent use; the engine tick goroutine is its only caller.
type Document interface {
	// Name returns the document's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Scene returns the entity registry rows resolve against.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Library returns the clip library Animation rows resolve against.
	//
	// Returns:
	//   - *model.Library: the library
	Library() *model.Library

	// Animator returns the blend scheduler that owns the document's clock.
	//
	// Returns:
	//   - animator.Animator: the animator
	Animator() animator.Animator

	// Sequencer returns the open timeline.
	//
	// Returns:
	//   - timeline.Sequencer: the timeline
	Sequencer() timeline.Sequencer

	// Open replaces the open timeline. The keyframe capture callback is installed, rows referencing
	// unknown entities are flagged missing, the clock's sequencer bound follows the timeline's
	// frame max and the animator switches to the mode matching the timeline's scope.
	//
	// Parameters:
	//   - seq: the timeline to open
	Open(seq timeline.Sequencer)

	// EditClip opens an animation timeline over the clip of an actor: one Bone row per skeleton
	// joint, pre-filled with an active keyframe at every key time the clip already holds.
	//
	// Parameters:
	//   - entityID: the actor to edit
	//
	// Returns:
	//   - error: scene.ErrEntityNotFound, ErrNoSkeleton or ErrNoClip
	EditClip(entityID int) error

	// Editing returns the entity whose clip the open animation timeline edits.
	//
	// Returns:
	//   - int: the entity id, or 0 on a composition timeline
	Editing() int

	// Load replaces the open timeline's content with a serialized document and re-resolves every
	// entity reference.
	//
	// Parameters:
	//   - data: the yaml document
	//
	// Returns:
	//   - error: an error wrapping timeline.ErrMalformedDocument
	Load(data []byte) error

	// Save serializes the open timeline.
	//
	// Returns:
	//   - []byte: the yaml document
	//   - error: an error if encoding fails
	Save() ([]byte, error)

	// Tick advances the clock by dt seconds, moves the timeline cursor to the clock's frame and
	// evaluates the document.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last tick
	Tick(dt float32)

	// Evaluate resolves every bound entity at the clock's current time without advancing it.
	Evaluate()

	// Capture fills the keyframe toggled at frame on row track. It is installed as the timeline's
	// keyframe callback by Open and EditClip.
	//
	// Parameters:
	//   - track: the row index reported by the timeline
	//   - frame: the toggled frame
	Capture(track, frame int)

	// Pose returns the resolved pose of an entity.
	//
	// Parameters:
	//   - entityID: the entity id
	//
	// Returns:
	//   - *animator.Pose: the pose
	Pose(entityID int) *animator.Pose

	// MarkMissing re-resolves every entity row against the scene.
	//
	// Returns:
	//   - int: the number of rows flagged missing
	MarkMissing() int

	// Rebind points every row bound to oldID at the scene entity newID.
	//
	// Parameters:
	//   - oldID: the id the rows currently reference
	//   - newID: the replacement entity id
	//
	// Returns:
	//   - int: the number of rows rewritten
	//   - error: scene.ErrEntityNotFound, ErrNotBindable or an error from timeline.Sequencer.Rebind
	Rebind(oldID, newID int) (int, error)

	// PlayRuntime starts seq for an entity on its own clock in map mode.
	//
	// Parameters:
	//   - entityID: the entity the sequence drives
	//   - seq: a composition timeline
	PlayRuntime(entityID int, seq timeline.Sequencer)
}

var _ Document = &document{}

// NewDocument creates a new Document with the provided options.
// Defaults: an empty scene and library, a default animator and an empty composition timeline.
//
// Parameters:
//   - options: functional options for document configuration
//
// Returns:
//   - Document: the new document
func NewDocument(options ...DocumentBuilderOption) Document {
	d := &document{
		name:   "untitled",
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(d)
	}

	if d.scene == nil {
		d.scene = scene.NewScene(scene.WithLogger(d.logger))
	}
	if d.library == nil {
		d.library = model.NewLibrary(d.logger)
	}
	if d.animator == nil {
		d.animator = animator.NewAnimator(animator.WithLogger(d.logger))
	}
	seq := d.sequencer
	if seq == nil {
		seq = timeline.NewSequencer(timeline.WithLogger(d.logger))
	}
	d.Open(seq)

	return d
}

func (d *document) Name() string {
	return d.name
}

func (d *document) Scene() scene.Scene {
	return d.scene
}

func (d *document) Library() *model.Library {
	return d.library
}

func (d *document) Animator() animator.Animator {
	return d.animator
}

func (d *document) Sequencer() timeline.Sequencer {
	return d.sequencer
}

func (d *document) Open(seq timeline.Sequencer) {
	if seq == nil {
		panic("editor: Document.Open requires a sequencer")
	}
	d.sequencer = seq
	seq.OnKeyFrameSet(d.Capture)
	d.bind()
}

// bind syncs the animator with the open timeline.
func (d *document) bind() {
	d.animator.Clock().SequencerEnd = float32(d.sequencer.FrameMax())
	if d.sequencer.Scope() == timeline.ScopeAnimation {
		d.animator.SetMode(animator.ModeAnimation)
		return
	}
	d.editing = 0
	d.animator.SetActiveClip(nil)
	d.animator.SetMode(animator.ModeSequence)
	d.MarkMissing()
}

func (d *document) EditClip(entityID int) error {
	obj, err := d.scene.Object(entityID)
	if err != nil {
		return err
	}
	skel := obj.Skeleton()
	if skel == nil {
		return fmt.Errorf("edit clip of %q: %w", obj.Name(), ErrNoSkeleton)
	}
	clip := obj.Clip()
	if clip == nil {
		return fmt.Errorf("edit clip of %q: %w", obj.Name(), ErrNoClip)
	}

	var rows []*timeline.Track
	for _, j := range skel.Joints {
		if !j.IsJoint() || j.BoneID >= model.MaxBones {
			continue
		}
		clip.SetBindpose(j.Name, j.Bindpose)
		row := timeline.NewTrack(j.BoneID, j.Name, timeline.TrackBone)
		if bone, ok := clip.FindBone(j.Name); ok {
			for _, t := range bone.Times() {
				row.Keyframes[int(t)] = &timeline.Keyframe{Active: true, Transform: bone.LocalTransform(t)}
			}
		}
		rows = append(rows, row)
	}

	frameMax := int(clip.Duration())
	seq := timeline.NewSequencer(
		timeline.WithScope(timeline.ScopeAnimation),
		timeline.WithFrameMax(frameMax),
		timeline.WithTracks(rows...),
		timeline.WithLogger(d.logger),
	)
	if len(rows) > 0 {
		seq.Select(0)
	}

	d.editing = entityID
	d.animator.SetActiveClip(clip)
	d.Open(seq)
	d.logger.Info("editing clip", "entity", entityID, "clip", clip.Name, "bones", len(rows))
	return nil
}

func (d *document) Editing() int {
	return d.editing
}

func (d *document) Load(data []byte) error {
	if err := d.sequencer.Deserialize(data); err != nil {
		d.bind()
		return fmt.Errorf("load %s: %w", d.name, err)
	}
	d.bind()
	return nil
}

func (d *document) Save() ([]byte, error) {
	return d.sequencer.Serialize()
}

func (d *document) Tick(dt float32) {
	d.animator.Advance(dt)
	d.sequencer.SetCurrentFrame(d.animator.Clock().Frame())
	d.Evaluate()
}

func (d *document) Evaluate() {
	clock := d.animator.Clock()
	switch d.animator.Mode() {
	case animator.ModeAnimation:
		d.evaluateClip(clock)
	case animator.ModeMap:
		for _, r := range d.animator.RuntimeSequences() {
			for _, row := range r.Sequencer.Tracks() {
				d.evaluateRow(row, r.Clock)
			}
		}
	default:
		for _, row := range d.sequencer.Tracks() {
			d.evaluateRow(row, clock)
		}
	}
}

// evaluateRow applies one composition row to its entity.
// Camera and light rows blend their transform keyframes into the entity's local transform. Actor
// rows write their transform keyframes into the entity's clip, blend their Animation sub-tracks
// and take the root joint's blended local.
func (d *document) evaluateRow(row *timeline.Track, clock *animator.Clock) {
	if row.Missing || !row.Type.IsEntity() {
		return
	}
	obj, err := d.scene.Object(row.ID)
	if err != nil {
		row.Missing = true
		d.logger.Warn("timeline track references a missing entity", "track", row.Name, "id", row.ID)
		return
	}
	if !obj.Enabled() {
		return
	}

	xf := transformTrack(row)
	skel := obj.Skeleton()
	if row.Type != timeline.TrackActor || skel == nil {
		if xf == nil {
			return
		}
		if m, ok := xf.TransformAt(clock.CurrentTime); ok {
			obj.SetLocal(m)
		}
		return
	}

	if clip := obj.Clip(); clip != nil && xf != nil {
		for _, f := range xf.ActiveFrames() {
			clip.AddAndReplaceBone(obj.Name(), xf.Keyframes[f].Transform, float32(f))
		}
	}

	instances := animator.BuildInstances(row.SubTracks, d.library, d.logger)
	pose := d.animator.Pose(obj.ID())
	d.animator.ResolvePose(skel, instances, clock, pose)
	obj.SetLocal(pose.RootLocal(skel))
}

// evaluateClip samples the edited clip directly.
func (d *document) evaluateClip(clock *animator.Clock) {
	if d.editing == 0 {
		return
	}
	obj, err := d.scene.Object(d.editing)
	if err != nil {
		d.logger.Warn("edited entity is gone", "id", d.editing)
		return
	}
	skel, clip := obj.Skeleton(), obj.Clip()
	if skel == nil || clip == nil {
		return
	}
	d.animator.SampleClip(skel, clip, clock.CurrentTime, d.animator.Pose(obj.ID()))
}

// transformTrack returns the Transform sub-track composition keyframes live on.
func transformTrack(row *timeline.Track) *timeline.Track {
	if len(row.SubTracks) == 0 || row.SubTracks[0].Type != timeline.TrackTransform {
		return nil
	}
	return row.SubTracks[0]
}

func (d *document) Capture(track, frame int) {
	row, err := d.sequencer.Track(track)
	if err != nil {
		d.logger.Warn("keyframe set on unknown row", "track", track, "frame", frame)
		return
	}
	if d.sequencer.Scope() == timeline.ScopeAnimation {
		d.captureBone(row, frame)
		return
	}

	xf := transformTrack(row)
	if xf == nil {
		return
	}
	kf, ok := xf.Keyframe(frame)
	if !ok {
		return
	}
	obj, err := d.scene.Object(row.ID)
	if err != nil {
		d.logger.Warn("keyframe set on a missing entity", "track", row.Name, "id", row.ID)
		return
	}

	if !kf.Active {
		if clip := obj.Clip(); clip != nil && row.Type == timeline.TrackActor {
			clip.DeleteBoneKeyframe(obj.Name(), float32(frame))
		}
		return
	}
	kf.Transform = d.captured(xf, frame, obj.Local())
	d.logger.Debug("keyframe captured", "entity", obj.Name(), "frame", frame)
}

// captureBone fills a keyframe toggled on an animation timeline and writes it into the clip.
func (d *document) captureBone(row *timeline.Track, frame int) {
	obj, err := d.scene.Object(d.editing)
	if err != nil {
		return
	}
	clip := obj.Clip()
	if clip == nil {
		return
	}
	kf, ok := row.Keyframe(frame)
	if !ok {
		return
	}
	if !kf.Active {
		clip.DeleteBoneKeyframe(row.Name, float32(frame))
		return
	}

	live := mgl32.Ident4()
	if row.ID >= 0 && row.ID < model.MaxBones {
		live = d.animator.Pose(obj.ID()).Local[row.ID]
	}
	if bone, ok := clip.FindBone(row.Name); ok && float32(frame) != d.animator.Clock().CurrentTime {
		live = bone.LocalTransform(float32(frame))
	}
	kf.Transform = d.captured(row, frame, live)
	clip.AddAndReplaceBone(row.Name, kf.Transform, float32(frame))
}

// captured returns live when frame is the clock's current time, otherwise the transform of the
// nearest keyframe before frame, falling back to live when there is none.
func (d *document) captured(row *timeline.Track, frame int, live mgl32.Mat4) mgl32.Mat4 {
	if float32(frame) == d.animator.Clock().CurrentTime {
		return live
	}
	if prev, ok := row.PreviousKeyframe(frame); ok {
		return prev.Transform
	}
	return live
}

func (d *document) Pose(entityID int) *animator.Pose {
	return d.animator.Pose(entityID)
}

func (d *document) MarkMissing() int {
	return d.sequencer.MarkMissing(d.scene.Resolve)
}

func (d *document) Rebind(oldID, newID int) (int, error) {
	obj, err := d.scene.Object(newID)
	if err != nil {
		return 0, err
	}
	typ, err := trackTypeOf(obj.Kind())
	if err != nil {
		return 0, err
	}
	return d.sequencer.Rebind(oldID, newID, obj.Name(), typ)
}

// trackTypeOf maps an entity kind to the row type that binds it.
func trackTypeOf(kind game_object.Kind) (timeline.TrackType, error) {
	switch kind {
	case game_object.KindActor:
		return timeline.TrackActor, nil
	case game_object.KindCamera:
		return timeline.TrackCamera, nil
	case game_object.KindLight:
		return timeline.TrackLight, nil
	}
	return timeline.TrackOther, fmt.Errorf("%s entity: %w", kind.String(), ErrNotBindable)
}

func (d *document) PlayRuntime(entityID int, seq timeline.Sequencer) {
	d.animator.AddRuntimeSequence(&animator.RuntimeSequence{EntityID: entityID, Sequencer: seq})
	d.animator.SetMode(animator.ModeMap)
}
