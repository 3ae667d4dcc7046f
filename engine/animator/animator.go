package animator

import (
	"log/slog"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
)

// Mode selects what bounds playback and which timelines drive poses.
type Mode int

const (
	// ModeSequence plays the open composition timeline.
	ModeSequence Mode = iota
	// ModeAnimation plays a single clip on an animation timeline.
	ModeAnimation
	// ModeMap runs externally triggered runtime sequences, each on its own clock.
	ModeMap
)

func (m Mode) String() string {
	switch m {
	case ModeAnimation:
		return "animation"
	case ModeMap:
		return "map"
	default:
		return "sequence"
	}
}

// RuntimeSequence is a composition timeline started at runtime for one entity, with its own clock.
type RuntimeSequence struct {
	EntityID  int
	Sequencer timeline.Sequencer
	Clock     *Clock
}

// animator implements the Animator interface.
type animator struct {
	mode       Mode
	clock      *Clock
	rootMotion bool
	shape      func(float32) float32
	activeClip *model.AnimationClip

	poses    map[int]*Pose
	runtimes map[int]*RuntimeSequence

	logger *slog.Logger
}

// Animator is the blend scheduler: it owns the playback clock, advances it once per tick and
// resolves stacked clip placements into skeletal poses.
//
// An Animator is driven from a single goroutine. ResolvePose and SampleClip only read the
// animator's configuration and may be called concurrently on distinct poses.
type Animator interface {
	// Mode returns the current playback mode.
	//
	// Returns:
	//   - Mode: the mode
	Mode() Mode

	// SetMode switches playback mode. Every pose handed out by Pose is reset to identity when the
	// mode changes.
	//
	// Parameters:
	//   - mode: the new mode
	SetMode(mode Mode)

	// Clock returns the playback clock. Callers may adjust its fields directly.
	//
	// Returns:
	//   - *Clock: the clock
	Clock() *Clock

	// Play resumes playback.
	Play()

	// Stop pauses playback; the clock snaps to whole frames on the next Advance.
	Stop()

	// SetDirection selects forward or reverse playback.
	//
	// Parameters:
	//   - reverse: true to play backwards
	SetDirection(reverse bool)

	// SetExporting toggles deterministic one-frame-per-tick stepping.
	//
	// Parameters:
	//   - exporting: true while exporting
	SetExporting(exporting bool)

	// RootMotion reports whether root-motion joints lose their translation.
	//
	// Returns:
	//   - bool: true if root motion is enabled
	RootMotion() bool

	// SetRootMotion toggles translation stripping on root-motion joints.
	//
	// Parameters:
	//   - enabled: the new state
	SetRootMotion(enabled bool)

	// SetActiveClip sets the clip whose duration bounds ModeAnimation playback.
	//
	// Parameters:
	//   - clip: the clip, nil to fall back to the clock's EndTime
	SetActiveClip(clip *model.AnimationClip)

	// ActiveClip returns the clip set by SetActiveClip.
	//
	// Returns:
	//   - *model.AnimationClip: the clip or nil
	ActiveClip() *model.AnimationClip

	// Pose returns the pose buffer for an entity, allocating an identity pose on first use.
	//
	// Parameters:
	//   - entityID: the entity id
	//
	// Returns:
	//   - *Pose: the entity's pose
	Pose(entityID int) *Pose

	// AddRuntimeSequence starts a runtime sequence, replacing any running for the same entity.
	// A nil clock is replaced by a fresh one sharing the animator's fps and stop state.
	//
	// Parameters:
	//   - seq: the runtime sequence
	AddRuntimeSequence(seq *RuntimeSequence)

	// RemoveRuntimeSequence stops the runtime sequence of an entity.
	//
	// Parameters:
	//   - entityID: the entity id
	//
	// Returns:
	//   - bool: true if a sequence was running
	RemoveRuntimeSequence(entityID int) bool

	// RuntimeSequences returns the running runtime sequences ordered by entity id.
	//
	// Returns:
	//   - []*RuntimeSequence: the sequences
	RuntimeSequences() []*RuntimeSequence

	// EndTime returns the wrap bound for the current mode.
	//
	// Returns:
	//   - float32: the bound in frames
	EndTime() float32

	// Advance moves the clock by dt seconds. In ModeSequence and ModeMap every runtime sequence
	// clock advances too, wrapping over its own frame max; sequences without stack tracks are
	// parked at -1.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last tick
	Advance(dt float32)

	// ResolvePose blends instances at the clock's current time and propagates the result into
	// pose. With no instances the previous pose is kept.
	//
	// Parameters:
	//   - skel: the joint hierarchy
	//   - instances: the clip placements
	//   - clock: the clock supplying the time
	//   - pose: the output pose
	//
	// Returns:
	//   - bool: false if the pose was held
	ResolvePose(skel *model.Skeleton, instances []*StackedClipInstance, clock *Clock, pose *Pose) bool

	// SampleClip evaluates one clip directly at time t without blending and propagates it into pose.
	//
	// Parameters:
	//   - skel: the joint hierarchy
	//   - clip: the clip to sample
	//   - t: the clip time
	//   - pose: the output pose
	SampleClip(skel *model.Skeleton, clip *model.AnimationClip, t float32, pose *Pose)
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator with the provided options.
// Defaults: ModeSequence, a stopped NewClock, root motion off, linear crossfades.
//
// Parameters:
//   - options: functional options for animator configuration
//
// Returns:
//   - Animator: the new animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		clock:    NewClock(),
		poses:    make(map[int]*Pose),
		runtimes: make(map[int]*RuntimeSequence),
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(a)
	}

	return a
}

func (a *animator) Mode() Mode {
	return a.mode
}

func (a *animator) SetMode(mode Mode) {
	if mode == a.mode {
		return
	}
	a.logger.Debug("animator mode changed", "from", a.mode.String(), "to", mode.String())
	a.mode = mode
	for _, p := range a.poses {
		p.Reset()
	}
}

func (a *animator) Clock() *Clock {
	return a.clock
}

func (a *animator) Play() {
	a.clock.Stopped = false
}

func (a *animator) Stop() {
	a.clock.Stopped = true
}

func (a *animator) SetDirection(reverse bool) {
	a.clock.SetDirection(reverse)
}

func (a *animator) SetExporting(exporting bool) {
	a.clock.Exporting = exporting
}

func (a *animator) RootMotion() bool {
	return a.rootMotion
}

func (a *animator) SetRootMotion(enabled bool) {
	a.rootMotion = enabled
}

func (a *animator) SetActiveClip(clip *model.AnimationClip) {
	a.activeClip = clip
}

func (a *animator) ActiveClip() *model.AnimationClip {
	return a.activeClip
}

func (a *animator) Pose(entityID int) *Pose {
	p, ok := a.poses[entityID]
	if !ok {
		p = NewPose()
		a.poses[entityID] = p
	}
	return p
}

func (a *animator) AddRuntimeSequence(seq *RuntimeSequence) {
	if seq == nil || seq.Sequencer == nil {
		panic("animator: AddRuntimeSequence requires a sequence with a sequencer")
	}
	if seq.Clock == nil {
		seq.Clock = NewClock()
		seq.Clock.FPS = a.clock.FPS
		seq.Clock.Stopped = a.clock.Stopped
	}
	a.runtimes[seq.EntityID] = seq
	a.logger.Debug("runtime sequence added", "entity", seq.EntityID, "sequence", seq.Sequencer.ID().String())
}

func (a *animator) RemoveRuntimeSequence(entityID int) bool {
	if _, ok := a.runtimes[entityID]; !ok {
		return false
	}
	delete(a.runtimes, entityID)
	return true
}

func (a *animator) RuntimeSequences() []*RuntimeSequence {
	out := make([]*RuntimeSequence, 0, len(a.runtimes))
	for _, r := range a.runtimes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

func (a *animator) EndTime() float32 {
	switch a.mode {
	case ModeSequence:
		return a.clock.SequencerEnd
	case ModeAnimation:
		if a.activeClip != nil {
			if d := a.activeClip.Duration(); d > 0 {
				return d
			}
		}
	}
	return a.clock.EndTime
}

func (a *animator) Advance(dt float32) {
	a.clock.Advance(dt, a.EndTime())

	if a.mode == ModeAnimation {
		return
	}
	for _, r := range a.RuntimeSequences() {
		if !runtimeHasStackTracks(r.Sequencer) {
			r.Clock.CurrentTime = -1
			continue
		}
		if r.Clock.CurrentTime < 0 {
			r.Clock.CurrentTime = 0
		}
		r.Clock.Stopped = a.clock.Stopped
		r.Clock.Direction = a.clock.Direction
		r.Clock.FPS = a.clock.FPS
		r.Clock.Advance(dt, float32(r.Sequencer.FrameMax()))
	}
}

// runtimeHasStackTracks reports whether any entity row of seq places a clip.
func runtimeHasStackTracks(seq timeline.Sequencer) bool {
	for _, row := range seq.Tracks() {
		if HasStackTracks(row.SubTracks) {
			return true
		}
	}
	return false
}

func (a *animator) ResolvePose(skel *model.Skeleton, instances []*StackedClipInstance, clock *Clock, pose *Pose) bool {
	if len(instances) == 0 {
		return false
	}
	pose.Local = Fold(skel, instances, clock.CurrentTime, a.rootMotion, a.shape)
	Propagate(skel, pose)
	return true
}

func (a *animator) SampleClip(skel *model.Skeleton, clip *model.AnimationClip, t float32, pose *Pose) {
	pose.Local = ClipLocals(skel, clip, t, a.rootMotion)
	Propagate(skel, pose)
}
