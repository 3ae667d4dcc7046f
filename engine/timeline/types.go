package timeline

import (
	"fmt"
	"strings"
)

// Scope selects which shape a Sequencer takes.
// Composition timelines hold one row per scene entity, each with its own sub-track list.
// Animation timelines hold one flat row per bone or mesh of a single entity.
type Scope int

const (
	ScopeComposition Scope = iota
	ScopeAnimation
)

func (s Scope) String() string {
	if s == ScopeAnimation {
		return "animation"
	}
	return "composition"
}

// ParseScope converts a scope name back into a Scope.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(name) {
	case "", "composition":
		return ScopeComposition, nil
	case "animation":
		return ScopeAnimation, nil
	}
	return ScopeComposition, fmt.Errorf("unknown scope %q", name)
}

// Stage is the drill-down level of a composition timeline.
type Stage int

const (
	// StageSequence shows one row per entity.
	StageSequence Stage = iota
	// StageSubSequence shows the sub-tracks of the entity at the composition index.
	StageSubSequence
)

func (s Stage) String() string {
	if s == StageSubSequence {
		return "sub_sequence"
	}
	return "sequence"
}

// ParseStage converts a stage name back into a Stage. An empty name is StageSequence.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(name) {
	case "", "sequence":
		return StageSequence, nil
	case "sub_sequence":
		return StageSubSequence, nil
	}
	return StageSequence, fmt.Errorf("unknown stage %q", name)
}

// TrackType classifies what a track row refers to.
type TrackType int

const (
	TrackActor TrackType = iota
	TrackCamera
	TrackLight
	TrackTransform
	TrackAnimation
	TrackMesh
	TrackBone
	TrackOther
)

var trackTypeNames = map[TrackType]string{
	TrackActor:     "actor",
	TrackCamera:    "camera",
	TrackLight:     "light",
	TrackTransform: "transform",
	TrackAnimation: "animation",
	TrackMesh:      "mesh",
	TrackBone:      "bone",
	TrackOther:     "other",
}

func (t TrackType) String() string {
	if name, ok := trackTypeNames[t]; ok {
		return name
	}
	return "other"
}

// IsEntity reports whether tracks of this type reference a scene entity that can go missing.
func (t TrackType) IsEntity() bool {
	return t == TrackActor || t == TrackCamera || t == TrackLight
}

// ParseTrackType converts a track type name back into a TrackType.
func ParseTrackType(name string) (TrackType, error) {
	for t, n := range trackTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return TrackOther, fmt.Errorf("unknown track type %q", name)
}

// Options are per-track editing permission flags.
type Options uint32

const (
	OptionEditNone      Options = 0
	OptionEditStartEnd  Options = 1 << 1
	OptionChangeFrame   Options = 1 << 3
	OptionAdd           Options = 1 << 4
	OptionDelete        Options = 1 << 5
	OptionCopyPaste     Options = 1 << 6
	OptionSelect        Options = 1 << 7
	OptionEditAll               = OptionEditStartEnd | OptionChangeFrame
	defaultEntityOption         = OptionEditAll | OptionDelete
	defaultClipOptions          = OptionAdd | OptionDelete | OptionEditStartEnd
)

// Has reports whether every flag in o is set.
func (opts Options) Has(o Options) bool {
	return opts&o == o
}

// FrameRange selects frames Start through End inclusive on one track row.
type FrameRange struct {
	Track int
	Start int
	End   int
}
