package timeline

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"
)

// DefaultFrameMax is the frame bound of a new or empty timeline.
const DefaultFrameMax = 300

// KeyFrameSetFunc is called after a keyframe toggle so the owner can capture the live pose into it.
// On composition timelines track is the composition index of the entity row; on animation
// timelines it is the toggled row.
type KeyFrameSetFunc func(track, frame int)

// edit holds the state of an in-progress segment drag.
type edit struct {
	active     bool
	track      int
	segment    int
	frameStart int
	size       int
}

// sequencer implements the Sequencer interface.
type sequencer struct {
	id    uuid.UUID
	scope Scope

	frameMax     int
	currentFrame int

	stage            Stage
	compositionIndex int
	selectedEntry    int

	tracks []*Track
	edit   edit

	onKeyFrameSet KeyFrameSetFunc
	logger        *slog.Logger
}

// Sequencer is the editable track/segment/keyframe model behind both composition and animation
// timelines. A Sequencer is not safe for concurrent use; use Clone to hand a snapshot to another
// goroutine.
type Sequencer interface {
	// ID returns the document identifier.
	//
	// Returns:
	//   - uuid.UUID: the identifier
	ID() uuid.UUID

	// Scope returns whether this is a composition or an animation timeline.
	//
	// Returns:
	//   - Scope: the timeline scope
	Scope() Scope

	// FrameMin returns the first frame of the timeline. Always 0.
	FrameMin() int

	// FrameMax returns the last frame of the timeline.
	//
	// Returns:
	//   - int: the frame bound
	FrameMax() int

	// SetFrameMax sets the last frame of the timeline. Values below 1 are ignored.
	//
	// Parameters:
	//   - frame: the new frame bound
	SetFrameMax(frame int)

	// CurrentFrame returns the frame keyframe toggles apply to.
	//
	// Returns:
	//   - int: the current frame
	CurrentFrame() int

	// SetCurrentFrame moves the scrubber.
	//
	// Parameters:
	//   - frame: the frame to select
	SetCurrentFrame(frame int)

	// Stage returns the drill-down level. Animation timelines are always at StageSequence.
	//
	// Returns:
	//   - Stage: the current stage
	Stage() Stage

	// CompositionIndex returns the entity row drilled into, or -1 outside StageSubSequence.
	//
	// Returns:
	//   - int: the composition index
	CompositionIndex() int

	// SelectedEntry returns the selected row, or -1 when nothing is selected.
	//
	// Returns:
	//   - int: the selected row
	SelectedEntry() int

	// Select marks a row as selected.
	//
	// Parameters:
	//   - index: the row to select
	Select(index int)

	// ItemCount returns the number of rows at the current stage.
	//
	// Returns:
	//   - int: the row count
	ItemCount() int

	// Items returns the rows at the current stage: entity rows in StageSequence, the drilled
	// entity's sub-tracks in StageSubSequence.
	//
	// Returns:
	//   - []*Track: the rows
	Items() []*Track

	// Tracks returns the top-level rows regardless of stage.
	//
	// Returns:
	//   - []*Track: the top-level rows
	Tracks() []*Track

	// Track returns one top-level row.
	//
	// Parameters:
	//   - index: the row index
	//
	// Returns:
	//   - *Track: the row
	//   - error: ErrInvalidIndex when out of range
	Track(index int) (*Track, error)

	// AddTrack appends a top-level row.
	//
	// Parameters:
	//   - track: the row to append
	//
	// Returns:
	//   - int: the index of the new row
	AddTrack(track *Track) int

	// DoubleClick toggles a composition timeline between StageSequence and StageSubSequence.
	// Entering pins the composition index to index; leaving resets it to -1. The selected entry
	// becomes 0 in both directions.
	//
	// Parameters:
	//   - index: the entity row to drill into
	//
	// Returns:
	//   - error: ErrStageMismatch on animation timelines, ErrInvalidIndex for a bad row
	DoubleClick(index int) error

	// AddKeyFrame toggles the keyframe at the current frame and fires the keyframe callback.
	// Composition timelines toggle the drilled entity's Transform sub-track; animation timelines
	// toggle the selected row.
	//
	// Returns:
	//   - error: ErrStageMismatch outside StageSubSequence on composition timelines,
	//     ErrTypeMismatch when the first sub-track is not a Transform track,
	//     ErrInvalidIndex when no row is selected
	AddKeyFrame() error

	// AddKeyFrameRange toggles every frame of the selection as a whole: if every selected keyframe
	// is already active the selection is cleared from end to start, otherwise it is set active from
	// start to end. The keyframe callback fires once per frame.
	//
	// Parameters:
	//   - ranges: the selection, one entry per row
	//
	// Returns:
	//   - error: ErrInvalidIndex for a bad row or inverted range, ErrStageMismatch as for AddKeyFrame
	AddKeyFrameRange(ranges []FrameRange) error

	// Duplicate appends a copy of the last segment of an Animation row right after it.
	//
	// Parameters:
	//   - index: the row at the current stage
	//
	// Returns:
	//   - error: ErrLastTrack, ErrStageMismatch, ErrInvalidIndex or ErrTypeMismatch
	Duplicate(index int) error

	// Delete removes a segment from an Animation row: segment is clamped to the last one, a
	// negative segment removes the last one, and a row without segments is removed itself.
	//
	// Parameters:
	//   - index: the row at the current stage
	//   - segment: the segment to remove
	//
	// Returns:
	//   - error: ErrLastTrack, ErrStageMismatch, ErrInvalidIndex or ErrTypeMismatch
	Delete(index, segment int) error

	// BeginEdit starts a segment drag. Outside StageSubSequence it only selects the row.
	//
	// Parameters:
	//   - index: the row at the current stage
	//   - segment: the segment being dragged
	BeginEdit(index, segment int)

	// EditSegment moves the dragged segment to [start, end]. A drag that changes the segment's
	// length shifts its Offset by how far the start moved; a drag that keeps the length shifts its
	// InitialIndex instead.
	//
	// Parameters:
	//   - index: the row passed to BeginEdit
	//   - segment: the segment passed to BeginEdit
	//   - start: the new first frame
	//   - end: the new last frame
	//
	// Returns:
	//   - error: ErrNotEditing without a matching BeginEdit, ErrInvalidIndex for bad indices
	EditSegment(index, segment, start, end int) error

	// EndEdit finishes a segment drag.
	EndEdit()

	// MarkMissing flags every Actor, Camera and Light row whose id does not resolve and clears the
	// flag on rows that do.
	//
	// Parameters:
	//   - resolve: reports whether an entity id exists
	//
	// Returns:
	//   - int: the number of rows flagged missing
	MarkMissing(resolve func(id int) bool) int

	// Rebind points every top-level row referencing oldID at newID, renames it and clears Missing.
	//
	// Parameters:
	//   - oldID: the id of the missing entity
	//   - newID: the id of the replacement entity
	//   - name: the replacement entity's name
	//   - typ: the replacement entity's track type
	//
	// Returns:
	//   - int: the number of rows rewritten
	//   - error: ErrStageMismatch outside StageSequence, ErrTypeMismatch when typ differs,
	//     ErrInvalidIndex when no row references oldID
	Rebind(oldID, newID int, name string, typ TrackType) (int, error)

	// OnKeyFrameSet registers the keyframe callback, replacing any previous one.
	//
	// Parameters:
	//   - fn: the callback, nil to clear it
	OnKeyFrameSet(fn KeyFrameSetFunc)

	// Serialize encodes the timeline as a yaml document.
	//
	// Returns:
	//   - []byte: the document
	//   - error: an encoding error
	Serialize() ([]byte, error)

	// Deserialize replaces the timeline with a yaml document. Empty input yields a default
	// timeline; malformed input yields a default timeline and an error wrapping
	// ErrMalformedDocument.
	//
	// Parameters:
	//   - data: the document
	//
	// Returns:
	//   - error: nil or a wrapped ErrMalformedDocument
	Deserialize(data []byte) error

	// Clone returns a deep copy of the timeline without its callback.
	//
	// Returns:
	//   - Sequencer: the copy
	//   - error: a copy error
	Clone() (Sequencer, error)
}

var _ Sequencer = &sequencer{}

// NewSequencer creates a new Sequencer with the provided options.
// Defaults: composition scope, FrameMax 300, StageSequence, no selection, a fresh uuid.
//
// Parameters:
//   - options: functional options for timeline configuration
//
// Returns:
//   - Sequencer: the new timeline
func NewSequencer(options ...SequencerBuilderOption) Sequencer {
	s := &sequencer{
		id:     uuid.New(),
		logger: slog.Default(),
	}
	s.reset()

	for _, opt := range options {
		opt(s)
	}

	return s
}

// reset restores the default state while keeping the id, scope, callback and logger.
func (s *sequencer) reset() {
	s.frameMax = DefaultFrameMax
	s.currentFrame = 0
	s.stage = StageSequence
	s.compositionIndex = -1
	s.selectedEntry = -1
	s.tracks = nil
	s.edit = edit{}
}

func (s *sequencer) ID() uuid.UUID {
	return s.id
}

func (s *sequencer) Scope() Scope {
	return s.scope
}

func (s *sequencer) FrameMin() int {
	return 0
}

func (s *sequencer) FrameMax() int {
	return s.frameMax
}

func (s *sequencer) SetFrameMax(frame int) {
	if frame < 1 {
		return
	}
	s.frameMax = frame
}

func (s *sequencer) CurrentFrame() int {
	return s.currentFrame
}

func (s *sequencer) SetCurrentFrame(frame int) {
	s.currentFrame = frame
}

func (s *sequencer) Stage() Stage {
	return s.stage
}

func (s *sequencer) CompositionIndex() int {
	return s.compositionIndex
}

func (s *sequencer) SelectedEntry() int {
	return s.selectedEntry
}

func (s *sequencer) Select(index int) {
	s.selectedEntry = index
}

func (s *sequencer) ItemCount() int {
	return len(s.Items())
}

func (s *sequencer) Items() []*Track {
	if s.scope == ScopeComposition && s.stage == StageSubSequence {
		if s.compositionIndex >= 0 && s.compositionIndex < len(s.tracks) {
			return s.tracks[s.compositionIndex].SubTracks
		}
		return nil
	}
	return s.tracks
}

func (s *sequencer) Tracks() []*Track {
	return s.tracks
}

func (s *sequencer) Track(index int) (*Track, error) {
	if index < 0 || index >= len(s.tracks) {
		return nil, fmt.Errorf("track %d: %w", index, ErrInvalidIndex)
	}
	return s.tracks[index], nil
}

func (s *sequencer) AddTrack(track *Track) int {
	if track == nil {
		panic("timeline: Sequencer.AddTrack requires a track")
	}
	if track.Keyframes == nil {
		track.Keyframes = make(map[int]*Keyframe)
	}
	s.tracks = append(s.tracks, track)
	return len(s.tracks) - 1
}

func (s *sequencer) DoubleClick(index int) error {
	if s.scope != ScopeComposition {
		return fmt.Errorf("double click on %s timeline: %w", s.scope, ErrStageMismatch)
	}
	if s.stage == StageSubSequence {
		s.stage = StageSequence
		s.compositionIndex = -1
		s.selectedEntry = 0
		return nil
	}
	if index < 0 || index >= len(s.tracks) {
		return fmt.Errorf("double click row %d: %w", index, ErrInvalidIndex)
	}
	s.stage = StageSubSequence
	s.compositionIndex = index
	s.selectedEntry = 0
	return nil
}

// keyframeRow resolves the row AddKeyFrame toggles and the index reported to the callback.
func (s *sequencer) keyframeRow() (*Track, int, error) {
	if s.scope == ScopeAnimation {
		if s.selectedEntry < 0 || s.selectedEntry >= len(s.tracks) {
			return nil, 0, fmt.Errorf("selected row %d: %w", s.selectedEntry, ErrInvalidIndex)
		}
		return s.tracks[s.selectedEntry], s.selectedEntry, nil
	}

	if s.stage != StageSubSequence {
		return nil, 0, fmt.Errorf("add keyframe: %w", ErrStageMismatch)
	}
	subs := s.Items()
	if len(subs) == 0 {
		return nil, 0, fmt.Errorf("composition row %d has no sub-tracks: %w", s.compositionIndex, ErrInvalidIndex)
	}
	if subs[0].Type != TrackTransform {
		return nil, 0, fmt.Errorf("first sub-track is %s: %w", subs[0].Type, ErrTypeMismatch)
	}
	return subs[0], s.compositionIndex, nil
}

func (s *sequencer) AddKeyFrame() error {
	track, index, err := s.keyframeRow()
	if err != nil {
		return err
	}

	active := track.ToggleKeyframe(s.currentFrame)
	s.logger.Debug("keyframe toggled", "track", track.Name, "frame", s.currentFrame, "active", active)
	s.fireKeyFrameSet(index, s.currentFrame)
	return nil
}

func (s *sequencer) AddKeyFrameRange(ranges []FrameRange) error {
	if s.scope == ScopeComposition && s.stage != StageSubSequence {
		return fmt.Errorf("add keyframe range: %w", ErrStageMismatch)
	}

	rows := s.Items()
	for _, r := range ranges {
		if r.Track < 0 || r.Track >= len(rows) {
			return fmt.Errorf("range row %d: %w", r.Track, ErrInvalidIndex)
		}
		if r.Start > r.End {
			return fmt.Errorf("range [%d, %d]: %w", r.Start, r.End, ErrInvalidIndex)
		}
	}

	full := true
	for _, r := range ranges {
		for f := r.Start; f <= r.End && full; f++ {
			if k, ok := rows[r.Track].Keyframes[f]; !ok || !k.Active {
				full = false
			}
		}
	}

	for _, r := range ranges {
		track := rows[r.Track]
		index := r.Track
		if s.scope == ScopeComposition {
			index = s.compositionIndex
		}

		if full {
			for f := r.End; f >= r.Start; f-- {
				track.keyframe(f).Active = false
				s.fireKeyFrameSet(index, f)
			}
		} else {
			for f := r.Start; f <= r.End; f++ {
				track.keyframe(f).Active = true
				s.fireKeyFrameSet(index, f)
			}
		}
	}

	s.logger.Debug("keyframe range toggled", "ranges", len(ranges), "cleared", full)
	return nil
}

func (s *sequencer) fireKeyFrameSet(track, frame int) {
	if s.onKeyFrameSet != nil {
		s.onKeyFrameSet(track, frame)
	}
}

// segmentRow validates a Duplicate or Delete target.
func (s *sequencer) segmentRow(op string, index int) (*Track, error) {
	if s.scope == ScopeComposition && s.stage != StageSubSequence {
		return nil, fmt.Errorf("%s: %w", op, ErrStageMismatch)
	}
	rows := s.Items()
	if len(rows) <= 1 {
		return nil, fmt.Errorf("%s row %d: %w", op, index, ErrLastTrack)
	}
	if index < 0 || index >= len(rows) {
		return nil, fmt.Errorf("%s row %d: %w", op, index, ErrInvalidIndex)
	}
	if rows[index].Type != TrackAnimation {
		return nil, fmt.Errorf("%s row %d is %s: %w", op, index, rows[index].Type, ErrTypeMismatch)
	}
	return rows[index], nil
}

func (s *sequencer) Duplicate(index int) error {
	track, err := s.segmentRow("duplicate", index)
	if err != nil {
		return err
	}
	if !track.AddSegment() {
		return fmt.Errorf("duplicate row %d has no segment: %w", index, ErrInvalidIndex)
	}
	return nil
}

func (s *sequencer) Delete(index, segment int) error {
	track, err := s.segmentRow("delete", index)
	if err != nil {
		return err
	}

	switch {
	case len(track.Segments) == 0:
		s.removeRow(index)
		s.logger.Debug("track removed", "track", track.Name)
	case segment < 0:
		track.Segments = track.Segments[:len(track.Segments)-1]
	default:
		if segment >= len(track.Segments) {
			segment = len(track.Segments) - 1
		}
		track.Segments = append(track.Segments[:segment], track.Segments[segment+1:]...)
	}
	return nil
}

func (s *sequencer) removeRow(index int) {
	if s.scope == ScopeComposition && s.stage == StageSubSequence {
		parent := s.tracks[s.compositionIndex]
		parent.SubTracks = append(parent.SubTracks[:index], parent.SubTracks[index+1:]...)
		return
	}
	s.tracks = append(s.tracks[:index], s.tracks[index+1:]...)
}

func (s *sequencer) BeginEdit(index, segment int) {
	if s.scope == ScopeComposition && s.stage != StageSubSequence {
		s.selectedEntry = index
		return
	}
	if s.scope == ScopeComposition {
		s.selectedEntry = s.compositionIndex
	} else {
		s.selectedEntry = index
	}

	s.edit = edit{track: index, segment: segment}
	rows := s.Items()
	if index < 0 || index >= len(rows) || rows[index].Type != TrackAnimation {
		return
	}
	if segment < 0 || segment >= len(rows[index].Segments) {
		return
	}
	seg := rows[index].Segments[segment]
	s.edit.frameStart = seg.FrameStart
	s.edit.size = seg.Span()
	s.edit.active = true
}

func (s *sequencer) EditSegment(index, segment, start, end int) error {
	if !s.edit.active || s.edit.track != index || s.edit.segment != segment {
		return fmt.Errorf("edit row %d segment %d: %w", index, segment, ErrNotEditing)
	}
	rows := s.Items()
	if index < 0 || index >= len(rows) || segment < 0 || segment >= len(rows[index].Segments) {
		return fmt.Errorf("edit row %d segment %d: %w", index, segment, ErrInvalidIndex)
	}
	if start > end {
		return fmt.Errorf("edit range [%d, %d]: %w", start, end, ErrInvalidIndex)
	}

	seg := &rows[index].Segments[segment]
	seg.FrameStart = start
	seg.FrameEnd = end

	if size := seg.Span(); size != s.edit.size {
		seg.Offset += seg.FrameStart - s.edit.frameStart
		s.edit.size = size
	} else {
		seg.InitialIndex += seg.FrameStart - s.edit.frameStart
		s.edit.frameStart = seg.FrameStart
	}
	return nil
}

func (s *sequencer) EndEdit() {
	s.edit.active = false
}

func (s *sequencer) MarkMissing(resolve func(id int) bool) int {
	flagged := 0
	for _, t := range s.tracks {
		if !t.Type.IsEntity() {
			continue
		}
		t.Missing = !resolve(t.ID)
		if t.Missing {
			flagged++
			s.logger.Warn("timeline track references a missing entity", "track", t.Name, "id", t.ID, "type", t.Type.String())
		}
	}
	return flagged
}

func (s *sequencer) Rebind(oldID, newID int, name string, typ TrackType) (int, error) {
	if s.stage != StageSequence {
		return 0, fmt.Errorf("rebind: %w", ErrStageMismatch)
	}

	var target *Track
	for _, t := range s.tracks {
		if t.ID == oldID && t.Type.IsEntity() {
			target = t
			break
		}
	}
	if target == nil {
		return 0, fmt.Errorf("rebind entity %d: %w", oldID, ErrInvalidIndex)
	}
	if target.Type != typ {
		return 0, fmt.Errorf("rebind %s track to %s: %w", target.Type, typ, ErrTypeMismatch)
	}

	rewritten := 0
	for _, t := range s.tracks {
		if t.ID != oldID || t.Type != typ {
			continue
		}
		t.ID = newID
		t.Name = name
		t.Missing = false
		for _, sub := range t.SubTracks {
			if sub.Type == TrackTransform && sub.ID == oldID {
				sub.ID = newID
				sub.Name = name
			}
		}
		rewritten++
	}
	s.logger.Info("timeline track rebound", "from", oldID, "to", newID, "name", name, "tracks", rewritten)
	return rewritten, nil
}

func (s *sequencer) OnKeyFrameSet(fn KeyFrameSetFunc) {
	s.onKeyFrameSet = fn
}

func (s *sequencer) Clone() (Sequencer, error) {
	var tracks []*Track
	if err := deepcopy.Copy(&tracks, &s.tracks); err != nil {
		return nil, fmt.Errorf("clone timeline %s: %w", s.id, err)
	}
	return &sequencer{
		id:               s.id,
		scope:            s.scope,
		frameMax:         s.frameMax,
		currentFrame:     s.currentFrame,
		stage:            s.stage,
		compositionIndex: s.compositionIndex,
		selectedEntry:    s.selectedEntry,
		tracks:           tracks,
		logger:           s.logger,
	}, nil
}
