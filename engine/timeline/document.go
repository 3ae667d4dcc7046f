package timeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// document is the on-disk form of a Sequencer.
type document struct {
	ID               string          `yaml:"id"`
	Scope            string          `yaml:"scope"`
	FrameMax         int             `yaml:"frame_max"`
	CurrentFrame     int             `yaml:"current_frame"`
	Stage            string          `yaml:"stage"`
	CompositionIndex int             `yaml:"composition_index"`
	SelectedEntry    int             `yaml:"selected_entry"`
	Tracks           []trackDocument `yaml:"tracks"`
}

type trackDocument struct {
	ID        int                `yaml:"id"`
	Name      string             `yaml:"name"`
	Type      string             `yaml:"type"`
	Missing   bool               `yaml:"missing"`
	Options   uint32             `yaml:"options"`
	Segments  []segmentDocument  `yaml:"segments,omitempty"`
	Keyframes []keyframeDocument `yaml:"keyframes,omitempty"`
	SubTracks []trackDocument    `yaml:"sub_tracks,omitempty"`
}

type segmentDocument struct {
	InitialIndex int `yaml:"initial_index"`
	FrameStart   int `yaml:"frame_start"`
	FrameEnd     int `yaml:"frame_end"`
	Offset       int `yaml:"offset"`
}

type keyframeDocument struct {
	Frame     int       `yaml:"frame"`
	Active    bool      `yaml:"active"`
	Value     float32   `yaml:"value,omitempty"`
	Transform []float32 `yaml:"transform,flow"`
}

func (s *sequencer) Serialize() ([]byte, error) {
	doc := document{
		ID:               s.id.String(),
		Scope:            s.scope.String(),
		FrameMax:         s.frameMax,
		CurrentFrame:     s.currentFrame,
		Stage:            s.stage.String(),
		CompositionIndex: s.compositionIndex,
		SelectedEntry:    s.selectedEntry,
		Tracks:           make([]trackDocument, 0, len(s.tracks)),
	}
	for _, t := range s.tracks {
		doc.Tracks = append(doc.Tracks, encodeTrack(t))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode timeline %s: %w", s.id, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode timeline %s: %w", s.id, err)
	}
	return buf.Bytes(), nil
}

func encodeTrack(t *Track) trackDocument {
	td := trackDocument{
		ID:      t.ID,
		Name:    t.Name,
		Type:    t.Type.String(),
		Missing: t.Missing,
		Options: uint32(t.Options),
	}
	for _, seg := range t.Segments {
		td.Segments = append(td.Segments, segmentDocument(seg))
	}
	for _, f := range t.Frames() {
		k := t.Keyframes[f]
		m := k.Transform
		td.Keyframes = append(td.Keyframes, keyframeDocument{
			Frame:     f,
			Active:    k.Active,
			Value:     k.Value,
			Transform: m[:],
		})
	}
	for _, sub := range t.SubTracks {
		td.SubTracks = append(td.SubTracks, encodeTrack(sub))
	}
	return td
}

func (s *sequencer) Deserialize(data []byte) error {
	s.reset()
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	// Keys missing from older documents keep the defaults of a fresh timeline.
	doc := document{CompositionIndex: -1, SelectedEntry: -1}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	scope, err := ParseScope(doc.Scope)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	id := s.id
	if doc.ID != "" {
		if id, err = uuid.Parse(doc.ID); err != nil {
			return fmt.Errorf("%w: id: %v", ErrMalformedDocument, err)
		}
	}

	tracks := make([]*Track, 0, len(doc.Tracks))
	for i, td := range doc.Tracks {
		t, err := decodeTrack(td)
		if err != nil {
			return fmt.Errorf("%w: track %d: %v", ErrMalformedDocument, i, err)
		}
		tracks = append(tracks, t)
	}

	stage, err := ParseStage(doc.Stage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := checkDrillDown(scope, stage, doc.CompositionIndex, len(tracks)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.CurrentFrame < 0 {
		return fmt.Errorf("%w: current frame %d is negative", ErrMalformedDocument, doc.CurrentFrame)
	}

	s.id = id
	s.scope = scope
	s.SetFrameMax(doc.FrameMax)
	s.tracks = tracks
	s.currentFrame = doc.CurrentFrame
	s.stage = stage
	s.compositionIndex = doc.CompositionIndex
	s.selectedEntry = doc.SelectedEntry
	s.logger.Debug("timeline loaded", "id", s.id.String(), "scope", s.scope.String(), "tracks", len(s.tracks))
	return nil
}

// checkDrillDown rejects a stage and composition index pair DoubleClick could not have produced.
func checkDrillDown(scope Scope, stage Stage, index, tracks int) error {
	if stage == StageSequence {
		if index != -1 {
			return fmt.Errorf("composition index %d outside sub_sequence stage", index)
		}
		return nil
	}
	if scope != ScopeComposition {
		return fmt.Errorf("%s timeline cannot be in %s stage", scope, stage)
	}
	if index < 0 || index >= tracks {
		return fmt.Errorf("composition index %d out of range for %d tracks", index, tracks)
	}
	return nil
}

func decodeTrack(td trackDocument) (*Track, error) {
	typ, err := ParseTrackType(td.Type)
	if err != nil {
		return nil, err
	}
	t := &Track{
		ID:        td.ID,
		Name:      td.Name,
		Type:      typ,
		Missing:   td.Missing,
		Options:   Options(td.Options),
		Keyframes: make(map[int]*Keyframe, len(td.Keyframes)),
	}
	for _, sd := range td.Segments {
		t.Segments = append(t.Segments, Segment(sd))
	}
	for _, kd := range td.Keyframes {
		m := mgl32.Ident4()
		if len(kd.Transform) != 0 {
			if len(kd.Transform) != len(m) {
				return nil, fmt.Errorf("keyframe %d: transform has %d values", kd.Frame, len(kd.Transform))
			}
			copy(m[:], kd.Transform)
		}
		t.Keyframes[kd.Frame] = &Keyframe{Active: kd.Active, Value: kd.Value, Transform: m}
	}
	for _, sub := range td.SubTracks {
		st, err := decodeTrack(sub)
		if err != nil {
			return nil, err
		}
		t.SubTracks = append(t.SubTracks, st)
	}
	return t, nil
}
