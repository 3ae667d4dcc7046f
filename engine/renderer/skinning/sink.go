package skinning

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/cogentcore/webgpu/wgpu"
)

// Sink receives resolved poses at the end of every tick. It is the boundary between the animation
// core and whatever draws skinned meshes.
type Sink interface {
	// Upload publishes the skinning matrices of one entity's pose.
	//
	// Parameters:
	//   - entityID: the entity the pose belongs to
	//   - pose: the resolved pose
	//
	// Returns:
	//   - error: an error if the destination could not be allocated
	Upload(entityID int, pose *animator.Pose) error

	// Release frees whatever the sink holds for an entity.
	//
	// Parameters:
	//   - entityID: the entity id
	Release(entityID int)

	// Close releases every entity.
	Close()
}

// wgpuSink uploads palettes into one storage buffer per entity.
type wgpuSink struct {
	mu *sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue

	buffers map[int]*wgpu.Buffer

	// wgpu's queue.WriteBuffer copies data internally before returning,
	// so a single staging buffer reused every upload is safe.
	staging []byte

	logger *slog.Logger
}

var _ Sink = &wgpuSink{}

// NewWGPUSink creates a Sink that writes palettes into storage buffers on device.
// Buffers are created on first upload and bound by the renderer as a read-only storage binding
// matching GPUPaletteSource.
//
// Parameters:
//   - device: the GPU device buffers are created on
//   - queue: the queue palettes are written through
//   - logger: the logger for buffer lifecycle diagnostics; nil uses slog.Default()
//
// Returns:
//   - Sink: the sink
func NewWGPUSink(device *wgpu.Device, queue *wgpu.Queue, logger *slog.Logger) Sink {
	if device == nil || queue == nil {
		panic("skinning: NewWGPUSink requires a device and a queue")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &wgpuSink{
		mu:      &sync.Mutex{},
		device:  device,
		queue:   queue,
		buffers: make(map[int]*wgpu.Buffer),
		staging: make([]byte, PaletteSize),
		logger:  logger,
	}
}

// Buffer returns the storage buffer of an entity, or nil before its first upload.
func (s *wgpuSink) Buffer(entityID int) *wgpu.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers[entityID]
}

func (s *wgpuSink) Upload(entityID int, pose *animator.Pose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[entityID]
	if !ok {
		var err error
		buf, err = s.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            fmt.Sprintf("Entity %d Palette Buffer", entityID),
			Size:             PaletteSize,
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("create palette buffer for entity %d: %w", entityID, err)
		}
		s.buffers[entityID] = buf
		s.logger.Debug("palette buffer created", "entity", entityID, "bytes", PaletteSize)
	}

	palette := FromPose(pose)
	palette.MarshalInto(s.staging)
	s.queue.WriteBuffer(buf, 0, s.staging)
	return nil
}

func (s *wgpuSink) Release(entityID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buf, ok := s.buffers[entityID]; ok {
		buf.Release()
		delete(s.buffers, entityID)
	}
}

func (s *wgpuSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, buf := range s.buffers {
		buf.Release()
		delete(s.buffers, id)
	}
}

// MemorySink keeps the latest marshaled palette per entity in memory. It backs headless playback
// and tests.
type MemorySink struct {
	mu       *sync.Mutex
	palettes map[int][]byte
	uploads  int
}

var _ Sink = &MemorySink{}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		mu:       &sync.Mutex{},
		palettes: make(map[int][]byte),
	}
}

func (m *MemorySink) Upload(entityID int, pose *animator.Pose) error {
	palette := FromPose(pose)
	data := palette.Marshal()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.palettes[entityID] = data
	m.uploads++
	return nil
}

// Palette returns the last palette uploaded for an entity.
func (m *MemorySink) Palette(entityID int) (GPUPalette, bool) {
	m.mu.Lock()
	data, ok := m.palettes[entityID]
	m.mu.Unlock()

	var g GPUPalette
	if !ok {
		return g, false
	}
	if err := g.Unmarshal(data); err != nil {
		return g, false
	}
	return g, true
}

// Uploads returns the number of uploads received since creation.
func (m *MemorySink) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

func (m *MemorySink) Release(entityID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.palettes, entityID)
}

func (m *MemorySink) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.palettes = make(map[int][]byte)
}
