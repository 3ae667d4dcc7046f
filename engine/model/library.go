package model

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Library is the registry of animation clips available to timelines.
// It assigns each clip a stable integer ID and keeps that ID when the same source path is
// registered again.
type Library struct {
	mu *sync.RWMutex

	clips  map[int]*AnimationClip
	byPath map[string]int

	logger *slog.Logger
}

// NewLibrary creates an empty clip Library.
//
// Parameters:
//   - logger: the logger for registration diagnostics; nil uses slog.Default()
//
// Returns:
//   - *Library: the new library
func NewLibrary(logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		mu:     &sync.RWMutex{},
		clips:  make(map[int]*AnimationClip),
		byPath: make(map[string]int),
		logger: logger,
	}
}

// Register adds a clip to the library and assigns its ID.
// If a clip with the same non-empty Path is already registered the incoming clip is treated as a
// duplicate: it is not stored, but its ID is set to the existing clip's ID. Otherwise the clip
// receives the highest registered ID plus one, or 0 when the library is empty.
//
// Parameters:
//   - clip: the clip to register
//
// Returns:
//   - int: the clip's ID
//   - bool: true if the clip was a duplicate of an existing path
func (l *Library) Register(clip *AnimationClip) (int, bool) {
	if clip == nil {
		panic("model: Library.Register requires a clip")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if clip.Path != "" {
		if id, ok := l.byPath[clip.Path]; ok {
			clip.ID = id
			l.logger.Debug("clip already registered", "path", clip.Path, "id", id)
			return id, true
		}
	}

	id := 0
	for existing := range l.clips {
		if existing >= id {
			id = existing + 1
		}
	}
	clip.ID = id
	l.clips[id] = clip
	if clip.Path != "" {
		l.byPath[clip.Path] = id
	}
	l.logger.Debug("registered clip", "name", clip.Name, "id", id)
	return id, false
}

// Clip returns the clip with the given ID.
//
// Returns:
//   - *AnimationClip: the clip
//   - error: ErrClipNotFound if no clip has that ID
func (l *Library) Clip(id int) (*AnimationClip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.clips[id]
	if !ok {
		return nil, fmt.Errorf("clip %d: %w", id, ErrClipNotFound)
	}
	return c, nil
}

// ClipByPath returns the clip registered from path.
func (l *Library) ClipByPath(path string) (*AnimationClip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.byPath[path]
	if !ok {
		return nil, fmt.Errorf("clip path %q: %w", path, ErrClipNotFound)
	}
	return l.clips[id], nil
}

// ClipByName returns the lowest-ID clip with the given name.
func (l *Library) ClipByName(name string) (*AnimationClip, error) {
	for _, c := range l.Clips() {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("clip %q: %w", name, ErrClipNotFound)
}

// Remove unregisters the clip with the given ID.
//
// Returns:
//   - bool: true if a clip was removed
func (l *Library) Remove(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clips[id]
	if !ok {
		return false
	}
	delete(l.clips, id)
	if c.Path != "" {
		delete(l.byPath, c.Path)
	}
	return true
}

// Clips returns all registered clips ordered by ID.
func (l *Library) Clips() []*AnimationClip {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*AnimationClip, 0, len(l.clips))
	for _, c := range l.clips {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered clips.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clips)
}
