package scene

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
)

// scene implements the Scene interface.
type scene struct {
	mu *sync.Mutex

	registry map[int]game_object.GameObject
	nextID   int

	logger *slog.Logger
}

// Scene is the registry that exclusively owns entities.
// Timelines and skeleton bindings refer to entities by ID and resolve them through the Scene each
// tick, so removing an entity only touches the registry; dependent tracks are flagged missing by
// their owners on the next resolve.
type Scene interface {
	// Add registers objects with the scene. Objects without an ID (0) are assigned the next free ID.
	// Adding an object whose ID is already registered replaces the previous object.
	//
	// Parameters:
	//   - objects: the objects to add
	Add(objects ...game_object.GameObject)

	// Remove unregisters the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true if an object was removed
	Remove(id int) bool

	// Object returns the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object
	//   - error: ErrEntityNotFound if no object has that ID
	Object(id int) (game_object.GameObject, error)

	// Resolve reports whether an object with the given ID is registered.
	// The signature matches the resolver timelines use to flag missing tracks.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true if the ID resolves
	Resolve(id int) bool

	// Objects returns all registered objects ordered by ID.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// Len returns the number of registered objects.
	//
	// Returns:
	//   - int: the object count
	Len() int
}

var _ Scene = &scene{}

// NewScene creates a new, empty Scene with the provided options.
//
// Parameters:
//   - options: functional options for scene configuration
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.Mutex{},
		registry: make(map[int]game_object.GameObject),
		nextID:   1,
		logger:   slog.Default(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (s *scene) Add(objects ...game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(objects...)
}

// add registers objects; the caller holds mu or is still constructing the scene.
func (s *scene) add(objects ...game_object.GameObject) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if obj.ID() == 0 {
			for {
				if _, taken := s.registry[s.nextID]; !taken {
					break
				}
				s.nextID++
			}
			obj.SetID(s.nextID)
			s.nextID++
		} else if obj.ID() >= s.nextID {
			s.nextID = obj.ID() + 1
		}
		s.registry[obj.ID()] = obj
		s.logger.Debug("entity added", "id", obj.ID(), "name", obj.Name(), "kind", obj.Kind().String())
	}
}

func (s *scene) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; !ok {
		return false
	}
	delete(s.registry, id)
	s.logger.Debug("entity removed", "id", id)
	return true
}

func (s *scene) Object(id int) (game_object.GameObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.registry[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return obj, nil
}

func (s *scene) Resolve(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registry[id]
	return ok
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry)
}
