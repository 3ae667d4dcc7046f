package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsIDs(t *testing.T) {
	s := NewScene(WithObjects(game_object.NewGameObject(game_object.WithID(5), game_object.WithName("hero"))))

	cam := game_object.NewGameObject(game_object.WithName("cam"), game_object.WithKind(game_object.KindCamera))
	s.Add(cam)

	assert.Equal(t, 6, cam.ID())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Resolve(5))
	assert.True(t, s.Resolve(6))
}

func TestRemoveThenResolveFails(t *testing.T) {
	hero := game_object.NewGameObject(game_object.WithName("hero"))
	s := NewScene(WithObjects(hero))
	id := hero.ID()

	require.True(t, s.Remove(id))
	assert.False(t, s.Remove(id))
	assert.False(t, s.Resolve(id))

	_, err := s.Object(id)
	assert.True(t, errors.Is(err, ErrEntityNotFound))
}

func TestObjectsOrderedByID(t *testing.T) {
	s := NewScene()
	s.Add(
		game_object.NewGameObject(game_object.WithID(9)),
		game_object.NewGameObject(game_object.WithID(2)),
		game_object.NewGameObject(game_object.WithID(4)),
	)

	objs := s.Objects()
	require.Len(t, objs, 3)
	assert.Equal(t, []int{2, 4, 9}, []int{objs[0].ID(), objs[1].ID(), objs[2].ID()})
}
