package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "linear", Coalesce("", "linear"))
	assert.Equal(t, float32(0), Coalesce[float32](0, 0))
	assert.Equal(t, float32(-1), Coalesce[float32](-1, 2))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []int{1, 4, 9}, SortedKeys(map[int]bool{9: true, 1: false, 4: true}))
	assert.Equal(t, []string{"intro", "outro"}, SortedKeys(map[string]int{"outro": 1, "intro": 2}))
	assert.Empty(t, SortedKeys(map[int]string{}))
}
