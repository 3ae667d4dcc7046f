package model

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe stores a single value of type T at a specific time.
type Keyframe[T any] struct {
	// Time is the keyframe timestamp in frames.
	Time float32

	// Value is the sampled value at this keyframe.
	Value T
}

// Curve is a time-ordered sequence of keyframes for one attribute of one bone.
// Times are unique; setting a value at an existing time replaces it.
type Curve[T any] struct {
	keys []Keyframe[T]
}

// VectorCurve holds position or scale keys.
type VectorCurve = Curve[mgl32.Vec3]

// QuaternionCurve holds rotation keys.
type QuaternionCurve = Curve[mgl32.Quat]

// Len returns the number of keys in the curve.
func (c *Curve[T]) Len() int {
	return len(c.keys)
}

// Keys returns a copy of the keys in ascending time order.
func (c *Curve[T]) Keys() []Keyframe[T] {
	out := make([]Keyframe[T], len(c.keys))
	copy(out, c.keys)
	return out
}

// Set inserts a key at time, replacing any key already stored there.
//
// Parameters:
//   - time: the key time
//   - value: the key value
func (c *Curve[T]) Set(time float32, value T) {
	i := c.search(time)
	if i < len(c.keys) && c.keys[i].Time == time {
		c.keys[i].Value = value
		return
	}
	c.keys = append(c.keys, Keyframe[T]{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = Keyframe[T]{Time: time, Value: value}
}

// Has reports whether a key exists at exactly time.
func (c *Curve[T]) Has(time float32) bool {
	i := c.search(time)
	return i < len(c.keys) && c.keys[i].Time == time
}

// Delete removes the key at exactly time.
//
// Parameters:
//   - time: the key time to remove
//
// Returns:
//   - bool: true if a key was removed
func (c *Curve[T]) Delete(time float32) bool {
	i := c.search(time)
	if i >= len(c.keys) || c.keys[i].Time != time {
		return false
	}
	c.keys = append(c.keys[:i], c.keys[i+1:]...)
	return true
}

// Last returns the key with the greatest time.
//
// Returns:
//   - Keyframe[T]: the last key
//   - bool: false if the curve is empty
func (c *Curve[T]) Last() (Keyframe[T], bool) {
	if len(c.keys) == 0 {
		return Keyframe[T]{}, false
	}
	return c.keys[len(c.keys)-1], true
}

// Bracket locates the pair of keys surrounding time.
// Times at or before the first key return the first key twice, times at or after the last key
// return the last key twice, and an empty curve returns def at time 0 twice.
//
// Parameters:
//   - time: the query time
//   - def: the value returned for an empty curve
//
// Returns:
//   - Keyframe[T]: the key at or before time
//   - Keyframe[T]: the key after time
func (c *Curve[T]) Bracket(time float32, def T) (Keyframe[T], Keyframe[T]) {
	n := len(c.keys)
	if n == 0 {
		k := Keyframe[T]{Time: 0, Value: def}
		return k, k
	}
	if time <= c.keys[0].Time {
		return c.keys[0], c.keys[0]
	}
	if time >= c.keys[n-1].Time {
		return c.keys[n-1], c.keys[n-1]
	}
	next := sort.Search(n, func(i int) bool { return c.keys[i].Time > time })
	return c.keys[next-1], c.keys[next]
}

func (c *Curve[T]) search(time float32) int {
	return sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time >= time })
}

// BlendFactor returns how far time lies between prev and next.
// A zero-length or inverted span returns 1 so the later key wins without dividing by zero.
//
// Parameters:
//   - prev: the time of the earlier key
//   - next: the time of the later key
//   - time: the query time
//
// Returns:
//   - float32: the normalized position of time within [prev, next]
func BlendFactor(prev, next, time float32) float32 {
	span := next - prev
	if prev == next || span < 0 {
		return 1.0
	}
	return (time - prev) / span
}
