package common

import (
	"cmp"
	"slices"
)

// Coalesce returns the first non-zero value, or the zero value if all are zero.
// Config layers use it to let later files override earlier ones only where they set a key.
//
// Parameters:
//   - values: the candidates in precedence order
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SortedKeys returns the keys of m in ascending order, for deterministic iteration over entity
// and document maps.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
