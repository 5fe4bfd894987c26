package ioutil

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi], used across the varint/quantization code
// wherever a scalar of any ordered numeric width needs bounding to a valid
// range before being written to the wire.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MaxOf returns the largest element of vs, or the zero value for an empty
// slice.
func MaxOf[T constraints.Ordered](vs []T) T {
	var m T
	for i, v := range vs {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}
