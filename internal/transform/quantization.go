// Package transform implements the attribute transforms of spec.md §4.7:
// integer quantization and octahedral normal mapping, the forward/inverse
// pairs that turn floats into the integer lattice prediction operates on.
package transform

import (
	"math"

	"github.com/cocosip/draco-go/internal/ioutil"
)

// Quantizer maps floats in [Origin, Origin+Range]^d onto the integer
// lattice {0..2^q-1}^d.
type Quantizer struct {
	Origin   []float64
	Range    float64
	BitDepth int
}

func (q *Quantizer) maxValue() int32 {
	return int32(1)<<uint(q.BitDepth) - 1
}

// Forward quantizes one d-component value.
func (q *Quantizer) Forward(x []float64) []int32 {
	out := make([]int32, len(x))
	scale := float64(q.maxValue()) / q.Range
	maxV := q.maxValue()
	for i, v := range x {
		qv := int32(math.Round((v - q.Origin[i]) * scale))
		out[i] = ioutil.Clamp(qv, 0, maxV)
	}
	return out
}

// Inverse reconstructs the float value from its quantized components.
func (q *Quantizer) Inverse(xq []int32) []float64 {
	out := make([]float64, len(xq))
	step := q.Range / float64(q.maxValue())
	for i, v := range xq {
		out[i] = q.Origin[i] + float64(v)*step
	}
	return out
}

// ComputeRange returns the AABB span (max over all components of
// max-min) used as the default range for position attributes, per
// spec.md §4.7 "for positions, the range is the max component span over
// the point cloud".
func ComputeRange(origin []float64, points [][]float64) (float64, []float64) {
	d := len(origin)
	minV := make([]float64, d)
	maxV := make([]float64, d)
	copy(minV, points[0])
	copy(maxV, points[0])
	for _, p := range points {
		for i := 0; i < d; i++ {
			if p[i] < minV[i] {
				minV[i] = p[i]
			}
			if p[i] > maxV[i] {
				maxV[i] = p[i]
			}
		}
	}
	var span float64
	for i := 0; i < d; i++ {
		s := maxV[i] - minV[i]
		if s > span {
			span = s
		}
	}
	return span, minV
}
