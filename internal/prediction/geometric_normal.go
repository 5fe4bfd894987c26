package prediction

import (
	"math"

	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/rans"
	"github.com/cocosip/draco-go/internal/transform"
)

// estimateVertexNormal sums area-weighted face-normal contributions around
// the vertex at corner c, using the parent POSITION attribute's already
// quantized integer values (spec.md §4.8 "Geometric normal").
func estimateVertexNormal(ct *cornertable.Table, m *DataIDMapping, dataID, c uint32, posValues [][]int32) [3]float64 {
	var sum [3]float64
	start := c
	cur := c
	for i := 0; i < ct.NumCorners(); i++ {
		face := ct.Face(cur)
		a := posValues[m.DataIDForVertex[ct.Vertex(3*face+0)]]
		b := posValues[m.DataIDForVertex[ct.Vertex(3*face+1)]]
		d := posValues[m.DataIDForVertex[ct.Vertex(3*face+2)]]
		if a != nil && b != nil && d != nil {
			n := faceNormal(a, b, d)
			sum[0] += n[0]
			sum[1] += n[1]
			sum[2] += n[2]
		}
		next := ct.SwingLeft(cur)
		if next == cornertable.Invalid || next == start {
			break
		}
		cur = next
	}
	return sum
}

func faceNormal(a, b, d []int32) [3]float64 {
	e1 := [3]float64{float64(b[0] - a[0]), float64(b[1] - a[1]), float64(b[2] - a[2])}
	e2 := [3]float64{float64(d[0] - a[0]), float64(d[1] - a[1]), float64(d[2] - a[2])}
	return [3]float64{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
}

func normalize(v [3]float64) [3]float64 {
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 1e-12 {
		return [3]float64{0, 0, 1}
	}
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}

func wrapDiff(a, b, mod int32) int32 {
	d := (a - b) % mod
	if d < 0 {
		d += mod
	}
	return d
}

func wrapAdd(a, b, mod int32) int32 {
	v := (a + b) % mod
	if v < 0 {
		v += mod
	}
	return v
}

// EncodeGeometricNormal predicts octahedral (s,t) normal coordinates from
// the parent POSITION attribute and the torus-wrapped correction, choosing
// a per-entry flip bit to minimize the correction's magnitude.
func EncodeGeometricNormal(ct *cornertable.Table, m *DataIDMapping, octValues [][]int32, posValues [][]int32, bitDepth int, flip *rans.BitEncoder) [][]int32 {
	oct := &transform.Octahedral{BitDepth: bitDepth}
	mod := int32(1) << uint(bitDepth)
	corrections := make([][]int32, len(octValues))
	for dataID, v := range octValues {
		c := m.CornerForDataID[dataID]
		n := normalize(estimateVertexNormal(ct, m, uint32(dataID), c, posValues))
		s1, t1 := oct.Forward(n)
		neg := [3]float64{-n[0], -n[1], -n[2]}
		s2, t2 := oct.Forward(neg)

		d1 := wrapDistance(v[0], v[1], s1, t1, mod)
		d2 := wrapDistance(v[0], v[1], s2, t2, mod)
		var ps, pt int32
		if d1 <= d2 {
			flip.EncodeBit(0)
			ps, pt = s1, t1
		} else {
			flip.EncodeBit(1)
			ps, pt = s2, t2
		}
		corrections[dataID] = []int32{wrapDiff(v[0], ps, mod), wrapDiff(v[1], pt, mod)}
	}
	return corrections
}

func wrapDistance(as, at, bs, bt, mod int32) int64 {
	ds := int64(wrapDiff(as, bs, mod))
	dt := int64(wrapDiff(at, bt, mod))
	return ds*ds + dt*dt
}

// DecodeGeometricNormal is the inverse of EncodeGeometricNormal.
func DecodeGeometricNormal(ct *cornertable.Table, m *DataIDMapping, corrections [][]int32, posValues [][]int32, bitDepth int, flip *rans.BitDecoder) ([][]int32, error) {
	oct := &transform.Octahedral{BitDepth: bitDepth}
	mod := int32(1) << uint(bitDepth)
	values := make([][]int32, len(corrections))
	for dataID, corr := range corrections {
		c := m.CornerForDataID[dataID]
		n := normalize(estimateVertexNormal(ct, m, uint32(dataID), c, posValues))
		bit, err := flip.DecodeNextBit()
		if err != nil {
			return nil, err
		}
		if bit == 1 {
			n = [3]float64{-n[0], -n[1], -n[2]}
		}
		ps, pt := oct.Forward(n)
		values[dataID] = []int32{wrapAdd(ps, corr[0], mod), wrapAdd(pt, corr[1], mod)}
	}
	return values, nil
}
