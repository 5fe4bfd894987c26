package transform

import (
	"math"
	"testing"
)

func TestQuantizationRoundtripWithinTolerance(t *testing.T) {
	q := &Quantizer{Origin: []float64{0, 0, 0}, Range: 1.0, BitDepth: 14}
	pts := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0.5, 1, 0},
	}
	maxErr := q.Range / float64(2*((int64(1)<<14)-1))
	for _, p := range pts {
		qv := q.Forward(p)
		back := q.Inverse(qv)
		for i := range p {
			if math.Abs(back[i]-p[i]) > maxErr {
				t.Errorf("point %v axis %d: decoded %v too far from original (tol %v)", p, i, back[i], maxErr)
			}
		}
	}
}

func TestOctahedralRoundtripDotProduct(t *testing.T) {
	oct := &Octahedral{BitDepth: 10}
	normals := [][3]float64{
		{0, 0, 1}, {0, 0, -1}, {1, 0, 0}, {0, 1, 0},
		{0.577, 0.577, 0.577}, {-0.577, 0.577, -0.577},
	}
	for _, n := range normals {
		length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		unit := [3]float64{n[0] / length, n[1] / length, n[2] / length}
		s, tt := oct.Forward(unit)
		back := oct.Inverse(s, tt)
		dot := unit[0]*back[0] + unit[1]*back[1] + unit[2]*back[2]
		if dot < 0.98 {
			t.Errorf("normal %v: dot = %v, want >= 0.98", unit, dot)
		}
	}
}
