package kdtree

import (
	"math"
	"testing"

	"github.com/cocosip/draco-go/internal/ioutil"
)

func pointSet() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
		{0.5, 0.5, 0.5}, {0.25, 0.75, 0.1},
	}
}

func hasClose(points [][]float64, target []float64, tol float64) bool {
	for _, p := range points {
		ok := true
		for k := range target {
			if math.Abs(p[k]-target[k]) > tol {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	points := pointSet()
	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	if err := Encode(buf, points, 3, 14, 7); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	got, err := Decode(dec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(points) {
		t.Fatalf("point count = %d, want %d", len(got), len(points))
	}
	const tol = 1.0 / (1 << 13)
	for _, want := range points {
		if !hasClose(got, want, tol) {
			t.Fatalf("no decoded point close to %v", want)
		}
	}
}

func TestEncodeDecodeGreedyAxis(t *testing.T) {
	points := pointSet()
	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	if err := Encode(buf, points, 3, 12, 9); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	got, err := Decode(dec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(points) {
		t.Fatalf("point count = %d, want %d", len(got), len(points))
	}
}

func TestEncodeRejectsExcessiveBitDepth(t *testing.T) {
	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	if err := Encode(buf, pointSet(), 3, 33, 5); err == nil {
		t.Fatalf("expected error for bit depth 33")
	}
}
