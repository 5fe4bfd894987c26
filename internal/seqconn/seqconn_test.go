package seqconn

import (
	"testing"

	"github.com/cocosip/draco-go/internal/ioutil"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	faces := [][3]uint32{{0, 1, 2}, {1, 3, 2}, {2, 3, 4}, {0, 2, 4}}
	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	if err := Encode(buf, faces, 5, 7); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	got, numPoints, err := Decode(dec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if numPoints != 5 {
		t.Fatalf("numPoints = %d, want 5", numPoints)
	}
	if len(got) != len(faces) {
		t.Fatalf("face count = %d, want %d", len(got), len(faces))
	}
	for i, f := range faces {
		if got[i] != f {
			t.Fatalf("face %d = %v, want %v", i, got[i], f)
		}
	}
}

func TestEncodeDecodeManyPoints(t *testing.T) {
	faces := make([][3]uint32, 0, 300)
	for i := uint32(0); i+2 < 1000; i += 3 {
		faces = append(faces, [3]uint32{i, i + 1, i + 2})
	}
	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	if err := Encode(buf, faces, 1000, 0); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	got, numPoints, err := Decode(dec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if numPoints != 1000 {
		t.Fatalf("numPoints = %d, want 1000", numPoints)
	}
	if len(got) != len(faces) {
		t.Fatalf("face count = %d, want %d", len(got), len(faces))
	}
}
