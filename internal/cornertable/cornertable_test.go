package cornertable

import "testing"

// tetrahedron returns a closed, manifold 4-vertex, 4-face mesh.
func tetrahedron() [][3]uint32 {
	return [][3]uint32{
		{0, 1, 2},
		{0, 3, 1},
		{1, 3, 2},
		{2, 3, 0},
	}
}

func TestCornerTableInvariantsTetrahedron(t *testing.T) {
	faces := tetrahedron()
	ct := Init(faces)

	if ct.NumFaces() != 4 {
		t.Fatalf("NumFaces = %d, want 4", ct.NumFaces())
	}

	for c := uint32(0); c < uint32(ct.NumCorners()); c++ {
		if ct.Face(c) != c/3 {
			t.Errorf("Face(%d) = %d, want %d", c, ct.Face(c), c/3)
		}
		if ct.Next(ct.Next(ct.Next(c))) != c {
			t.Errorf("next^3(%d) != %d", c, c)
		}
		if ct.Previous(ct.Next(c)) != c {
			t.Errorf("previous(next(%d)) != %d", c, c)
		}
		op := ct.Opposite(c)
		if op != Invalid && ct.Opposite(op) != c {
			t.Errorf("opposite(opposite(%d)) != %d", c, c)
		}
	}

	// A closed tetrahedron has no boundary: every corner has an opposite.
	for c := uint32(0); c < uint32(ct.NumCorners()); c++ {
		if ct.Opposite(c) == Invalid {
			t.Errorf("corner %d unexpectedly on boundary", c)
		}
	}
}

func TestCornerTableDegenerateFaceSkipped(t *testing.T) {
	faces := [][3]uint32{
		{0, 1, 2},
		{1, 1, 2}, // degenerate
	}
	ct := Init(faces)
	if ct.NumDegenerateFaces != 1 {
		t.Fatalf("NumDegenerateFaces = %d, want 1", ct.NumDegenerateFaces)
	}
	if !ct.IsDegenerateFace(1) {
		t.Errorf("face 1 should be marked degenerate")
	}
}
