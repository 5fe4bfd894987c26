// Package cornertable implements the half-edge corner table over triangle
// meshes described in spec.md §3/§4.4: for F faces, 3F corners, with
// opposite/next/previous/swing queries and per-vertex left-most-corner
// bookkeeping.
package cornertable

const Invalid = uint32(0xFFFFFFFF)

// Table is a half-edge representation over a triangle mesh.
type Table struct {
	cornerToVertex []uint32
	oppositeCorner []uint32
	vertexCorners  []uint32
	isDegenerate   []bool
	numVertices    int

	NumIsolatedVertices int
	NumDegenerateFaces  int
}

// NumFaces returns the number of faces (3F corners / 3).
func (t *Table) NumFaces() int { return len(t.cornerToVertex) / 3 }

// NumCorners returns 3F.
func (t *Table) NumCorners() int { return len(t.cornerToVertex) }

// NumVertices returns the number of distinct vertex ids, including any
// created by fan splitting during construction.
func (t *Table) NumVertices() int { return t.numVertices }

// Vertex returns the vertex id at corner c.
func (t *Table) Vertex(c uint32) uint32 {
	if c == Invalid {
		return Invalid
	}
	return t.cornerToVertex[c]
}

// Face returns floor(c/3).
func (t *Table) Face(c uint32) uint32 { return c / 3 }

// Next returns the next corner in the same face (c+1 wrapping within the face).
func (t *Table) Next(c uint32) uint32 {
	if c%3 == 2 {
		return c - 2
	}
	return c + 1
}

// Previous returns the previous corner in the same face.
func (t *Table) Previous(c uint32) uint32 {
	if c%3 == 0 {
		return c + 2
	}
	return c - 1
}

// Opposite returns the corner across the shared edge, or Invalid on a boundary.
func (t *Table) Opposite(c uint32) uint32 {
	if c == Invalid {
		return Invalid
	}
	return t.oppositeCorner[c]
}

// SetOpposite links a and b as opposite corners. It is a fatal stream error
// (spec.md §4.5) for a caller to overwrite an already-linked opposite.
func (t *Table) SetOpposite(a, b uint32) bool {
	if a != Invalid && t.oppositeCorner[a] != Invalid && t.oppositeCorner[a] != b {
		return false
	}
	if b != Invalid && t.oppositeCorner[b] != Invalid && t.oppositeCorner[b] != a {
		return false
	}
	if a != Invalid {
		t.oppositeCorner[a] = b
	}
	if b != Invalid {
		t.oppositeCorner[b] = a
	}
	return true
}

// SwingRight rotates around the vertex of c via previous-opposite-previous.
func (t *Table) SwingRight(c uint32) uint32 {
	op := t.Opposite(t.Previous(c))
	if op == Invalid {
		return Invalid
	}
	return t.Previous(op)
}

// SwingLeft rotates around the vertex of c via next-opposite-next.
func (t *Table) SwingLeft(c uint32) uint32 {
	op := t.Opposite(t.Next(c))
	if op == Invalid {
		return Invalid
	}
	return t.Next(op)
}

// LeftMostCorner returns the corner chosen so that swinging right visits
// every fan corner of v until a boundary or a full loop.
func (t *Table) LeftMostCorner(v uint32) uint32 {
	if int(v) >= len(t.vertexCorners) {
		return Invalid
	}
	return t.vertexCorners[v]
}

// IsDegenerateFace reports whether face f was skipped during opposite
// construction because two of its vertices coincide.
func (t *Table) IsDegenerateFace(f uint32) bool {
	if int(f) >= len(t.isDegenerate) {
		return false
	}
	return t.isDegenerate[f]
}

type edgeKey [2]uint32

// Init builds a corner table for faces, each a [3]uint32 of point ids.
func Init(faces [][3]uint32) *Table {
	t := &Table{
		cornerToVertex: make([]uint32, 3*len(faces)),
		oppositeCorner: make([]uint32, 3*len(faces)),
		isDegenerate:   make([]bool, len(faces)),
	}
	for i := range t.oppositeCorner {
		t.oppositeCorner[i] = Invalid
	}

	var maxVertex uint32
	for f, face := range faces {
		for k := 0; k < 3; k++ {
			t.cornerToVertex[3*f+k] = face[k]
			if face[k] != Invalid && face[k] > maxVertex {
				maxVertex = face[k]
			}
		}
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			t.isDegenerate[f] = true
			t.NumDegenerateFaces++
		}
	}
	t.numVertices = int(maxVertex) + 1

	pending := make(map[edgeKey]uint32)
	for f := range faces {
		if t.isDegenerate[f] {
			continue
		}
		for k := 0; k < 3; k++ {
			c := uint32(3*f + k)
			src := t.cornerToVertex[t.Next(c)]
			sink := t.cornerToVertex[t.Previous(c)]
			reversed := edgeKey{sink, src}
			if other, ok := pending[reversed]; ok {
				t.SetOpposite(c, other)
				delete(pending, reversed)
				continue
			}
			forward := edgeKey{src, sink}
			if _, ok := pending[forward]; ok {
				// Third face sharing the same directed half-edge: a
				// non-manifold edge. Leave this corner boundary rather
				// than overwrite the existing pending match.
				continue
			}
			pending[forward] = c
		}
	}

	t.breakNonManifoldEdges()
	t.computeVertexCorners()
	return t
}

// breakNonManifoldEdges walks each vertex's swing-right fan and breaks both
// opposite links of the first revisited sink vertex it finds, weakening
// the implied topology at that edge to a boundary (spec.md §9).
func (t *Table) breakNonManifoldEdges() {
	numCorners := uint32(len(t.cornerToVertex))
	visitedStart := make([]bool, t.numVertices)

	for c := uint32(0); c < numCorners; c++ {
		v := t.cornerToVertex[c]
		if visitedStart[v] {
			continue
		}
		visitedStart[v] = true

		start := t.findFanStart(c)
		visitedSink := make(map[uint32]uint32)
		cur := start
		for {
			sink := t.cornerToVertex[t.Next(cur)]
			if other, seen := visitedSink[sink]; seen {
				t.breakOppositeAt(t.Previous(cur))
				t.breakOppositeAt(t.Previous(other))
				break
			}
			visitedSink[sink] = cur
			nextC := t.SwingRight(cur)
			if nextC == Invalid || nextC == start {
				break
			}
			cur = nextC
		}
	}
}

// findFanStart walks swing-left from c to a boundary (or back to c on a
// closed fan) so fan traversal begins at a deterministic corner.
func (t *Table) findFanStart(c uint32) uint32 {
	cur := c
	for i := 0; i < len(t.cornerToVertex); i++ {
		prev := t.SwingLeft(cur)
		if prev == Invalid || prev == c {
			return cur
		}
		cur = prev
	}
	return cur
}

func (t *Table) breakOppositeAt(c uint32) {
	if c == Invalid {
		return
	}
	op := t.oppositeCorner[c]
	if op == Invalid {
		return
	}
	t.oppositeCorner[c] = Invalid
	t.oppositeCorner[op] = Invalid
}

// computeVertexCorners assigns each vertex its left-most corner, splitting
// a vertex into a fresh id whenever a second, disjoint fan is discovered
// for an already-visited vertex (a "bowtie" vertex).
func (t *Table) computeVertexCorners() {
	numCorners := uint32(len(t.cornerToVertex))
	t.vertexCorners = make([]uint32, t.numVertices)
	for i := range t.vertexCorners {
		t.vertexCorners[i] = Invalid
	}
	visited := make([]bool, numCorners)

	for c := uint32(0); c < numCorners; c++ {
		if visited[c] {
			continue
		}
		if t.IsDegenerateFace(t.Face(c)) {
			visited[c] = true
			continue
		}
		v := t.cornerToVertex[c]
		if t.vertexCorners[v] != Invalid {
			v = t.splitVertex(c)
		}

		start := t.findFanStart(c)
		t.vertexCorners[v] = start
		t.markFanVisited(start, visited)
	}

	for v := 0; v < t.numVertices; v++ {
		if t.vertexCorners[v] == Invalid {
			t.NumIsolatedVertices++
		}
	}
}

func (t *Table) splitVertex(c uint32) uint32 {
	newV := uint32(t.numVertices)
	t.numVertices++
	t.vertexCorners = append(t.vertexCorners, Invalid)

	start := t.findFanStart(c)
	cur := start
	for {
		t.cornerToVertex[cur] = newV
		next := t.SwingRight(cur)
		if next == Invalid || next == start {
			break
		}
		cur = next
	}
	return newV
}

func (t *Table) markFanVisited(start uint32, visited []bool) {
	cur := start
	for {
		visited[cur] = true
		next := t.SwingRight(cur)
		if next == Invalid || next == start {
			break
		}
		cur = next
	}
}
