package edgebreaker

import "github.com/cocosip/draco-go/internal/cornertable"

// Connectivity is the result of a CLERS traversal of a corner table: the
// symbol stream plus, for every entry, the explicit bookkeeping the decoder
// needs to reconstruct the mesh without ever having the full table itself.
//
// A true Edgebreaker bitstream derives a revisited face's tip vertex and
// child-edge count purely from stack position, at the cost of an elaborate
// topology-split side table for non-disk meshes. This implementation
// instead carries that information explicitly per entry (ReusedVertex,
// ChildMask), trading a few extra bits per face for a traversal/reconstruction
// algorithm that handles boundaries and arbitrary genus uniformly.
type Connectivity struct {
	Symbols []Symbol
	// ReusedVertex holds, for non-C symbols, the traversal-order id (see
	// vertexRemap) of the already-visited tip vertex. Unused for C entries.
	ReusedVertex []uint32
	// ChildMask bit0 = a "right" child corner remains to traverse, bit1 = a
	// "left" child corner remains to traverse. Encodes boundary edges and
	// faces whose neighbor was already visited without a separate symbol.
	ChildMask []uint8
	// SeedChildMask parallels one entry per connected component's seed
	// face, using the same bit convention as ChildMask.
	SeedChildMask []uint8
	// StartFace holds, for every corner popped off the traversal stack (in
	// pop order, across every component), whether that pop is resolved by
	// a genuine CLERS symbol (true) or discarded because the face across
	// it was already built from the opposite direction (false). A popped
	// corner is only ever pushed when its neighboring face has a real
	// opposite in the corner table, so a discard always means that face is
	// interior and already complete — never a boundary — which is the
	// opposite-but-equivalent polarity of spec.md §4.5's "interior vs
	// boundary" start-face bit (see DESIGN.md). The decoder cannot tell
	// the two cases apart from ChildMask/ReusedVertex alone, so this
	// stream is load-bearing, not merely a bitstream-fidelity nicety: see
	// EncodeBitstream/DecodeBitstream for its rANS-bit-coded framing.
	StartFace []bool
	NumFaces  int
	// RemappedToOriginal holds, at index = traversal-order (remapped)
	// vertex id, the original corner-table vertex id it was assigned
	// from. Reconstruct never sees the original table and reinvents the
	// same dense 0..N-1 ids in the same visitation order, so this slice
	// is the only way an encoder can align per-vertex attribute values
	// (indexed by original id) to the id space the decoder will produce.
	RemappedToOriginal []uint32
}

// vertexRemap assigns each real vertex id a dense traversal-order id the
// first time it is visited, matching the order the decoder will invent ids
// in as it reconstructs the mesh.
type vertexRemap struct {
	ids   map[uint32]uint32
	order []uint32
	next  uint32
}

func newVertexRemap() *vertexRemap { return &vertexRemap{ids: make(map[uint32]uint32)} }

func (r *vertexRemap) assign(v uint32) uint32 {
	id := r.next
	r.ids[v] = id
	r.order = append(r.order, v)
	r.next++
	return id
}

func (r *vertexRemap) lookup(v uint32) uint32 { return r.ids[v] }

// EncodeConnectivity performs the DFS traversal of spec.md §4.5 over a
// fully built corner table, emitting one CLERS symbol per non-seed face.
func EncodeConnectivity(ct *cornertable.Table) *Connectivity {
	numFaces := ct.NumFaces()
	visitedFace := make([]bool, numFaces)
	visitedVertex := make([]bool, ct.NumVertices())
	remap := newVertexRemap()
	conn := &Connectivity{NumFaces: numFaces}

	var stack []uint32
	for f := 0; f < numFaces; f++ {
		if visitedFace[f] || ct.IsDegenerateFace(uint32(f)) {
			continue
		}
		c0 := uint32(3 * f)
		visitedFace[f] = true
		for _, c := range [3]uint32{c0, ct.Next(c0), ct.Previous(c0)} {
			v := ct.Vertex(c)
			if !visitedVertex[v] {
				visitedVertex[v] = true
				remap.assign(v)
			}
		}

		rightCorner := ct.Opposite(ct.Previous(c0))
		leftCorner := ct.Opposite(ct.Next(c0))
		rightOpen := rightCorner != cornertable.Invalid && !visitedFace[ct.Face(rightCorner)]
		leftOpen := leftCorner != cornertable.Invalid && !visitedFace[ct.Face(leftCorner)]
		var mask uint8
		if rightOpen {
			mask |= 1
			stack = append(stack, rightCorner)
		}
		if leftOpen {
			mask |= 2
			stack = append(stack, leftCorner)
		}
		conn.SeedChildMask = append(conn.SeedChildMask, mask)

		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			face := ct.Face(c)
			if visitedFace[face] {
				conn.StartFace = append(conn.StartFace, false)
				continue
			}
			conn.StartFace = append(conn.StartFace, true)
			visitedFace[face] = true
			v := ct.Vertex(c)
			rc := ct.Opposite(ct.Previous(c))
			lc := ct.Opposite(ct.Next(c))
			rOpen := rc != cornertable.Invalid && !visitedFace[ct.Face(rc)]
			lOpen := lc != cornertable.Invalid && !visitedFace[ct.Face(lc)]

			var m uint8
			if !visitedVertex[v] {
				visitedVertex[v] = true
				remap.assign(v)
				conn.Symbols = append(conn.Symbols, SymbolC)
				conn.ReusedVertex = append(conn.ReusedVertex, 0)
				if rOpen {
					m |= 1
					stack = append(stack, rc)
				}
				if lOpen {
					m |= 2
					stack = append(stack, lc)
				}
			} else {
				conn.ReusedVertex = append(conn.ReusedVertex, remap.lookup(v))
				switch {
				case lOpen && rOpen:
					conn.Symbols = append(conn.Symbols, SymbolS)
					m = 2
					stack = append(stack, lc)
				case lOpen:
					conn.Symbols = append(conn.Symbols, SymbolL)
					m = 2
					stack = append(stack, lc)
				case rOpen:
					conn.Symbols = append(conn.Symbols, SymbolR)
					m = 1
					stack = append(stack, rc)
				default:
					conn.Symbols = append(conn.Symbols, SymbolE)
				}
			}
			conn.ChildMask = append(conn.ChildMask, m)
		}
	}
	conn.RemappedToOriginal = remap.order
	return conn
}
