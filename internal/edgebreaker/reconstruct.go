package edgebreaker

import "github.com/cocosip/draco-go/internal/draerr"

// Reconstruct rebuilds a face list from a Connectivity traversal without
// ever materializing a full corner table: each popped stack entry is a
// corner of an already-built face, and the child mask tells the decoder
// exactly how many neighboring faces still need to be created across it.
func Reconstruct(conn *Connectivity) ([][3]uint32, error) {
	faces := make([][3]uint32, 0, conn.NumFaces)
	var cornerToVertex []uint32
	var nextVertex uint32

	addFace := func(a, b, c uint32) uint32 {
		corner0 := uint32(len(cornerToVertex))
		cornerToVertex = append(cornerToVertex, a, b, c)
		faces = append(faces, [3]uint32{a, b, c})
		return corner0
	}
	next := func(c uint32) uint32 {
		if c%3 == 2 {
			return c - 2
		}
		return c + 1
	}
	prev := func(c uint32) uint32 {
		if c%3 == 0 {
			return c + 2
		}
		return c - 1
	}

	var stack []uint32
	seedIdx, symIdx, popIdx := 0, 0, 0
	for seedIdx < len(conn.SeedChildMask) || len(stack) > 0 {
		if len(stack) == 0 {
			if seedIdx >= len(conn.SeedChildMask) {
				return nil, draerr.DracoErrorf("edgebreaker.Reconstruct", nil)
			}
			a, b, c := nextVertex, nextVertex+1, nextVertex+2
			nextVertex += 3
			c0 := addFace(a, b, c)
			mask := conn.SeedChildMask[seedIdx]
			seedIdx++
			if mask&1 != 0 {
				stack = append(stack, c0+2)
			}
			if mask&2 != 0 {
				stack = append(stack, c0+1)
			}
			continue
		}

		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if popIdx >= len(conn.StartFace) {
			return nil, draerr.DracoErrorf("edgebreaker.Reconstruct", nil)
		}
		start := conn.StartFace[popIdx]
		popIdx++
		if !start {
			// The face across this corner was already built from the
			// opposite direction; it consumes no symbol.
			continue
		}

		if symIdx >= len(conn.Symbols) {
			return nil, draerr.DracoErrorf("edgebreaker.Reconstruct", nil)
		}
		vb := cornerToVertex[next(g)]
		va := cornerToVertex[prev(g)]

		sym := conn.Symbols[symIdx]
		var tip uint32
		if sym == SymbolC {
			tip = nextVertex
			nextVertex++
		} else {
			tip = conn.ReusedVertex[symIdx]
		}
		c0 := addFace(va, vb, tip)
		mask := conn.ChildMask[symIdx]
		symIdx++
		if mask&1 != 0 {
			stack = append(stack, c0+1)
		}
		if mask&2 != 0 {
			stack = append(stack, c0)
		}
	}
	if symIdx != len(conn.Symbols) || popIdx != len(conn.StartFace) || len(faces) != conn.NumFaces {
		return nil, draerr.DracoErrorf("edgebreaker.Reconstruct", nil)
	}
	return faces, nil
}
