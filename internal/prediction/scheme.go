// Package prediction implements the mesh-aware prediction schemes of
// spec.md §4.8: each predicts one attribute entry from already-decoded
// neighbors reachable through the corner table, leaving only a (usually
// small) correction to entropy-code.
package prediction

import "github.com/cocosip/draco-go/internal/cornertable"

// Method identifies a prediction scheme. MethodNone means "correction =
// value" with no neighbor lookup. The attribute header writes a Method as
// its numeric value, so MethodNone is written as 0, not 0xFF.
type Method uint8

const (
	MethodNone Method = iota
	MethodDifference
	MethodParallelogram
	MethodConstrainedMultiParallelogram
	MethodTexCoordsPortable
	MethodGeometricNormal
)

// WireNone is the "no prediction"/"no transform" byte value of spec.md
// §4.8. The attribute header in internal/attrcodec neither writes it nor
// maps it back on read.
const WireNone = 0xFF

// TransformType identifies the attribute transform whose corrections this
// prediction scheme is operating on; it decides whether corrections are
// ZigZag-coded (signed) or already non-negative (spec.md §4.8 "Positive vs
// signed corrections").
type TransformType uint8

const (
	TransformWrap TransformType = iota
	TransformNormalOctahedron
	TransformNormalOctahedronCanonicalized
)

// IsPositiveCorrections reports whether t produces non-negative corrections
// that must not be ZigZag-decoded.
func (t TransformType) IsPositiveCorrections() bool {
	return t == TransformNormalOctahedron || t == TransformNormalOctahedronCanonicalized
}

// DataIDMapping is the per-attribute data-id ordering described in
// spec.md §3: a data-id -> corner-id map and a vertex-id -> data-id map,
// both derived from the corner table (or an attribute-specific corner
// table when the attribute has seams, per spec.md §4.3).
type DataIDMapping struct {
	CornerForDataID []uint32
	DataIDForVertex []uint32
}

// BuildDataIDMapping assigns data-ids to vertices in traversal order
// (the order attribute values are encoded/decoded in) and records, for
// each data-id, one representative corner of that vertex.
func BuildDataIDMapping(ct *cornertable.Table, vertexOrder []uint32) *DataIDMapping {
	m := &DataIDMapping{
		CornerForDataID: make([]uint32, len(vertexOrder)),
		DataIDForVertex: make([]uint32, ct.NumVertices()),
	}
	for i := range m.DataIDForVertex {
		m.DataIDForVertex[i] = cornertable.Invalid
	}
	for dataID, v := range vertexOrder {
		m.CornerForDataID[dataID] = ct.LeftMostCorner(v)
		m.DataIDForVertex[v] = uint32(dataID)
	}
	return m
}

// dataIDBefore reports whether data-id a was encoded/decoded strictly before b.
func dataIDBefore(a, b uint32) bool { return a < b }
