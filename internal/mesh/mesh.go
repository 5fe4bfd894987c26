package mesh

import (
	"github.com/google/uuid"
)

// PointCloud is an ordered set of point ids 0..N-1 and an unordered set of
// attributes, per spec.md §3.
type PointCloud struct {
	NumPoints  uint32
	Attributes []*PointAttribute

	// Metadata carries the optional key/value block described in spec.md
	// §6; SessionID is stamped from a fresh UUID by NewPointCloud and is
	// not written to the metadata block.
	Metadata  map[string]string
	SessionID uuid.UUID
}

// NewPointCloud returns an empty point cloud for numPoints points, stamped
// with a session UUID, mirroring the teacher's use of uuid for instance
// identifiers.
func NewPointCloud(numPoints uint32) *PointCloud {
	return &PointCloud{
		NumPoints: numPoints,
		SessionID: uuid.New(),
	}
}

// AddAttribute appends attr and assigns it a unique id derived from a fresh
// UUID if it does not already have one.
func (pc *PointCloud) AddAttribute(attr *PointAttribute) int {
	if attr.UniqueID == 0 {
		attr.UniqueID = stableAttributeID(uuid.New())
	}
	pc.Attributes = append(pc.Attributes, attr)
	return len(pc.Attributes) - 1
}

// AttributeByKind returns the first attribute of the given kind, or nil.
func (pc *PointCloud) AttributeByKind(kind AttributeKind) *PointAttribute {
	for _, a := range pc.Attributes {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}

// stableAttributeID folds a 128-bit UUID down to the 32-bit unique id
// spec.md §3 requires for each attribute.
func stableAttributeID(id uuid.UUID) uint32 {
	var v uint32
	for i := 0; i < len(id); i++ {
		v = v*31 + uint32(id[i])
	}
	if v == 0 {
		v = 1
	}
	return v
}

// Face is a triple of point ids forming a triangle.
type Face [3]uint32

// Mesh extends PointCloud with an ordered set of triangular faces.
type Mesh struct {
	PointCloud
	Faces []Face
}

// NewMesh returns an empty mesh for numPoints points and numFaces faces.
func NewMesh(numPoints uint32, numFaces int) *Mesh {
	return &Mesh{
		PointCloud: *NewPointCloud(numPoints),
		Faces:      make([]Face, 0, numFaces),
	}
}

// IsDegenerate reports whether a face has two or more equal vertex ids.
func (f Face) IsDegenerate() bool {
	return f[0] == f[1] || f[1] == f[2] || f[0] == f[2]
}
