// Package mesh defines the PointCloud/Mesh/PointAttribute data model of
// spec.md §3: an ordered set of point ids, an unordered set of attributes,
// and (for meshes) an ordered set of triangular faces.
package mesh

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// AttributeKind enumerates the semantic role of an attribute.
type AttributeKind uint8

const (
	AttributePosition AttributeKind = iota
	AttributeNormal
	AttributeColor
	AttributeTexCoord
	AttributeGeneric
)

// DataType enumerates the component storage type of an attribute.
type DataType uint8

const (
	DataTypeInt8 DataType = iota
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeInt64
	DataTypeUint64
	DataTypeFloat32
	DataTypeFloat64
	DataTypeBool
)

// InvalidPointID is the sentinel for "no point", per spec.md §6.
const InvalidPointID uint32 = 0xFFFFFFFF

// InvalidAttributeValueIndex is the sentinel for "no mapped value".
const InvalidAttributeValueIndex uint32 = 0xFFFFFFFF

// PointAttribute holds one attribute's metadata and per-value float
// payload (components stored interleaved per value: value i occupies
// Values[i*NumComponents : (i+1)*NumComponents]).
//
// A nil PointToValue means the identity mapping (point id == value
// index); a non-nil slice lets multiple points share one value, which is
// how attribute seams are represented (spec.md §3 "Ownership").
type PointAttribute struct {
	Kind          AttributeKind
	DataType      DataType
	NumComponents int
	Normalized    bool
	UniqueID      uint32

	Values       []float64
	PointToValue []uint32
}

// NumValues returns the number of distinct attribute entries (not points).
func (a *PointAttribute) NumValues() int {
	if a.NumComponents == 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

// MappedValueIndex returns the value index for a given point id under the
// identity or explicit mapping.
func (a *PointAttribute) MappedValueIndex(pointID uint32) uint32 {
	if a.PointToValue == nil {
		return pointID
	}
	if int(pointID) >= len(a.PointToValue) {
		return InvalidAttributeValueIndex
	}
	return a.PointToValue[pointID]
}

// ValueAt returns the component slice for value index idx.
func (a *PointAttribute) ValueAt(idx uint32) []float64 {
	start := int(idx) * a.NumComponents
	return a.Values[start : start+a.NumComponents]
}

// SetValueAt overwrites the components of value index idx.
func (a *PointAttribute) SetValueAt(idx uint32, components []float64) {
	start := int(idx) * a.NumComponents
	copy(a.Values[start:start+a.NumComponents], components)
}

// AppendValue appends a new attribute value and returns its index.
func (a *PointAttribute) AppendValue(components []float64) uint32 {
	idx := uint32(a.NumValues())
	a.Values = append(a.Values, components...)
	return idx
}

// valueHash hashes a value's components for dedup purposes, using xxhash
// (spec.md §3's "explicit mapping that enables multiple points to share an
// attribute value"): building that explicit mapping from per-point source
// values requires deduplicating identical values, which this hash drives.
func valueHash(components []float64) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, c := range components {
		bits := math.Float64bits(c)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// BuildExplicitMapping deduplicates per-point source values into a shared
// value array plus a point->value index mapping, using xxhash to bucket
// candidate duplicates before an exact component comparison confirms the
// match (hash collisions fall back to a direct compare).
func BuildExplicitMapping(numComponents int, perPointValues [][]float64) (values []float64, pointToValue []uint32) {
	type bucketEntry struct {
		idx        uint32
		components []float64
	}
	buckets := make(map[uint64][]bucketEntry)
	pointToValue = make([]uint32, len(perPointValues))

	for p, v := range perPointValues {
		h := valueHash(v)
		var found uint32 = InvalidAttributeValueIndex
		for _, e := range buckets[h] {
			if sameComponents(e.components, v) {
				found = e.idx
				break
			}
		}
		if found == InvalidAttributeValueIndex {
			found = uint32(len(values) / numComponents)
			values = append(values, v...)
			buckets[h] = append(buckets[h], bucketEntry{idx: found, components: v})
		}
		pointToValue[p] = found
	}
	return values, pointToValue
}

func sameComponents(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
