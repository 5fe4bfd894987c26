package draco

import (
	"github.com/cocosip/draco-go/internal/attrcodec"
	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/edgebreaker"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/kdtree"
	"github.com/cocosip/draco-go/internal/mesh"
	"github.com/cocosip/draco-go/internal/seqconn"
)

// Encoder is not safe for concurrent use on the same instance (spec.md §5);
// separate instances may run on separate goroutines over disjoint inputs.
type Encoder struct{}

// NewEncoder returns a ready-to-use Encoder. It carries no mutable state
// between calls other than what a single EncodeMesh/EncodePointCloud call
// owns for its own duration.
func NewEncoder() *Encoder { return &Encoder{} }

func quantSpecFor(opts *EncodeOptions, attrs []*mesh.PointAttribute) attrcodec.QuantizationSpec {
	q := attrcodec.QuantizationSpec{
		PositionBits: opts.PositionQuantizationBits,
		NormalBits:   opts.NormalQuantizationBits,
		TexCoordBits: opts.TexCoordQuantizationBits,
		GenericBits:  opts.GenericQuantizationBits,
	}
	for _, a := range attrs {
		bits := opts.quantizationBitsFor(a.Kind, a.UniqueID)
		switch a.Kind {
		case mesh.AttributePosition:
			q.PositionBits = bits
		case mesh.AttributeNormal:
			q.NormalBits = bits
		case mesh.AttributeTexCoord:
			q.TexCoordBits = bits
		default:
			q.GenericBits = bits
		}
	}
	return q
}

func faceTriples(faces []mesh.Face) [][3]uint32 {
	out := make([][3]uint32, len(faces))
	for i, f := range faces {
		out[i] = [3]uint32(f)
	}
	return out
}

// EncodeMesh serializes m into the Draco wire format of spec.md §6.
func (e *Encoder) EncodeMesh(m *mesh.Mesh, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = NewEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	version := ioutil.BitstreamVersion{Major: MaxMajor, Minor: MaxMinor}
	method := MethodSequential
	if opts.UseEdgebreaker {
		method = MethodEdgebreaker
	}

	var flags uint16
	if len(opts.Metadata) > 0 {
		flags |= flagMetadata
	}

	buf := ioutil.NewEncoderBuffer(version)
	writeHeader(buf, header{Version: version, Kind: KindMesh, Method: method, Flags: flags})
	if flags&flagMetadata != 0 {
		if err := encodeMetadata(buf, opts.Metadata); err != nil {
			return nil, err
		}
	}

	faces := faceTriples(m.Faces)

	if method == MethodEdgebreaker {
		ct0 := cornertable.Init(faces)
		conn := edgebreaker.EncodeConnectivity(ct0)
		edgebreaker.EncodeBitstream(buf, conn)

		remappedFaces, err := edgebreaker.Reconstruct(conn)
		if err != nil {
			return nil, err
		}
		ctR := cornertable.Init(remappedFaces)
		remapped := remapAttributesToTraversalOrder(m.Attributes, conn.RemappedToOriginal)
		q := quantSpecFor(opts, remapped)
		if err := attrcodec.EncodeAttributes(buf, ctR, remapped, opts.CompressionLevel, q); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := seqconn.Encode(buf, faces, m.NumPoints, opts.CompressionLevel); err != nil {
		return nil, err
	}
	ct0 := cornertable.Init(faces)
	q := quantSpecFor(opts, m.Attributes)
	if err := attrcodec.EncodeAttributes(buf, ct0, m.Attributes, opts.CompressionLevel, q); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// remapAttributesToTraversalOrder reindexes attrs from original vertex-id
// space into the dense traversal-order space Edgebreaker's decoder will
// reconstruct (remappedToOriginal[i] is the original id assigned dense id
// i), so attrcodec's identity data-id mapping lines up on both sides of
// the wire.
func remapAttributesToTraversalOrder(attrs []*mesh.PointAttribute, remappedToOriginal []uint32) []*mesh.PointAttribute {
	out := make([]*mesh.PointAttribute, len(attrs))
	for i, a := range attrs {
		mapping := make([]uint32, len(remappedToOriginal))
		for remappedID, originalID := range remappedToOriginal {
			mapping[remappedID] = a.MappedValueIndex(originalID)
		}
		out[i] = &mesh.PointAttribute{
			Kind:          a.Kind,
			DataType:      a.DataType,
			NumComponents: a.NumComponents,
			Normalized:    a.Normalized,
			UniqueID:      a.UniqueID,
			Values:        a.Values,
			PointToValue:  mapping,
		}
	}
	return out
}

// EncodePointCloud serializes pc into the Draco wire format. Only the
// POSITION attribute is carried through the KD-tree/sequential point
// codec (spec.md §4.10 scopes that codec to positional partitioning); any
// other attached attributes are not encoded.
func (e *Encoder) EncodePointCloud(pc *mesh.PointCloud, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = NewEncodeOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	pos := pc.AttributeByKind(mesh.AttributePosition)
	if pos == nil {
		return nil, draerr.DracoErrorf("draco.EncodePointCloud", nil)
	}

	version := ioutil.BitstreamVersion{Major: MaxMajor, Minor: MaxMinor}
	method := MethodSequential
	if opts.UseKDTree {
		method = MethodKDTree
	}

	var flags uint16
	if len(opts.Metadata) > 0 {
		flags |= flagMetadata
	}

	buf := ioutil.NewEncoderBuffer(version)
	writeHeader(buf, header{Version: version, Kind: KindPointCloud, Method: method, Flags: flags})
	if flags&flagMetadata != 0 {
		if err := encodeMetadata(buf, opts.Metadata); err != nil {
			return nil, err
		}
	}

	points := make([][]float64, pos.NumValues())
	for i := range points {
		points[i] = pos.ValueAt(uint32(i))
	}

	if method == MethodKDTree {
		dims := pos.NumComponents
		if err := kdtree.Encode(buf, points, dims, opts.PositionQuantizationBits, opts.CompressionLevel); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	buf.EncodeVarint(uint64(len(points)))
	buf.EncodeByte(byte(pos.NumComponents))
	for _, p := range points {
		for _, c := range p {
			buf.EncodeUint64LE(float64bitsLE(c))
		}
	}
	return buf.Bytes(), nil
}
