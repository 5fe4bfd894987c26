package draco

import (
	"math"

	"github.com/cocosip/draco-go/internal/attrcodec"
	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/edgebreaker"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/kdtree"
	"github.com/cocosip/draco-go/internal/mesh"
	"github.com/cocosip/draco-go/internal/seqconn"
)

// Decoder is not safe for concurrent use on the same instance (spec.md §5).
type Decoder struct{}

// NewDecoder returns a ready-to-use Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

func facesFromTriples(triples [][3]uint32) []mesh.Face {
	out := make([]mesh.Face, len(triples))
	for i, f := range triples {
		out[i] = mesh.Face(f)
	}
	return out
}

// DecodeMesh is the inverse of Encoder.EncodeMesh. It returns
// invalid-parameter if the stream's header names a point cloud.
func (d *Decoder) DecodeMesh(data []byte) (*mesh.Mesh, error) {
	dec := ioutil.NewDecoderBuffer(data, ioutil.BitstreamVersion{Major: MaxMajor, Minor: MaxMinor})
	h, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	if h.Kind != KindMesh {
		return nil, draerr.Wrap("draco.DecodeMesh", draerr.ErrInvalidParameter, nil)
	}

	var metadata map[string]string
	if h.Flags&flagMetadata != 0 {
		metadata, err = decodeMetadata(dec)
		if err != nil {
			return nil, err
		}
	}

	var faces [][3]uint32
	var numPoints uint32
	var attrs []*mesh.PointAttribute

	switch h.Method {
	case MethodEdgebreaker:
		conn, err := edgebreaker.DecodeBitstream(dec)
		if err != nil {
			return nil, err
		}
		faces, err = edgebreaker.Reconstruct(conn)
		if err != nil {
			return nil, err
		}
		ct := cornertable.Init(faces)
		numPoints = uint32(ct.NumVertices())
		attrs, err = attrcodec.DecodeAttributes(dec, ct)
		if err != nil {
			return nil, err
		}
	case MethodSequential:
		faces, numPoints, err = seqconn.Decode(dec)
		if err != nil {
			return nil, err
		}
		ct := cornertable.Init(faces)
		attrs, err = attrcodec.DecodeAttributes(dec, ct)
		if err != nil {
			return nil, err
		}
	default:
		return nil, draerr.Wrap("draco.DecodeMesh", draerr.ErrUnsupportedFeature, nil)
	}

	m := mesh.NewMesh(numPoints, len(faces))
	m.Faces = facesFromTriples(faces)
	m.Attributes = attrs
	m.Metadata = metadata
	return m, nil
}

// DecodePointCloud is the inverse of Encoder.EncodePointCloud. It returns
// invalid-parameter if the stream's header names a mesh.
func (d *Decoder) DecodePointCloud(data []byte) (*mesh.PointCloud, error) {
	dec := ioutil.NewDecoderBuffer(data, ioutil.BitstreamVersion{Major: MaxMajor, Minor: MaxMinor})
	h, err := readHeader(dec)
	if err != nil {
		return nil, err
	}
	if h.Kind != KindPointCloud {
		return nil, draerr.Wrap("draco.DecodePointCloud", draerr.ErrInvalidParameter, nil)
	}

	var metadata map[string]string
	if h.Flags&flagMetadata != 0 {
		metadata, err = decodeMetadata(dec)
		if err != nil {
			return nil, err
		}
	}

	var points [][]float64
	switch h.Method {
	case MethodKDTree:
		points, err = kdtree.Decode(dec)
		if err != nil {
			return nil, err
		}
	case MethodSequential:
		n, err2 := dec.DecodeVarint()
		if err2 != nil {
			return nil, draerr.IOErrorf("draco.DecodePointCloud", err2)
		}
		dimsByte, err2 := dec.DecodeByte()
		if err2 != nil {
			return nil, draerr.IOErrorf("draco.DecodePointCloud", err2)
		}
		dims := int(dimsByte)
		points = make([][]float64, n)
		for i := range points {
			p := make([]float64, dims)
			for k := range p {
				bits, err3 := dec.DecodeUint64LE()
				if err3 != nil {
					return nil, draerr.IOErrorf("draco.DecodePointCloud", err3)
				}
				p[k] = math.Float64frombits(bits)
			}
			points[i] = p
		}
	default:
		return nil, draerr.Wrap("draco.DecodePointCloud", draerr.ErrUnsupportedFeature, nil)
	}

	pc := mesh.NewPointCloud(uint32(len(points)))
	pc.Metadata = metadata
	if len(points) == 0 {
		return pc, nil
	}
	pos := &mesh.PointAttribute{
		Kind:          mesh.AttributePosition,
		DataType:      mesh.DataTypeFloat64,
		NumComponents: len(points[0]),
	}
	for _, p := range points {
		pos.AppendValue(p)
	}
	pc.AddAttribute(pos)
	return pc, nil
}
