package draco

import (
	"math"
	"testing"

	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/mesh"
	"github.com/stretchr/testify/require"
)

func tetrahedron() *mesh.Mesh {
	m := mesh.NewMesh(4, 4)
	pos := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
	for _, p := range [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}} {
		pos.AppendValue([]float64{p[0], p[1], p[2]})
	}
	m.Attributes = append(m.Attributes, pos)
	m.Faces = []mesh.Face{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}}
	return m
}

// hasCloseValue reports whether attribute a holds some value within tol of
// target on every component, independent of value index. Edgebreaker
// decoding renumbers vertices in traversal order, so per-index comparison
// would fail even on a correct roundtrip (spec.md §8 property 9: "same
// face set up to vertex relabeling").
func hasCloseValue(a *mesh.PointAttribute, target []float64, tol float64) bool {
	for i := 0; i < a.NumValues(); i++ {
		v := a.ValueAt(uint32(i))
		ok := true
		for k := range target {
			if math.Abs(v[k]-target[k]) > tol {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// TestHeaderRoundtrip checks that the header of an encoded one-point point
// cloud, written at the library's maximum version, reads back with the
// same major, minor, kind and method.
func TestHeaderRoundtrip(t *testing.T) {
	pc := mesh.NewPointCloud(1)
	pos := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
	pos.AppendValue([]float64{0, 0, 0})
	pc.AddAttribute(pos)

	opts := NewEncodeOptions()
	enc := NewEncoder()
	data, err := enc.EncodePointCloud(pc, opts)
	require.NoError(t, err)

	dec := ioutil.NewDecoderBuffer(data, ioutil.BitstreamVersion{Major: MaxMajor, Minor: MaxMinor})
	h, err := readHeader(dec)
	require.NoError(t, err)
	require.Equal(t, uint8(MaxMajor), h.Version.Major)
	require.Equal(t, uint8(MaxMinor), h.Version.Minor)
	require.Equal(t, KindPointCloud, h.Kind)
	require.Equal(t, MethodKDTree, h.Method)
}

func TestMeshRoundtripEdgebreaker(t *testing.T) {
	m := tetrahedron()
	opts := NewEncodeOptions().WithCompressionLevel(7)
	opts.UseEdgebreaker = true

	enc := NewEncoder()
	data, err := enc.EncodeMesh(m, opts)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodeMesh(data)
	require.NoError(t, err)
	require.Len(t, got.Faces, len(m.Faces))

	gotPos := got.AttributeByKind(mesh.AttributePosition)
	require.NotNil(t, gotPos)
	require.Equal(t, 4, gotPos.NumValues())

	origPos := m.AttributeByKind(mesh.AttributePosition)
	const tol = 1.0 / (1 << 13)
	for i := 0; i < origPos.NumValues(); i++ {
		require.True(t, hasCloseValue(gotPos, origPos.ValueAt(uint32(i)), tol),
			"no decoded position close to original vertex %d", i)
	}
}

func TestMeshRoundtripSequential(t *testing.T) {
	m := tetrahedron()
	opts := NewEncodeOptions()
	opts.UseEdgebreaker = false

	enc := NewEncoder()
	data, err := enc.EncodeMesh(m, opts)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodeMesh(data)
	require.NoError(t, err)
	require.Len(t, got.Faces, len(m.Faces))
	for i, f := range m.Faces {
		require.Equal(t, f, got.Faces[i])
	}

	origPos := m.AttributeByKind(mesh.AttributePosition)
	gotPos := got.AttributeByKind(mesh.AttributePosition)
	const tol = 1.0 / (1 << 13)
	for i := 0; i < origPos.NumValues(); i++ {
		want := origPos.ValueAt(uint32(i))
		got := gotPos.ValueAt(uint32(i))
		for k := range want {
			require.InDelta(t, want[k], got[k], tol*4)
		}
	}
}

func TestPointCloudRoundtripKDTree(t *testing.T) {
	pc := mesh.NewPointCloud(8)
	pos := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
	for _, p := range [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	} {
		pos.AppendValue([]float64{p[0], p[1], p[2]})
	}
	pc.AddAttribute(pos)

	opts := NewEncodeOptions()
	enc := NewEncoder()
	data, err := enc.EncodePointCloud(pc, opts)
	require.NoError(t, err)

	dec := NewDecoder()
	got, err := dec.DecodePointCloud(data)
	require.NoError(t, err)
	require.Equal(t, pc.NumPoints, got.NumPoints)

	gotPos := got.AttributeByKind(mesh.AttributePosition)
	require.Equal(t, pos.NumValues(), gotPos.NumValues())

	const tol = 1.0 / (1 << 13)
	for i := 0; i < pos.NumValues(); i++ {
		require.True(t, hasCloseValue(gotPos, pos.ValueAt(uint32(i)), tol))
	}
}

func TestEncodeOptionsValidateClampsOutOfRange(t *testing.T) {
	opts := &EncodeOptions{CompressionLevel: 99, PositionQuantizationBits: 0}
	require.NoError(t, opts.Validate())
	require.Equal(t, 7, opts.CompressionLevel)
	require.Equal(t, 14, opts.PositionQuantizationBits)
}
