package attrcodec

import (
	"math"
	"testing"

	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/mesh"
)

func tetrahedronFaces() [][3]uint32 {
	return [][3]uint32{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}}
}

func positionAttribute(points [][3]float64) *mesh.PointAttribute {
	a := &mesh.PointAttribute{Kind: mesh.AttributePosition, DataType: mesh.DataTypeFloat64, NumComponents: 3}
	for _, p := range points {
		a.AppendValue([]float64{p[0], p[1], p[2]})
	}
	return a
}

func TestEncodeDecodePositionRoundtrip(t *testing.T) {
	ct := cornertable.Init(tetrahedronFaces())
	points := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	pos := positionAttribute(points)

	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	q := QuantizationSpec{PositionBits: 16, NormalBits: 10, TexCoordBits: 12, GenericBits: 12}
	if err := EncodeAttributes(buf, ct, []*mesh.PointAttribute{pos}, 7, q); err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}

	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	attrs, err := DecodeAttributes(dec, ct)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("got %d attributes, want 1", len(attrs))
	}
	got := attrs[0]
	if got.NumValues() != len(points) {
		t.Fatalf("NumValues = %d, want %d", got.NumValues(), len(points))
	}
	const tol = 0.01
	for i, want := range points {
		v := got.ValueAt(uint32(i))
		for k := 0; k < 3; k++ {
			if math.Abs(v[k]-want[k]) > tol {
				t.Fatalf("value %d component %d = %v, want %v", i, k, v[k], want[k])
			}
		}
	}
}

func TestEncodeDecodeGenericAndNormal(t *testing.T) {
	ct := cornertable.Init(tetrahedronFaces())
	points := [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	pos := positionAttribute(points)

	normals := &mesh.PointAttribute{Kind: mesh.AttributeNormal, DataType: mesh.DataTypeFloat64, NumComponents: 3}
	raw := [][3]float64{{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
	for _, n := range raw {
		l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		normals.AppendValue([]float64{n[0] / l, n[1] / l, n[2] / l})
	}

	generic := &mesh.PointAttribute{Kind: mesh.AttributeGeneric, DataType: mesh.DataTypeFloat64, NumComponents: 1}
	for i := 0; i < 4; i++ {
		generic.AppendValue([]float64{float64(i) * 0.25})
	}

	buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{Major: 2, Minor: 2})
	q := QuantizationSpec{PositionBits: 16, NormalBits: 10, TexCoordBits: 12, GenericBits: 12}
	attrs := []*mesh.PointAttribute{generic, normals, pos}
	if err := EncodeAttributes(buf, ct, attrs, 3, q); err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}

	dec := ioutil.NewDecoderBuffer(buf.Bytes(), buf.Version())
	decoded, err := DecodeAttributes(dec, ct)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d attributes, want 3", len(decoded))
	}
	if decoded[0].Kind != mesh.AttributeGeneric {
		t.Fatalf("decoded[0].Kind = %v, want Generic", decoded[0].Kind)
	}
	if decoded[1].Kind != mesh.AttributeNormal {
		t.Fatalf("decoded[1].Kind = %v, want Normal", decoded[1].Kind)
	}
	if decoded[2].Kind != mesh.AttributePosition {
		t.Fatalf("decoded[2].Kind = %v, want Position", decoded[2].Kind)
	}
	for i := 0; i < decoded[1].NumValues(); i++ {
		v := decoded[1].ValueAt(uint32(i))
		l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if math.Abs(l-1) > 0.05 {
			t.Fatalf("decoded normal %d not unit length: %v (len %v)", i, v, l)
		}
	}
}
