// Package attrcodec implements the sequential attribute codec of
// spec.md §4.9: per-attribute records (original index, kind, data type,
// component count, unique id, prediction-method/transform-type header,
// quantization bit depth and parameters) whose
// correction streams are entropy-coded by internal/symbolcodec, with the
// decoder reading records back in exactly the order the encoder wrote them.
package attrcodec

import (
	"math"

	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/mesh"
	"github.com/cocosip/draco-go/internal/prediction"
	"github.com/cocosip/draco-go/internal/rans"
	"github.com/cocosip/draco-go/internal/symbolcodec"
	"github.com/cocosip/draco-go/internal/transform"
)

// QuantizationSpec carries the per-attribute-kind quantization bit depth
// chosen by the caller (draco.EncodeOptions), spec.md §4.7.
type QuantizationSpec struct {
	PositionBits int
	NormalBits   int
	TexCoordBits int
	GenericBits  int
}

func bitsFor(kind mesh.AttributeKind, q QuantizationSpec) int {
	switch kind {
	case mesh.AttributePosition:
		return q.PositionBits
	case mesh.AttributeNormal:
		return q.NormalBits
	case mesh.AttributeTexCoord:
		return q.TexCoordBits
	default:
		return q.GenericBits
	}
}

func identityOrder(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// attributeValues gathers one float64 vector per vertex (data-id), reading
// through the point->value mapping. Vertex ids double as data-ids and as
// point ids here: seam attributes are expected to already be split into
// per-corner points upstream, in internal/mesh.
func attributeValues(a *mesh.PointAttribute, numVertices int) [][]float64 {
	out := make([][]float64, numVertices)
	for v := 0; v < numVertices; v++ {
		idx := a.MappedValueIndex(uint32(v))
		if idx == mesh.InvalidAttributeValueIndex {
			out[v] = make([]float64, a.NumComponents)
			continue
		}
		out[v] = append([]float64(nil), a.ValueAt(idx)...)
	}
	return out
}

type header struct {
	kind     mesh.AttributeKind
	dataType mesh.DataType
	numComp  int
	uniqueID uint32
	method   prediction.Method
	tt       prediction.TransformType
	bitDepth int
}

func writeHeader(buf *ioutil.EncoderBuffer, a *mesh.PointAttribute, method prediction.Method, tt prediction.TransformType, bitDepth int) {
	buf.EncodeByte(byte(a.Kind))
	buf.EncodeByte(byte(a.DataType))
	buf.EncodeByte(byte(a.NumComponents))
	buf.EncodeVarint(uint64(a.UniqueID))
	buf.EncodeByte(byte(method))
	buf.EncodeByte(byte(tt))
	buf.EncodeByte(byte(bitDepth))
}

func readHeader(dec *ioutil.DecoderBuffer) (header, error) {
	var h header
	kind, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	dt, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	nc, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	uid, err := dec.DecodeVarint()
	if err != nil {
		return h, err
	}
	method, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	tt, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	bd, err := dec.DecodeByte()
	if err != nil {
		return h, err
	}
	return header{
		kind:     mesh.AttributeKind(kind),
		dataType: mesh.DataType(dt),
		numComp:  int(nc),
		uniqueID: uint32(uid),
		method:   prediction.Method(method),
		tt:       prediction.TransformType(tt),
		bitDepth: int(bd),
	}, nil
}

func writeQuantParams(buf *ioutil.EncoderBuffer, origin []float64, rng float64) {
	for _, o := range origin {
		buf.EncodeUint64LE(math.Float64bits(o))
	}
	buf.EncodeUint64LE(math.Float64bits(rng))
}

func readQuantParams(dec *ioutil.DecoderBuffer, numComponents int) ([]float64, float64, error) {
	origin := make([]float64, numComponents)
	for i := range origin {
		v, err := dec.DecodeUint64LE()
		if err != nil {
			return nil, 0, err
		}
		origin[i] = math.Float64frombits(v)
	}
	v, err := dec.DecodeUint64LE()
	if err != nil {
		return nil, 0, err
	}
	return origin, math.Float64frombits(v), nil
}

// writeCorrections flattens corrections (one []int32 per data-id) into a
// single symbol stream, value by value with a value's components adjacent,
// zigzag-coding unless tt marks the
// corrections as already non-negative (spec.md §4.8 "Positive vs signed
// corrections").
func writeCorrections(buf *ioutil.EncoderBuffer, corrections [][]int32, numComponents int, tt prediction.TransformType, level int) error {
	symbols := make([]uint32, 0, len(corrections)*numComponents)
	for _, c := range corrections {
		for k := 0; k < numComponents; k++ {
			if tt.IsPositiveCorrections() {
				symbols = append(symbols, uint32(c[k]))
			} else {
				symbols = append(symbols, ioutil.ZigZagEncode32(c[k]))
			}
		}
	}
	return symbolcodec.EncodeSymbols(buf, symbols, numComponents, level)
}

func readCorrections(dec *ioutil.DecoderBuffer, numValues, numComponents int, tt prediction.TransformType) ([][]int32, error) {
	symbols, err := symbolcodec.DecodeSymbols(dec, numValues*numComponents, numComponents)
	if err != nil {
		return nil, err
	}
	out := make([][]int32, numValues)
	for i := 0; i < numValues; i++ {
		c := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			s := symbols[i*numComponents+k]
			if tt.IsPositiveCorrections() {
				c[k] = int32(s)
			} else {
				c[k] = ioutil.ZigZagDecode32(s)
			}
		}
		out[i] = c
	}
	return out, nil
}

func writeBitStream(buf *ioutil.EncoderBuffer, payload []byte) {
	buf.EncodeVarint(uint64(len(payload)))
	buf.EncodeBytes(payload)
}

func readBitStream(dec *ioutil.DecoderBuffer) ([]byte, error) {
	n, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	return dec.DecodeBytes(int(n))
}

func orderPositionFirst(attrs []*mesh.PointAttribute) []int {
	out := make([]int, 0, len(attrs))
	for i, a := range attrs {
		if a.Kind == mesh.AttributePosition {
			out = append(out, i)
		}
	}
	for i, a := range attrs {
		if a.Kind != mesh.AttributePosition {
			out = append(out, i)
		}
	}
	return out
}

// EncodeAttributes writes attrs in position-first order so NORMAL and
// TEXCOORD attributes can predict against the already-available quantized
// POSITION lattice, per spec.md §4.8's geometric schemes.
func EncodeAttributes(buf *ioutil.EncoderBuffer, ct *cornertable.Table, attrs []*mesh.PointAttribute, level int, q QuantizationSpec) error {
	buf.EncodeVarint(uint64(len(attrs)))
	numVertices := ct.NumVertices()
	m := prediction.BuildDataIDMapping(ct, identityOrder(numVertices))

	var posValues [][]int32
	for _, idx := range orderPositionFirst(attrs) {
		a := attrs[idx]
		buf.EncodeVarint(uint64(idx))
		switch a.Kind {
		case mesh.AttributeNormal:
			oct := quantizeOctahedral(a, numVertices, q.NormalBits)
			if err := encodeNormalAttribute(buf, a, ct, m, oct, posValues, q.NormalBits); err != nil {
				return err
			}
		case mesh.AttributeTexCoord:
			vals, origin, rng := quantizeVector(a, numVertices, q.TexCoordBits)
			if err := encodeTexCoordAttribute(buf, a, ct, m, vals, posValues, origin, rng, q.TexCoordBits); err != nil {
				return err
			}
		default:
			bitDepth := bitsFor(a.Kind, q)
			vals, origin, rng := quantizeVector(a, numVertices, bitDepth)
			if a.Kind == mesh.AttributePosition {
				posValues = vals
			}
			method := prediction.MethodDifference
			if a.Kind == mesh.AttributePosition {
				if level >= 6 {
					method = prediction.MethodConstrainedMultiParallelogram
				} else {
					method = prediction.MethodParallelogram
				}
			}
			if err := encodeVectorAttribute(buf, a, ct, m, vals, origin, rng, bitDepth, method, level); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeAttributes is the inverse of EncodeAttributes.
func DecodeAttributes(dec *ioutil.DecoderBuffer, ct *cornertable.Table) ([]*mesh.PointAttribute, error) {
	count64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	count := int(count64)
	numVertices := ct.NumVertices()
	m := prediction.BuildDataIDMapping(ct, identityOrder(numVertices))

	out := make([]*mesh.PointAttribute, count)
	var posValues [][]int32
	for i := 0; i < count; i++ {
		origIdx64, err := dec.DecodeVarint()
		if err != nil {
			return nil, err
		}
		h, err := readHeader(dec)
		if err != nil {
			return nil, err
		}
		var attr *mesh.PointAttribute
		switch h.kind {
		case mesh.AttributeNormal:
			attr, err = decodeNormalAttribute(dec, ct, m, h, posValues)
		case mesh.AttributeTexCoord:
			attr, err = decodeTexCoordAttribute(dec, ct, m, h, posValues)
		default:
			var vals [][]int32
			attr, vals, err = decodeVectorAttribute(dec, ct, m, h)
			if h.kind == mesh.AttributePosition {
				posValues = vals
			}
		}
		if err != nil {
			return nil, err
		}
		out[origIdx64] = attr
	}
	return out, nil
}

func quantizeVector(a *mesh.PointAttribute, numVertices int, bitDepth int) (vals [][]int32, origin []float64, rng float64) {
	perPoint := attributeValues(a, numVertices)
	rng, origin = transform.ComputeRange(make([]float64, a.NumComponents), perPoint)
	if rng == 0 {
		rng = 1
	}
	q := &transform.Quantizer{Origin: origin, Range: rng, BitDepth: bitDepth}
	vals = make([][]int32, numVertices)
	for i, p := range perPoint {
		vals[i] = q.Forward(p)
	}
	return vals, origin, rng
}

func quantizeOctahedral(a *mesh.PointAttribute, numVertices int, bitDepth int) [][]int32 {
	perPoint := attributeValues(a, numVertices)
	oct := &transform.Octahedral{BitDepth: bitDepth}
	vals := make([][]int32, numVertices)
	for i, p := range perPoint {
		var n [3]float64
		copy(n[:], p)
		s, t := oct.Forward(n)
		vals[i] = []int32{s, t}
	}
	return vals
}

func encodeVectorAttribute(buf *ioutil.EncoderBuffer, a *mesh.PointAttribute, ct *cornertable.Table, m *prediction.DataIDMapping, vals [][]int32, origin []float64, rng float64, bitDepth int, method prediction.Method, level int) error {
	writeHeader(buf, a, method, prediction.TransformWrap, bitDepth)
	writeQuantParams(buf, origin, rng)

	var corrections [][]int32
	switch method {
	case prediction.MethodNone:
		corrections = prediction.EncodeNone(vals)
	case prediction.MethodDifference:
		corrections = prediction.EncodeDifference(vals)
	case prediction.MethodConstrainedMultiParallelogram:
		cs := prediction.NewCreaseStreams()
		corrections = prediction.EncodeMultiParallelogram(ct, m, vals, cs)
		for _, enc := range cs.Encoders {
			writeBitStream(buf, enc.EndEncoding())
		}
	default:
		corrections = prediction.EncodeParallelogram(ct, m, vals)
	}
	return writeCorrections(buf, corrections, a.NumComponents, prediction.TransformWrap, level)
}

func decodeVectorAttribute(dec *ioutil.DecoderBuffer, ct *cornertable.Table, m *prediction.DataIDMapping, h header) (*mesh.PointAttribute, [][]int32, error) {
	origin, rng, err := readQuantParams(dec, h.numComp)
	if err != nil {
		return nil, nil, err
	}
	numValues := len(m.CornerForDataID)

	var decoders [4]*rans.BitDecoder
	if h.method == prediction.MethodConstrainedMultiParallelogram {
		for i := range decoders {
			payload, err := readBitStream(dec)
			if err != nil {
				return nil, nil, err
			}
			decoders[i], err = rans.NewBitDecoder(payload)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	corrections, err := readCorrections(dec, numValues, h.numComp, prediction.TransformWrap)
	if err != nil {
		return nil, nil, err
	}

	var vals [][]int32
	switch h.method {
	case prediction.MethodNone:
		vals = prediction.DecodeNone(corrections)
	case prediction.MethodDifference:
		vals = prediction.DecodeDifference(corrections)
	case prediction.MethodConstrainedMultiParallelogram:
		vals, err = prediction.DecodeMultiParallelogram(ct, m, corrections, decoders)
	default:
		vals = prediction.DecodeParallelogram(ct, m, corrections)
	}
	if err != nil {
		return nil, nil, err
	}

	q := &transform.Quantizer{Origin: origin, Range: rng, BitDepth: h.bitDepth}
	attr := &mesh.PointAttribute{Kind: h.kind, DataType: h.dataType, NumComponents: h.numComp, UniqueID: h.uniqueID}
	for _, v := range vals {
		attr.AppendValue(q.Inverse(v))
	}
	return attr, vals, nil
}

func encodeNormalAttribute(buf *ioutil.EncoderBuffer, a *mesh.PointAttribute, ct *cornertable.Table, m *prediction.DataIDMapping, oct [][]int32, posValues [][]int32, bitDepth int) error {
	writeHeader(buf, a, prediction.MethodGeometricNormal, prediction.TransformNormalOctahedronCanonicalized, bitDepth)
	flip := rans.NewBitEncoder()
	var corrections [][]int32
	if posValues != nil {
		corrections = prediction.EncodeGeometricNormal(ct, m, oct, posValues, bitDepth, flip)
	} else {
		corrections = oct
	}
	writeBitStream(buf, flip.EndEncoding())
	return writeCorrections(buf, corrections, 2, prediction.TransformNormalOctahedronCanonicalized, 0)
}

func decodeNormalAttribute(dec *ioutil.DecoderBuffer, ct *cornertable.Table, m *prediction.DataIDMapping, h header, posValues [][]int32) (*mesh.PointAttribute, error) {
	flipPayload, err := readBitStream(dec)
	if err != nil {
		return nil, err
	}
	numValues := len(m.CornerForDataID)
	corrections, err := readCorrections(dec, numValues, 2, h.tt)
	if err != nil {
		return nil, err
	}
	var octVals [][]int32
	if posValues != nil {
		flip, err := rans.NewBitDecoder(flipPayload)
		if err != nil {
			return nil, err
		}
		octVals, err = prediction.DecodeGeometricNormal(ct, m, corrections, posValues, h.bitDepth, flip)
		if err != nil {
			return nil, err
		}
	} else {
		octVals = corrections
	}

	oct := &transform.Octahedral{BitDepth: h.bitDepth}
	attr := &mesh.PointAttribute{Kind: h.kind, DataType: h.dataType, NumComponents: 3, UniqueID: h.uniqueID}
	for _, v := range octVals {
		n := oct.Inverse(v[0], v[1])
		attr.AppendValue(n[:])
	}
	return attr, nil
}

func encodeTexCoordAttribute(buf *ioutil.EncoderBuffer, a *mesh.PointAttribute, ct *cornertable.Table, m *prediction.DataIDMapping, vals [][]int32, posValues [][]int32, origin []float64, rng float64, bitDepth int) error {
	writeHeader(buf, a, prediction.MethodTexCoordsPortable, prediction.TransformWrap, bitDepth)
	writeQuantParams(buf, origin, rng)
	orient := rans.NewBitEncoder()
	var corrections [][]int32
	if posValues != nil {
		corrections = prediction.EncodeTexCoordsPortable(ct, m, vals, posValues, orient)
	} else {
		corrections = prediction.EncodeDifference(vals)
	}
	writeBitStream(buf, orient.EndEncoding())
	return writeCorrections(buf, corrections, 2, prediction.TransformWrap, 0)
}

func decodeTexCoordAttribute(dec *ioutil.DecoderBuffer, ct *cornertable.Table, m *prediction.DataIDMapping, h header, posValues [][]int32) (*mesh.PointAttribute, error) {
	origin, rng, err := readQuantParams(dec, h.numComp)
	if err != nil {
		return nil, err
	}
	orientPayload, err := readBitStream(dec)
	if err != nil {
		return nil, err
	}
	numValues := len(m.CornerForDataID)
	corrections, err := readCorrections(dec, numValues, 2, prediction.TransformWrap)
	if err != nil {
		return nil, err
	}
	var vals [][]int32
	if posValues != nil {
		orient, err := rans.NewBitDecoder(orientPayload)
		if err != nil {
			return nil, err
		}
		vals, err = prediction.DecodeTexCoordsPortable(ct, m, corrections, posValues, orient)
		if err != nil {
			return nil, err
		}
	} else {
		vals = prediction.DecodeDifference(corrections)
	}

	q := &transform.Quantizer{Origin: origin, Range: rng, BitDepth: h.bitDepth}
	attr := &mesh.PointAttribute{Kind: h.kind, DataType: h.dataType, NumComponents: h.numComp, UniqueID: h.uniqueID}
	for _, v := range vals {
		attr.AppendValue(q.Inverse(v))
	}
	return attr, nil
}
