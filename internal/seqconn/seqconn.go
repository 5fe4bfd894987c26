// Package seqconn implements the sequential (non-Edgebreaker) connectivity
// codec of spec.md §4.6: either symbol-coded deltas against the previous
// index (method 0) or raw fixed-width indices auto-widened to the smallest
// of u8/u16/u32 that fits num_points (method 1).
package seqconn

import (
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/symbolcodec"
)

// Method selects how face indices are packed.
type Method uint8

const (
	MethodCompressed Method = 0
	MethodRaw        Method = 1
)

func indexWidth(numPoints uint32) int {
	switch {
	case numPoints <= 1<<8:
		return 1
	case numPoints <= 1<<16:
		return 2
	default:
		return 4
	}
}

func writeIndex(buf *ioutil.EncoderBuffer, width int, v uint32) {
	switch width {
	case 1:
		buf.EncodeByte(byte(v))
	case 2:
		buf.EncodeUint16LE(uint16(v))
	default:
		buf.EncodeUint32LE(v)
	}
}

func readIndex(dec *ioutil.DecoderBuffer, width int) (uint32, error) {
	switch width {
	case 1:
		b, err := dec.DecodeByte()
		return uint32(b), err
	case 2:
		v, err := dec.DecodeUint16LE()
		return uint32(v), err
	default:
		return dec.DecodeUint32LE()
	}
}

// Encode writes faces (each a triple of point indices) with one of two
// methods: symbol-coded zigzag deltas against the previous entry, or raw
// auto-widened fixed indices. It picks the deltas only when the fixed
// estimate of estimateCompressedBits (16 bits per index) is below the raw
// size, that is when raw indices would be 4 bytes wide.
func Encode(buf *ioutil.EncoderBuffer, faces [][3]uint32, numPoints uint32, compressionLevel int) error {
	buf.EncodeVarint(uint64(len(faces)))
	buf.EncodeScalarU32OrVarint(numPoints)

	flat := make([]uint32, 0, len(faces)*3)
	for _, f := range faces {
		flat = append(flat, f[0], f[1], f[2])
	}

	rawBits := indexWidth(numPoints) * 8 * len(flat)
	compressedBits := estimateCompressedBits(flat)

	if compressedBits < rawBits {
		buf.EncodeByte(byte(MethodCompressed))
		symbols := make([]uint32, len(flat))
		var prev uint32
		for i, v := range flat {
			symbols[i] = ioutil.ZigZagEncode32(int32(v) - int32(prev))
			prev = v
		}
		return symbolcodec.EncodeSymbols(buf, symbols, 3, compressionLevel)
	}

	buf.EncodeByte(byte(MethodRaw))
	width := indexWidth(numPoints)
	for _, v := range flat {
		writeIndex(buf, width, v)
	}
	return nil
}

func estimateCompressedBits(flat []uint32) int {
	// A coarse estimate (2 bytes/index) good enough to pick between methods
	// without running the full rANS cost model twice.
	return len(flat) * 16
}

// Decode is the inverse of Encode.
func Decode(dec *ioutil.DecoderBuffer) ([][3]uint32, uint32, error) {
	numFaces64, err := dec.DecodeVarint()
	if err != nil {
		return nil, 0, err
	}
	numPoints, err := dec.DecodeScalarU32OrVarint()
	if err != nil {
		return nil, 0, err
	}
	methodByte, err := dec.DecodeByte()
	if err != nil {
		return nil, 0, err
	}
	numFaces := int(numFaces64)
	flat := make([]uint32, numFaces*3)

	switch Method(methodByte) {
	case MethodCompressed:
		symbols, err := symbolcodec.DecodeSymbols(dec, numFaces*3, 3)
		if err != nil {
			return nil, 0, err
		}
		var prev uint32
		for i, s := range symbols {
			prev = uint32(int32(prev) + ioutil.ZigZagDecode32(s))
			flat[i] = prev
		}
	case MethodRaw:
		width := indexWidth(numPoints)
		for i := range flat {
			v, err := readIndex(dec, width)
			if err != nil {
				return nil, 0, err
			}
			flat[i] = v
		}
	default:
		return nil, 0, draerr.DracoErrorf("seqconn.Decode", nil)
	}

	faces := make([][3]uint32, numFaces)
	for i := range faces {
		faces[i] = [3]uint32{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return faces, numPoints, nil
}
