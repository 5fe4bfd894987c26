// Package draco implements the top-level encoder/decoder of spec.md §6: a
// small fixed header identifying geometry kind and compression method,
// optional metadata, a connectivity block for meshes, and the attribute
// decoder table plus payloads produced by internal/attrcodec or
// internal/kdtree.
package draco

import (
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
)

// magic is the fixed 5-byte ASCII tag every stream opens with.
var magic = [5]byte{'D', 'R', 'A', 'C', 'O'}

// GeometryKind selects between a bare point cloud and a triangular mesh.
type GeometryKind uint8

const (
	KindPointCloud GeometryKind = 0
	KindMesh       GeometryKind = 1
)

// Method selects the connectivity/point codec used for the geometry kind
// named in the header: sequential=0 for both kinds, edgebreaker=1 for
// meshes, kd-tree=1 for point clouds.
type Method uint8

const (
	MethodSequential Method = 0
	MethodEdgebreaker Method = 1
	MethodKDTree      Method = 1
)

const flagMetadata uint16 = 1 << 15

// MaxMajor/MaxMinor is the highest bitstream version this library
// recognizes; versions above it are rejected as unsupported-version, per
// spec.md §6.
const MaxMajor = 2
const MaxMinor = 2

// header is the fixed preamble written before metadata/connectivity.
type header struct {
	Version ioutil.BitstreamVersion
	Kind    GeometryKind
	Method  Method
	Flags   uint16
}

func isRecognizedVersion(v ioutil.BitstreamVersion) bool {
	if v.Major < 1 || v.Major > MaxMajor {
		return false
	}
	if v.Major == MaxMajor && v.Minor > MaxMinor {
		return false
	}
	return true
}

func writeHeader(buf *ioutil.EncoderBuffer, h header) {
	buf.EncodeBytes(magic[:])
	buf.EncodeByte(h.Version.Major)
	buf.EncodeByte(h.Version.Minor)
	buf.EncodeByte(byte(h.Kind))
	buf.EncodeByte(byte(h.Method))
	if h.Version.AtLeast(1, 3) {
		buf.EncodeUint16LE(h.Flags)
	}
}

func readHeader(dec *ioutil.DecoderBuffer) (header, error) {
	tag, err := dec.DecodeBytes(5)
	if err != nil {
		return header{}, draerr.IOErrorf("draco.readHeader", err)
	}
	for i, b := range magic {
		if tag[i] != b {
			return header{}, draerr.DracoErrorf("draco.readHeader", nil)
		}
	}
	major, err := dec.DecodeByte()
	if err != nil {
		return header{}, draerr.IOErrorf("draco.readHeader", err)
	}
	minor, err := dec.DecodeByte()
	if err != nil {
		return header{}, draerr.IOErrorf("draco.readHeader", err)
	}
	version := ioutil.BitstreamVersion{Major: major, Minor: minor}
	if !isRecognizedVersion(version) {
		return header{}, draerr.Wrap("draco.readHeader", draerr.ErrUnsupportedVersion, nil)
	}
	dec.SetVersion(version)

	kindByte, err := dec.DecodeByte()
	if err != nil {
		return header{}, draerr.IOErrorf("draco.readHeader", err)
	}
	methodByte, err := dec.DecodeByte()
	if err != nil {
		return header{}, draerr.IOErrorf("draco.readHeader", err)
	}

	var flags uint16
	if version.AtLeast(1, 3) {
		flags, err = dec.DecodeUint16LE()
		if err != nil {
			return header{}, draerr.IOErrorf("draco.readHeader", err)
		}
	}

	return header{
		Version: version,
		Kind:    GeometryKind(kindByte),
		Method:  Method(methodByte),
		Flags:   flags,
	}, nil
}
