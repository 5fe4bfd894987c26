// Package ioutil provides the byte-oriented append/consume buffers with an
// embedded bit sub-stream and varint convention used across the codec.
package ioutil

import (
	"encoding/binary"

	"github.com/cocosip/draco-go/internal/draerr"
)

// BitstreamVersion identifies the (major, minor) wire version and gates
// the framing switches documented in spec.md §9.
type BitstreamVersion struct {
	Major uint8
	Minor uint8
}

// AtLeast reports whether v >= (major, minor).
func (v BitstreamVersion) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// EncoderBuffer accumulates bytes and supports a nested bit encoder.
type EncoderBuffer struct {
	data    []byte
	version BitstreamVersion
}

// NewEncoderBuffer creates an empty buffer targeting the given bitstream version.
func NewEncoderBuffer(version BitstreamVersion) *EncoderBuffer {
	return &EncoderBuffer{version: version}
}

// Bytes returns the accumulated byte slice.
func (b *EncoderBuffer) Bytes() []byte { return b.data }

// Len returns the number of bytes written so far.
func (b *EncoderBuffer) Len() int { return len(b.data) }

// Version returns the target bitstream version.
func (b *EncoderBuffer) Version() BitstreamVersion { return b.version }

// EncodeByte appends a single byte.
func (b *EncoderBuffer) EncodeByte(v byte) {
	b.data = append(b.data, v)
}

// EncodeBytes appends raw bytes verbatim.
func (b *EncoderBuffer) EncodeBytes(v []byte) {
	b.data = append(b.data, v...)
}

// EncodeVarint appends v using the 7-bit LEB128-style convention.
func (b *EncoderBuffer) EncodeVarint(v uint64) {
	b.data = PutVarint(b.data, v)
}

// EncodeUint32LE appends v as a fixed-width little-endian u32.
func (b *EncoderBuffer) EncodeUint32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// EncodeUint64LE appends v as a fixed-width little-endian u64.
func (b *EncoderBuffer) EncodeUint64LE(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// EncodeUint16LE appends v as a fixed-width little-endian u16.
func (b *EncoderBuffer) EncodeUint16LE(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// EncodeScalarU32OrVarint writes v as a fixed u32 for versions < 2.0 and as
// a varint for versions >= 2.0, per the §9 "u32-vs-varint switch".
func (b *EncoderBuffer) EncodeScalarU32OrVarint(v uint32) {
	if b.version.AtLeast(2, 0) {
		b.EncodeVarint(uint64(v))
	} else {
		b.EncodeUint32LE(v)
	}
}

// BitEncoder accumulates individual bits LSB-first within bytes, nested
// inside an EncoderBuffer. For a size-prefixed stream at version >= 2.2
// nothing is reserved when opening and Close appends the varint length
// before the payload; for older versions opening reserves a fixed 8-byte
// slot that Close fills in. No payload bytes are ever shifted.
type BitEncoder struct {
	parent       *EncoderBuffer
	startOffset  int // offset in parent.data where the size prefix begins
	sizePrefixed bool
	bitBuf       uint64
	bitCount     uint
	payload      []byte
}

// StartBitEncoder opens a nested bit sub-stream. When sizePrefixed is true,
// space is reserved ahead of the bit payload to record its byte length: a
// varint for version >= 2.2, else a fixed 8-byte little-endian integer.
func (b *EncoderBuffer) StartBitEncoder(sizePrefixed bool) *BitEncoder {
	be := &BitEncoder{parent: b, sizePrefixed: sizePrefixed}
	be.startOffset = len(b.data)
	if sizePrefixed {
		if b.version.AtLeast(2, 2) {
			// Reserve nothing; varint length is appended at Close once known.
		} else {
			// Reserve the fixed 8-byte slot now, patched in Close.
			b.data = append(b.data, make([]byte, 8)...)
		}
	}
	return be
}

// PutBit appends a single bit (0 or 1), LSB-first within each byte.
func (be *BitEncoder) PutBit(bit uint8) {
	be.bitBuf |= uint64(bit&1) << be.bitCount
	be.bitCount++
	if be.bitCount == 8 {
		be.payload = append(be.payload, byte(be.bitBuf))
		be.bitBuf = 0
		be.bitCount = 0
	}
}

// PutBits appends the low n bits of v, LSB-first.
func (be *BitEncoder) PutBits(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		be.PutBit(uint8((v >> i) & 1))
	}
}

// Close flushes any partial byte and writes the payload (and, if
// size-prefixed, the length) into the parent buffer.
func (be *BitEncoder) Close() {
	if be.bitCount > 0 {
		be.payload = append(be.payload, byte(be.bitBuf))
		be.bitBuf = 0
		be.bitCount = 0
	}
	if !be.sizePrefixed {
		be.parent.data = append(be.parent.data, be.payload...)
		return
	}
	size := uint64(len(be.payload))
	if be.parent.version.AtLeast(2, 2) {
		// No space was reserved; append the varint length then payload.
		be.parent.data = append(be.parent.data, PutVarint(nil, size)...)
		be.parent.data = append(be.parent.data, be.payload...)
		return
	}
	// Fixed 8-byte slot was reserved at be.startOffset; it is already the
	// right width, so the size is written into it in place.
	binary.LittleEndian.PutUint64(be.parent.data[be.startOffset:be.startOffset+8], size)
	be.parent.data = append(be.parent.data, be.payload...)
}

// DecoderBuffer mirrors EncoderBuffer for decoding, with a cursor that
// tracks the bitstream version (propagated from the header) and fails
// every primitive with io-error when the request exceeds RemainingSize.
type DecoderBuffer struct {
	data    []byte
	pos     int
	version BitstreamVersion
}

// NewDecoderBuffer wraps data for sequential decoding at the given version.
func NewDecoderBuffer(data []byte, version BitstreamVersion) *DecoderBuffer {
	return &DecoderBuffer{data: data, version: version}
}

// Version returns the active bitstream version.
func (d *DecoderBuffer) Version() BitstreamVersion { return d.version }

// SetVersion updates the tracked bitstream version (set once the header is read).
func (d *DecoderBuffer) SetVersion(v BitstreamVersion) { d.version = v }

// Pos returns the current read offset.
func (d *DecoderBuffer) Pos() int { return d.pos }

// RemainingSize returns the number of unread bytes.
func (d *DecoderBuffer) RemainingSize() int { return len(d.data) - d.pos }

// Advance skips n bytes without decoding them.
func (d *DecoderBuffer) Advance(n int) error {
	if n < 0 || n > d.RemainingSize() {
		return draerr.IOErrorf("DecoderBuffer.Advance", nil)
	}
	d.pos += n
	return nil
}

// Peek returns the next n bytes without advancing the cursor.
func (d *DecoderBuffer) Peek(n int) ([]byte, error) {
	if n < 0 || n > d.RemainingSize() {
		return nil, draerr.IOErrorf("DecoderBuffer.Peek", nil)
	}
	return d.data[d.pos : d.pos+n], nil
}

// DecodeByte consumes and returns one byte.
func (d *DecoderBuffer) DecodeByte() (byte, error) {
	if d.RemainingSize() < 1 {
		return 0, draerr.IOErrorf("DecoderBuffer.DecodeByte", nil)
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

// DecodeBytes consumes and returns n raw bytes.
func (d *DecoderBuffer) DecodeBytes(n int) ([]byte, error) {
	if n < 0 || d.RemainingSize() < n {
		return nil, draerr.IOErrorf("DecoderBuffer.DecodeBytes", nil)
	}
	v := d.data[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

// DecodeVarint consumes a 7-bit LEB128-style varint.
func (d *DecoderBuffer) DecodeVarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.DecodeByte()
		if err != nil {
			return 0, draerr.IOErrorf("DecoderBuffer.DecodeVarint", err)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, draerr.DracoErrorf("DecoderBuffer.DecodeVarint", nil)
		}
	}
}

// DecodeUint16LE consumes a fixed-width little-endian u16.
func (d *DecoderBuffer) DecodeUint16LE() (uint16, error) {
	b, err := d.DecodeBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// DecodeUint32LE consumes a fixed-width little-endian u32.
func (d *DecoderBuffer) DecodeUint32LE() (uint32, error) {
	b, err := d.DecodeBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// DecodeUint64LE consumes a fixed-width little-endian u64.
func (d *DecoderBuffer) DecodeUint64LE() (uint64, error) {
	b, err := d.DecodeBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// DecodeScalarU32OrVarint mirrors EncodeScalarU32OrVarint.
func (d *DecoderBuffer) DecodeScalarU32OrVarint() (uint32, error) {
	if d.version.AtLeast(2, 0) {
		v, err := d.DecodeVarint()
		if err != nil {
			return 0, err
		}
		return uint32(v), nil
	}
	return d.DecodeUint32LE()
}

// BitDecoder mirrors BitEncoder for consuming a nested bit sub-stream.
type BitDecoder struct {
	data     []byte
	bytePos  int
	bitBuf   uint64
	bitCount uint
}

// StartBitDecoder opens a bit sub-stream previously framed by the matching
// BitEncoder. When sizePrefixed is true the size is read from the stream
// first (fixed 8-byte for version < 2.2, varint otherwise); otherwise the
// sub-stream takes every remaining byte.
func (d *DecoderBuffer) StartBitDecoder(sizePrefixed bool) (*BitDecoder, error) {
	var size int
	if sizePrefixed {
		if d.version.AtLeast(2, 2) {
			v, err := d.DecodeVarint()
			if err != nil {
				return nil, err
			}
			size = int(v)
		} else {
			v, err := d.DecodeUint64LE()
			if err != nil {
				return nil, err
			}
			size = int(v)
		}
	} else {
		size = d.RemainingSize()
	}
	payload, err := d.DecodeBytes(size)
	if err != nil {
		return nil, err
	}
	return &BitDecoder{data: payload}, nil
}

// GetBit consumes and returns a single bit, LSB-first.
func (bd *BitDecoder) GetBit() (uint8, error) {
	if bd.bitCount == 0 {
		if bd.bytePos >= len(bd.data) {
			return 0, draerr.IOErrorf("BitDecoder.GetBit", nil)
		}
		bd.bitBuf = uint64(bd.data[bd.bytePos])
		bd.bytePos++
		bd.bitCount = 8
	}
	bit := uint8(bd.bitBuf & 1)
	bd.bitBuf >>= 1
	bd.bitCount--
	return bit, nil
}

// GetBits consumes n bits, LSB-first, and returns them as an integer.
func (bd *BitDecoder) GetBits(n uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < n; i++ {
		bit, err := bd.GetBit()
		if err != nil {
			return 0, err
		}
		v |= uint32(bit) << i
	}
	return v, nil
}
