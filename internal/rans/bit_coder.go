package rans

import "github.com/cocosip/draco-go/internal/draerr"

const bitPrecision = 8
const bitScale = uint32(1) << bitPrecision

// BitEncoder accumulates individual bits and emits a single adaptive
// probability (an 8-bit prob0) followed by the rANS-coded stream.
type BitEncoder struct {
	bits       []uint8
	zeros, ones uint32
}

// NewBitEncoder returns an empty bit encoder.
func NewBitEncoder() *BitEncoder { return &BitEncoder{} }

// EncodeBit records one bit for later encoding.
func (e *BitEncoder) EncodeBit(bit uint8) {
	e.bits = append(e.bits, bit&1)
	if bit&1 == 0 {
		e.zeros++
	} else {
		e.ones++
	}
}

// EndEncoding computes the observed probability of a zero bit, serializes
// it as an 8-bit prob0, and rANS-encodes all recorded bits in reverse order
// so the LIFO decode yields the original forward order.
func (e *BitEncoder) EndEncoding() []byte {
	prob0 := computeProb0(e.zeros, e.ones)

	st := newEncoderState()
	for i := len(e.bits) - 1; i >= 0; i-- {
		if e.bits[i] == 0 {
			st.put(0, uint32(prob0), bitPrecision)
		} else {
			st.put(uint32(prob0), bitScale-uint32(prob0), bitPrecision)
		}
	}
	payload := st.finish()
	out := make([]byte, 0, len(payload)+1)
	out = append(out, prob0)
	out = append(out, payload...)
	return out
}

func computeProb0(zeros, ones uint32) uint8 {
	total := zeros + ones
	if total == 0 {
		return uint8(bitScale / 2)
	}
	p := (uint64(zeros)*uint64(bitScale) + uint64(total)/2) / uint64(total)
	if p < 1 {
		p = 1
	}
	if p > uint64(bitScale)-1 {
		p = uint64(bitScale) - 1
	}
	return uint8(p)
}

// BitDecoder serves decode_next_bit in O(1) after initialization from a
// stream produced by BitEncoder.EndEncoding.
type BitDecoder struct {
	prob0 uint8
	st    *decoderState
}

// NewBitDecoder reads prob0 and initializes the rANS state from data.
func NewBitDecoder(data []byte) (*BitDecoder, error) {
	if len(data) < 1 {
		return nil, draerr.IOErrorf("rans.NewBitDecoder", nil)
	}
	prob0 := data[0]
	st, err := newDecoderState(data[1:])
	if err != nil {
		return nil, draerr.IOErrorf("rans.NewBitDecoder", err)
	}
	return &BitDecoder{prob0: prob0, st: st}, nil
}

// DecodeNextBit returns the next decoded bit.
func (d *BitDecoder) DecodeNextBit() (uint8, error) {
	slot := d.st.slot(bitPrecision)
	prob0 := uint32(d.prob0)
	if slot < prob0 {
		if err := d.st.advance(0, prob0, bitPrecision); err != nil {
			return 0, draerr.IOErrorf("rans.BitDecoder.DecodeNextBit", err)
		}
		return 0, nil
	}
	if err := d.st.advance(prob0, bitScale-prob0, bitPrecision); err != nil {
		return 0, draerr.IOErrorf("rans.BitDecoder.DecodeNextBit", err)
	}
	return 1, nil
}
