// Package rans implements range-asymmetric numeral system coding: a single
// adaptive bit coder and a precision-parameterized symbol coder with a
// serialized frequency table, grounded on the teacher's MQ-coder state
// machine shape (jpeg2000/mqc) but adapted to range-ANS arithmetic.
package rans

import "github.com/cocosip/draco-go/internal/draerr"

// byteL is the renormalization lower bound for byte-wise rANS (rANS_BYTE_L).
const byteL = uint32(1) << 23

// encoderState is the raw byte-wise rANS encoder primitive. Symbols must be
// pushed in the reverse of their desired decode order; Finish reverses the
// emitted bytes so the decoder reads them forward in original order.
type encoderState struct {
	x   uint32
	out []byte
}

func newEncoderState() *encoderState {
	return &encoderState{x: byteL}
}

// put encodes one symbol with cumulative frequency cum, frequency freq, and
// table precision bits prec (alphabet probabilities sum to 1<<prec).
func (e *encoderState) put(cum, freq uint32, prec uint) {
	xMax := ((byteL >> prec) << 8) * freq
	for e.x >= xMax {
		e.out = append(e.out, byte(e.x))
		e.x >>= 8
	}
	e.x = ((e.x / freq) << prec) + (e.x % freq) + cum
}

// finish flushes the final state (4 bytes) and returns the byte stream in
// forward decode order, which starts with the state in little-endian order.
func (e *encoderState) finish() []byte {
	var tail [4]byte
	tail[0] = byte(e.x >> 24)
	tail[1] = byte(e.x >> 16)
	tail[2] = byte(e.x >> 8)
	tail[3] = byte(e.x)
	out := append(e.out, tail[:]...)
	reverseBytes(out)
	return out
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// decoderState is the raw byte-wise rANS decoder primitive.
type decoderState struct {
	x    uint32
	data []byte
	pos  int
}

func newDecoderState(data []byte) (*decoderState, error) {
	if len(data) < 4 {
		return nil, draerr.IOErrorf("rans.newDecoderState", nil)
	}
	x := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return &decoderState{x: x, data: data, pos: 4}, nil
}

// slot returns the current normalized slot value in [0, 1<<prec).
func (d *decoderState) slot(prec uint) uint32 {
	return d.x & ((1 << prec) - 1)
}

// advance consumes one symbol given its (cum, freq) under precision prec and
// renormalizes from the tail of the stream toward the head.
func (d *decoderState) advance(cum, freq uint32, prec uint) error {
	d.x = freq*(d.x>>prec) + d.slot(prec) - cum
	for d.x < byteL {
		if d.pos >= len(d.data) {
			return draerr.IOErrorf("rans.decoderState.advance", nil)
		}
		d.x = (d.x << 8) | uint32(d.data[d.pos])
		d.pos++
	}
	return nil
}
