package ioutil

import "testing"

func TestVarintRoundtrip(t *testing.T) {
	values := []uint64{
		0, 1, (1 << 7) - 1, 1 << 7, (1 << 14) - 1, 1 << 14,
		(1 << 21) - 1, 1 << 21, (1 << 35) - 1,
		1 << 63, 1<<64 - 1,
	}
	for _, v := range values {
		buf := NewEncoderBuffer(BitstreamVersion{2, 2})
		buf.EncodeVarint(v)
		dec := NewDecoderBuffer(buf.Bytes(), BitstreamVersion{2, 2})
		got, err := dec.DecodeVarint()
		if err != nil {
			t.Fatalf("DecodeVarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("roundtrip(%d) = %d", v, got)
		}
		if dec.RemainingSize() != 0 {
			t.Errorf("expected buffer fully consumed for %d, %d bytes remain", v, dec.RemainingSize())
		}
	}
}

func TestZigZagRoundtrip32(t *testing.T) {
	for _, s := range []int32{0, 1, -1, 127, -128, 1 << 20, -(1 << 20)} {
		u := ZigZagEncode32(s)
		got := ZigZagDecode32(u)
		if got != s {
			t.Errorf("zigzag roundtrip(%d) = %d", s, got)
		}
	}
}

func TestBitSubStreamFraming(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 100, 1000} {
		buf := NewEncoderBuffer(BitstreamVersion{2, 2})
		be := buf.StartBitEncoder(true)
		bits := make([]uint8, n)
		for i := range bits {
			bits[i] = uint8(i % 2)
			be.PutBit(bits[i])
		}
		be.Close()

		dec := NewDecoderBuffer(buf.Bytes(), BitstreamVersion{2, 2})
		bd, err := dec.StartBitDecoder(true)
		if err != nil {
			t.Fatalf("n=%d: StartBitDecoder: %v", n, err)
		}
		for i := range bits {
			got, err := bd.GetBit()
			if err != nil {
				t.Fatalf("n=%d: GetBit(%d): %v", n, i, err)
			}
			if got != bits[i] {
				t.Errorf("n=%d: bit %d = %d, want %d", n, i, got, bits[i])
			}
		}
		if dec.RemainingSize() != 0 {
			t.Errorf("n=%d: expected full consumption, %d bytes remain", n, dec.RemainingSize())
		}
	}
}
