package rans

import (
	"math/rand"
	"testing"

	"github.com/cocosip/draco-go/internal/ioutil"
)

func TestSymbolCoderIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		maxSymbol uint32
		n         int
	}{
		{1, 10}, {3, 50}, {15, 200}, {255, 500},
	}
	for _, c := range cases {
		symbols := make([]uint32, c.n)
		for i := range symbols {
			symbols[i] = uint32(rng.Intn(int(c.maxSymbol) + 1))
		}
		buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{2, 2})
		sc := NewSymbolCoder(12)
		if err := sc.Encode(buf, symbols, c.maxSymbol); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		dec := ioutil.NewDecoderBuffer(buf.Bytes(), ioutil.BitstreamVersion{2, 2})
		sc2 := NewSymbolCoder(12)
		got, err := sc2.Decode(dec, c.n)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		for i := range symbols {
			if got[i] != symbols[i] {
				t.Fatalf("symbol %d: got %d want %d", i, got[i], symbols[i])
			}
		}
	}
}

func TestBitCoderRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	bits := make([]uint8, 1000)
	enc := NewBitEncoder()
	for i := range bits {
		b := uint8(0)
		if rng.Intn(10) < 3 {
			b = 1
		}
		bits[i] = b
		enc.EncodeBit(b)
	}
	stream := enc.EndEncoding()

	dec, err := NewBitDecoder(stream)
	if err != nil {
		t.Fatalf("NewBitDecoder: %v", err)
	}
	for i, want := range bits {
		got, err := dec.DecodeNextBit()
		if err != nil {
			t.Fatalf("bit %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("bit %d: got %d want %d", i, got, want)
		}
	}
}
