package symbolcodec

import (
	"math/rand"
	"testing"

	"github.com/cocosip/draco-go/internal/ioutil"
)

func TestEncodeDecodeSymbolsRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := []struct {
		n, maxSym, comps int
	}{
		{10, 1, 1},
		{100, 7, 3},
		{300, 255, 4},
		{5, 0, 2}, // all-zero symbols
	}
	for _, c := range cases {
		symbols := make([]uint32, c.n)
		for i := range symbols {
			if c.maxSym > 0 {
				symbols[i] = uint32(rng.Intn(c.maxSym + 1))
			}
		}
		buf := ioutil.NewEncoderBuffer(ioutil.BitstreamVersion{2, 2})
		if err := EncodeSymbols(buf, symbols, c.comps, 7); err != nil {
			t.Fatalf("EncodeSymbols: %v", err)
		}
		dec := ioutil.NewDecoderBuffer(buf.Bytes(), ioutil.BitstreamVersion{2, 2})
		got, err := DecodeSymbols(dec, c.n, c.comps)
		if err != nil {
			t.Fatalf("DecodeSymbols: %v", err)
		}
		for i := range symbols {
			if got[i] != symbols[i] {
				t.Fatalf("case %+v symbol %d: got %d want %d", c, i, got[i], symbols[i])
			}
		}
	}
}
