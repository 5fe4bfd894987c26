package rans

import (
	"sort"

	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
)

// SymbolCoder encodes/decodes arrays of non-negative symbols over an
// alphabet {0..maxSymbol} with a rescaled frequency table summing to
// 1<<Precision. Precision must be in [12, 20]; callers derive it per
// spec.md §4.2 (3*uniqueSymbolsBitLength, clamped) or fix it at 12 for
// the tagged-symbol layer.
type SymbolCoder struct {
	Precision uint
}

// NewSymbolCoder returns a coder at the given table precision.
func NewSymbolCoder(precision uint) *SymbolCoder {
	return &SymbolCoder{Precision: precision}
}

// ClampPrecision implements p = clamp(3*u, 12, 20).
func ClampPrecision(uniqueSymbolsBitLength uint) uint {
	p := 3 * uniqueSymbolsBitLength
	if p < 12 {
		return 12
	}
	if p > 20 {
		return 20
	}
	return p
}

type cumEntry struct {
	cum, freq uint32
}

func buildCumulative(freqs []uint32) []cumEntry {
	out := make([]cumEntry, len(freqs))
	var cum uint32
	for i, f := range freqs {
		out[i] = cumEntry{cum: cum, freq: f}
		cum += f
	}
	return out
}

// Encode writes the frequency table followed by the rANS-coded symbol
// stream (symbols are fed in reverse order internally so the LIFO decode
// recovers the original forward order).
func (sc *SymbolCoder) Encode(buf *ioutil.EncoderBuffer, symbols []uint32, maxSymbol uint32) error {
	freqs := make([]uint32, maxSymbol+1)
	for _, s := range symbols {
		if s > maxSymbol {
			return draerr.DracoErrorf("rans.SymbolCoder.Encode", nil)
		}
		freqs[s]++
	}
	rescaled := RescaleFrequencies(freqs, sc.Precision)
	EncodeFreqTable(buf, rescaled)

	cum := buildCumulative(rescaled)
	st := newEncoderState()
	for i := len(symbols) - 1; i >= 0; i-- {
		e := cum[symbols[i]]
		if e.freq == 0 {
			return draerr.DracoErrorf("rans.SymbolCoder.Encode", nil)
		}
		st.put(e.cum, e.freq, sc.Precision)
	}
	buf.EncodeBytes(st.finish())
	return nil
}

// Decode reads the frequency table and decodes exactly numSymbols symbols.
func (sc *SymbolCoder) Decode(dec *ioutil.DecoderBuffer, numSymbols int) ([]uint32, error) {
	freqs, err := DecodeFreqTable(dec)
	if err != nil {
		return nil, draerr.IOErrorf("rans.SymbolCoder.Decode", err)
	}
	cum := buildCumulative(freqs)
	cumStarts := make([]uint32, len(cum))
	for i, e := range cum {
		cumStarts[i] = e.cum
	}

	remaining, err := dec.Peek(dec.RemainingSize())
	if err != nil {
		return nil, draerr.IOErrorf("rans.SymbolCoder.Decode", err)
	}
	st, err := newDecoderState(remaining)
	if err != nil {
		return nil, draerr.IOErrorf("rans.SymbolCoder.Decode", err)
	}

	out := make([]uint32, numSymbols)
	for i := 0; i < numSymbols; i++ {
		slot := st.slot(sc.Precision)
		// largest index whose cum <= slot
		sym := sort.Search(len(cumStarts), func(k int) bool { return cumStarts[k] > slot }) - 1
		if sym < 0 || uint32(sym) >= uint32(len(cum)) || cum[sym].freq == 0 {
			return nil, draerr.DracoErrorf("rans.SymbolCoder.Decode", nil)
		}
		e := cum[sym]
		if err := st.advance(e.cum, e.freq, sc.Precision); err != nil {
			return nil, draerr.IOErrorf("rans.SymbolCoder.Decode", err)
		}
		out[i] = uint32(sym)
	}
	if err := dec.Advance(st.pos); err != nil {
		return nil, draerr.IOErrorf("rans.SymbolCoder.Decode", err)
	}
	return out, nil
}
