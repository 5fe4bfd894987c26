// Package symbolcodec implements the tagged-vs-raw framing chosen per
// spec.md §4.3: two interchangeable encodings for arrays of non-negative
// symbols, selected by an estimated bit-cost comparison.
package symbolcodec

import (
	"math"
	"math/bits"

	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/rans"
)

// Scheme identifies which framing was chosen.
type Scheme uint8

const (
	SchemeTagged Scheme = 0
	SchemeRaw    Scheme = 1

	// Legacy ids accepted on decode for compatibility, per spec.md §4.3.
	schemeLegacyTagged Scheme = 2
	schemeLegacyRaw    Scheme = 3
)

func normalizeScheme(id Scheme) (Scheme, error) {
	switch id {
	case SchemeTagged, schemeLegacyTagged:
		return SchemeTagged, nil
	case SchemeRaw, schemeLegacyRaw:
		return SchemeRaw, nil
	default:
		return 0, draerr.DracoErrorf("symbolcodec.normalizeScheme", nil)
	}
}

// CompressionLevelDelta maps a 0..10 compression level to the
// unique-symbols-bit-length delta in [-2, 2] described in spec.md §4.3.
func CompressionLevelDelta(level int) int {
	switch {
	case level <= 1:
		return -2
	case level <= 3:
		return -1
	case level <= 6:
		return 0
	case level <= 8:
		return 1
	default:
		return 2
	}
}

// EncodeSymbols chooses between tagged and raw framing by estimated bit
// cost and writes the 1-byte scheme id followed by the chosen encoding.
// numComponents is the chunk size C used for the tagged framing.
func EncodeSymbols(buf *ioutil.EncoderBuffer, symbols []uint32, numComponents int, compressionLevel int) error {
	rawCost := estimateRawBits(symbols)
	taggedCost, tagBitLens := estimateTaggedBits(symbols, numComponents)

	if taggedCost <= rawCost {
		buf.EncodeByte(byte(SchemeTagged))
		return encodeTagged(buf, symbols, numComponents, tagBitLens)
	}
	buf.EncodeByte(byte(SchemeRaw))
	return encodeRaw(buf, symbols, compressionLevel)
}

// DecodeSymbols reads the scheme id and decodes numSymbols values.
func DecodeSymbols(dec *ioutil.DecoderBuffer, numSymbols int, numComponents int) ([]uint32, error) {
	idByte, err := dec.DecodeByte()
	if err != nil {
		return nil, draerr.IOErrorf("symbolcodec.DecodeSymbols", err)
	}
	scheme, err := normalizeScheme(Scheme(idByte))
	if err != nil {
		return nil, err
	}
	switch scheme {
	case SchemeTagged:
		return decodeTagged(dec, numSymbols, numComponents)
	default:
		return decodeRaw(dec, numSymbols)
	}
}

// --- raw framing ---

func uniqueCount(symbols []uint32) int {
	seen := make(map[uint32]struct{}, len(symbols))
	for _, s := range symbols {
		seen[s] = struct{}{}
	}
	return len(seen)
}

func msb(v int) uint {
	if v <= 0 {
		return 0
	}
	return uint(bits.Len(uint(v)))
}

func clampU(u int, delta int) uint8 {
	return uint8(ioutil.Clamp(u+delta, 1, 18))
}

func encodeRaw(buf *ioutil.EncoderBuffer, symbols []uint32, compressionLevel int) error {
	u := clampU(int(msb(uniqueCount(symbols))), CompressionLevelDelta(compressionLevel))
	buf.EncodeByte(u)
	precision := rans.ClampPrecision(uint(u))
	sc := rans.NewSymbolCoder(precision)
	return sc.Encode(buf, symbols, ioutil.MaxOf(symbols))
}

func decodeRaw(dec *ioutil.DecoderBuffer, numSymbols int) ([]uint32, error) {
	u, err := dec.DecodeByte()
	if err != nil {
		return nil, draerr.IOErrorf("symbolcodec.decodeRaw", err)
	}
	precision := rans.ClampPrecision(uint(u))
	sc := rans.NewSymbolCoder(precision)
	return sc.Decode(dec, numSymbols)
}

func estimateRawBits(symbols []uint32) float64 {
	if len(symbols) == 0 {
		return 0
	}
	maxSym := ioutil.MaxOf(symbols)
	hist := make([]uint32, maxSym+1)
	for _, s := range symbols {
		hist[s]++
	}
	return shannonBits(hist, len(symbols)) + tableOverheadBits(hist)
}

// --- tagged framing ---

const tagAlphabetSize = 32 // tags are bit-lengths 1..32

func bitLengthFor(maxVal uint32) uint8 {
	if maxVal == 0 {
		return 1
	}
	n := uint8(bits.Len32(maxVal))
	if n > tagAlphabetSize {
		n = tagAlphabetSize
	}
	return n
}

func chunkBitLengths(symbols []uint32, numComponents int) []uint8 {
	if numComponents < 1 {
		numComponents = 1
	}
	numChunks := (len(symbols) + numComponents - 1) / numComponents
	tags := make([]uint8, numChunks)
	for c := 0; c < numChunks; c++ {
		start := c * numComponents
		end := start + numComponents
		if end > len(symbols) {
			end = len(symbols)
		}
		var m uint32
		for _, s := range symbols[start:end] {
			if s > m {
				m = s
			}
		}
		tags[c] = bitLengthFor(m)
	}
	return tags
}

func encodeTagged(buf *ioutil.EncoderBuffer, symbols []uint32, numComponents int, tags []uint8) error {
	tagSymbols := make([]uint32, len(tags))
	for i, t := range tags {
		tagSymbols[i] = uint32(t - 1)
	}
	sc := rans.NewSymbolCoder(12)
	if err := sc.Encode(buf, tagSymbols, tagAlphabetSize-1); err != nil {
		return draerr.DracoErrorf("symbolcodec.encodeTagged", err)
	}

	be := buf.StartBitEncoder(true)
	if numComponents < 1 {
		numComponents = 1
	}
	for c, t := range tags {
		start := c * numComponents
		end := start + numComponents
		if end > len(symbols) {
			end = len(symbols)
		}
		for _, s := range symbols[start:end] {
			be.PutBits(s, uint(t))
		}
	}
	be.Close()
	return nil
}

func decodeTagged(dec *ioutil.DecoderBuffer, numSymbols int, numComponents int) ([]uint32, error) {
	if numComponents < 1 {
		numComponents = 1
	}
	numChunks := (numSymbols + numComponents - 1) / numComponents
	sc := rans.NewSymbolCoder(12)
	tagSymbols, err := sc.Decode(dec, numChunks)
	if err != nil {
		return nil, draerr.IOErrorf("symbolcodec.decodeTagged", err)
	}

	bd, err := dec.StartBitDecoder(true)
	if err != nil {
		return nil, draerr.IOErrorf("symbolcodec.decodeTagged", err)
	}

	out := make([]uint32, 0, numSymbols)
	for c := 0; c < numChunks; c++ {
		t := uint(tagSymbols[c]) + 1
		count := numComponents
		if c == numChunks-1 {
			if rem := numSymbols % numComponents; rem != 0 {
				count = rem
			}
		}
		for i := 0; i < count; i++ {
			v, err := bd.GetBits(t)
			if err != nil {
				return nil, draerr.IOErrorf("symbolcodec.decodeTagged", err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func estimateTaggedBits(symbols []uint32, numComponents int) (float64, []uint8) {
	tags := chunkBitLengths(symbols, numComponents)
	hist := make([]uint32, tagAlphabetSize)
	for _, t := range tags {
		hist[t-1]++
	}
	cost := shannonBits(hist, len(tags)) + tableOverheadBits(hist)
	var valueBits float64
	for _, t := range tags {
		valueBits += float64(t)
	}
	if numComponents < 1 {
		numComponents = 1
	}
	return cost + valueBits*float64(numComponents), tags
}

// shannonBits estimates the Shannon entropy cost, in bits, of encoding n
// symbols drawn from the histogram hist.
func shannonBits(hist []uint32, n int) float64 {
	if n == 0 {
		return 0
	}
	var bitsTotal float64
	total := float64(n)
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		bitsTotal += float64(c) * -math.Log2(p)
	}
	return bitsTotal
}

// tableOverheadBits approximates the cost of serializing the frequency
// table itself: roughly one byte per present symbol plus one per zero run.
func tableOverheadBits(hist []uint32) float64 {
	var bytesCost float64
	i := 0
	for i < len(hist) {
		if hist[i] == 0 {
			j := i
			for j < len(hist) && hist[j] == 0 {
				j++
			}
			bytesCost += 2 // escape + run length, approximated at 1 byte each
			i = j
			continue
		}
		bytesCost++
		i++
	}
	return bytesCost * 8
}
