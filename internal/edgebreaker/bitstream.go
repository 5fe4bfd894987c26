package edgebreaker

import (
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/rans"
)

// EncodeBitstream serializes a Connectivity into buf: the CLERS symbols bit
// packed per spec.md §4.5, followed by each seed's 2-bit child mask, each
// C symbol's 2-bit child mask, a varint per non-C symbol naming the reused
// tip vertex, and finally the start-face classification stream (spec.md
// §4.5's "for each remaining active edge ... decode one bit with an rANS
// bit coder"), rANS-bit-coded via internal/rans.BitEncoder.
func EncodeBitstream(buf *ioutil.EncoderBuffer, conn *Connectivity) {
	buf.EncodeVarint(uint64(conn.NumFaces))
	buf.EncodeVarint(uint64(len(conn.SeedChildMask)))
	buf.EncodeVarint(uint64(len(conn.Symbols)))

	bc := buf.StartBitEncoder(true)
	WriteSymbols(bc, conn.Symbols)
	for _, m := range conn.SeedChildMask {
		bc.PutBits(uint32(m), 2)
	}
	for i, s := range conn.Symbols {
		if s == SymbolC {
			bc.PutBits(uint32(conn.ChildMask[i]), 2)
		}
	}
	bc.Close()

	for i, s := range conn.Symbols {
		if s != SymbolC {
			buf.EncodeVarint(uint64(conn.ReusedVertex[i]))
		}
	}

	buf.EncodeVarint(uint64(len(conn.StartFace)))
	sf := rans.NewBitEncoder()
	for _, b := range conn.StartFace {
		if b {
			sf.EncodeBit(1)
		} else {
			sf.EncodeBit(0)
		}
	}
	payload := sf.EndEncoding()
	buf.EncodeVarint(uint64(len(payload)))
	buf.EncodeBytes(payload)
}

// DecodeBitstream is the inverse of EncodeBitstream.
func DecodeBitstream(dec *ioutil.DecoderBuffer) (*Connectivity, error) {
	numFaces64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	numSeeds64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	numSymbols64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	numFaces, numSeeds, numSymbols := int(numFaces64), int(numSeeds64), int(numSymbols64)

	bd, err := dec.StartBitDecoder(true)
	if err != nil {
		return nil, err
	}
	symbols, err := ReadSymbols(bd, numSymbols)
	if err != nil {
		return nil, err
	}
	seedMasks := make([]uint8, numSeeds)
	for i := range seedMasks {
		m, err := bd.GetBits(2)
		if err != nil {
			return nil, err
		}
		seedMasks[i] = uint8(m)
	}
	childMasks := make([]uint8, numSymbols)
	for i, s := range symbols {
		switch s {
		case SymbolC:
			m, err := bd.GetBits(2)
			if err != nil {
				return nil, err
			}
			childMasks[i] = uint8(m)
		case SymbolL, SymbolS:
			childMasks[i] = 2
		case SymbolR:
			childMasks[i] = 1
		case SymbolE:
			childMasks[i] = 0
		}
	}

	reused := make([]uint32, numSymbols)
	for i, s := range symbols {
		if s != SymbolC {
			v, err := dec.DecodeVarint()
			if err != nil {
				return nil, err
			}
			reused[i] = uint32(v)
		}
	}

	numPops64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	numPops := int(numPops64)
	payloadLen64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	payload, err := dec.DecodeBytes(int(payloadLen64))
	if err != nil {
		return nil, err
	}
	sf, err := rans.NewBitDecoder(payload)
	if err != nil {
		return nil, draerr.IOErrorf("edgebreaker.DecodeBitstream", err)
	}
	startFace := make([]bool, numPops)
	for i := range startFace {
		bit, err := sf.DecodeNextBit()
		if err != nil {
			return nil, draerr.IOErrorf("edgebreaker.DecodeBitstream", err)
		}
		startFace[i] = bit == 1
	}

	return &Connectivity{
		Symbols:       symbols,
		ReusedVertex:  reused,
		ChildMask:     childMasks,
		SeedChildMask: seedMasks,
		StartFace:     startFace,
		NumFaces:      numFaces,
	}, nil
}
