// Package edgebreaker implements the CLERS connectivity codec of
// spec.md §4.5/§4.6: a depth-first corner-table traversal that emits one
// symbol per non-seed face (Center/Left/Right/Split/End), bit-packed as a single 0
// bit for C and a 1 bit followed by a 2-bit suffix for L/R/S/E.
package edgebreaker

import (
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
)

// Symbol is one CLERS traversal event.
type Symbol uint8

const (
	SymbolC Symbol = iota
	SymbolL
	SymbolR
	SymbolS
	SymbolE
)

func (s Symbol) String() string {
	switch s {
	case SymbolC:
		return "C"
	case SymbolL:
		return "L"
	case SymbolR:
		return "R"
	case SymbolS:
		return "S"
	case SymbolE:
		return "E"
	default:
		return "?"
	}
}

// WriteSymbols bit-packs symbols per spec.md §4.5: C -> 0, L/R/S/E -> 1
// followed by a 2-bit suffix (L=00, R=01, S=10, E=11).
func WriteSymbols(bc *ioutil.BitEncoder, symbols []Symbol) {
	for _, s := range symbols {
		if s == SymbolC {
			bc.PutBit(0)
			continue
		}
		bc.PutBit(1)
		switch s {
		case SymbolL:
			bc.PutBits(0, 2)
		case SymbolR:
			bc.PutBits(1, 2)
		case SymbolS:
			bc.PutBits(2, 2)
		case SymbolE:
			bc.PutBits(3, 2)
		}
	}
}

// ReadSymbols is the inverse of WriteSymbols, reading exactly numSymbols entries.
func ReadSymbols(bd *ioutil.BitDecoder, numSymbols int) ([]Symbol, error) {
	out := make([]Symbol, numSymbols)
	for i := 0; i < numSymbols; i++ {
		bit, err := bd.GetBit()
		if err != nil {
			return nil, draerr.IOErrorf("edgebreaker.ReadSymbols", err)
		}
		if bit == 0 {
			out[i] = SymbolC
			continue
		}
		suffix, err := bd.GetBits(2)
		if err != nil {
			return nil, draerr.IOErrorf("edgebreaker.ReadSymbols", err)
		}
		switch suffix {
		case 0:
			out[i] = SymbolL
		case 1:
			out[i] = SymbolR
		case 2:
			out[i] = SymbolS
		default:
			out[i] = SymbolE
		}
	}
	return out, nil
}
