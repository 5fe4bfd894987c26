package rans

import (
	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
)

// RescaleFrequencies rescales observed counts so they sum to exactly
// 1<<precision, using proportional rounding with residual mass distributed
// to the largest buckets until the total matches exactly (the fixed
// tie-break required for byte-exact reproducibility).
func RescaleFrequencies(counts []uint32, precision uint) []uint32 {
	target := uint32(1) << precision
	total := uint64(0)
	for _, c := range counts {
		total += uint64(c)
	}
	out := make([]uint32, len(counts))
	if total == 0 {
		return out
	}

	type bucket = struct {
		idx  int
		frac uint64 // remainder numerator, used to rank residual assignment
	}
	buckets := make([]bucket, 0, len(counts))

	var assigned uint64
	for i, c := range counts {
		if c == 0 {
			continue
		}
		scaled := uint64(c) * uint64(target)
		q := scaled / total
		if q == 0 {
			q = 1 // every observed symbol keeps at least frequency 1
		}
		out[i] = uint32(q)
		assigned += uint64(q)
		buckets = append(buckets, bucket{idx: i, frac: scaled % total})
	}

	// Distribute (or remove) the residual mass to/from the largest buckets,
	// ranked by current assigned frequency (descending) then rounding
	// remainder (descending) then index (descending) for a deterministic order.
	residual := int64(int64(target) - int64(assigned))
	if residual == 0 || len(buckets) == 0 {
		return out
	}

	order := make([]int, len(buckets))
	for i := range order {
		order[i] = i
	}
	sortByFreqDesc(order, buckets, out, counts)

	if residual > 0 {
		for i := 0; residual > 0; i = (i + 1) % len(order) {
			b := buckets[order[i]]
			out[b.idx]++
			residual--
		}
		return out
	}
	for i := 0; residual < 0; i = (i + 1) % len(order) {
		b := buckets[order[i]]
		if out[b.idx] > 1 {
			out[b.idx]--
			residual++
		}
	}
	return out
}

func sortByFreqDesc(order []int, buckets []struct {
	idx  int
	frac uint64
}, out []uint32, counts []uint32) {
	// simple insertion sort; tables are small (<= alphabet size)
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && less(order[j-1], order[j], buckets, out) {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
}

func less(a, b int, buckets []struct {
	idx  int
	frac uint64
}, out []uint32) bool {
	fa, fb := out[buckets[a].idx], out[buckets[b].idx]
	if fa != fb {
		return fa < fb
	}
	if buckets[a].frac != buckets[b].frac {
		return buckets[a].frac < buckets[b].frac
	}
	return buckets[a].idx < buckets[b].idx
}

// EncodeFreqTable serializes freqs using a run-length-friendly scheme: each
// present symbol's count is varint-emitted as (count+1); a run of zero
// counts is signaled by the escape varint 0 followed by the run length.
func EncodeFreqTable(buf *ioutil.EncoderBuffer, freqs []uint32) {
	buf.EncodeVarint(uint64(len(freqs)))
	i := 0
	for i < len(freqs) {
		if freqs[i] == 0 {
			j := i
			for j < len(freqs) && freqs[j] == 0 {
				j++
			}
			buf.EncodeVarint(0)
			buf.EncodeVarint(uint64(j - i))
			i = j
			continue
		}
		buf.EncodeVarint(uint64(freqs[i]) + 1)
		i++
	}
}

// DecodeFreqTable is the inverse of EncodeFreqTable.
func DecodeFreqTable(dec *ioutil.DecoderBuffer) ([]uint32, error) {
	n, err := dec.DecodeVarint()
	if err != nil {
		return nil, draerr.IOErrorf("rans.DecodeFreqTable", err)
	}
	freqs := make([]uint32, n)
	i := uint64(0)
	for i < n {
		v, err := dec.DecodeVarint()
		if err != nil {
			return nil, draerr.IOErrorf("rans.DecodeFreqTable", err)
		}
		if v == 0 {
			runLen, err := dec.DecodeVarint()
			if err != nil {
				return nil, draerr.IOErrorf("rans.DecodeFreqTable", err)
			}
			if i+runLen > n {
				return nil, draerr.DracoErrorf("rans.DecodeFreqTable", nil)
			}
			i += runLen
			continue
		}
		freqs[i] = uint32(v - 1)
		i++
	}
	return freqs, nil
}
