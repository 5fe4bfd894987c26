package prediction

import (
	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/rans"
)

const maxParallelograms = 4

// creaseProbMin and creaseProbMax bound a crease-probability estimate
// (spec.md §9 Open Question (b)). chooseBestSubset does not use them: its
// cost is the summed absolute correction against each subset's mean.
const (
	creaseProbMin = 0.001
	creaseProbMax = 0.999
)

// collectCandidateCorners gathers up to maxParallelograms corners of the
// vertex at c by alternately swinging left and right, stopping at a
// boundary.
func collectCandidateCorners(ct *cornertable.Table, c uint32) []uint32 {
	out := []uint32{c}
	left, right := c, c
	for len(out) < maxParallelograms {
		next := ct.SwingLeft(left)
		if next == cornertable.Invalid || next == right {
			break
		}
		left = next
		out = append(out, left)
		if len(out) >= maxParallelograms {
			break
		}
		next = ct.SwingRight(right)
		if next == cornertable.Invalid || next == left {
			break
		}
		right = next
		out = append(out, right)
	}
	return out
}

type parallelogramCandidate struct {
	predicted []int32
}

func gatherParallelogramCandidates(ct *cornertable.Table, m *DataIDMapping, dataID uint32, c uint32, values [][]int32, numComponents int) []parallelogramCandidate {
	var out []parallelogramCandidate
	for _, ci := range collectCandidateCorners(ct, c) {
		opp, next, prv, ok := parallelogramSources(ct, m, ci)
		if !ok || !allBelow(dataID, opp, next, prv) {
			continue
		}
		pred := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			pred[k] = values[next][k] + values[prv][k] - values[opp][k]
		}
		out = append(out, parallelogramCandidate{predicted: pred})
		if len(out) >= maxParallelograms {
			break
		}
	}
	return out
}

func meanPrediction(selected []parallelogramCandidate, numComponents int) []int32 {
	out := make([]int32, numComponents)
	n := int32(len(selected))
	if n == 0 {
		return out
	}
	for k := 0; k < numComponents; k++ {
		var sum int32
		for _, s := range selected {
			sum += s.predicted[k]
		}
		// round via +numUsed/2 before the truncating integer divide (halves
		// round up for non-negative sums), per spec.md §4.8.
		out[k] = (sum + n/2) / n
	}
	return out
}

func subsetCost(actual, predicted []int32) int64 {
	var cost int64
	for k := range actual {
		d := int64(actual[k] - predicted[k])
		if d < 0 {
			d = -d
		}
		cost += d
	}
	return cost
}

// chooseBestSubset enumerates every non-empty subset of candidates and
// returns the mean prediction of the one closest to actual, along with the
// per-candidate crease flags (true = excluded) that the caller records into
// one of four streams indexed by numParallelograms-1.
func chooseBestSubset(candidates []parallelogramCandidate, actual []int32, numComponents int) (predicted []int32, creaseFlags []bool) {
	best := int64(-1)
	bestMask := 0
	n := len(candidates)
	for mask := 1; mask < (1 << n); mask++ {
		var selected []parallelogramCandidate
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				selected = append(selected, candidates[i])
			}
		}
		pred := meanPrediction(selected, numComponents)
		cost := subsetCost(actual, pred)
		if best < 0 || cost < best {
			best = cost
			bestMask = mask
		}
	}
	flags := make([]bool, n)
	for i := 0; i < n; i++ {
		flags[i] = bestMask&(1<<i) == 0
	}
	selected := make([]parallelogramCandidate, 0, n)
	for i, cand := range candidates {
		if !flags[i] {
			selected = append(selected, cand)
		}
	}
	return meanPrediction(selected, numComponents), flags
}

// CreaseStreams holds the four per-numParallelograms-context crease-flag
// bit encoders described in spec.md §4.8.
type CreaseStreams struct {
	Encoders [maxParallelograms]*rans.BitEncoder
}

func NewCreaseStreams() *CreaseStreams {
	cs := &CreaseStreams{}
	for i := range cs.Encoders {
		cs.Encoders[i] = rans.NewBitEncoder()
	}
	return cs
}

// EncodeMultiParallelogram predicts each entry using the constrained
// multi-parallelogram rule and records crease flags into cs.
func EncodeMultiParallelogram(ct *cornertable.Table, m *DataIDMapping, values [][]int32, cs *CreaseStreams) [][]int32 {
	numComponents := len(values[0])
	corrections := make([][]int32, len(values))
	var prev []int32
	for dataID, v := range values {
		c := m.CornerForDataID[dataID]
		candidates := gatherParallelogramCandidates(ct, m, uint32(dataID), c, values, numComponents)
		var predicted []int32
		if len(candidates) == 0 {
			if prev == nil {
				predicted = make([]int32, numComponents)
			} else {
				predicted = prev
			}
		} else {
			var flags []bool
			predicted, flags = chooseBestSubset(candidates, v, numComponents)
			ctxIdx := len(candidates) - 1
			for _, f := range flags {
				bit := uint8(0)
				if f {
					bit = 1
				}
				cs.Encoders[ctxIdx].EncodeBit(bit)
			}
		}
		corr := make([]int32, numComponents)
		for k := range v {
			corr[k] = v[k] - predicted[k]
		}
		corrections[dataID] = corr
		prev = v
	}
	return corrections
}

// DecodeMultiParallelogram is the inverse of EncodeMultiParallelogram; it
// requires one BitDecoder per context (numParallelograms-1) already
// positioned at the start of that context's crease-flag stream.
func DecodeMultiParallelogram(ct *cornertable.Table, m *DataIDMapping, corrections [][]int32, decoders [maxParallelograms]*rans.BitDecoder) ([][]int32, error) {
	numComponents := len(corrections[0])
	values := make([][]int32, len(corrections))
	var prev []int32
	for dataID, corr := range corrections {
		c := m.CornerForDataID[dataID]
		candidates := gatherParallelogramCandidates(ct, m, uint32(dataID), c, values, numComponents)
		var predicted []int32
		if len(candidates) == 0 {
			if prev == nil {
				predicted = make([]int32, numComponents)
			} else {
				predicted = prev
			}
		} else {
			ctxIdx := len(candidates) - 1
			var selected []parallelogramCandidate
			for i, cand := range candidates {
				bit, err := decoders[ctxIdx].DecodeNextBit()
				if err != nil {
					return nil, err
				}
				if bit == 0 {
					selected = append(selected, cand)
				}
				_ = i
			}
			predicted = meanPrediction(selected, numComponents)
		}
		v := make([]int32, numComponents)
		for k := range corr {
			v[k] = predicted[k] + corr[k]
		}
		values[dataID] = v
		prev = v
	}
	return values, nil
}
