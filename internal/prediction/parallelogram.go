package prediction

import "github.com/cocosip/draco-go/internal/cornertable"

// parallelogramSources returns the data-ids of (v_opp, v_next, v_prev) for
// the parallelogram opposite corner c's shared edge, or ok=false if c has
// no opposite (a boundary edge, spec.md §4.8).
func parallelogramSources(ct *cornertable.Table, m *DataIDMapping, c uint32) (opp, next, prev uint32, ok bool) {
	oppCorner := ct.Opposite(c)
	if oppCorner == cornertable.Invalid {
		return 0, 0, 0, false
	}
	vOpp := ct.Vertex(oppCorner)
	vNext := ct.Vertex(ct.Next(oppCorner))
	vPrev := ct.Vertex(ct.Previous(oppCorner))
	return m.DataIDForVertex[vOpp], m.DataIDForVertex[vNext], m.DataIDForVertex[vPrev], true
}

// allBelow reports whether every id in ids is strictly less than current.
func allBelow(current uint32, ids ...uint32) bool {
	for _, id := range ids {
		if id == cornertable.Invalid || id >= current {
			return false
		}
	}
	return true
}

// EncodeParallelogram predicts each entry (in data-id order, which is the
// traversal order) using the parallelogram rule when all three needed
// neighbors were already encoded, else falls back to delta against the
// immediately preceding entry.
func EncodeParallelogram(ct *cornertable.Table, m *DataIDMapping, values [][]int32) [][]int32 {
	numComponents := len(values[0])
	corrections := make([][]int32, len(values))
	var prev []int32
	for dataID, v := range values {
		c := m.CornerForDataID[dataID]
		predicted := predictParallelogramOrDelta(ct, m, uint32(dataID), c, values, prev, numComponents)
		corr := make([]int32, numComponents)
		for k := range v {
			corr[k] = v[k] - predicted[k]
		}
		corrections[dataID] = corr
		prev = v
	}
	return corrections
}

// DecodeParallelogram is the inverse of EncodeParallelogram, applied in
// increasing data-id order since the prediction for data-id i may depend
// on already-decoded entries with smaller data-ids.
func DecodeParallelogram(ct *cornertable.Table, m *DataIDMapping, corrections [][]int32) [][]int32 {
	numComponents := len(corrections[0])
	values := make([][]int32, len(corrections))
	var prev []int32
	for dataID, corr := range corrections {
		c := m.CornerForDataID[dataID]
		predicted := predictParallelogramOrDelta(ct, m, uint32(dataID), c, values, prev, numComponents)
		v := make([]int32, numComponents)
		for k := range corr {
			v[k] = predicted[k] + corr[k]
		}
		values[dataID] = v
		prev = v
	}
	return values
}

func predictParallelogramOrDelta(ct *cornertable.Table, m *DataIDMapping, dataID, c uint32, values [][]int32, prev []int32, numComponents int) []int32 {
	opp, next, prv, ok := parallelogramSources(ct, m, c)
	if ok && allBelow(dataID, opp, next, prv) && values[opp] != nil && values[next] != nil && values[prv] != nil {
		out := make([]int32, numComponents)
		for k := 0; k < numComponents; k++ {
			out[k] = values[next][k] + values[prv][k] - values[opp][k]
		}
		return out
	}
	if prev == nil {
		return make([]int32, numComponents)
	}
	return prev
}
