package prediction

import (
	"math"

	"github.com/cocosip/draco-go/internal/cornertable"
	"github.com/cocosip/draco-go/internal/rans"
)

// texCoordGeometricPrediction implements spec.md §4.8's portable tex-coord
// geometry: project the tip position onto the line through next/prev, then
// add a 90°-rotated perpendicular scaled to match the opposite triangle's
// aspect ratio. It returns both sign choices for the perpendicular term.
func texCoordGeometricPrediction(posNext, posPrev, posTip [3]int32, uvNext, uvPrev [2]int32) (plus, minus [2]int32) {
	pn := [3]float64{float64(posPrev[0] - posNext[0]), float64(posPrev[1] - posNext[1]), float64(posPrev[2] - posNext[2])}
	cn := [3]float64{float64(posTip[0] - posNext[0]), float64(posTip[1] - posNext[1]), float64(posTip[2] - posNext[2])}
	pnLenSq := pn[0]*pn[0] + pn[1]*pn[1] + pn[2]*pn[2]
	if pnLenSq < 1e-9 {
		return uvNext, uvNext
	}
	cnLenSq := cn[0]*cn[0] + cn[1]*cn[1] + cn[2]*cn[2]
	cnDotPn := cn[0]*pn[0] + cn[1]*pn[1] + cn[2]*pn[2]
	t := cnDotPn / pnLenSq

	uvEdge := [2]float64{float64(uvPrev[0] - uvNext[0]), float64(uvPrev[1] - uvNext[1])}
	uvEdgeLen := math.Sqrt(uvEdge[0]*uvEdge[0] + uvEdge[1]*uvEdge[1])
	if uvEdgeLen < 1e-9 {
		uvEdgeLen = 1
	}
	uvPerp := [2]float64{-uvEdge[1] / uvEdgeLen, uvEdge[0] / uvEdgeLen}

	scale := math.Sqrt(math.Max(cnLenSq-t*t*pnLenSq, 0)) * uvEdgeLen / math.Sqrt(pnLenSq)
	base := [2]float64{float64(uvNext[0]) + t*uvEdge[0], float64(uvNext[1]) + t*uvEdge[1]}
	plusF := [2]float64{base[0] + uvPerp[0]*scale, base[1] + uvPerp[1]*scale}
	minusF := [2]float64{base[0] - uvPerp[0]*scale, base[1] - uvPerp[1]*scale}
	return [2]int32{int32(math.Round(plusF[0])), int32(math.Round(plusF[1]))},
		[2]int32{int32(math.Round(minusF[0])), int32(math.Round(minusF[1]))}
}

func dist2(a, b [2]int32) int64 {
	dx := int64(a[0] - b[0])
	dy := int64(a[1] - b[1])
	return dx*dx + dy*dy
}

// EncodeTexCoordsPortable predicts each UV entry from the parent POSITION
// attribute and records one orientation bit into orient for each entry
// predicted from geometry; entries that copy the previous entry record none.
func EncodeTexCoordsPortable(ct *cornertable.Table, m *DataIDMapping, uvValues [][]int32, posValues [][]int32, orient *rans.BitEncoder) [][]int32 {
	corrections := make([][]int32, len(uvValues))
	var lastKnown []int32
	for dataID, v := range uvValues {
		c := m.CornerForDataID[dataID]
		predicted, hadGeometry := predictTexCoordEntry(ct, m, uint32(dataID), c, uvValues, posValues, lastKnown, v, orient)
		_ = hadGeometry
		corr := make([]int32, 2)
		corr[0] = v[0] - predicted[0]
		corr[1] = v[1] - predicted[1]
		corrections[dataID] = corr
		lastKnown = v
	}
	return corrections
}

// DecodeTexCoordsPortable is the inverse of EncodeTexCoordsPortable.
func DecodeTexCoordsPortable(ct *cornertable.Table, m *DataIDMapping, corrections [][]int32, posValues [][]int32, orient *rans.BitDecoder) ([][]int32, error) {
	values := make([][]int32, len(corrections))
	var lastKnown []int32
	for dataID, corr := range corrections {
		c := m.CornerForDataID[dataID]
		predicted, needBit, cand := predictTexCoordEntryDecode(ct, m, uint32(dataID), c, values, posValues, lastKnown)
		if needBit {
			bit, err := orient.DecodeNextBit()
			if err != nil {
				return nil, err
			}
			if bit == 1 {
				predicted = cand[1]
			} else {
				predicted = cand[0]
			}
		}
		v := []int32{predicted[0] + corr[0], predicted[1] + corr[1]}
		values[dataID] = v
		lastKnown = v
	}
	return values, nil
}

func predictTexCoordEntry(ct *cornertable.Table, m *DataIDMapping, dataID, c uint32, uvValues [][]int32, posValues [][]int32, lastKnown []int32, actual []int32, orient *rans.BitEncoder) ([2]int32, bool) {
	opp, next, prv, ok := parallelogramSources(ct, m, c)
	if !ok || !allBelow(dataID, opp, next, prv) {
		if lastKnown != nil {
			return [2]int32{lastKnown[0], lastKnown[1]}, false
		}
		return [2]int32{0, 0}, false
	}
	posNext3 := toVec3(posValues[next])
	posPrev3 := toVec3(posValues[prv])
	posTip3 := toVec3(posValues[opp])
	plus, minus := texCoordGeometricPrediction(posNext3, posPrev3, posTip3, toVec2(uvValues[next]), toVec2(uvValues[prv]))
	if dist2(plus, [2]int32{actual[0], actual[1]}) <= dist2(minus, [2]int32{actual[0], actual[1]}) {
		orient.EncodeBit(0)
		return plus, true
	}
	orient.EncodeBit(1)
	return minus, true
}

func predictTexCoordEntryDecode(ct *cornertable.Table, m *DataIDMapping, dataID, c uint32, decoded [][]int32, posValues [][]int32, lastKnown []int32) ([2]int32, bool, [2][2]int32) {
	opp, next, prv, ok := parallelogramSources(ct, m, c)
	if !ok || !allBelow(dataID, opp, next, prv) || decoded[next] == nil || decoded[prv] == nil || decoded[opp] == nil {
		if lastKnown != nil {
			return [2]int32{lastKnown[0], lastKnown[1]}, false, [2][2]int32{}
		}
		return [2]int32{0, 0}, false, [2][2]int32{}
	}
	posNext3 := toVec3(posValues[next])
	posPrev3 := toVec3(posValues[prv])
	posTip3 := toVec3(posValues[opp])
	plus, minus := texCoordGeometricPrediction(posNext3, posPrev3, posTip3, toVec2(decoded[next]), toVec2(decoded[prv]))
	return plus, true, [2][2]int32{plus, minus}
}

func toVec3(v []int32) [3]int32 { return [3]int32{v[0], v[1], v[2]} }
func toVec2(v []int32) [2]int32 { return [2]int32{v[0], v[1]} }
