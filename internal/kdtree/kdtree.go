// Package kdtree implements the point-cloud-only codec of spec.md §5: a
// recursive axis-aligned bisection of the quantized bounding box, where
// each split transmits only the left-subtree's point count (the split
// plane itself is the axis-range midpoint, so it never needs to be coded),
// bottoming out in direct per-point coordinate encoding once a cell holds
// few enough points.
package kdtree

import (
	"math"
	"math/bits"

	"github.com/cocosip/draco-go/internal/draerr"
	"github.com/cocosip/draco-go/internal/ioutil"
	"github.com/cocosip/draco-go/internal/symbolcodec"
	"github.com/cocosip/draco-go/internal/transform"
)

// MaxPoints bounds the point count this codec accepts, per spec.md §5
// "failure semantics": num_points beyond this is rejected rather than
// risking count-field overflow during recursive splitting.
const MaxPoints = 1 << 28

// MaxBitDepth bounds the per-axis quantization bit depth.
const MaxBitDepth = 32

// leafThreshold is the point count at or below which a cell stops
// splitting and encodes its points directly.
const leafThreshold = 2

type bbox struct {
	lo, hi []int32
}

func (b bbox) span(axis int) int32 { return b.hi[axis] - b.lo[axis] }

// chooseAxis implements the compression-level-gated axis schedule: level 6
// and above greedily picks the widest axis of the current cell (closer to
// Draco's variance-driven selection); lower levels round-robin by depth,
// which is cheaper to compute and good enough at lower fidelity targets.
func chooseAxis(b bbox, depth int, dims int, level int) int {
	if level < 6 {
		return depth % dims
	}
	best := 0
	var bestSpan int32 = -1
	for a := 0; a < dims; a++ {
		if s := b.span(a); s > bestSpan {
			bestSpan = s
			best = a
		}
	}
	return best
}

// Encode quantizes points (each a dims-component float64 vector) to
// bitDepth bits per axis and writes the recursive bisection tree. The
// decoded point order is not guaranteed to match the input order: KD-tree
// point clouds carry no connectivity, so spec.md §5 does not require it.
func Encode(buf *ioutil.EncoderBuffer, points [][]float64, dims int, bitDepth int, compressionLevel int) error {
	if len(points) > MaxPoints {
		return draerr.DracoErrorf("kdtree.Encode", nil)
	}
	if bitDepth <= 0 || bitDepth > MaxBitDepth {
		return draerr.DracoErrorf("kdtree.Encode", nil)
	}

	buf.EncodeVarint(uint64(len(points)))
	buf.EncodeByte(byte(dims))
	buf.EncodeByte(byte(bitDepth))
	buf.EncodeByte(byte(compressionLevel))
	if len(points) == 0 {
		return nil
	}

	rng, origin := transform.ComputeRange(make([]float64, dims), points)
	if rng == 0 {
		rng = 1
	}
	q := &transform.Quantizer{Origin: origin, Range: rng, BitDepth: bitDepth}
	for _, o := range origin {
		buf.EncodeUint64LE(math.Float64bits(o))
	}
	buf.EncodeUint64LE(math.Float64bits(rng))

	pts := make([][]int32, len(points))
	for i, p := range points {
		pts[i] = q.Forward(p)
	}

	maxV := int32(1)<<uint(bitDepth) - 1
	root := bbox{lo: make([]int32, dims), hi: make([]int32, dims)}
	for a := 0; a < dims; a++ {
		root.hi[a] = maxV
	}
	return encodeNode(buf, pts, root, 0, dims, compressionLevel)
}

func encodeNode(buf *ioutil.EncoderBuffer, pts [][]int32, b bbox, depth, dims, level int) error {
	if len(pts) <= leafThreshold {
		return encodeLeaf(buf, pts, b, dims)
	}

	axis := chooseAxis(b, depth, dims, level)
	mid := b.lo[axis] + b.span(axis)/2

	left := pts[:0:0]
	right := pts[:0:0]
	for _, p := range pts {
		if p[axis] <= mid {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	if err := encodeCount(buf, uint32(len(left)), uint32(len(pts))); err != nil {
		return err
	}

	if len(left) > 0 {
		leftBox := b
		leftBox.hi = append([]int32(nil), b.hi...)
		leftBox.hi[axis] = mid
		if err := encodeNode(buf, left, leftBox, depth+1, dims, level); err != nil {
			return err
		}
	}
	if len(right) > 0 {
		rightBox := b
		rightBox.lo = append([]int32(nil), b.lo...)
		rightBox.lo[axis] = mid + 1
		if err := encodeNode(buf, right, rightBox, depth+1, dims, level); err != nil {
			return err
		}
	}
	return nil
}

// encodeLeaf directly encodes each point's coordinates relative to the
// cell's lower corner, fixed-width per axis (spec.md §5 "leaf remaining
// bits").
func encodeLeaf(buf *ioutil.EncoderBuffer, pts [][]int32, b bbox, dims int) error {
	bc := buf.StartBitEncoder(true)
	for a := 0; a < dims; a++ {
		width := bitWidth(uint32(b.span(a)))
		for _, p := range pts {
			bc.PutBits(uint32(p[a]-b.lo[a]), width)
		}
	}
	bc.Close()
	return nil
}

// encodeCount writes the left-subtree point count, symbol-coded over the
// alphabet {0..total}. spec.md §5 names three count encoders (direct,
// rANS, folded-32); internal/symbolcodec's tagged/raw cost comparison
// already picks between a bit-packed and an rANS-coded representation per
// call, which folds those three cases into the two this codec reuses
// throughout — see DESIGN.md.
func encodeCount(buf *ioutil.EncoderBuffer, left, total uint32) error {
	if total == 0 {
		return draerr.DracoErrorf("kdtree.encodeCount", nil)
	}
	return symbolcodec.EncodeSymbols(buf, []uint32{left}, 1, 10)
}

func decodeCount(dec *ioutil.DecoderBuffer) (uint32, error) {
	vals, err := symbolcodec.DecodeSymbols(dec, 1, 1)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func bitWidth(span uint32) uint {
	if span == 0 {
		return 0
	}
	return uint(bits.Len32(span))
}

// Decode is the inverse of Encode, returning dims-component float64 points
// in an order determined by the bisection traversal (not necessarily the
// encoder's input order).
func Decode(dec *ioutil.DecoderBuffer) ([][]float64, error) {
	numPoints64, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	dimsByte, err := dec.DecodeByte()
	if err != nil {
		return nil, err
	}
	bitDepthByte, err := dec.DecodeByte()
	if err != nil {
		return nil, err
	}
	levelByte, err := dec.DecodeByte()
	if err != nil {
		return nil, err
	}
	numPoints := int(numPoints64)
	dims := int(dimsByte)
	bitDepth := int(bitDepthByte)
	level := int(levelByte)
	if numPoints == 0 {
		return nil, nil
	}

	origin := make([]float64, dims)
	for i := range origin {
		v, err := dec.DecodeUint64LE()
		if err != nil {
			return nil, err
		}
		origin[i] = math.Float64frombits(v)
	}
	rngBits, err := dec.DecodeUint64LE()
	if err != nil {
		return nil, err
	}
	rng := math.Float64frombits(rngBits)
	q := &transform.Quantizer{Origin: origin, Range: rng, BitDepth: bitDepth}

	maxV := int32(1)<<uint(bitDepth) - 1
	root := bbox{lo: make([]int32, dims), hi: make([]int32, dims)}
	for a := 0; a < dims; a++ {
		root.hi[a] = maxV
	}

	pts, err := decodeNode(dec, root, 0, dims, numPoints, level)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = q.Inverse(p)
	}
	return out, nil
}

func decodeNode(dec *ioutil.DecoderBuffer, b bbox, depth, dims, numPoints, level int) ([][]int32, error) {
	if numPoints <= leafThreshold {
		return decodeLeaf(dec, b, dims, numPoints)
	}

	axis := chooseAxis(b, depth, dims, level)
	mid := b.lo[axis] + b.span(axis)/2

	leftCount, err := decodeCount(dec)
	if err != nil {
		return nil, err
	}
	rightCount := numPoints - int(leftCount)
	if rightCount < 0 {
		return nil, draerr.DracoErrorf("kdtree.decodeNode", nil)
	}

	var out [][]int32
	if leftCount > 0 {
		leftBox := b
		leftBox.hi = append([]int32(nil), b.hi...)
		leftBox.hi[axis] = mid
		left, err := decodeNode(dec, leftBox, depth+1, dims, int(leftCount), level)
		if err != nil {
			return nil, err
		}
		out = append(out, left...)
	}
	if rightCount > 0 {
		rightBox := b
		rightBox.lo = append([]int32(nil), b.lo...)
		rightBox.lo[axis] = mid + 1
		right, err := decodeNode(dec, rightBox, depth+1, dims, rightCount, level)
		if err != nil {
			return nil, err
		}
		out = append(out, right...)
	}
	return out, nil
}

func decodeLeaf(dec *ioutil.DecoderBuffer, b bbox, dims, numPoints int) ([][]int32, error) {
	bd, err := dec.StartBitDecoder(true)
	if err != nil {
		return nil, err
	}
	pts := make([][]int32, numPoints)
	for i := range pts {
		pts[i] = make([]int32, dims)
	}
	for a := 0; a < dims; a++ {
		width := bitWidth(uint32(b.span(a)))
		for i := 0; i < numPoints; i++ {
			v, err := bd.GetBits(width)
			if err != nil {
				return nil, err
			}
			pts[i][a] = b.lo[a] + int32(v)
		}
	}
	return pts, nil
}
