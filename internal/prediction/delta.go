package prediction

// EncodeNone returns the correction stream for MethodNone: correction == value.
func EncodeNone(values [][]int32) [][]int32 {
	out := make([][]int32, len(values))
	for i, v := range values {
		out[i] = append([]int32(nil), v...)
	}
	return out
}

// DecodeNone is the inverse of EncodeNone.
func DecodeNone(corrections [][]int32) [][]int32 { return EncodeNone(corrections) }

// EncodeDifference predicts each entry from the previous one in data-id
// order; the first entry predicts against zero (spec.md §4.8 "Difference").
func EncodeDifference(values [][]int32) [][]int32 {
	numComponents := len(values[0])
	corrections := make([][]int32, len(values))
	prev := make([]int32, numComponents)
	for i, v := range values {
		c := make([]int32, numComponents)
		for k := range v {
			c[k] = v[k] - prev[k]
		}
		corrections[i] = c
		prev = v
	}
	return corrections
}

// DecodeDifference is the inverse of EncodeDifference, applied
// entry-by-entry in decoded order.
func DecodeDifference(corrections [][]int32) [][]int32 {
	numComponents := len(corrections[0])
	values := make([][]int32, len(corrections))
	prev := make([]int32, numComponents)
	for i, c := range corrections {
		v := make([]int32, numComponents)
		for k := range c {
			v[k] = prev[k] + c[k]
		}
		values[i] = v
		prev = v
	}
	return values
}
