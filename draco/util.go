package draco

import "math"

func float64bitsLE(v float64) uint64 { return math.Float64bits(v) }
