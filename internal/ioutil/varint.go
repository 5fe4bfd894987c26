package ioutil

// PutVarint appends v to dst using the 7-bit little-endian continuation
// convention used throughout the Draco wire format (LEB128-style, unsigned).
func PutVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// varintLen returns the number of bytes PutVarint would emit for v.
func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
