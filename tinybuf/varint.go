package tinybuf

// Unsigned base-128 varints, least-significant group first: each byte
// carries 7 payload bits and a continuation bit in the MSB. Length and
// count prefixes on the wire all use this encoding.

// MaxVarintLen is the maximum number of bytes a varint may occupy on the
// wire. Ten bytes cover any uint64; anything longer is rejected so a
// hostile length prefix cannot make the decoder scan unboundedly.
const MaxVarintLen = 10

// AppendUvarint appends the varint encoding of v to buf.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// Uvarint reads a varint from buf starting at off, returning the value and
// the offset just past it. A buffer that ends mid-varint is a
// TruncatedBufferError; a varint running past MaxVarintLen is an
// InvalidEncodingError.
func Uvarint(buf []byte, off int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= MaxVarintLen {
			return 0, off, &InvalidEncodingError{Offset: off, Reason: "varint too long"}
		}
		if off+i >= len(buf) {
			return 0, off, &TruncatedBufferError{Offset: off, Need: i + 1, Have: len(buf) - off}
		}
		b := buf[off+i]
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, off + i + 1, nil
		}
		shift += 7
	}
}
