package codec

// EncodeOpaqueVector length-prefixes value with a big-endian integer of
// width markerSize (the minimum width that can hold max, per BytesNeeded).
func EncodeOpaqueVector(value []byte, markerSize int) []byte {
	out := make([]byte, 0, markerSize+len(value))
	out = append(out, encodeUintN(uint64(len(value)), markerSize)...)
	out = append(out, value...)
	return out
}

// DecodeOpaqueVector reads the length prefix, validates it against
// [min, max], then reads that many bytes.
func DecodeOpaqueVector(r *Reader, markerSize, min, max int) ([]byte, error) {
	start := r.Pos()
	n, err := decodeUintN(r, markerSize)
	if err != nil {
		return nil, err
	}
	if int(n) < min || int(n) > max {
		return nil, NewParsingError(start, r.Pos(), "invalid opaque vector size %d outside [%d,%d]", n, min, max)
	}
	return r.ReadBytes(int(n))
}

// SkipOpaqueVector reads the length prefix and seeks forward by that many
// bytes without allocating or parsing the contents.
func SkipOpaqueVector(r *Reader, markerSize int) error {
	n, err := decodeUintN(r, markerSize)
	if err != nil {
		return err
	}
	return r.Seek(int(n))
}
