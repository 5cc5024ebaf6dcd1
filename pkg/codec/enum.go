package codec

// DecodeEnum16 reads a 16-bit enum value and checks it against the set of
// admissible values; decoding an unknown value is a parse error, never a
// validation error, since the set is fixed by the wire schema itself.
func DecodeEnum16(r *Reader, valid func(uint16) bool) (uint16, error) {
	start := r.Pos()
	v, err := DecodeUint16(r)
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, NewParsingError(start, r.Pos(), "invalid enum value %d", v)
	}
	return v, nil
}

// DecodeEnum8 is the 8-bit-width analogue of DecodeEnum16.
func DecodeEnum8(r *Reader, valid func(uint8) bool) (uint8, error) {
	start := r.Pos()
	v, err := DecodeUint8(r)
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, NewParsingError(start, r.Pos(), "invalid enum value %d", v)
	}
	return v, nil
}
