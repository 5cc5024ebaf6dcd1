package codec

import "encoding/binary"

// EncodeUint8 encodes an 8-bit unsigned integer.
func EncodeUint8(v uint8) []byte { return []byte{v} }

// DecodeUint8 decodes an 8-bit unsigned integer.
func DecodeUint8(r *Reader) (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SkipUint8 advances past an 8-bit unsigned integer.
func SkipUint8(r *Reader) error { return r.Seek(1) }

// EncodeUint16 encodes a big-endian 16-bit unsigned integer.
func EncodeUint16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// DecodeUint16 decodes a big-endian 16-bit unsigned integer.
func DecodeUint16(r *Reader) (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// SkipUint16 advances past a 16-bit unsigned integer.
func SkipUint16(r *Reader) error { return r.Seek(2) }

// EncodeUint32 encodes a big-endian 32-bit unsigned integer.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// DecodeUint32 decodes a big-endian 32-bit unsigned integer.
func DecodeUint32(r *Reader) (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// SkipUint32 advances past a 32-bit unsigned integer.
func SkipUint32(r *Reader) error { return r.Seek(4) }

// EncodeUint64 encodes a big-endian 64-bit unsigned integer.
func EncodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// DecodeUint64 decodes a big-endian 64-bit unsigned integer.
func DecodeUint64(r *Reader) (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// SkipUint64 advances past a 64-bit unsigned integer.
func SkipUint64(r *Reader) error { return r.Seek(8) }

// BytesNeeded returns the minimum number of big-endian bytes needed to
// represent max, restricted to the widths the wire format uses for length
// prefixes (1, 2, 4, or 8).
func BytesNeeded(max uint64) int {
	switch {
	case max <= 0xFF:
		return 1
	case max <= 0xFFFF:
		return 2
	case max <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// encodeUintN encodes v using exactly n bytes, n one of {1,2,4,8}.
func encodeUintN(v uint64, n int) []byte {
	switch n {
	case 1:
		return EncodeUint8(uint8(v))
	case 2:
		return EncodeUint16(uint16(v))
	case 4:
		return EncodeUint32(uint32(v))
	case 8:
		return EncodeUint64(v)
	default:
		panic("codec: unsupported marker size")
	}
}

// decodeUintN decodes a value encoded with exactly n bytes, n one of {1,2,4,8}.
func decodeUintN(r *Reader, n int) (uint64, error) {
	switch n {
	case 1:
		v, err := DecodeUint8(r)
		return uint64(v), err
	case 2:
		v, err := DecodeUint16(r)
		return uint64(v), err
	case 4:
		v, err := DecodeUint32(r)
		return uint64(v), err
	case 8:
		return DecodeUint64(r)
	default:
		panic("codec: unsupported marker size")
	}
}
