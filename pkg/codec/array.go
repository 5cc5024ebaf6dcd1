package codec

// SHA256Size is the byte length of Array(32), the only fixed-size array the
// schema uses.
const SHA256Size = 32

// SHA256Hash is Array(32): exactly 32 bytes, no length prefix.
type SHA256Hash [SHA256Size]byte

// Encode returns the raw 32 bytes.
func (h SHA256Hash) Encode() []byte {
	return h[:]
}

// DecodeSHA256Hash reads exactly 32 bytes.
func DecodeSHA256Hash(r *Reader) (SHA256Hash, error) {
	b, err := r.ReadBytes(SHA256Size)
	if err != nil {
		return SHA256Hash{}, err
	}
	var h SHA256Hash
	copy(h[:], b)
	return h, nil
}

// SkipSHA256Hash advances past a 32-byte array without reading it.
func SkipSHA256Hash(r *Reader) error {
	return r.Seek(SHA256Size)
}
