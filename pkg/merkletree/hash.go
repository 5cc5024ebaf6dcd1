package merkletree

import (
	"crypto/sha256"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// Distinguisher tags every hash computation with the role the input plays,
// so an empty-padding node, an internal node, and an assertion leaf can
// never be confused with one another even if their encoded bytes happened
// to coincide.
type Distinguisher uint8

const (
	DistinguisherHashEmptyInput     Distinguisher = 0
	DistinguisherHashNodeInput      Distinguisher = 1
	DistinguisherHashAssertionInput Distinguisher = 2
)

func (d Distinguisher) Encode() []byte { return codec.EncodeUint8(uint8(d)) }

// hashHeadSize is one SHA-256 compression block: HashHead is always
// zero-padded out to this width regardless of how short the distinguisher,
// issuer id, and batch number encoding is.
const hashHeadSize = 64

// HashHead is the common prefix of every hash input in the tree: a
// distinguisher, the issuing log's IssuerID, and the batch number, zero
// padded to one SHA-256 block. It is only ever constructed to be hashed, so
// only Encode is implemented — nothing in this system decodes a HashHead
// off the wire.
type HashHead struct {
	Distinguisher Distinguisher
	IssuerID      IssuerID
	BatchNumber   uint32
}

func (h HashHead) Encode() []byte {
	out := h.Distinguisher.Encode()
	out = append(out, h.IssuerID.Encode()...)
	out = append(out, codec.EncodeUint32(h.BatchNumber)...)
	if len(out) > hashHeadSize {
		panic("merkletree: hash head overflowed one SHA-256 block")
	}
	padded := make([]byte, hashHeadSize)
	copy(padded, out)
	return padded
}

// HashEmptyInput is hashed to produce the padding node used to balance a
// level with an odd number of nodes.
type HashEmptyInput struct {
	Head  HashHead
	Index uint64
	Level uint8
}

func (h HashEmptyInput) Encode() []byte {
	out := h.Head.Encode()
	out = append(out, codec.EncodeUint64(h.Index)...)
	out = append(out, codec.EncodeUint8(h.Level)...)
	return out
}

// HashNodeInput is hashed to produce an internal tree node from its two
// children.
type HashNodeInput struct {
	Head  HashHead
	Index uint64
	Level uint8
	Left  codec.SHA256Hash
	Right codec.SHA256Hash
}

func (h HashNodeInput) Encode() []byte {
	out := h.Head.Encode()
	out = append(out, codec.EncodeUint64(h.Index)...)
	out = append(out, codec.EncodeUint8(h.Level)...)
	out = append(out, h.Left.Encode()...)
	out = append(out, h.Right.Encode()...)
	return out
}

// HashAssertionInput is hashed to produce a leaf node from a batch
// assertion.
type HashAssertionInput struct {
	Head      HashHead
	Index     uint64
	Assertion assertion.Assertion
}

func (h HashAssertionInput) Encode() []byte {
	out := h.Head.Encode()
	out = append(out, codec.EncodeUint64(h.Index)...)
	out = append(out, h.Assertion.Encode()...)
	return out
}

// sum hashes an Encodable's wire encoding with SHA-256.
func sum(e codec.Encodable) codec.SHA256Hash {
	return codec.SHA256Hash(sha256.Sum256(e.Encode()))
}
