// Package validitywindow implements the signed sliding window of recent
// tree roots that certificate verification checks a Merkle path against:
// TreeHeads, ValidityWindow, LabeledValidityWindow, and the Ed25519
// signing/verification and rollover logic around them.
package validitywindow

import (
	"crypto/ed25519"
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
)

const (
	// BatchDuration is the nominal seconds between successive batches.
	BatchDuration = 3600
	// Lifetime is the seconds a certificate remains valid after issuance.
	Lifetime = 60 * 60 * 24 * 14
	// Size is the number of tree roots carried in a validity window:
	// floor(Lifetime/BatchDuration) + 1.
	Size = Lifetime/BatchDuration + 1
)

// TreeHeads is a fixed-size run of Size SHA-256 hashes: the most recent
// batch's root first, followed by progressively older roots, zero-padded
// out to Size entries when fewer are available yet (early in a log's life).
// Decoding always reads exactly Size entries, padding included.
type TreeHeads []codec.SHA256Hash

func (t TreeHeads) Validate() error {
	if len(t) > Size {
		return codec.NewValidationError("tree heads length %d exceeds window size %d", len(t), Size)
	}
	return nil
}

func (t TreeHeads) Encode() []byte {
	out := make([]byte, 0, Size*codec.SHA256Size)
	for _, h := range t {
		out = append(out, h.Encode()...)
	}
	for i := len(t); i < Size; i++ {
		out = append(out, make([]byte, codec.SHA256Size)...)
	}
	return out
}

func DecodeTreeHeads(r *codec.Reader) (TreeHeads, error) {
	heads := make(TreeHeads, Size)
	for i := range heads {
		h, err := codec.DecodeSHA256Hash(r)
		if err != nil {
			return nil, err
		}
		heads[i] = h
	}
	return heads, nil
}

func SkipTreeHeads(r *codec.Reader) error {
	return r.Seek(Size * codec.SHA256Size)
}

// ValidityWindow pairs a batch number with the window of roots signed
// alongside it.
type ValidityWindow struct {
	BatchNumber uint32
	TreeHeads   TreeHeads
}

func (w ValidityWindow) Encode() []byte {
	out := codec.EncodeUint32(w.BatchNumber)
	out = append(out, w.TreeHeads.Encode()...)
	return out
}

func DecodeValidityWindow(r *codec.Reader) (ValidityWindow, error) {
	var w ValidityWindow
	bn, err := codec.DecodeUint32(r)
	if err != nil {
		return w, err
	}
	heads, err := DecodeTreeHeads(r)
	if err != nil {
		return w, err
	}
	w.BatchNumber = bn
	w.TreeHeads = heads
	return w, nil
}

func SkipValidityWindow(r *codec.Reader) error {
	if err := codec.SkipUint32(r); err != nil {
		return err
	}
	return SkipTreeHeads(r)
}

// label is the fixed 32-byte domain-separation literal prefixed to every
// signed validity window, preventing a signature over this structure from
// being replayed as a signature over any other MTC message type.
var label = mustLabel("Merkle Tree Crts ValidityWindow\x00")

func mustLabel(s string) [32]byte {
	var out [32]byte
	if len(s) != 32 {
		panic(fmt.Sprintf("validitywindow: label literal is %d bytes, want 32", len(s)))
	}
	copy(out[:], s)
	return out
}

// LabeledValidityWindow is the exact byte sequence that gets Ed25519-signed:
// the fixed label, the issuer id, and the window itself.
type LabeledValidityWindow struct {
	IssuerID merkletree.IssuerID
	Window   ValidityWindow
}

func (l LabeledValidityWindow) Encode() []byte {
	out := append([]byte(nil), label[:]...)
	out = append(out, l.IssuerID.Encode()...)
	out = append(out, l.Window.Encode()...)
	return out
}

const (
	signatureMin = 1
	signatureMax = 65535
)

var signatureMarker = codec.BytesNeeded(signatureMax)

// Signature is OpaqueVector(1, 65535) carrying a raw Ed25519 signature.
type Signature []byte

func (s Signature) Validate() error {
	if len(s) < signatureMin || len(s) > signatureMax {
		return codec.NewValidationError("signature length %d outside [%d,%d]", len(s), signatureMin, signatureMax)
	}
	return nil
}

func (s Signature) Encode() []byte {
	return codec.EncodeOpaqueVector(s, signatureMarker)
}

func DecodeSignature(r *codec.Reader) (Signature, error) {
	b, err := codec.DecodeOpaqueVector(r, signatureMarker, signatureMin, signatureMax)
	if err != nil {
		return nil, err
	}
	return Signature(b), nil
}

func SkipSignature(r *codec.Reader) error {
	return codec.SkipOpaqueVector(r, signatureMarker)
}

// SignedValidityWindow is a ValidityWindow together with the issuer's
// signature over its LabeledValidityWindow encoding.
type SignedValidityWindow struct {
	Window    ValidityWindow
	Signature Signature
}

func (s SignedValidityWindow) Encode() []byte {
	out := s.Window.Encode()
	out = append(out, s.Signature.Encode()...)
	return out
}

func DecodeSignedValidityWindow(r *codec.Reader) (SignedValidityWindow, error) {
	var s SignedValidityWindow
	w, err := DecodeValidityWindow(r)
	if err != nil {
		return s, err
	}
	sig, err := DecodeSignature(r)
	if err != nil {
		return s, err
	}
	s.Window = w
	s.Signature = sig
	return s, nil
}

func SkipSignedValidityWindow(r *codec.Reader) error {
	if err := SkipValidityWindow(r); err != nil {
		return err
	}
	return SkipSignature(r)
}

// Sign produces a SignedValidityWindow for batchNumber with the given
// (new) root prepended to the window. When previous is nil, batchNumber
// must be 0 and the window starts out holding only root. Otherwise
// batchNumber must be exactly one more than previous's, previous's own
// signature must verify under the issuer's public key, and the window's
// tail is previous's heads with its oldest entry dropped — so the window
// never grows past Size and never shrinks below it once full.
func Sign(priv ed25519.PrivateKey, issuerID merkletree.IssuerID, batchNumber uint32, root codec.SHA256Hash, previous *SignedValidityWindow) (SignedValidityWindow, error) {
	var heads TreeHeads

	if previous == nil {
		if batchNumber != 0 {
			return SignedValidityWindow{}, fmt.Errorf("validitywindow: batch number must be 0 when there is no previous window, got %d", batchNumber)
		}
		heads = TreeHeads{root}
	} else {
		if batchNumber != previous.Window.BatchNumber+1 {
			return SignedValidityWindow{}, fmt.Errorf("validitywindow: batch number %d does not follow previous batch %d", batchNumber, previous.Window.BatchNumber)
		}
		pub := priv.Public().(ed25519.PublicKey)
		prevLabeled := LabeledValidityWindow{IssuerID: issuerID, Window: previous.Window}
		if !ed25519.Verify(pub, prevLabeled.Encode(), previous.Signature) {
			return SignedValidityWindow{}, fmt.Errorf("validitywindow: cannot verify the signature of the previous validity window")
		}
		// TreeHeads is conceptually always Size entries wide once signed —
		// the wire form zero-pads out to Size and decoding always reads
		// exactly that many — so pad before trimming the oldest entry, or
		// an in-memory window built without a decode round-trip would stay
		// stuck at whatever length it started at instead of growing to Size.
		prevHeads := padToSize(previous.Window.TreeHeads)
		tail := prevHeads[:len(prevHeads)-1]
		heads = append(TreeHeads{root}, tail...)
	}
	heads = padToSize(heads)

	window := ValidityWindow{BatchNumber: batchNumber, TreeHeads: heads}
	labeled := LabeledValidityWindow{IssuerID: issuerID, Window: window}
	sig := ed25519.Sign(priv, labeled.Encode())

	return SignedValidityWindow{Window: window, Signature: Signature(sig)}, nil
}

// padToSize returns heads extended with zero hashes out to exactly Size
// entries, matching what a decode of this window's wire encoding would
// produce.
func padToSize(heads TreeHeads) TreeHeads {
	if len(heads) >= Size {
		return heads[:Size]
	}
	out := make(TreeHeads, Size)
	copy(out, heads)
	return out
}

// Verify checks sw's signature against the expected issuer id under pub.
func Verify(pub ed25519.PublicKey, issuerID merkletree.IssuerID, sw SignedValidityWindow) error {
	labeled := LabeledValidityWindow{IssuerID: issuerID, Window: sw.Window}
	if !ed25519.Verify(pub, labeled.Encode(), sw.Signature) {
		return fmt.Errorf("validitywindow: invalid signature")
	}
	return nil
}
