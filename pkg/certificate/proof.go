// Package certificate implements MTC certificates: the trust anchor and
// inclusion proof that bind an Assertion to a Merkle tree root, their
// construction from a built tree, and verification against a signed
// validity window.
package certificate

import (
	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
)

// ProofType selects the inclusion-proof scheme a certificate uses. This
// implementation supports only the one the schema defines.
type ProofType uint16

const ProofTypeMerkleTreeSHA256 ProofType = 0

func (p ProofType) Encode() []byte { return codec.EncodeUint16(uint16(p)) }

func DecodeProofType(r *codec.Reader) (ProofType, error) {
	v, err := codec.DecodeEnum16(r, func(v uint16) bool { return v == uint16(ProofTypeMerkleTreeSHA256) })
	return ProofType(v), err
}

func SkipProofType(r *codec.Reader) error { return codec.SkipUint16(r) }

const (
	trustAnchorDataMin = 0
	trustAnchorDataMax = 255
)

var trustAnchorDataMarker = codec.BytesNeeded(trustAnchorDataMax)

// TrustAnchorData is the generic, not-yet-interpreted form of
// TrustAnchor.TrustAnchorData: OpaqueVector(0, 255). Once the enclosing
// TrustAnchor's ProofType is known, its bytes are re-parsed into the
// concrete type that proof type defines (MerkleTreeTrustAnchor here).
type TrustAnchorData []byte

func (t TrustAnchorData) Encode() []byte {
	return codec.EncodeOpaqueVector(t, trustAnchorDataMarker)
}

func DecodeTrustAnchorData(r *codec.Reader) (TrustAnchorData, error) {
	b, err := codec.DecodeOpaqueVector(r, trustAnchorDataMarker, trustAnchorDataMin, trustAnchorDataMax)
	if err != nil {
		return nil, err
	}
	return TrustAnchorData(b), nil
}

const (
	proofDataMin = 0
	proofDataMax = 65535
)

var proofDataMarker = codec.BytesNeeded(proofDataMax)

// ProofData is the generic form of Proof.ProofData: OpaqueVector(0, 65535),
// re-parsed the same way as TrustAnchorData once the proof type is known.
type ProofData []byte

func (p ProofData) Encode() []byte {
	return codec.EncodeOpaqueVector(p, proofDataMarker)
}

func DecodeProofData(r *codec.Reader) (ProofData, error) {
	b, err := codec.DecodeOpaqueVector(r, proofDataMarker, proofDataMin, proofDataMax)
	if err != nil {
		return nil, err
	}
	return ProofData(b), nil
}

// MerkleTreeTrustAnchor identifies the issuer and batch a merkle_tree_sha256
// certificate was issued from. Its encoding is itself wrapped in a
// TrustAnchorData-width opaque vector when embedded in a TrustAnchor, so a
// decoder can always skip a TrustAnchor generically before knowing whether
// it understands the proof type.
type MerkleTreeTrustAnchor struct {
	IssuerID    merkletree.IssuerID
	BatchNumber uint32
}

func (m MerkleTreeTrustAnchor) encodeFields() []byte {
	out := m.IssuerID.Encode()
	out = append(out, codec.EncodeUint32(m.BatchNumber)...)
	return out
}

func (m MerkleTreeTrustAnchor) Encode() []byte {
	return codec.WrapInOpaqueVector(m.encodeFields(), trustAnchorDataMarker)
}

func decodeMerkleTreeTrustAnchorFields(r *codec.Reader) (MerkleTreeTrustAnchor, error) {
	var m MerkleTreeTrustAnchor
	id, err := merkletree.DecodeIssuerID(r)
	if err != nil {
		return m, err
	}
	bn, err := codec.DecodeUint32(r)
	if err != nil {
		return m, err
	}
	m.IssuerID = id
	m.BatchNumber = bn
	return m, nil
}

// MerkleTreeProofSHA256 is the inclusion proof for the merkle_tree_sha256
// scheme: the leaf index and its sibling path, wrapped the same
// doubly-opaque way as MerkleTreeTrustAnchor.
type MerkleTreeProofSHA256 struct {
	Index uint64
	Path  []codec.SHA256Hash
}

const (
	sha256VectorMin = 0
	sha256VectorMax = 65535
)

var sha256VectorMarker = codec.BytesNeeded(sha256VectorMax)

func (m MerkleTreeProofSHA256) encodeFields() []byte {
	out := codec.EncodeUint64(m.Index)
	out = append(out, codec.EncodeVector(m.Path, sha256VectorMarker)...)
	return out
}

func (m MerkleTreeProofSHA256) Encode() []byte {
	return codec.WrapInOpaqueVector(m.encodeFields(), proofDataMarker)
}

func decodeMerkleTreeProofSHA256Fields(r *codec.Reader) (MerkleTreeProofSHA256, error) {
	var m MerkleTreeProofSHA256
	idx, err := codec.DecodeUint64(r)
	if err != nil {
		return m, err
	}
	path, err := codec.DecodeVector(r, sha256VectorMarker, sha256VectorMin, sha256VectorMax, codec.DecodeSHA256Hash)
	if err != nil {
		return m, err
	}
	m.Index = idx
	m.Path = path
	return m, nil
}

// TrustAnchor names the proof scheme and carries its scheme-specific trust
// data. TrustAnchorData always holds the raw opaque bytes; MerkleTreeData is
// populated only after the two-stage decode in DecodeProof re-parses them
// (see Proof below), mirroring the reference decoder's behavior of trying
// the generic shape first and only then the concrete one.
type TrustAnchor struct {
	ProofType       ProofType
	TrustAnchorData TrustAnchorData
	MerkleTreeData  MerkleTreeTrustAnchor
}

// Encode emits the concrete MerkleTreeTrustAnchor encoding when the proof
// type selects it, falling back to the raw opaque TrustAnchorData
// otherwise; this is what lets a freshly-built TrustAnchor (which never
// populates TrustAnchorData) and a decoded one encode identically.
func (t TrustAnchor) Encode() []byte {
	out := t.ProofType.Encode()
	if t.ProofType == ProofTypeMerkleTreeSHA256 {
		out = append(out, t.MerkleTreeData.Encode()...)
	} else {
		out = append(out, t.TrustAnchorData.Encode()...)
	}
	return out
}

func decodeTrustAnchorGeneric(r *codec.Reader) (TrustAnchor, error) {
	var t TrustAnchor
	pt, err := DecodeProofType(r)
	if err != nil {
		return t, err
	}
	data, err := DecodeTrustAnchorData(r)
	if err != nil {
		return t, err
	}
	t.ProofType = pt
	t.TrustAnchorData = data
	return t, nil
}

func SkipTrustAnchor(r *codec.Reader) error {
	if err := SkipProofType(r); err != nil {
		return err
	}
	return codec.SkipOpaqueVector(r, trustAnchorDataMarker)
}

// Proof carries a TrustAnchor and the scheme-specific inclusion data.
// Mirrors TrustAnchor's two-layer shape: ProofData always holds the raw
// opaque bytes, MerkleTreeProof is populated by the second decode stage.
type Proof struct {
	TrustAnchor     TrustAnchor
	ProofData       ProofData
	MerkleTreeProof MerkleTreeProofSHA256
}

// Encode mirrors TrustAnchor.Encode's concrete-over-generic preference for
// the proof data field.
func (p Proof) Encode() []byte {
	out := p.TrustAnchor.Encode()
	if p.TrustAnchor.ProofType == ProofTypeMerkleTreeSHA256 {
		out = append(out, p.MerkleTreeProof.Encode()...)
	} else {
		out = append(out, p.ProofData.Encode()...)
	}
	return out
}

// DecodeProof parses the outer Proof generically, then — if the trust
// anchor names the merkle_tree_sha256 scheme — re-parses TrustAnchorData
// and ProofData as MerkleTreeTrustAnchor and MerkleTreeProofSHA256. Any
// failure in that second stage is reported as a parse error spanning the
// whole outer Proof, not just the inner field, since a caller that doesn't
// understand this proof type has no way to recover a sub-range.
func DecodeProof(r *codec.Reader) (Proof, error) {
	start := r.Pos()

	ta, err := decodeTrustAnchorGeneric(r)
	if err != nil {
		return Proof{}, err
	}
	pd, err := DecodeProofData(r)
	if err != nil {
		return Proof{}, err
	}
	p := Proof{TrustAnchor: ta, ProofData: pd}

	if ta.ProofType == ProofTypeMerkleTreeSHA256 {
		inner := codec.NewReader(ta.TrustAnchorData)
		mta, err := decodeMerkleTreeTrustAnchorFields(inner)
		if err != nil {
			return Proof{}, codec.NewParsingError(start, r.Pos(), "cannot decode merkle tree trust anchor: %v", err)
		}
		if inner.Remaining() != 0 {
			return Proof{}, codec.NewParsingError(start, r.Pos(), "merkle tree trust anchor left %d trailing bytes", inner.Remaining())
		}

		innerProof := codec.NewReader(pd)
		mp, err := decodeMerkleTreeProofSHA256Fields(innerProof)
		if err != nil {
			return Proof{}, codec.NewParsingError(start, r.Pos(), "cannot decode merkle tree proof: %v", err)
		}
		if innerProof.Remaining() != 0 {
			return Proof{}, codec.NewParsingError(start, r.Pos(), "merkle tree proof left %d trailing bytes", innerProof.Remaining())
		}

		p.TrustAnchor.MerkleTreeData = mta
		p.MerkleTreeProof = mp
	}

	return p, nil
}

func SkipProof(r *codec.Reader) error {
	if err := SkipTrustAnchor(r); err != nil {
		return err
	}
	return codec.SkipOpaqueVector(r, proofDataMarker)
}

// BikeshedCertificate binds an Assertion to a Proof of its inclusion in an
// issuer's Merkle tree. ("Bikeshed" is the schema's own placeholder name
// for the one certificate type it currently defines.)
type BikeshedCertificate struct {
	Assertion assertion.Assertion
	Proof     Proof
}

func (c BikeshedCertificate) Encode() []byte {
	out := c.Assertion.Encode()
	out = append(out, c.Proof.Encode()...)
	return out
}

func DecodeBikeshedCertificate(r *codec.Reader) (BikeshedCertificate, error) {
	var c BikeshedCertificate
	a, err := assertion.DecodeAssertion(r)
	if err != nil {
		return c, err
	}
	p, err := DecodeProof(r)
	if err != nil {
		return c, err
	}
	c.Assertion = a
	c.Proof = p
	return c, nil
}

func SkipBikeshedCertificate(r *codec.Reader) error {
	if err := assertion.SkipAssertion(r); err != nil {
		return err
	}
	return SkipProof(r)
}

// CreateProof builds the merkle_tree_sha256 Proof for leaf index i of tree,
// identifying the batch it was issued from.
func CreateProof(tree merkletree.Tree, issuerID merkletree.IssuerID, batchNumber uint32, index uint64) Proof {
	path := tree.Path(index)
	return Proof{
		TrustAnchor: TrustAnchor{
			ProofType:      ProofTypeMerkleTreeSHA256,
			MerkleTreeData: MerkleTreeTrustAnchor{IssuerID: issuerID, BatchNumber: batchNumber},
		},
		MerkleTreeProof: MerkleTreeProofSHA256{Index: index, Path: path},
	}
}

// CreateCertificate builds the certificate for assertion at leaf index i.
func CreateCertificate(a assertion.Assertion, tree merkletree.Tree, issuerID merkletree.IssuerID, batchNumber uint32, index uint64) BikeshedCertificate {
	return BikeshedCertificate{Assertion: a, Proof: CreateProof(tree, issuerID, batchNumber, index)}
}

// CreateProofs builds the merkle_tree_sha256 proof for every leaf in tree,
// in leaf order.
func CreateProofs(tree merkletree.Tree, issuerID merkletree.IssuerID, batchNumber uint32, n int) []Proof {
	out := make([]Proof, n)
	for i := 0; i < n; i++ {
		out[i] = CreateProof(tree, issuerID, batchNumber, uint64(i))
	}
	return out
}
