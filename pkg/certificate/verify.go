package certificate

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

func verificationErrorf(format string, args ...any) *VerificationError {
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}

// Verify checks cert against signedWindow under the expected issuer id and
// public key, following the reference procedure exactly:
//
//  1. The window's signature must verify under pub, labeled with the
//     caller-supplied (expected) issuerID — not whatever issuer id the
//     certificate itself claims. This is what binds the certificate to a
//     specific, trusted issuer rather than trusting self-identification.
//  2. The certificate's proof type must be merkle_tree_sha256.
//  3. The certificate's embedded issuer id must match the expected one.
//  4. The certificate's batch number must not be from the future and must
//     not have aged out of the window.
//  5. Recomputing the Merkle path from the assertion and the proof's
//     sibling list must land on the root recorded at the window offset
//     corresponding to the certificate's batch number.
func Verify(cert BikeshedCertificate, signedWindow validitywindow.SignedValidityWindow, issuerID merkletree.IssuerID, pub ed25519.PublicKey) error {
	if err := validitywindow.Verify(pub, issuerID, signedWindow); err != nil {
		return &InvalidSignature{Reason: err.Error()}
	}

	if cert.Proof.TrustAnchor.ProofType != ProofTypeMerkleTreeSHA256 {
		return verificationErrorf("unsupported proof type %d", cert.Proof.TrustAnchor.ProofType)
	}

	trustAnchor := cert.Proof.TrustAnchor.MerkleTreeData
	if !bytes.Equal(trustAnchor.IssuerID, issuerID) {
		return verificationErrorf("unrecognized certificate issuer")
	}

	certBatchNumber := trustAnchor.BatchNumber
	windowBatchNumber := signedWindow.Window.BatchNumber

	if certBatchNumber > windowBatchNumber {
		return verificationErrorf("certificate is from the future")
	}

	oldestValid := int64(windowBatchNumber) - int64(validitywindow.Size)
	if oldestValid < 0 {
		oldestValid = 0
	}
	if int64(certBatchNumber) < oldestValid {
		return verificationErrorf("this certificate has expired")
	}

	assertionHead := merkletree.HashHead{Distinguisher: merkletree.DistinguisherHashAssertionInput, IssuerID: issuerID, BatchNumber: certBatchNumber}
	nodeHead := merkletree.HashHead{Distinguisher: merkletree.DistinguisherHashNodeInput, IssuerID: issuerID, BatchNumber: certBatchNumber}

	index := cert.Proof.MerkleTreeProof.Index
	h := codec.SHA256Hash(sha256.Sum256(merkletree.HashAssertionInput{Head: assertionHead, Index: index, Assertion: cert.Assertion}.Encode()))

	remaining := index
	for i, sibling := range cert.Proof.MerkleTreeProof.Path {
		var node merkletree.HashNodeInput
		if remaining%2 == 1 {
			node = merkletree.HashNodeInput{Head: nodeHead, Index: remaining >> 1, Level: uint8(i + 1), Left: sibling, Right: h}
		} else {
			node = merkletree.HashNodeInput{Head: nodeHead, Index: remaining >> 1, Level: uint8(i + 1), Left: h, Right: sibling}
		}
		h = codec.SHA256Hash(sha256.Sum256(node.Encode()))
		remaining >>= 1
	}
	if remaining != 0 {
		return verificationErrorf("cannot verify certificate: incorrect path")
	}

	expectedIndex := windowBatchNumber - certBatchNumber
	heads := signedWindow.Window.TreeHeads
	if int(expectedIndex) >= len(heads) {
		return verificationErrorf("validity window does not carry a root for batch %d", certBatchNumber)
	}
	if h != heads[expectedIndex] {
		return verificationErrorf("computed root does not match the signed validity window")
	}

	return nil
}
