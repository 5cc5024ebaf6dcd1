package certificate

import (
	"crypto/ed25519"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBatch(t *testing.T, n int) (assertion.Assertions, merkletree.Tree) {
	t.Helper()
	assertions := make(assertion.Assertions, n)
	for i := range assertions {
		a, err := assertion.CreateAssertion([]byte{byte(i)}, assertion.CreateAssertionOptions{
			DNSNames: []string{string(rune('a'+i)) + ".example.com"},
		})
		require.NoError(t, err)
		assertions[i] = a
	}
	tree, err := merkletree.Build(assertions, merkletree.IssuerID("issuer-1"), 0)
	require.NoError(t, err)
	return assertions, tree
}

func TestVerifySucceedsForEveryLeaf(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	issuerID := merkletree.IssuerID("issuer-1")

	assertions, tree := buildBatch(t, 10)
	sw, err := validitywindow.Sign(priv, issuerID, 0, tree.Root(), nil)
	require.NoError(t, err)

	for i, a := range assertions {
		cert := CreateCertificate(a, tree, issuerID, 0, uint64(i))
		require.NoError(t, Verify(cert, sw, issuerID, pub), "leaf %d", i)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	issuerID := merkletree.IssuerID("issuer-1")

	assertions, tree := buildBatch(t, 3)
	sw, err := validitywindow.Sign(priv, issuerID, 0, tree.Root(), nil)
	require.NoError(t, err)

	cert := CreateCertificate(assertions[0], tree, issuerID, 0, 0)
	err = Verify(cert, sw, merkletree.IssuerID("issuer-2"), pub)
	require.Error(t, err)
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	issuerID := merkletree.IssuerID("issuer-1")

	assertions, tree := buildBatch(t, 10)
	sw, err := validitywindow.Sign(priv, issuerID, 0, tree.Root(), nil)
	require.NoError(t, err)

	cert := CreateCertificate(assertions[0], tree, issuerID, 0, 0)
	cert.Proof.MerkleTreeProof.Path[0][0] ^= 0xFF

	err = Verify(cert, sw, issuerID, pub)
	require.Error(t, err)
}

func TestVerifyRejectsFutureBatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	issuerID := merkletree.IssuerID("issuer-1")

	assertions, tree := buildBatch(t, 3)
	sw, err := validitywindow.Sign(priv, issuerID, 0, tree.Root(), nil)
	require.NoError(t, err)

	cert := CreateCertificate(assertions[0], tree, issuerID, 1, 0) // batch 1, window only knows batch 0
	err = Verify(cert, sw, issuerID, pub)
	require.Error(t, err)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
}

func TestVerifyRejectsExpiredBatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	issuerID := merkletree.IssuerID("issuer-1")

	assertions0, tree0 := buildBatch(t, 1)
	sw, err := validitywindow.Sign(priv, issuerID, 0, tree0.Root(), nil)
	require.NoError(t, err)

	for batch := uint32(1); batch <= uint32(validitywindow.Size)+1; batch++ {
		_, tree := buildBatch(t, 1)
		sw, err = validitywindow.Sign(priv, issuerID, batch, tree.Root(), &sw)
		require.NoError(t, err)
	}

	// batch 0's certificate is now older than the window retains.
	expiredCert := CreateCertificate(assertions0[0], tree0, issuerID, 0, 0)
	err = Verify(expiredCert, sw, issuerID, pub)
	require.Error(t, err)
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "expired")
}

func TestBikeshedCertificateRoundTrip(t *testing.T) {
	_, tree := buildBatchNoSign(t, 5)
	assertions := mustAssertionsForRoundTrip(t, 5)
	cert := CreateCertificate(assertions[2], tree, merkletree.IssuerID("issuer-1"), 9, 2)

	enc := cert.Encode()
	r := codec.NewReader(enc)
	got, err := DecodeBikeshedCertificate(r)
	require.NoError(t, err)
	assert.Equal(t, len(enc), r.Pos())
	assert.Equal(t, cert.Assertion, got.Assertion)
	assert.Equal(t, cert.Proof.TrustAnchor.ProofType, got.Proof.TrustAnchor.ProofType)
	assert.Equal(t, cert.Proof.TrustAnchor.MerkleTreeData, got.Proof.TrustAnchor.MerkleTreeData)
	assert.Equal(t, cert.Proof.MerkleTreeProof, got.Proof.MerkleTreeProof)
}

func mustAssertionsForRoundTrip(t *testing.T, n int) assertion.Assertions {
	t.Helper()
	assertions := make(assertion.Assertions, n)
	for i := range assertions {
		a, err := assertion.CreateAssertion([]byte{byte(i)}, assertion.CreateAssertionOptions{
			DNSNames: []string{string(rune('a'+i)) + ".example.com"},
		})
		require.NoError(t, err)
		assertions[i] = a
	}
	return assertions
}

func buildBatchNoSign(t *testing.T, n int) (assertion.Assertions, merkletree.Tree) {
	t.Helper()
	assertions := mustAssertionsForRoundTrip(t, n)
	tree, err := merkletree.Build(assertions, merkletree.IssuerID("issuer-1"), 9)
	require.NoError(t, err)
	return assertions, tree
}
