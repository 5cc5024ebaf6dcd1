package validitywindow

import (
	"crypto/ed25519"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, priv
}

func hashOf(b byte) codec.SHA256Hash {
	var h codec.SHA256Hash
	h[0] = b
	return h
}

func TestSignGenesisWindow(t *testing.T) {
	pub, priv := genKey(t)
	issuerID := merkletree.IssuerID("issuer")

	sw, err := Sign(priv, issuerID, 0, hashOf(1), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), sw.Window.BatchNumber)
	require.Len(t, sw.Window.TreeHeads, Size)
	assert.Equal(t, hashOf(1), sw.Window.TreeHeads[0])
	assert.Equal(t, codec.SHA256Hash{}, sw.Window.TreeHeads[Size-1])
	require.NoError(t, Verify(pub, issuerID, sw))
}

func TestSignRejectsNonZeroGenesisBatch(t *testing.T) {
	_, priv := genKey(t)
	_, err := Sign(priv, merkletree.IssuerID("issuer"), 1, hashOf(1), nil)
	require.Error(t, err)
}

func TestSignRollsForwardDroppingOldest(t *testing.T) {
	pub, priv := genKey(t)
	issuerID := merkletree.IssuerID("issuer")

	sw, err := Sign(priv, issuerID, 0, hashOf(0), nil)
	require.NoError(t, err)

	for i := uint32(1); i <= uint32(Size)+5; i++ {
		sw, err = Sign(priv, issuerID, i, hashOf(byte(i)), &sw)
		require.NoError(t, err)
		require.NoError(t, Verify(pub, issuerID, sw))
		// Once a window has rolled over at least once it is always exactly
		// Size entries wide: real roots accumulate from the front, zero
		// padding recedes from the back, the total length never changes.
		assert.Len(t, sw.Window.TreeHeads, Size)
	}
	assert.Equal(t, hashOf(byte(Size+5)), sw.Window.TreeHeads[0])
	// The oldest real root (batch 0) has long since scrolled out of the
	// window once more than Size batches have been signed.
	for _, h := range sw.Window.TreeHeads {
		assert.NotEqual(t, hashOf(0), h)
	}
}

func TestSignRejectsBadPreviousSignature(t *testing.T) {
	_, priv := genKey(t)
	issuerID := merkletree.IssuerID("issuer")

	sw, err := Sign(priv, issuerID, 0, hashOf(1), nil)
	require.NoError(t, err)
	sw.Signature[0] ^= 0xFF // corrupt

	_, err = Sign(priv, issuerID, 1, hashOf(2), &sw)
	require.Error(t, err)
}

func TestSignRejectsWrongBatchNumber(t *testing.T) {
	_, priv := genKey(t)
	issuerID := merkletree.IssuerID("issuer")

	sw, err := Sign(priv, issuerID, 0, hashOf(1), nil)
	require.NoError(t, err)

	_, err = Sign(priv, issuerID, 5, hashOf(2), &sw)
	require.Error(t, err)
}

func TestSignedValidityWindowRoundTrip(t *testing.T) {
	_, priv := genKey(t)
	issuerID := merkletree.IssuerID("issuer")

	sw, err := Sign(priv, issuerID, 0, hashOf(1), nil)
	require.NoError(t, err)

	enc := sw.Encode()
	r := codec.NewReader(enc)
	got, err := DecodeSignedValidityWindow(r)
	require.NoError(t, err)
	assert.Equal(t, len(enc), r.Pos())
	assert.Equal(t, sw.Window.BatchNumber, got.Window.BatchNumber)
	assert.Equal(t, []byte(sw.Signature), []byte(got.Signature))
	// TreeHeads decode always reads the full Size entries, padding included.
	assert.Len(t, got.Window.TreeHeads, Size)
	assert.Equal(t, sw.Window.TreeHeads[0], got.Window.TreeHeads[0])
}
