package validitywindow

import (
	"crypto/ed25519"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSignedValidityWindowAlwaysVerifies(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	issuerID := merkletree.IssuerID("issuer")

	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	properties.Property("a freshly signed genesis window always verifies", prop.ForAll(
		func(seed byte) bool {
			var root codec.SHA256Hash
			root[0] = seed
			sw, err := Sign(priv, issuerID, 0, root, nil)
			if err != nil {
				return false
			}
			return Verify(pub, issuerID, sw) == nil
		},
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
