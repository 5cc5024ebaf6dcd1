package merkletree

import (
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAssertion(t *testing.T, subject string) assertion.Assertion {
	t.Helper()
	a, err := assertion.CreateAssertion([]byte(subject), assertion.CreateAssertionOptions{
		DNSNames: []string{subject + ".example.com"},
	})
	require.NoError(t, err)
	return a
}

func TestBuildEmptyBatchIsSingleHash(t *testing.T) {
	tree, err := Build(nil, IssuerID("issuer"), 0)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	assert.Len(t, tree.Nodes[0], 1)
}

func TestBuildSingleAssertionBatch(t *testing.T) {
	assertions := assertion.Assertions{mustAssertion(t, "only")}
	tree, err := Build(assertions, IssuerID("issuer"), 0)
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	assert.Len(t, tree.Nodes[0], 1)
}

func TestBuildTenAssertionBatchNodeCount(t *testing.T) {
	assertions := make(assertion.Assertions, 10)
	for i := range assertions {
		assertions[i] = mustAssertion(t, string(rune('a'+i)))
	}
	tree, err := Build(assertions, IssuerID("issuer"), 7)
	require.NoError(t, err)

	total := 0
	for _, level := range tree.Nodes {
		total += len(level)
	}
	assert.Equal(t, 23, total)
	assert.Equal(t, []int{10, 6, 4, 2, 1}, levelSizes(tree))
}

func levelSizes(t Tree) []int {
	sizes := make([]int, len(t.Nodes))
	for i, l := range t.Nodes {
		sizes[i] = len(l)
	}
	return sizes
}

func TestBuildIsDeterministic(t *testing.T) {
	assertions := make(assertion.Assertions, 10)
	for i := range assertions {
		assertions[i] = mustAssertion(t, string(rune('a'+i)))
	}
	t1, err := Build(assertions, IssuerID("issuer"), 7)
	require.NoError(t, err)
	t2, err := Build(assertions, IssuerID("issuer"), 7)
	require.NoError(t, err)
	assert.Equal(t, t1.Root(), t2.Root())
	for lvl := range t1.Nodes {
		assert.Equal(t, t1.Nodes[lvl], t2.Nodes[lvl])
	}
}

func TestBuildIdenticalAssertionsAllVerifyViaPath(t *testing.T) {
	same := mustAssertion(t, "dup")
	assertions := make(assertion.Assertions, 10)
	for i := range assertions {
		assertions[i] = same
	}
	issuerID := IssuerID("issuer")
	tree, err := Build(assertions, issuerID, 1)
	require.NoError(t, err)

	for i := 0; i < len(assertions); i++ {
		path := tree.Path(uint64(i))
		got := recomputeRoot(assertions[i], uint64(i), path, issuerID, 1)
		assert.Equal(t, tree.Root(), got, "leaf %d must recompute to the tree root", i)
	}
}

// recomputeRoot walks an inclusion path the same way certificate
// verification does: fold siblings bottom-up using the index parity to pick
// left/right at each level, halving the remaining index as it climbs.
func recomputeRoot(a assertion.Assertion, index uint64, path []codec.SHA256Hash, issuerID IssuerID, batchNumber uint32) codec.SHA256Hash {
	assertionHead := HashHead{Distinguisher: DistinguisherHashAssertionInput, IssuerID: issuerID, BatchNumber: batchNumber}
	nodeHead := HashHead{Distinguisher: DistinguisherHashNodeInput, IssuerID: issuerID, BatchNumber: batchNumber}

	h := sum(HashAssertionInput{Head: assertionHead, Index: index, Assertion: a})
	remaining := index
	for j, sibling := range path {
		var node HashNodeInput
		if remaining%2 == 1 {
			node = HashNodeInput{Head: nodeHead, Index: remaining >> 1, Level: uint8(j + 1), Left: sibling, Right: h}
		} else {
			node = HashNodeInput{Head: nodeHead, Index: remaining >> 1, Level: uint8(j + 1), Left: h, Right: sibling}
		}
		h = sum(node)
		remaining >>= 1
	}
	return h
}
