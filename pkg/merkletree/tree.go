package merkletree

import (
	"runtime"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"golang.org/x/sync/errgroup"
)

// Tree is the level-by-level node list produced by Build: Nodes[level][i] is
// the i-th hash at that level, with Nodes[len(Nodes)-1][0] the root.
type Tree struct {
	Nodes [][]codec.SHA256Hash
}

// Root returns the single node at the top level.
func (t Tree) Root() codec.SHA256Hash {
	top := t.Nodes[len(t.Nodes)-1]
	return top[0]
}

// Build constructs the Merkle tree for a batch's assertions under the given
// issuer and batch number, following the three-head construction: a
// distinct HashHead per distinguisher, shared issuer id and batch number.
// Leaf and internal-node hashing within a level is parallelized across
// GOMAXPROCS workers; results land in a preallocated slice indexed by
// position, so the output is bit-for-bit identical to a sequential build.
func Build(assertions assertion.Assertions, issuerID IssuerID, batchNumber uint32) (Tree, error) {
	assertionHead := HashHead{Distinguisher: DistinguisherHashAssertionInput, IssuerID: issuerID, BatchNumber: batchNumber}
	emptyHead := HashHead{Distinguisher: DistinguisherHashEmptyInput, IssuerID: issuerID, BatchNumber: batchNumber}
	nodeHead := HashHead{Distinguisher: DistinguisherHashNodeInput, IssuerID: issuerID, BatchNumber: batchNumber}

	n := len(assertions)

	if n == 0 {
		leaf := sum(HashEmptyInput{Head: emptyHead, Index: 0, Level: 0})
		return Tree{Nodes: [][]codec.SHA256Hash{{leaf}}}, nil
	}

	if n == 1 {
		leaf := sum(HashAssertionInput{Head: assertionHead, Index: 0, Assertion: assertions[0]})
		return Tree{Nodes: [][]codec.SHA256Hash{{leaf}}}, nil
	}

	levels := bitLength(n) + 1

	level0, err := hashLeaves(assertions, assertionHead)
	if err != nil {
		return Tree{}, err
	}

	prevNodes := n
	if n%2 == 1 {
		level0 = append(level0, sum(HashEmptyInput{Head: emptyHead, Index: uint64(n), Level: 0}))
		prevNodes = n + 1
	}

	nodes := make([][]codec.SHA256Hash, levels)
	nodes[0] = level0

	for i := 1; i < levels; i++ {
		currentNodes := prevNodes / 2
		level, err := hashInternalLevel(nodes[i-1], currentNodes, nodeHead, uint8(i))
		if err != nil {
			return Tree{}, err
		}
		if currentNodes%2 == 1 && i != levels-1 {
			level = append(level, sum(HashEmptyInput{Head: emptyHead, Index: uint64(currentNodes), Level: uint8(i)}))
			prevNodes = currentNodes + 1
		} else {
			prevNodes = currentNodes
		}
		nodes[i] = level
	}

	return Tree{Nodes: nodes}, nil
}

// bitLength mirrors Python's int.bit_length(): the number of bits needed to
// represent n, with bitLength(0) == 0.
func bitLength(n int) int {
	bits := 0
	for n > 0 {
		bits++
		n >>= 1
	}
	return bits
}

func hashLeaves(assertions assertion.Assertions, head HashHead) ([]codec.SHA256Hash, error) {
	out := make([]codec.SHA256Hash, len(assertions))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := range assertions {
		j := j
		g.Go(func() error {
			out[j] = sum(HashAssertionInput{Head: head, Index: uint64(j), Assertion: assertions[j]})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func hashInternalLevel(prev []codec.SHA256Hash, count int, head HashHead, level uint8) ([]codec.SHA256Hash, error) {
	out := make([]codec.SHA256Hash, count)
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for j := 0; j < count; j++ {
		j := j
		g.Go(func() error {
			out[j] = sum(HashNodeInput{
				Head:  head,
				Index: uint64(j),
				Level: level,
				Left:  prev[2*j],
				Right: prev[2*j+1],
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Path returns the inclusion path for leaf index i: one sibling hash per
// level below the root, path[j] = Nodes[j][(i>>j) xor 1].
func (t Tree) Path(i uint64) []codec.SHA256Hash {
	levels := len(t.Nodes)
	if levels <= 1 {
		return nil
	}
	path := make([]codec.SHA256Hash, levels-1)
	for j := 0; j < levels-1; j++ {
		sibling := (i >> uint(j)) ^ 1
		path[j] = t.Nodes[j][sibling]
	}
	return path
}
