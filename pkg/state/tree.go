package state

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MerkleTree is a fixed-depth binary Merkle tree over account leaves. Leaves are indexed by
// account id; untouched subtrees are represented by precomputed zero hashes.
type MerkleTree struct {
	params     Parameters
	depth      int
	zeroHashes []fr.Element
	// nodes[0] holds leaf digests, nodes[depth] the root
	nodes []map[uint64]fr.Element
}

// NewMerkleTree creates an empty tree with the shape and hashes given by params.
func NewMerkleTree(params Parameters) (*MerkleTree, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	depth := params.TreeDepth
	tree := &MerkleTree{
		params:     params,
		depth:      depth,
		zeroHashes: make([]fr.Element, depth+1),
		nodes:      make([]map[uint64]fr.Element, depth+1),
	}

	// Compute zero hashes for empty branches, the empty leaf is the zero element
	tree.zeroHashes[0].SetZero()
	for i := 1; i <= depth; i++ {
		tree.zeroHashes[i] = params.HashTwoToOne(tree.zeroHashes[i-1], tree.zeroHashes[i-1])
	}
	for i := range tree.nodes {
		tree.nodes[i] = make(map[uint64]fr.Element)
	}

	return tree, nil
}

// Depth returns the number of levels between the leaves and the root.
func (t *MerkleTree) Depth() int {
	return t.depth
}

// Update sets the leaf digest at index and recomputes the branch up to the root.
func (t *MerkleTree) Update(index uint64, leaf fr.Element) error {
	if index >= t.params.Capacity() {
		return fmt.Errorf("%w: index %d", ErrIDOutOfRange, index)
	}

	t.nodes[0][index] = leaf
	current := leaf
	for level := 0; level < t.depth; level++ {
		sibling := t.node(level, index^1)
		if index&1 == 0 {
			current = t.params.HashTwoToOne(current, sibling)
		} else {
			current = t.params.HashTwoToOne(sibling, current)
		}
		index >>= 1
		t.nodes[level+1][index] = current
	}
	return nil
}

// Leaf returns the digest stored at index, or the empty leaf.
func (t *MerkleTree) Leaf(index uint64) fr.Element {
	return t.node(0, index)
}

// Root returns the current root of the tree.
func (t *MerkleTree) Root() MerkleRoot {
	return RootFromElement(t.node(t.depth, 0))
}

// Path generates the authentication path for the leaf at index.
func (t *MerkleTree) Path(index uint64) (AccountPath, error) {
	if index >= t.params.Capacity() {
		return AccountPath{}, fmt.Errorf("%w: index %d", ErrIDOutOfRange, index)
	}

	siblings := make([]fr.Element, t.depth)
	for level := 0; level < t.depth; level++ {
		siblings[level] = t.node(level, index^1)
		index >>= 1
	}
	return AccountPath{Siblings: siblings}, nil
}

func (t *MerkleTree) node(level int, index uint64) fr.Element {
	if value, exists := t.nodes[level][index]; exists {
		return value
	}
	return t.zeroHashes[level]
}

// ComputeRoot hashes leaf up through path, taking left/right order from the bits of index.
func ComputeRoot(params *Parameters, index uint64, leaf fr.Element, path AccountPath) fr.Element {
	current := leaf
	for _, sibling := range path.Siblings {
		if index&1 == 0 {
			current = params.HashTwoToOne(current, sibling)
		} else {
			current = params.HashTwoToOne(sibling, current)
		}
		index >>= 1
	}
	return current
}

// VerifyPath reports whether leaf sits at index in the tree with the given root.
func VerifyPath(params *Parameters, index uint64, leaf fr.Element, path AccountPath, root MerkleRoot) bool {
	if len(path.Siblings) != params.TreeDepth || index >= params.Capacity() {
		return false
	}
	computed := ComputeRoot(params, index, leaf, path)
	expected := root.Element()
	return computed.Equal(&expected)
}
