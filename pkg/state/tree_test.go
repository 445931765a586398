package state

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafValue(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestEmptyTreeRoot(t *testing.T) {
	params := NewParameters(3)
	tree, err := NewMerkleTree(params)
	require.NoError(t, err)

	// root of an empty tree is the zero leaf hashed up three times
	var zero fr.Element
	expected := zero
	for i := 0; i < 3; i++ {
		expected = params.HashTwoToOne(expected, expected)
	}
	assert.Equal(t, RootFromElement(expected), tree.Root())
}

func TestTreePaths(t *testing.T) {
	params := NewParameters(4)
	tree, err := NewMerkleTree(params)
	require.NoError(t, err)

	for _, index := range []uint64{0, 1, 6, 15} {
		require.NoError(t, tree.Update(index, leafValue(index+100)))
	}

	root := tree.Root()
	for _, index := range []uint64{0, 1, 2, 6, 15} {
		path, err := tree.Path(index)
		require.NoError(t, err)
		assert.Len(t, path.Siblings, 4)
		assert.True(t, VerifyPath(&params, index, tree.Leaf(index), path, root), "index %d", index)
	}

	// a path is bound to its position
	path, err := tree.Path(6)
	require.NoError(t, err)
	assert.False(t, VerifyPath(&params, 7, tree.Leaf(6), path, root))
	assert.False(t, VerifyPath(&params, 6, leafValue(1), path, root))
	assert.False(t, VerifyPath(&params, 6, tree.Leaf(6), AccountPath{Siblings: path.Siblings[:3]}, root))
}

func TestTreeUpdateChangesRoot(t *testing.T) {
	params := NewParameters(4)
	tree, err := NewMerkleTree(params)
	require.NoError(t, err)

	require.NoError(t, tree.Update(3, leafValue(1)))
	before := tree.Root()
	stale, err := tree.Path(3)
	require.NoError(t, err)

	require.NoError(t, tree.Update(5, leafValue(2)))
	after := tree.Root()
	assert.NotEqual(t, before, after)

	// leaf 3 is unchanged, but its old path only proves the old root
	assert.True(t, VerifyPath(&params, 3, leafValue(1), stale, before))
	assert.False(t, VerifyPath(&params, 3, leafValue(1), stale, after))

	fresh, err := tree.Path(3)
	require.NoError(t, err)
	assert.True(t, VerifyPath(&params, 3, leafValue(1), fresh, after))

	// recomputing the whole tree gives the same root as incremental updates
	rebuilt, err := NewMerkleTree(params)
	require.NoError(t, err)
	require.NoError(t, rebuilt.Update(5, leafValue(2)))
	require.NoError(t, rebuilt.Update(3, leafValue(1)))
	assert.Equal(t, after, rebuilt.Root())
}

func TestTreeIndexOutOfRange(t *testing.T) {
	params := NewParameters(2)
	tree, err := NewMerkleTree(params)
	require.NoError(t, err)

	assert.ErrorIs(t, tree.Update(4, leafValue(1)), ErrIDOutOfRange)
	_, err = tree.Path(4)
	assert.ErrorIs(t, err, ErrIDOutOfRange)
}

func TestMerkleRootEncoding(t *testing.T) {
	e := leafValue(0xabcdef)
	root := RootFromElement(e)

	back := root.Element()
	assert.True(t, back.Equal(&e))
	assert.Equal(t, uint64(0xabcdef), root.BigInt().Uint64())
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000abcdef", root.Hex())
}
