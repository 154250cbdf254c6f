package merkle

import (
	"testing"

	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaves(values ...string) []types.Digest {
	out := make([]types.Digest, len(values))
	for i, v := range values {
		out[i] = crypto.DigestString(v)
	}
	return out
}

func TestRoot(t *testing.T) {
	t.Run("should return the only leaf as root", func(t *testing.T) {
		l := leaves("a")

		root, err := Root(l)
		require.NoError(t, err)
		assert.Equal(t, l[0], root)
	})

	t.Run("should hash the concatenation of two leaves", func(t *testing.T) {
		l := leaves("a", "b")

		root, err := Root(l)
		require.NoError(t, err)
		assert.Equal(t, crypto.DigestString(string(l[0])+string(l[1])), root)
	})

	t.Run("should depend on leaf order", func(t *testing.T) {
		ab, err := Root(leaves("a", "b"))
		require.NoError(t, err)

		ba, err := Root(leaves("b", "a"))
		require.NoError(t, err)

		assert.NotEqual(t, ab, ba)
	})

	t.Run("should pair the last leaf with itself on odd levels", func(t *testing.T) {
		l := leaves("a", "b", "c")

		root, err := Root(l)
		require.NoError(t, err)

		left := crypto.DigestString(string(l[0]) + string(l[1]))
		right := crypto.DigestString(string(l[2]) + string(l[2]))
		assert.Equal(t, crypto.DigestString(string(left)+string(right)), root)

		padded, err := Root(append(l, l[2]))
		require.NoError(t, err)
		assert.Equal(t, padded, root)
	})

	t.Run("should fail with ErrInvalidArgument on an empty list", func(t *testing.T) {
		_, err := Root(nil)
		assert.ErrorIs(t, err, ErrNoLeaves)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestProof(t *testing.T) {
	l := leaves("a", "b", "c", "d", "e")
	root, err := Root(l)
	require.NoError(t, err)

	t.Run("should verify every leaf against the root", func(t *testing.T) {
		for i := range l {
			proof, err := Proof(l, i)
			require.NoError(t, err)
			assert.True(t, VerifyProof(l[i], proof, root), "leaf %d", i)
		}
	})

	t.Run("should reject a foreign leaf", func(t *testing.T) {
		proof, err := Proof(l, 1)
		require.NoError(t, err)
		assert.False(t, VerifyProof(crypto.DigestString("z"), proof, root))
	})

	t.Run("should produce an empty proof for a single leaf", func(t *testing.T) {
		single := leaves("a")

		proof, err := Proof(single, 0)
		require.NoError(t, err)
		assert.Empty(t, proof)
		assert.True(t, VerifyProof(single[0], proof, single[0]))
	})

	t.Run("should reject an index out of range", func(t *testing.T) {
		_, err := Proof(l, len(l))
		assert.ErrorIs(t, err, ErrLeafOutOfRange)

		_, err = Proof(l, -1)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("should reject an empty list", func(t *testing.T) {
		_, err := Proof(nil, 0)
		assert.ErrorIs(t, err, ErrNoLeaves)
	})
}
