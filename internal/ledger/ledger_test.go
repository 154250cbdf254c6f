package ledger

import (
	"crypto/ed25519"
	"testing"

	"github.com/gabapcia/powledger/internal/pkg/crypto"
	"github.com/gabapcia/powledger/internal/pkg/logger"

	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

// testDifficulty keeps mining in unit tests fast.
const testDifficulty = 1

type keyPair struct {
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
	encoded string
}

func newKeyPair(t *testing.T) keyPair {
	t.Helper()

	pub, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	return keyPair{pub: pub, priv: priv, encoded: crypto.EncodePublicKey(pub)}
}

func signedTransaction(t *testing.T, sender, recipient string, amount uint64, keys keyPair) Transaction {
	t.Helper()

	tx, err := NewTransaction(sender, recipient, amount, keys.encoded)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(keys.priv))

	return tx
}

func newTestChain(t *testing.T, opts ...Option) *Chain {
	t.Helper()

	c, err := New(t.Context(), append([]Option{WithDifficulty(testDifficulty)}, opts...)...)
	require.NoError(t, err)

	return c
}
