package vmtest

import (
	"crypto/sha256"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/crypto"
)

// Key is an ed25519 key pair controlling an address.
type Key struct {
	Address tokenvm.Address
	priv    crypto.PrivateKey
}

// NewKey returns a random key.
func NewKey() Key {
	return keyOf(crypto.GenPrivKeyEd25519())
}

// NamedKey returns a key derived from name so that tests are repeatable.
func NamedKey(name string) Key {
	seed := sha256.Sum256([]byte(name))
	priv, err := crypto.PrivKeyFromSeed(seed[:])
	if err != nil {
		panic(err)
	}
	return keyOf(priv)
}

func keyOf(priv crypto.PrivateKey) Key {
	return Key{Address: priv.Address(), priv: priv}
}

// Sign signs msg.
func (k Key) Sign(msg []byte) []byte {
	return k.priv.Sign(msg)
}

// PrivateKey returns the key for use outside of the test chain.
func (k Key) PrivateKey() crypto.PrivateKey {
	return k.priv
}

// SignTx builds a transaction of given instructions signed by all keys.
func SignTx(chainID string, ixs []tokenvm.Instruction, keys ...Key) (*tokenvm.Tx, error) {
	tx := &tokenvm.Tx{Instructions: ixs}
	privs := make([]crypto.PrivateKey, len(keys))
	for i, k := range keys {
		privs[i] = k.priv
	}
	if err := crypto.SignTx(tx, chainID, privs...); err != nil {
		return nil, err
	}
	return tx, nil
}
