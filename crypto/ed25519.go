/*
Package crypto manages the ed25519 keys that control accounts.
*/
package crypto

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"golang.org/x/crypto/ed25519"
)

// PublicKey is an ed25519 public key. Its bytes are the address of the
// account it controls.
type PublicKey ed25519.PublicKey

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Address returns the account address controlled by this key.
func (p PublicKey) Address() tokenvm.Address {
	return tokenvm.MustAddress(p)
}

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey{key: priv}
}

// PrivKeyFromSeed returns the key generated from a 32 byte seed.
func PrivKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return PrivateKey{}, errors.Wrapf(errors.ErrInput, "seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Seed returns the seed the key can be recreated from.
func (p PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// Sign returns a matching signature for this private key
func (p PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p.key.Public().(ed25519.PublicKey))
}

// Address of the account this key controls.
func (p PrivateKey) Address() tokenvm.Address {
	return p.PublicKey().Address()
}

// SignTx adds a signature of every key to the transaction. Instructions must
// not change after signing.
func SignTx(tx *tokenvm.Tx, chainID string, keys ...PrivateKey) error {
	msg, err := tx.SignBytes(chainID)
	if err != nil {
		return errors.Wrap(err, "sign bytes")
	}
	for _, k := range keys {
		tx.Signatures = append(tx.Signatures, tokenvm.Signature{
			Signer: k.Address(),
			Sig:    k.Sign(msg),
		})
	}
	return nil
}
