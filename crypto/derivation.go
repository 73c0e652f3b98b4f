package crypto

import (
	"github.com/iov-one/tokenvm/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the bip44 path of the first account of a wallet.
const DefaultDerivationPath = "m/44'/501'/0'"

// DeriveKey returns the ed25519 key derived from a master seed along a
// hardened bip44 path (SLIP-0010).
func DeriveKey(seed []byte, path string) (PrivateKey, error) {
	if len(seed) < 16 {
		return PrivateKey{}, errors.Wrapf(errors.ErrInput, "seed of %d bytes is too short", len(seed))
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return PrivateKey{}, errors.Wrapf(errors.ErrInput, "derive %q: %s", path, err)
	}
	return PrivKeyFromSeed(k.Key)
}
