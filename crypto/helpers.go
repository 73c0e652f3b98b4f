package crypto

import (
	"encoding/json"
	"io/ioutil"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// KeyFile is the JSON form of a private key stored on disk.
type KeyFile struct {
	Address tokenvm.Address `json:"address"`
	// Secret is the base58 encoded seed.
	Secret string `json:"secret"`
}

// MarshalKey returns the key file content of given key.
func MarshalKey(p PrivateKey) ([]byte, error) {
	kf := KeyFile{
		Address: p.Address(),
		Secret:  base58.Encode(p.Seed()),
	}
	raw, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// UnmarshalKey parses a key file content. The stored address must match the
// key.
func UnmarshalKey(raw []byte) (PrivateKey, error) {
	var kf KeyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return PrivateKey{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	p, err := PrivKeyFromSeed(base58.Decode(kf.Secret))
	if err != nil {
		return p, errors.Wrap(err, "secret")
	}
	if !kf.Address.IsZero() && kf.Address != p.Address() {
		return p, errors.Wrapf(errors.ErrInput, "key file address %s does not match the secret", kf.Address)
	}
	return p, nil
}

// SaveKey writes the key file. The file is readable by the owner only.
func SaveKey(path string, p PrivateKey) error {
	raw, err := MarshalKey(p)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// LoadKey reads a key file written by SaveKey.
func LoadKey(path string) (PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return PrivateKey{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return UnmarshalKey(raw)
}
