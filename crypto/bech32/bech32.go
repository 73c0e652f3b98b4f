/*
Package bech32 renders addresses in the human readable bech32 format.
*/
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// DefaultHRP is the human readable part of the addresses of this chain.
const DefaultHRP = "tvm"

// Decode converts given bech32 encoded representation into raw payload and a
// human readable part.
func Decode(raw string) (string, []byte, error) {
	hrp, payload, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	payload, err = bech32.ConvertBits(payload, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	return hrp, payload, nil
}

// Encode converts given bytes into bech32 encoded representation.
func Encode(hrp string, payload []byte) (string, error) {
	payload, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	raw, err := bech32.Encode(hrp, payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// EncodeAddress returns the bech32 form of an address.
func EncodeAddress(hrp string, addr tokenvm.Address) (string, error) {
	return Encode(hrp, addr[:])
}

// DecodeAddress parses the bech32 form of an address. The human readable
// part must match hrp.
func DecodeAddress(hrp, raw string) (tokenvm.Address, error) {
	got, payload, err := Decode(raw)
	if err != nil {
		return tokenvm.ZeroAddress, err
	}
	if got != hrp {
		return tokenvm.ZeroAddress, errors.Wrapf(errors.ErrInput, "human readable part %q, want %q", got, hrp)
	}
	return tokenvm.NewAddress(payload)
}
