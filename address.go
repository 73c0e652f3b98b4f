package tokenvm

import (
	"bytes"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/tokenvm/errors"
)

// AddressLength is the length of all account addresses.
const AddressLength = 32

// Address is the identity of an account. It is either an ed25519 public key
// or a program derived address that has no private key.
type Address [AddressLength]byte

// ZeroAddress is used as "none" in fixed layouts.
var ZeroAddress Address

// NewAddress copies given bytes into an address. It fails unless exactly
// AddressLength bytes are given.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, errors.Wrapf(errors.ErrInput, "address length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

// MustAddress is NewAddress that panics on error. Use it in tests and for
// well known constants only.
func MustAddress(b []byte) Address {
	a, err := NewAddress(b)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddress decodes the base58 text form of an address.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, errors.Wrap(errors.ErrEmpty, "address")
	}
	raw := base58.Decode(s)
	a, err := NewAddress(raw)
	if err != nil {
		return a, errors.Wrapf(err, "parse %q", s)
	}
	return a, nil
}

// MustParseAddress is ParseAddress that panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns a copy of the raw address.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// IsZero returns true for the all zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Compare orders addresses by their raw bytes.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// String returns the base58 text form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// MarshalJSON encodes the address as a base58 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a base58 string.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "address must be a string")
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Marshal returns the raw address. With MarshalTo, Size and Unmarshal it
// lets Address be used as a gogoproto customtype.
func (a Address) Marshal() ([]byte, error) {
	return a.Bytes(), nil
}

// MarshalTo copies the raw address into data.
func (a *Address) MarshalTo(data []byte) (int, error) {
	if len(data) < AddressLength {
		return 0, errors.Wrapf(errors.ErrInput, "buffer length %d", len(data))
	}
	return copy(data, a[:]), nil
}

// Size is always AddressLength.
func (a *Address) Size() int {
	return AddressLength
}

// Unmarshal accepts exactly AddressLength bytes.
func (a *Address) Unmarshal(data []byte) error {
	parsed, err := NewAddress(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
