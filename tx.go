package tokenvm

import (
	"github.com/iov-one/tokenvm/errors"
)

var _ Persistent = (*Tx)(nil)

// SignBytes returns the bytes every signer must sign: the chain id followed
// by the encoded instructions. Binding the chain id prevents replaying a
// transaction on another chain.
func (tx *Tx) SignBytes(chainID string) ([]byte, error) {
	body, err := (&Tx{Instructions: tx.Instructions}).Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "instructions")
	}
	return append([]byte(chainID), body...), nil
}

// Validate performs stateless checks.
func (tx *Tx) Validate() error {
	if len(tx.Instructions) == 0 {
		return errors.Wrap(errors.ErrEmpty, "instructions")
	}
	seen := make(map[Address]bool, len(tx.Signatures))
	for i, s := range tx.Signatures {
		if seen[s.Signer] {
			return errors.Wrapf(errors.ErrDuplicate, "signature %d of %s", i, s.Signer)
		}
		seen[s.Signer] = true
		if len(s.Sig) == 0 {
			return errors.Wrapf(errors.ErrEmpty, "signature %d", i)
		}
	}
	return nil
}

// Signers returns the addresses that provided a signature.
func (tx *Tx) Signers() []Address {
	res := make([]Address, 0, len(tx.Signatures))
	for _, s := range tx.Signatures {
		res = append(res, s.Signer)
	}
	return res
}

// TxDecoder can parse bytes into a Tx
type TxDecoder func(txBytes []byte) (*Tx, error)

// DecodeTx is the TxDecoder of this chain.
func DecodeTx(txBytes []byte) (*Tx, error) {
	var tx Tx
	if err := tx.Unmarshal(txBytes); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &tx, nil
}
