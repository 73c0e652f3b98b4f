/*
Package accounts persists the state of every account of the chain.
*/
package accounts

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/orm"
)

// BucketName is the prefix of all account records.
const BucketName = "accounts"

// model adapts tokenvm.Account to orm.Model.
type model struct {
	*tokenvm.Account
}

func (m model) Validate() error {
	if m.Account == nil {
		return errors.Wrap(errors.ErrEmpty, "account")
	}
	if len(m.Data) > tokenvm.MaxAccountDataLen {
		return errors.Wrapf(errors.ErrModel, "data length %d", len(m.Data))
	}
	if m.Lamports == 0 {
		return errors.Wrap(errors.ErrModel, "account without lamports is not stored")
	}
	return nil
}

// Bucket is a type-safe wrapper around orm.Bucket keyed by address.
type Bucket struct {
	orm.Bucket
}

// NewBucket returns the accounts bucket.
func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName)}
}

// Get returns the account stored under given address. A missing account is
// returned as nil, nil since every address implicitly holds an empty system
// account.
func (b Bucket) Get(db tokenvm.ReadOnlyKVStore, addr tokenvm.Address) (*tokenvm.Account, error) {
	var acc tokenvm.Account
	err := b.One(db, addr[:], model{&acc})
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &acc, nil
}

// Save writes the account. Accounts without lamports are removed instead
// since nothing keeps them alive.
func (b Bucket) Save(db tokenvm.KVStore, addr tokenvm.Address, acc *tokenvm.Account) error {
	if acc == nil || acc.Lamports == 0 {
		return b.Delete(db, addr[:])
	}
	return b.Put(db, addr[:], model{acc})
}

// Balance returns the lamports of an account, zero if it does not exist.
func (b Bucket) Balance(db tokenvm.ReadOnlyKVStore, addr tokenvm.Address) (uint64, error) {
	acc, err := b.Get(db, addr)
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Lamports, nil
}

// RegisterQuery exposes the accounts under "/accounts".
func RegisterQuery(qr tokenvm.QueryRouter) {
	NewBucket().Register("", qr)
}
