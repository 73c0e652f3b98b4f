package accounts

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// GenesisAccount is the genesis form of a funded account.
type GenesisAccount struct {
	Address  tokenvm.Address `json:"address"`
	Lamports uint64          `json:"lamports"`
	Owner    tokenvm.Address `json:"owner"`
	Data     []byte          `json:"data,omitempty"`
}

// Genesis fulfils the Initializer interface to load accounts from the
// genesis file "accounts" section.
type Genesis struct {
	// Programs are the builtin program identities. Each gets an executable
	// account owned by the native loader.
	Programs []tokenvm.Address
}

var _ tokenvm.Initializer = Genesis{}

// FromGenesis stores all genesis accounts and program accounts.
func (g Genesis) FromGenesis(opts tokenvm.Options, db tokenvm.KVStore) error {
	var accs []GenesisAccount
	if err := opts.ReadOptions("accounts", &accs); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	bucket := NewBucket()
	for _, p := range g.Programs {
		prog := &tokenvm.Account{
			Owner:      tokenvm.NativeLoaderID,
			Lamports:   1,
			Executable: true,
		}
		if err := bucket.Save(db, p, prog); err != nil {
			return errors.Wrapf(err, "program %s", p)
		}
	}
	for i, a := range accs {
		if a.Lamports == 0 {
			return errors.Wrapf(errors.ErrInput, "account %d (%s) has no lamports", i, a.Address)
		}
		ok, err := bucket.Has(db, a.Address[:])
		if err != nil {
			return err
		}
		if ok {
			return errors.Wrapf(errors.ErrDuplicate, "account %s", a.Address)
		}
		acc := &tokenvm.Account{Owner: a.Owner, Lamports: a.Lamports, Data: a.Data}
		if err := bucket.Save(db, a.Address, acc); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
