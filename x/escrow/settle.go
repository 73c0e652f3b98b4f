package escrow

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
)

// settler issues the calls to other programs that move funds in and out of
// an escrow. The record signs with its seeds wherever the escrow acts as
// the vault authority. Every call fails fast, the runtime discards all
// changes of a failed transaction.
type settler struct {
	env      tokenvm.Env
	accounts []*tokenvm.AccountInfo
	record   *tokenvm.AccountInfo
	signer   tokenvm.Seeds
}

func newSettler(env tokenvm.Env, accounts []*tokenvm.AccountInfo, record *tokenvm.AccountInfo, maker tokenvm.Address, bump byte) *settler {
	return &settler{
		env:      env,
		accounts: accounts,
		record:   record,
		signer:   SignerSeeds(maker, bump),
	}
}

// createRecord allocates the rent exempt record account, paid by payer and
// owned by the escrow program.
func (s *settler) createRecord(payer tokenvm.Address) error {
	rent := s.env.Rent().MinimumBalance(AccountLen)
	ix := system.CreateAccount(payer, s.record.Address, rent, AccountLen, s.env.ProgramID())
	if err := s.env.InvokeSigned(ix, s.accounts, s.signer); err != nil {
		return errors.Wrap(err, "create record")
	}
	return nil
}

// createVault creates the associated token account of the record for mint.
func (s *settler) createVault(payer, mint tokenvm.Address) error {
	if err := s.env.Invoke(ata.Create(payer, s.record.Address, mint), s.accounts); err != nil {
		return errors.Wrap(err, "create vault")
	}
	return nil
}

// deposit moves the maker funds into the vault.
func (s *settler) deposit(from, vault, owner tokenvm.Address, amount uint64) error {
	if err := s.env.Invoke(token.Transfer(from, vault, owner, amount), s.accounts); err != nil {
		return errors.Wrap(err, "deposit")
	}
	return nil
}

// release moves funds out of the vault.
func (s *settler) release(vault, to tokenvm.Address, amount uint64) error {
	ix := token.Transfer(vault, to, s.record.Address, amount)
	if err := s.env.InvokeSigned(ix, s.accounts, s.signer); err != nil {
		return errors.Wrap(err, "release")
	}
	return nil
}

// collect moves the taker payment to the maker.
func (s *settler) collect(from, to, owner tokenvm.Address, amount uint64) error {
	if err := s.env.Invoke(token.Transfer(from, to, owner, amount), s.accounts); err != nil {
		return errors.Wrap(err, "collect")
	}
	return nil
}

// closeVault removes the drained vault, its rent goes to dest.
func (s *settler) closeVault(vault, dest tokenvm.Address) error {
	ix := token.CloseAccount(vault, dest, s.record.Address)
	if err := s.env.InvokeSigned(ix, s.accounts, s.signer); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return nil
}

// closeRecord removes the record, its rent goes to dest. It must be the last
// step as the record cannot be used afterwards.
func (s *settler) closeRecord(dest *tokenvm.AccountInfo) error {
	if err := tokenvm.CloseAccount(s.record, dest); err != nil {
		return errors.Wrap(err, "close record")
	}
	return nil
}
