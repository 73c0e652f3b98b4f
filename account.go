package tokenvm

import (
	"bytes"

	"github.com/iov-one/tokenvm/errors"
)

var _ Persistent = (*Account)(nil)

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	c.Data = cloneBytes(a.Data)
	return &c
}

// Equal compares all fields.
func (a *Account) Equal(b *Account) bool {
	return a.Owner == b.Owner &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// Release ends a data borrow. Calling it more than once is a no-op.
type Release func()

// accountCell is the single in-memory copy of an account during transaction
// execution. Every AccountInfo referring to the same address shares it.
type accountCell struct {
	acc *Account
	// borrows counts outstanding shared borrows, or is -1 while the data is
	// mutably borrowed.
	borrows int
}

// AccountInfo is the view of an account that a program receives. Signer and
// writable privileges are specific to one invocation while the account state
// is shared.
type AccountInfo struct {
	Address    Address
	IsSigner   bool
	IsWritable bool

	cell *accountCell
}

// NewAccountInfo wraps an account. A nil account is treated as an empty
// system owned one.
func NewAccountInfo(addr Address, acc *Account, signer, writable bool) *AccountInfo {
	if acc == nil {
		acc = &Account{Owner: SystemProgramID}
	}
	return &AccountInfo{
		Address:    addr,
		IsSigner:   signer,
		IsWritable: writable,
		cell:       &accountCell{acc: acc},
	}
}

// WithPrivileges returns another view of the same account state carrying
// the given privileges.
func (i *AccountInfo) WithPrivileges(signer, writable bool) *AccountInfo {
	return &AccountInfo{
		Address:    i.Address,
		IsSigner:   signer,
		IsWritable: writable,
		cell:       i.cell,
	}
}

// SameAccount returns true if both views refer to the same state.
func (i *AccountInfo) SameAccount(o *AccountInfo) bool {
	return i.cell == o.cell
}

// Owner returns the program owning this account.
func (i *AccountInfo) Owner() Address {
	return i.cell.acc.Owner
}

// IsOwnedBy returns true if the account belongs to the given program.
func (i *AccountInfo) IsOwnedBy(program Address) bool {
	return i.cell.acc.Owner == program
}

// Lamports returns the native balance.
func (i *AccountInfo) Lamports() uint64 {
	return i.cell.acc.Lamports
}

// Executable returns true for program accounts.
func (i *AccountInfo) Executable() bool {
	return i.cell.acc.Executable
}

// DataLen returns the size of the account data.
func (i *AccountInfo) DataLen() int {
	return len(i.cell.acc.Data)
}

// IsEmpty returns true for an account that holds neither lamports nor data.
func (i *AccountInfo) IsEmpty() bool {
	return i.cell.acc.Lamports == 0 && len(i.cell.acc.Data) == 0
}

// Snapshot returns a copy of the current account state.
func (i *AccountInfo) Snapshot() *Account {
	return i.cell.acc.Clone()
}

// MutablyBorrowed returns true while a mutable data borrow is outstanding.
func (i *AccountInfo) MutablyBorrowed() bool {
	return i.cell.borrows < 0
}

// Borrowed returns true while any data borrow is outstanding.
func (i *AccountInfo) Borrowed() bool {
	return i.cell.borrows != 0
}

// Data borrows the account data for reading. The returned slice must not be
// used after calling release.
func (i *AccountInfo) Data() ([]byte, Release, error) {
	if i.cell.borrows < 0 {
		return nil, nil, errors.Wrapf(errors.ErrAccountBorrowFailed, "%s is mutably borrowed", i.Address)
	}
	i.cell.borrows++
	var done bool
	release := func() {
		if !done {
			done = true
			i.cell.borrows--
		}
	}
	return i.cell.acc.Data, release, nil
}

// MutData borrows the account data for writing. No other borrow may be
// outstanding.
func (i *AccountInfo) MutData() ([]byte, Release, error) {
	if i.cell.borrows != 0 {
		return nil, nil, errors.Wrapf(errors.ErrAccountBorrowFailed, "%s is already borrowed", i.Address)
	}
	i.cell.borrows = -1
	var done bool
	release := func() {
		if !done {
			done = true
			i.cell.borrows = 0
		}
	}
	return i.cell.acc.Data, release, nil
}

// Resize changes the data length. New bytes are zeroed.
func (i *AccountInfo) Resize(size int) error {
	if i.cell.borrows != 0 {
		return errors.Wrapf(errors.ErrAccountBorrowFailed, "resize borrowed %s", i.Address)
	}
	if size < 0 || size > MaxAccountDataLen {
		return errors.Wrapf(errors.ErrInvalidArgument, "account size %d", size)
	}
	data := i.cell.acc.Data
	switch {
	case size <= len(data):
		data = data[:size:size]
	default:
		data = append(data, make([]byte, size-len(data))...)
	}
	i.cell.acc.Data = data
	return nil
}

// Assign changes the owner program.
func (i *AccountInfo) Assign(owner Address) error {
	if i.cell.borrows != 0 {
		return errors.Wrapf(errors.ErrAccountBorrowFailed, "assign borrowed %s", i.Address)
	}
	i.cell.acc.Owner = owner
	return nil
}

// SetLamports overwrites the native balance.
func (i *AccountInfo) SetLamports(v uint64) {
	i.cell.acc.Lamports = v
}

// MoveLamports transfers native balance between two accounts with checked
// arithmetic.
func MoveLamports(from, to *AccountInfo, amount uint64) error {
	if from.SameAccount(to) {
		return nil
	}
	if from.Lamports() < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s has %d lamports, need %d", from.Address, from.Lamports(), amount)
	}
	credited := to.Lamports() + amount
	if credited < amount {
		return errors.Wrap(errors.ErrArithmeticOverflow, "lamports")
	}
	from.SetLamports(from.Lamports() - amount)
	to.SetLamports(credited)
	return nil
}

// CloseAccount drains all lamports of a program owned account into dest,
// wipes its data and hands it back to the system program. The account is
// removed from the state at the end of the transaction.
func CloseAccount(acc, dest *AccountInfo) error {
	if err := MoveLamports(acc, dest, acc.Lamports()); err != nil {
		return errors.Wrap(err, "drain")
	}
	if err := acc.Resize(0); err != nil {
		return err
	}
	return acc.Assign(SystemProgramID)
}
