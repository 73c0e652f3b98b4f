package tokenvm

import (
	"bytes"
	"testing"

	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestAccountSerialization(t *testing.T) {
	acc := &Account{
		Owner:      MustParseAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"),
		Lamports:   1461600,
		Data:       []byte{1, 2, 3, 0, 0},
		Executable: false,
	}
	raw, err := acc.Marshal()
	assert.Nil(t, err)

	var got Account
	assert.Nil(t, got.Unmarshal(raw))
	if !acc.Equal(&got) {
		t.Fatalf("want %+v, got %+v", acc, got)
	}

	// The owner is always present, even the system program.
	empty, err := (&Account{}).Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 2+AddressLength, len(empty))

	if err := got.Unmarshal([]byte{0x0a, 0x05, 1}); err == nil {
		t.Fatal("truncated owner must not decode")
	}
	assert.IsErr(t, errors.ErrInput, got.Unmarshal([]byte{0x0a, 0x01, 1}))
}

func TestAccountBorrows(t *testing.T) {
	info := NewAccountInfo(Address{1}, &Account{Data: make([]byte, 4)}, false, true)
	alias := info.WithPrivileges(true, false)

	data, release, err := info.Data()
	assert.Nil(t, err)
	assert.Equal(t, 4, len(data))

	// Shared borrows may overlap.
	_, release2, err := alias.Data()
	assert.Nil(t, err)

	// A mutable borrow conflicts with any other borrow.
	_, _, err = alias.MutData()
	assert.IsErr(t, errors.ErrAccountBorrowFailed, err)
	assert.IsErr(t, errors.ErrAccountBorrowFailed, info.Resize(8))
	assert.IsErr(t, errors.ErrAccountBorrowFailed, info.Assign(Address{9}))

	release()
	release() // Double release must not free the second borrow.
	_, _, err = info.MutData()
	assert.IsErr(t, errors.ErrAccountBorrowFailed, err)
	release2()

	mut, releaseMut, err := alias.MutData()
	assert.Nil(t, err)
	if !info.MutablyBorrowed() {
		t.Fatal("mutable borrow must be visible through every view")
	}
	mut[0] = 7
	_, _, err = info.Data()
	assert.IsErr(t, errors.ErrAccountBorrowFailed, err)
	releaseMut()

	data, release, err = info.Data()
	assert.Nil(t, err)
	assert.Equal(t, byte(7), data[0])
	release()
	if info.Borrowed() {
		t.Fatal("all borrows were released")
	}
}

func TestAccountResize(t *testing.T) {
	info := NewAccountInfo(Address{1}, nil, false, true)
	assert.Equal(t, SystemProgramID, info.Owner())
	assert.Nil(t, info.Resize(3))

	data, release, err := info.MutData()
	assert.Nil(t, err)
	copy(data, []byte{1, 2, 3})
	release()

	assert.Nil(t, info.Resize(5))
	snap := info.Snapshot()
	if !bytes.Equal(snap.Data, []byte{1, 2, 3, 0, 0}) {
		t.Fatalf("unexpected data %v", snap.Data)
	}
	assert.Nil(t, info.Resize(1))
	assert.Equal(t, 1, info.DataLen())
	assert.IsErr(t, errors.ErrInvalidArgument, info.Resize(-1))
}

func TestMoveLamports(t *testing.T) {
	a := NewAccountInfo(Address{1}, &Account{Lamports: 100}, true, true)
	b := NewAccountInfo(Address{2}, &Account{Lamports: 1}, false, true)

	assert.Nil(t, MoveLamports(a, b, 40))
	assert.Equal(t, uint64(60), a.Lamports())
	assert.Equal(t, uint64(41), b.Lamports())

	assert.IsErr(t, errors.ErrInsufficientFunds, MoveLamports(a, b, 61))

	big := NewAccountInfo(Address{3}, &Account{Lamports: ^uint64(0)}, false, true)
	assert.IsErr(t, errors.ErrArithmeticOverflow, MoveLamports(a, big, 1))

	// Moving to itself is a no-op.
	assert.Nil(t, MoveLamports(a, a.WithPrivileges(false, true), 60))
	assert.Equal(t, uint64(60), a.Lamports())
}

func TestCloseAccount(t *testing.T) {
	program := Address{7}
	acc := NewAccountInfo(Address{1}, &Account{Owner: program, Lamports: 500, Data: []byte{1, 2}}, false, true)
	dest := NewAccountInfo(Address{2}, &Account{Lamports: 5}, false, true)

	assert.Nil(t, CloseAccount(acc, dest))
	assert.Equal(t, uint64(505), dest.Lamports())
	if !acc.IsEmpty() {
		t.Fatal("closed account must be empty")
	}
	assert.Equal(t, SystemProgramID, acc.Owner())
}

func TestRentMinimumBalance(t *testing.T) {
	// (128 + 114) * 3480 * 2
	assert.Equal(t, uint64(1684320), DefaultRent.MinimumBalance(114))
	assert.Equal(t, true, DefaultRent.IsExempt(1684320, 114))
	assert.Equal(t, false, DefaultRent.IsExempt(1684319, 114))
	assert.IsErr(t, errors.ErrEmpty, Rent{}.Validate())
}
