package token

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// ID is the address of the token program.
var ID = tokenvm.MustParseAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

const (
	// MintLen is the size of mint account data.
	MintLen = 32 + 8 + 1 + 1 + 32 + 32
	// AccountLen is the size of token account data.
	AccountLen = 32 + 32 + 8 + 1 + 1
)

// Mint describes a fungible asset. Zero addresses mean "none".
type Mint struct {
	MintAuthority     tokenvm.Address
	Supply            uint64
	Decimals          uint8
	IsInitialized     bool
	TransferHook      tokenvm.Address
	PermanentDelegate tokenvm.Address
}

// Marshal encodes the mint into its fixed layout.
func (m *Mint) Marshal() ([]byte, error) {
	b := make([]byte, MintLen)
	copy(b[0:32], m.MintAuthority[:])
	binary.LittleEndian.PutUint64(b[32:40], m.Supply)
	b[40] = m.Decimals
	if m.IsInitialized {
		b[41] = 1
	}
	copy(b[42:74], m.TransferHook[:])
	copy(b[74:106], m.PermanentDelegate[:])
	return b, nil
}

// Unmarshal decodes the fixed layout.
func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint of %d bytes", len(raw))
	}
	copy(m.MintAuthority[:], raw[0:32])
	m.Supply = binary.LittleEndian.Uint64(raw[32:40])
	m.Decimals = raw[40]
	m.IsInitialized = raw[41] == 1
	copy(m.TransferHook[:], raw[42:74])
	copy(m.PermanentDelegate[:], raw[74:106])
	return nil
}

// AccountState tells if a token account was initialized.
type AccountState uint8

const (
	Uninitialized AccountState = 0
	Initialized   AccountState = 1
)

// Account is a balance of one mint held by one owner.
type Account struct {
	Mint   tokenvm.Address
	Owner  tokenvm.Address
	Amount uint64
	State  AccountState
	// Hooked is set for accounts of a mint with a transfer hook. Those can
	// only be debited with a checked transfer.
	Hooked bool
}

// Marshal encodes the account into its fixed layout.
func (a *Account) Marshal() ([]byte, error) {
	b := make([]byte, AccountLen)
	copy(b[0:32], a.Mint[:])
	copy(b[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(b[64:72], a.Amount)
	b[72] = byte(a.State)
	if a.Hooked {
		b[73] = 1
	}
	return b, nil
}

// Unmarshal decodes the fixed layout.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) != AccountLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "token account of %d bytes", len(raw))
	}
	copy(a.Mint[:], raw[0:32])
	copy(a.Owner[:], raw[32:64])
	a.Amount = binary.LittleEndian.Uint64(raw[64:72])
	a.State = AccountState(raw[72])
	if a.State > Initialized {
		return errors.Wrapf(errors.ErrInvalidAccountData, "account state %d", a.State)
	}
	a.Hooked = raw[73] == 1
	return nil
}

// read decodes the data of an account owned by the token program.
func read(info *tokenvm.AccountInfo, dst tokenvm.Unmarshaler) error {
	if !info.IsOwnedBy(ID) {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "%s is owned by %s", info.Address, info.Owner())
	}
	data, release, err := info.Data()
	if err != nil {
		return err
	}
	defer release()
	return dst.Unmarshal(data)
}

// write stores the encoding of src in the account data. Data length never
// changes.
func write(info *tokenvm.AccountInfo, src tokenvm.Marshaller) error {
	raw, err := src.Marshal()
	if err != nil {
		return err
	}
	data, release, err := info.MutData()
	if err != nil {
		return err
	}
	defer release()
	if len(data) != len(raw) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "%s holds %d bytes, need %d", info.Address, len(data), len(raw))
	}
	copy(data, raw)
	return nil
}

// LoadMint returns the initialized mint stored in given account.
func LoadMint(info *tokenvm.AccountInfo) (*Mint, error) {
	var m Mint
	if err := read(info, &m); err != nil {
		return nil, errors.Wrapf(err, "mint %s", info.Address)
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "mint %s", info.Address)
	}
	return &m, nil
}

// LoadAccount returns the initialized token account stored in given account.
func LoadAccount(info *tokenvm.AccountInfo) (*Account, error) {
	var a Account
	if err := read(info, &a); err != nil {
		return nil, errors.Wrapf(err, "token account %s", info.Address)
	}
	if a.State != Initialized {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "token account %s", info.Address)
	}
	return &a, nil
}

// LoadAccountOf returns the token account after checking that it holds mint
// and belongs to owner.
func LoadAccountOf(info *tokenvm.AccountInfo, mint, owner tokenvm.Address) (*Account, error) {
	a, err := LoadAccount(info)
	if err != nil {
		return nil, err
	}
	if a.Mint != mint {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "token account %s holds mint %s, not %s", info.Address, a.Mint, mint)
	}
	if a.Owner != owner {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "token account %s belongs to %s, not %s", info.Address, a.Owner, owner)
	}
	return a, nil
}
