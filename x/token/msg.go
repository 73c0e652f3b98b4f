package token

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Instruction tags.
const (
	TagInitializeMint    byte = 0
	TagInitializeAccount byte = 1
	TagTransfer          byte = 3
	TagMintTo            byte = 7
	TagBurn              byte = 8
	TagCloseAccount      byte = 9
	TagTransferChecked   byte = 12
)

// HookExecuteTag is the first byte of the instruction a transfer hook
// program receives after a checked transfer. The amount follows as a little
// endian u64.
const HookExecuteTag byte = 2

// InitializeMintMsg sets up a mint account.
type InitializeMintMsg struct {
	Decimals          uint8
	MintAuthority     tokenvm.Address
	TransferHook      tokenvm.Address
	PermanentDelegate tokenvm.Address
}

// Marshal encodes tag(1) decimals(1) authority(32) hook(32) delegate(32).
func (m *InitializeMintMsg) Marshal() ([]byte, error) {
	b := make([]byte, 2, 2+3*32)
	b[0] = TagInitializeMint
	b[1] = m.Decimals
	b = append(b, m.MintAuthority[:]...)
	b = append(b, m.TransferHook[:]...)
	b = append(b, m.PermanentDelegate[:]...)
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *InitializeMintMsg) Unmarshal(body []byte) error {
	if len(body) != 1+3*32 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "initialize mint body of %d bytes", len(body))
	}
	m.Decimals = body[0]
	copy(m.MintAuthority[:], body[1:33])
	copy(m.TransferHook[:], body[33:65])
	copy(m.PermanentDelegate[:], body[65:97])
	return nil
}

// Validate checks the message.
func (m *InitializeMintMsg) Validate() error {
	if m.MintAuthority.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "mint authority")
	}
	return nil
}

// AmountMsg carries the amount of Transfer, MintTo and Burn.
type AmountMsg struct {
	Tag    byte
	Amount uint64
}

// Marshal encodes tag(1) amount(8).
func (m *AmountMsg) Marshal() ([]byte, error) {
	b := make([]byte, 9)
	b[0] = m.Tag
	binary.LittleEndian.PutUint64(b[1:], m.Amount)
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *AmountMsg) Unmarshal(body []byte) error {
	if len(body) != 8 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "amount body of %d bytes", len(body))
	}
	m.Amount = binary.LittleEndian.Uint64(body)
	return nil
}

// TransferCheckedMsg is a transfer that states the decimals of the mint.
type TransferCheckedMsg struct {
	Amount   uint64
	Decimals uint8
}

// Marshal encodes tag(1) amount(8) decimals(1).
func (m *TransferCheckedMsg) Marshal() ([]byte, error) {
	b := make([]byte, 10)
	b[0] = TagTransferChecked
	binary.LittleEndian.PutUint64(b[1:], m.Amount)
	b[9] = m.Decimals
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *TransferCheckedMsg) Unmarshal(body []byte) error {
	if len(body) != 9 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "transfer checked body of %d bytes", len(body))
	}
	m.Amount = binary.LittleEndian.Uint64(body)
	m.Decimals = body[8]
	return nil
}

// InitializeMint returns an instruction setting up an allocated mint.
func InitializeMint(mint tokenvm.Address, decimals uint8, authority, hook, delegate tokenvm.Address) tokenvm.Instruction {
	data, _ := (&InitializeMintMsg{
		Decimals:          decimals,
		MintAuthority:     authority,
		TransferHook:      hook,
		PermanentDelegate: delegate,
	}).Marshal()
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(mint)},
		Data:      data,
	}
}

// InitializeAccount returns an instruction setting up an allocated token
// account.
func InitializeAccount(account, mint, owner tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Writable(account),
			tokenvm.ReadOnly(mint),
			tokenvm.ReadOnly(owner),
		},
		Data: []byte{TagInitializeAccount},
	}
}

// Transfer returns an instruction moving amount between two token accounts
// of a mint without a transfer hook.
func Transfer(source, destination, owner tokenvm.Address, amount uint64) tokenvm.Instruction {
	data, _ := (&AmountMsg{Tag: TagTransfer, Amount: amount}).Marshal()
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Writable(source),
			tokenvm.Writable(destination),
			tokenvm.Signer(owner),
		},
		Data: data,
	}
}

// TransferChecked returns an instruction moving amount between two token
// accounts. Extra accounts are passed to the transfer hook of the mint.
func TransferChecked(source, mint, destination, authority tokenvm.Address, amount uint64, decimals uint8, extra ...tokenvm.AccountMeta) tokenvm.Instruction {
	data, _ := (&TransferCheckedMsg{Amount: amount, Decimals: decimals}).Marshal()
	accounts := []tokenvm.AccountMeta{
		tokenvm.Writable(source),
		tokenvm.ReadOnly(mint),
		tokenvm.Writable(destination),
		tokenvm.Signer(authority),
	}
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts:  append(accounts, extra...),
		Data:      data,
	}
}

// MintTo returns an instruction issuing new tokens.
func MintTo(mint, destination, authority tokenvm.Address, amount uint64) tokenvm.Instruction {
	data, _ := (&AmountMsg{Tag: TagMintTo, Amount: amount}).Marshal()
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Writable(mint),
			tokenvm.Writable(destination),
			tokenvm.Signer(authority),
		},
		Data: data,
	}
}

// Burn returns an instruction destroying tokens.
func Burn(account, mint, authority tokenvm.Address, amount uint64) tokenvm.Instruction {
	data, _ := (&AmountMsg{Tag: TagBurn, Amount: amount}).Marshal()
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Writable(account),
			tokenvm.Writable(mint),
			tokenvm.Signer(authority),
		},
		Data: data,
	}
}

// CloseAccount returns an instruction removing an empty token account.
func CloseAccount(account, destination, owner tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Writable(account),
			tokenvm.Writable(destination),
			tokenvm.Signer(owner),
		},
		Data: []byte{TagCloseAccount},
	}
}

// HookExecute returns the instruction a mint's transfer hook receives.
func HookExecute(hook, source, mint, destination, owner tokenvm.Address, amount uint64, extra ...tokenvm.AccountMeta) tokenvm.Instruction {
	data := make([]byte, 9)
	data[0] = HookExecuteTag
	binary.LittleEndian.PutUint64(data[1:], amount)
	accounts := []tokenvm.AccountMeta{
		tokenvm.ReadOnly(source),
		tokenvm.ReadOnly(mint),
		tokenvm.ReadOnly(destination),
		tokenvm.ReadOnly(owner),
	}
	for _, m := range extra {
		accounts = append(accounts, tokenvm.AccountMeta{Address: m.Address, IsWritable: m.IsWritable})
	}
	return tokenvm.Instruction{ProgramID: hook, Accounts: accounts, Data: data}
}
