package system

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Instruction tags.
const (
	TagCreateAccount uint32 = 0
	TagAssign        uint32 = 1
	TagTransfer      uint32 = 2
)

// CreateAccountMsg funds a new account, allocates its data and assigns it
// to a program.
type CreateAccountMsg struct {
	Lamports uint64
	Space    uint64
	Owner    tokenvm.Address
}

// Marshal encodes tag(4) lamports(8) space(8) owner(32).
func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	b := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(b, TagCreateAccount)
	binary.LittleEndian.PutUint64(b[4:], m.Lamports)
	binary.LittleEndian.PutUint64(b[12:], m.Space)
	copy(b[20:], m.Owner[:])
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *CreateAccountMsg) Unmarshal(body []byte) error {
	if len(body) != 8+8+32 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "create account body of %d bytes", len(body))
	}
	m.Lamports = binary.LittleEndian.Uint64(body)
	m.Space = binary.LittleEndian.Uint64(body[8:])
	copy(m.Owner[:], body[16:])
	return nil
}

// Validate checks the message.
func (m *CreateAccountMsg) Validate() error {
	if m.Space > tokenvm.MaxAccountDataLen {
		return errors.Wrapf(errors.ErrInvalidArgument, "space %d", m.Space)
	}
	return nil
}

// AssignMsg changes the owner of a system account.
type AssignMsg struct {
	Owner tokenvm.Address
}

// Marshal encodes tag(4) owner(32).
func (m *AssignMsg) Marshal() ([]byte, error) {
	b := make([]byte, 4+32)
	binary.LittleEndian.PutUint32(b, TagAssign)
	copy(b[4:], m.Owner[:])
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *AssignMsg) Unmarshal(body []byte) error {
	if len(body) != 32 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "assign body of %d bytes", len(body))
	}
	copy(m.Owner[:], body)
	return nil
}

// TransferMsg moves lamports between two wallets.
type TransferMsg struct {
	Lamports uint64
}

// Marshal encodes tag(4) lamports(8).
func (m *TransferMsg) Marshal() ([]byte, error) {
	b := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(b, TagTransfer)
	binary.LittleEndian.PutUint64(b[4:], m.Lamports)
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *TransferMsg) Unmarshal(body []byte) error {
	if len(body) != 8 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "transfer body of %d bytes", len(body))
	}
	m.Lamports = binary.LittleEndian.Uint64(body)
	return nil
}

// CreateAccount returns an instruction funding newAccount from funder.
// Both must sign.
func CreateAccount(funder, newAccount tokenvm.Address, lamports, space uint64, owner tokenvm.Address) tokenvm.Instruction {
	data, _ := (&CreateAccountMsg{Lamports: lamports, Space: space, Owner: owner}).Marshal()
	return tokenvm.Instruction{
		ProgramID: tokenvm.SystemProgramID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(funder),
			tokenvm.WritableSigner(newAccount),
		},
		Data: data,
	}
}

// Assign returns an instruction handing account over to owner.
func Assign(account, owner tokenvm.Address) tokenvm.Instruction {
	data, _ := (&AssignMsg{Owner: owner}).Marshal()
	return tokenvm.Instruction{
		ProgramID: tokenvm.SystemProgramID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.WritableSigner(account)},
		Data:      data,
	}
}

// Transfer returns an instruction moving lamports from a signing wallet.
func Transfer(from, to tokenvm.Address, lamports uint64) tokenvm.Instruction {
	data, _ := (&TransferMsg{Lamports: lamports}).Marshal()
	return tokenvm.Instruction{
		ProgramID: tokenvm.SystemProgramID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(from),
			tokenvm.Writable(to),
		},
		Data: data,
	}
}
