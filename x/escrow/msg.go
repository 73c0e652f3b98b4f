package escrow

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/token"
)

// Instruction tags.
const (
	TagOpen   byte = 0
	TagSettle byte = 1
	TagCancel byte = 2
	// TagOpenV2 opens an escrow writing the record with the copy codec.
	TagOpenV2 byte = 3
)

// OpenMsg carries the terms of a new escrow.
type OpenMsg struct {
	// V2 selects TagOpenV2.
	V2              bool
	Bump            byte
	AmountToReceive uint64
	AmountToGive    uint64
}

// Marshal encodes tag(1) bump(1) amount_to_receive(8) amount_to_give(8).
func (m *OpenMsg) Marshal() ([]byte, error) {
	b := make([]byte, 18)
	b[0] = TagOpen
	if m.V2 {
		b[0] = TagOpenV2
	}
	b[1] = m.Bump
	binary.LittleEndian.PutUint64(b[2:], m.AmountToReceive)
	binary.LittleEndian.PutUint64(b[10:], m.AmountToGive)
	return b, nil
}

// Unmarshal decodes the instruction body following the tag.
func (m *OpenMsg) Unmarshal(body []byte) error {
	if len(body) != 17 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "open body of %d bytes", len(body))
	}
	m.Bump = body[0]
	m.AmountToReceive = binary.LittleEndian.Uint64(body[1:])
	m.AmountToGive = binary.LittleEndian.Uint64(body[9:])
	return nil
}

// Validate checks the terms.
func (m *OpenMsg) Validate() error {
	if m.AmountToReceive == 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "amount to receive must not be zero")
	}
	if m.AmountToGive == 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "amount to give must not be zero")
	}
	return nil
}

// Open returns an instruction opening an escrow at record, the address
// derived from maker and msg.Bump.
func Open(programID, record, maker, mintA, mintB tokenvm.Address, msg OpenMsg) tokenvm.Instruction {
	data, _ := msg.Marshal()
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(maker),
			tokenvm.ReadOnly(mintA),
			tokenvm.ReadOnly(mintB),
			tokenvm.Writable(record),
			tokenvm.Writable(ata.Address(maker, mintA)),
			tokenvm.Writable(ata.Address(record, mintA)),
			tokenvm.ReadOnly(tokenvm.SystemProgramID),
			tokenvm.ReadOnly(token.ID),
			tokenvm.ReadOnly(ata.ID),
		},
		Data: data,
	}
}

// Settle returns an instruction in which taker pays the maker and receives
// the deposit of the escrow at record.
func Settle(programID, record, taker, maker, mintA, mintB tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(taker),
			tokenvm.Writable(maker),
			tokenvm.ReadOnly(mintA),
			tokenvm.ReadOnly(mintB),
			tokenvm.Writable(record),
			tokenvm.Writable(ata.Address(taker, mintA)),
			tokenvm.Writable(ata.Address(taker, mintB)),
			tokenvm.Writable(ata.Address(maker, mintB)),
			tokenvm.Writable(ata.Address(record, mintA)),
			tokenvm.ReadOnly(token.ID),
			tokenvm.ReadOnly(ata.ID),
		},
		Data: []byte{TagSettle},
	}
}

// Cancel returns an instruction returning the deposit of the escrow at
// record to its maker.
func Cancel(programID, record, maker, mintA tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(maker),
			tokenvm.Writable(record),
			tokenvm.Writable(ata.Address(record, mintA)),
			tokenvm.Writable(ata.Address(maker, mintA)),
			tokenvm.ReadOnly(tokenvm.SystemProgramID),
			tokenvm.ReadOnly(token.ID),
			tokenvm.ReadOnly(ata.ID),
		},
		Data: []byte{TagCancel},
	}
}
