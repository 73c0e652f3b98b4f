package gate

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/token"
)

// Instruction tags.
const (
	TagInitializeVault     byte = 0
	TagInitializeWhitelist byte = 1
	TagCloseWhitelist      byte = 2
	TagDeposit             byte = 3
	TagWithdraw            byte = 4
	TagSlash               byte = 5
	TagMintTo              byte = 6
)

// AmountMsg is the body of every instruction carrying a single number: the
// user limit of InitializeWhitelist or the token amount otherwise.
type AmountMsg struct {
	Tag    byte
	Amount uint64
}

// Marshal encodes tag(1) amount(8, LE).
func (m *AmountMsg) Marshal() ([]byte, error) {
	b := make([]byte, 9)
	b[0] = m.Tag
	binary.LittleEndian.PutUint64(b[1:], m.Amount)
	return b, nil
}

// Unmarshal decodes the body following the tag.
func (m *AmountMsg) Unmarshal(body []byte) error {
	if len(body) != 8 {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "amount body of %d bytes", len(body))
	}
	m.Amount = binary.LittleEndian.Uint64(body)
	return nil
}

func amountIx(programID tokenvm.Address, tag byte, amount uint64, accounts ...tokenvm.AccountMeta) tokenvm.Instruction {
	data, _ := (&AmountMsg{Tag: tag, Amount: amount}).Marshal()
	return tokenvm.Instruction{ProgramID: programID, Accounts: accounts, Data: data}
}

func mustConfig(programID tokenvm.Address) tokenvm.Address {
	addr, _, err := ConfigAddress(programID)
	if err != nil {
		panic(err)
	}
	return addr
}

func mustWhitelist(programID, user tokenvm.Address) tokenvm.Address {
	addr, _, err := WhitelistAddress(programID, user)
	if err != nil {
		panic(err)
	}
	return addr
}

// VaultAddress returns the token account holding the deposits of mint.
func VaultAddress(programID, mint tokenvm.Address) tokenvm.Address {
	return ata.Address(mustConfig(programID), mint)
}

// InitializeVault returns an instruction creating the configuration of the
// gate program and its vault for mint.
func InitializeVault(programID, admin, mint tokenvm.Address) tokenvm.Instruction {
	config := mustConfig(programID)
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(admin),
			tokenvm.Writable(config),
			tokenvm.ReadOnly(mint),
			tokenvm.Writable(ata.Address(config, mint)),
			tokenvm.ReadOnly(tokenvm.SystemProgramID),
			tokenvm.ReadOnly(token.ID),
			tokenvm.ReadOnly(ata.ID),
		},
		Data: []byte{TagInitializeVault},
	}
}

// InitializeWhitelist returns an instruction granting user a withdrawal
// limit.
func InitializeWhitelist(programID, admin, user tokenvm.Address, limit uint64) tokenvm.Instruction {
	return amountIx(programID, TagInitializeWhitelist, limit,
		tokenvm.WritableSigner(admin),
		tokenvm.ReadOnly(mustConfig(programID)),
		tokenvm.ReadOnly(user),
		tokenvm.Writable(mustWhitelist(programID, user)),
		tokenvm.ReadOnly(tokenvm.SystemProgramID),
	)
}

// CloseWhitelist returns an instruction removing the whitelist of user.
func CloseWhitelist(programID, admin, user tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(admin),
			tokenvm.ReadOnly(mustConfig(programID)),
			tokenvm.ReadOnly(user),
			tokenvm.Writable(mustWhitelist(programID, user)),
		},
		Data: []byte{TagCloseWhitelist},
	}
}

func userAccounts(programID, user, mint tokenvm.Address) []tokenvm.AccountMeta {
	config := mustConfig(programID)
	return []tokenvm.AccountMeta{
		tokenvm.WritableSigner(user),
		tokenvm.ReadOnly(config),
		tokenvm.ReadOnly(mint),
		tokenvm.Writable(ata.Address(user, mint)),
		tokenvm.Writable(ata.Address(config, mint)),
		tokenvm.Writable(mustWhitelist(programID, user)),
		tokenvm.ReadOnly(token.ID),
	}
}

// Deposit returns an instruction moving amount from the associated token
// account of user into the vault.
func Deposit(programID, user, mint tokenvm.Address, amount uint64) tokenvm.Instruction {
	return amountIx(programID, TagDeposit, amount, userAccounts(programID, user, mint)...)
}

// Withdraw returns an instruction moving amount from the vault to the
// associated token account of user.
func Withdraw(programID, user, mint tokenvm.Address, amount uint64) tokenvm.Instruction {
	return amountIx(programID, TagWithdraw, amount, userAccounts(programID, user, mint)...)
}

// Slash returns an instruction burning amount from a token account.
func Slash(programID, admin, account, mint tokenvm.Address, amount uint64) tokenvm.Instruction {
	return amountIx(programID, TagSlash, amount,
		tokenvm.Signer(admin),
		tokenvm.ReadOnly(mustConfig(programID)),
		tokenvm.Writable(account),
		tokenvm.Writable(mint),
		tokenvm.ReadOnly(token.ID),
	)
}

// MintTo returns an instruction issuing amount of the vault mint.
func MintTo(programID, admin, mint, destination tokenvm.Address, amount uint64) tokenvm.Instruction {
	return amountIx(programID, TagMintTo, amount,
		tokenvm.Signer(admin),
		tokenvm.ReadOnly(mustConfig(programID)),
		tokenvm.Writable(mint),
		tokenvm.Writable(destination),
		tokenvm.ReadOnly(token.ID),
	)
}
