/*
Package ata derives and creates the associated token account of a wallet:
the one token account every wallet has for every mint at a well known
address.
*/
package ata

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
)

// ID is the address of the associated token account program.
var ID = tokenvm.MustParseAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// Instruction tags.
const (
	TagCreate           byte = 0
	TagCreateIdempotent byte = 1
)

func seeds(wallet, mint tokenvm.Address) [][]byte {
	return [][]byte{wallet[:], token.ID[:], mint[:]}
}

// FindAddress returns the associated token account of wallet for mint
// together with its bump.
func FindAddress(wallet, mint tokenvm.Address) (tokenvm.Address, byte, error) {
	return pda.FindProgramAddress(seeds(wallet, mint), ID)
}

// Address is FindAddress without the bump. It panics if no address can be
// derived which for 32 byte seeds cannot happen in practice.
func Address(wallet, mint tokenvm.Address) tokenvm.Address {
	addr, _, err := FindAddress(wallet, mint)
	if err != nil {
		panic(err)
	}
	return addr
}

func create(tag byte, payer, wallet, mint tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: ID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(payer),
			tokenvm.Writable(Address(wallet, mint)),
			tokenvm.ReadOnly(wallet),
			tokenvm.ReadOnly(mint),
			tokenvm.ReadOnly(tokenvm.SystemProgramID),
			tokenvm.ReadOnly(token.ID),
		},
		Data: []byte{tag},
	}
}

// Create returns an instruction creating the associated token account of
// wallet for mint, paid by payer. It fails if the account exists.
func Create(payer, wallet, mint tokenvm.Address) tokenvm.Instruction {
	return create(TagCreate, payer, wallet, mint)
}

// CreateIdempotent is Create that succeeds if the account already exists.
func CreateIdempotent(payer, wallet, mint tokenvm.Address) tokenvm.Instruction {
	return create(TagCreateIdempotent, payer, wallet, mint)
}

// Program is the associated token account program.
type Program struct{}

var _ tokenvm.Program = Program{}

// Process implements tokenvm.Program.
func (Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if len(data) != 1 || data[0] > TagCreateIdempotent {
		return errors.Wrap(errors.ErrInvalidInstructionData, "create tag")
	}
	idempotent := data[0] == TagCreateIdempotent
	if len(accounts) < 6 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "create associated account")
	}
	payer, acc, wallet, mint, sysProg, tokenProg := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]
	if sysProg.Address != tokenvm.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "system program %s", sysProg.Address)
	}
	if tokenProg.Address != token.ID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "token program %s", tokenProg.Address)
	}

	addr, bump, err := FindAddress(wallet.Address, mint.Address)
	if err != nil {
		return err
	}
	if addr != acc.Address {
		return errors.Wrapf(errors.ErrInvalidSeeds, "associated account of %s for %s is %s", wallet.Address, mint.Address, addr)
	}

	if acc.IsOwnedBy(token.ID) {
		if !idempotent {
			return errors.Wrapf(errors.ErrAccountAlreadyInUse, "%s", acc.Address)
		}
		_, err := token.LoadAccountOf(acc, mint.Address, wallet.Address)
		return err
	}

	signer := tokenvm.Seeds(append(seeds(wallet.Address, mint.Address), []byte{bump}))
	rent := env.Rent().MinimumBalance(token.AccountLen)
	ix := system.CreateAccount(payer.Address, acc.Address, rent, token.AccountLen, token.ID)
	if err := env.InvokeSigned(ix, accounts, signer); err != nil {
		return errors.Wrap(err, "allocate")
	}
	if err := env.Invoke(token.InitializeAccount(acc.Address, mint.Address, wallet.Address), accounts); err != nil {
		return errors.Wrap(err, "initialize")
	}
	return nil
}
