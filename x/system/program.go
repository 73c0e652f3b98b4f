package system

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Program is the system program.
type Program struct{}

var _ tokenvm.Program = Program{}

// Process implements tokenvm.Program.
func (p Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if len(data) < 4 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := binary.LittleEndian.Uint32(data), data[4:]
	switch tag {
	case TagCreateAccount:
		var msg CreateAccountMsg
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.createAccount(env, accounts, &msg)
	case TagAssign:
		var msg AssignMsg
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.assign(env, accounts, &msg)
	case TagTransfer:
		var msg TransferMsg
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.transfer(env, accounts, &msg)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

func (Program) createAccount(env tokenvm.Env, accounts []*tokenvm.AccountInfo, msg *CreateAccountMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if len(accounts) < 2 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "create account")
	}
	funder, acc := accounts[0], accounts[1]
	if err := requireSigner(funder, "funder"); err != nil {
		return err
	}
	if err := requireSigner(acc, "new account"); err != nil {
		return err
	}
	if err := requireWallet(funder); err != nil {
		return err
	}
	if !acc.IsOwnedBy(tokenvm.SystemProgramID) || acc.DataLen() != 0 || acc.Lamports() != 0 {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "%s", acc.Address)
	}
	if err := tokenvm.MoveLamports(funder, acc, msg.Lamports); err != nil {
		return err
	}
	if err := acc.Resize(int(msg.Space)); err != nil {
		return err
	}
	if err := acc.Assign(msg.Owner); err != nil {
		return err
	}
	env.Logger().Debug("account created", "address", acc.Address.String(), "owner", msg.Owner.String(), "space", msg.Space)
	return nil
}

func (Program) assign(env tokenvm.Env, accounts []*tokenvm.AccountInfo, msg *AssignMsg) error {
	if len(accounts) < 1 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "assign")
	}
	acc := accounts[0]
	if err := requireSigner(acc, "account"); err != nil {
		return err
	}
	if !acc.IsOwnedBy(tokenvm.SystemProgramID) {
		return errors.Wrapf(errors.ErrIllegalOwner, "%s is owned by %s", acc.Address, acc.Owner())
	}
	return acc.Assign(msg.Owner)
}

func (Program) transfer(env tokenvm.Env, accounts []*tokenvm.AccountInfo, msg *TransferMsg) error {
	if len(accounts) < 2 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "transfer")
	}
	from, to := accounts[0], accounts[1]
	if err := requireSigner(from, "source"); err != nil {
		return err
	}
	if err := requireWallet(from); err != nil {
		return err
	}
	return tokenvm.MoveLamports(from, to, msg.Lamports)
}

func requireSigner(acc *tokenvm.AccountInfo, role string) error {
	if !acc.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "%s %s", role, acc.Address)
	}
	return nil
}

// requireWallet ensures lamports are only debited from plain system accounts.
func requireWallet(acc *tokenvm.AccountInfo) error {
	if !acc.IsOwnedBy(tokenvm.SystemProgramID) || acc.DataLen() != 0 {
		return errors.Wrapf(errors.ErrInvalidArgument, "%s carries data or is owned by a program", acc.Address)
	}
	return nil
}
