package whitelist

import (
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/system"
)

// Program is the whitelist transfer hook.
type Program struct {
	id tokenvm.Address
}

var _ tokenvm.Program = (*Program)(nil)

// NewProgram returns the hook running under given identity.
func NewProgram(id tokenvm.Address) *Program {
	return &Program{id: id}
}

// ID returns the identity of the program.
func (p *Program) ID() tokenvm.Address {
	return p.id
}

// Process implements tokenvm.Program.
func (p *Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if env.ProgramID() != p.id {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "whitelist program is %s, invoked as %s", p.id, env.ProgramID())
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case TagInitialize:
		return p.initialize(env, accounts)
	case TagUpdate:
		flag, err := parseFlag(body)
		if err != nil {
			return err
		}
		return p.update(env, accounts, flag)
	case TagExecute:
		if len(body) != 8 {
			return errors.Wrap(errors.ErrInvalidInstructionData, "execute takes an amount")
		}
		return p.execute(env, accounts, binary.LittleEndian.Uint64(body))
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

func (p *Program) initialize(env tokenvm.Env, accounts []*tokenvm.AccountInfo) error {
	if len(accounts) < 4 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "initialize needs 4 accounts, got %d", len(accounts))
	}
	admin, user, record := accounts[0], accounts[1], accounts[2]
	if err := authorizeAdmin(env, admin); err != nil {
		return err
	}
	addr, bump, err := Address(p.id, user.Address)
	if err != nil {
		return err
	}
	if record.Address != addr {
		return errors.Wrapf(errors.ErrInvalidSeeds, "record of %s must be %s", user.Address, addr)
	}
	create := system.CreateAccount(admin.Address, addr, env.Rent().MinimumBalance(RecordLen), RecordLen, p.id)
	signer := tokenvm.Seeds{[]byte(Seed), user.Address[:], {bump}}
	if err := env.InvokeSigned(create, accounts, signer); err != nil {
		return errors.Wrap(err, "create record")
	}
	return store(record, &Record{IsWhitelisted: true, User: user.Address, Bump: bump})
}

func (p *Program) update(env tokenvm.Env, accounts []*tokenvm.AccountInfo, whitelisted bool) error {
	if len(accounts) < 2 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "update needs 2 accounts, got %d", len(accounts))
	}
	admin, info := accounts[0], accounts[1]
	if err := authorizeAdmin(env, admin); err != nil {
		return err
	}
	r, err := load(p.id, info)
	if err != nil {
		return err
	}
	r.IsWhitelisted = whitelisted
	if err := store(info, r); err != nil {
		return err
	}
	env.Logger().Info("whitelist updated", "user", r.User.String(), "whitelisted", whitelisted)
	return nil
}

// execute is called by the token program with the accounts of a checked
// transfer followed by the whitelist record of the transfer authority.
func (p *Program) execute(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 5 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "execute needs 5 accounts, got %d", len(accounts))
	}
	owner, info := accounts[3], accounts[4]
	addr, _, err := Address(p.id, owner.Address)
	if err != nil {
		return err
	}
	if info.Address != addr {
		return errors.Wrapf(errors.ErrInvalidSeeds, "record of %s must be %s", owner.Address, addr)
	}
	if !info.IsOwnedBy(p.id) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not whitelisted", owner.Address)
	}
	r, err := load(p.id, info)
	if err != nil {
		return err
	}
	if !r.IsWhitelisted {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not whitelisted", owner.Address)
	}
	env.Logger().Debug("transfer allowed", "owner", owner.Address.String(), "amount", amount)
	return nil
}
