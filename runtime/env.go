package runtime

import (
	"time"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
	"github.com/iov-one/tokenvm/pda"
	"github.com/tendermint/tendermint/libs/log"
)

// env is what a program sees while it runs.
type env struct {
	runtime *Runtime
	tc      *txContext
	frame   *frame
	depth   int
}

var _ tokenvm.Env = (*env)(nil)

func (e *env) ProgramID() tokenvm.Address {
	return e.frame.programID
}

func (e *env) Rent() tokenvm.Rent {
	return e.tc.conf.Rent
}

func (e *env) BlockTime() (time.Time, error) {
	return tokenvm.BlockTime(e.tc.ctx)
}

func (e *env) LoadConfig(pkg string, dst tokenvm.Unmarshaler) error {
	return gconf.Load(e.tc.store, pkg, dst)
}

func (e *env) Logger() log.Logger {
	return tokenvm.GetLogger(e.tc.ctx).With("program", e.frame.programID.String(), "depth", e.depth)
}

func (e *env) Invoke(ix tokenvm.Instruction, accounts []*tokenvm.AccountInfo) error {
	return e.InvokeSigned(ix, accounts)
}

// InvokeSigned checks the privileges the callee asks for against what the
// caller holds, runs the callee and adopts its changes in the caller frame.
func (e *env) InvokeSigned(ix tokenvm.Instruction, accounts []*tokenvm.AccountInfo, signers ...tokenvm.Seeds) error {
	derived := make(map[tokenvm.Address]bool, len(signers))
	for i, seeds := range signers {
		addr, err := pda.CreateProgramAddress(seeds, e.frame.programID)
		if err != nil {
			return errors.Wrapf(err, "signer seeds %d", i)
		}
		derived[addr] = true
	}

	byAddr := make(map[tokenvm.Address]*tokenvm.AccountInfo, len(accounts))
	for _, info := range accounts {
		// Keep the most privileged view if an account was passed twice.
		if prev, ok := byAddr[info.Address]; ok && (prev.IsWritable || prev.IsSigner) {
			continue
		}
		byAddr[info.Address] = info
	}

	callee := make([]*tokenvm.AccountInfo, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		info, ok := byAddr[meta.Address]
		if !ok {
			return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not provided", meta.Address)
		}
		if meta.IsWritable && !info.IsWritable {
			return errors.Wrapf(errors.ErrReadonlyModified, "%s is not writable", meta.Address)
		}
		if meta.IsSigner && !info.IsSigner && !derived[meta.Address] {
			return errors.Wrapf(errors.ErrMissingRequiredSignature, "%s", meta.Address)
		}
		if info.MutablyBorrowed() || (meta.IsWritable && info.Borrowed()) {
			return errors.Wrapf(errors.ErrAccountBorrowFailed, "%s is borrowed", meta.Address)
		}
		callee = append(callee, info.WithPrivileges(meta.IsSigner, meta.IsWritable))
	}

	// Changes made so far belong to the caller and are checked against
	// its own privileges before the callee takes over.
	if err := e.frame.verify(); err != nil {
		return err
	}
	if err := e.runtime.run(e.tc, ix.ProgramID, callee, ix.Data, e.depth+1); err != nil {
		return err
	}
	e.frame.snapshot()
	return nil
}
