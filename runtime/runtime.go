/*
Package runtime executes transactions.

Every transaction is authenticated with ed25519 signatures, all accounts it
references are loaded into a transaction local cache and its instructions
run in order. Programs may invoke other programs. Account state is written
back to the store only if every instruction succeeded.
*/
package runtime

import (
	"sort"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/accounts"
	"github.com/iov-one/tokenvm/errors"
	"golang.org/x/crypto/ed25519"
)

// Runtime dispatches instructions to registered programs.
type Runtime struct {
	programs map[tokenvm.Address]tokenvm.Program
	accounts accounts.Bucket
}

var _ tokenvm.Handler = (*Runtime)(nil)

// New returns a runtime without programs.
func New() *Runtime {
	return &Runtime{
		programs: make(map[tokenvm.Address]tokenvm.Program),
		accounts: accounts.NewBucket(),
	}
}

// Register adds a program under given identity. It panics if the identity
// is already taken.
func (r *Runtime) Register(id tokenvm.Address, p tokenvm.Program) *Runtime {
	if _, ok := r.programs[id]; ok {
		panic("program registered twice: " + id.String())
	}
	r.programs[id] = p
	return r
}

// ProgramIDs returns the identities of all registered programs, sorted.
func (r *Runtime) ProgramIDs() []tokenvm.Address {
	ids := make([]tokenvm.Address, 0, len(r.programs))
	for id := range r.programs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}

// Check executes the transaction against the check state so that invalid
// transactions never enter the mempool.
func (r *Runtime) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.CheckResult, error) {
	executed, err := r.execute(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return tokenvm.NewCheck(executed, ""), nil
}

// Deliver executes the transaction.
func (r *Runtime) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.DeliverResult, error) {
	executed, err := r.execute(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return &tokenvm.DeliverResult{Tags: tokenvm.ProgramTags(tx), GasUsed: executed}, nil
}

// execute returns the number of instructions run, nested invocations
// included.
func (r *Runtime) execute(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	signers, err := verifySignatures(ctx, tx)
	if err != nil {
		return 0, err
	}
	conf, err := loadConfig(store)
	if err != nil {
		return 0, err
	}

	tc := &txContext{
		ctx:      ctx,
		store:    store,
		conf:     conf,
		bucket:   r.accounts,
		loaded:   make(map[tokenvm.Address]*tokenvm.AccountInfo),
		original: make(map[tokenvm.Address]*tokenvm.Account),
	}

	for i, ix := range tx.Instructions {
		infos := make([]*tokenvm.AccountInfo, 0, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !signers[meta.Address] {
				return 0, errors.Wrapf(errors.ErrMissingRequiredSignature, "instruction %d: %s", i, meta.Address)
			}
			base, err := tc.load(meta.Address)
			if err != nil {
				return 0, err
			}
			infos = append(infos, base.WithPrivileges(meta.IsSigner, meta.IsWritable))
		}
		if err := r.run(tc, ix.ProgramID, infos, ix.Data, 1); err != nil {
			return 0, errors.Wrapf(err, "instruction %d", i)
		}
	}

	if err := tc.writeBack(); err != nil {
		return 0, err
	}
	return tc.executed, nil
}

// verifySignatures checks every signature against the sign bytes of the
// transaction and returns the set of signers.
func verifySignatures(ctx tokenvm.Context, tx *tokenvm.Tx) (map[tokenvm.Address]bool, error) {
	chainID := tokenvm.GetChainID(ctx)
	if chainID == "" {
		return nil, errors.Wrap(errors.ErrHuman, "chain id not present in the context")
	}
	msg, err := tx.SignBytes(chainID)
	if err != nil {
		return nil, err
	}
	signers := make(map[tokenvm.Address]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(s.Signer[:]), msg, s.Sig) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "invalid signature of %s", s.Signer)
		}
		signers[s.Signer] = true
	}
	return signers, nil
}

// run executes a single instruction in its own frame.
func (r *Runtime) run(tc *txContext, programID tokenvm.Address, infos []*tokenvm.AccountInfo, data []byte, depth int) error {
	if depth > tc.conf.MaxInvokeDepth {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", depth)
	}
	prog, ok := r.programs[programID]
	if !ok {
		return errors.Wrapf(errors.ErrUnsupportedProgram, "%s", programID)
	}
	tc.executed++

	f := newFrame(programID, infos)
	e := &env{
		runtime: r,
		tc:      tc,
		frame:   f,
		depth:   depth,
	}
	if err := prog.Process(e, infos, data); err != nil {
		return err
	}
	for _, info := range infos {
		if info.Borrowed() {
			return errors.Wrapf(errors.ErrAccountBorrowFailed, "%s borrow not released by %s", info.Address, programID)
		}
	}
	return f.verify()
}

// txContext holds the state of a single transaction execution.
type txContext struct {
	ctx      tokenvm.Context
	store    tokenvm.KVStore
	conf     Configuration
	bucket   accounts.Bucket
	executed int64

	// loaded keeps one view per address. Its privileges are never used.
	loaded map[tokenvm.Address]*tokenvm.AccountInfo
	// original is the state before the transaction, nil if missing.
	original map[tokenvm.Address]*tokenvm.Account
}

func (tc *txContext) load(addr tokenvm.Address) (*tokenvm.AccountInfo, error) {
	if info, ok := tc.loaded[addr]; ok {
		return info, nil
	}
	acc, err := tc.bucket.Get(tc.store, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", addr)
	}
	if acc != nil {
		tc.original[addr] = acc.Clone()
	} else {
		tc.original[addr] = nil
	}
	info := tokenvm.NewAccountInfo(addr, acc, false, false)
	tc.loaded[addr] = info
	return info, nil
}

// writeBack persists every modified account. Accounts left without lamports
// are removed. Accounts holding data must stay rent exempt. Nothing is
// written unless every account passes.
func (tc *txContext) writeBack() error {
	addrs := make([]tokenvm.Address, 0, len(tc.loaded))
	for a := range tc.loaded {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Compare(addrs[j]) < 0 })

	dirty := make([]tokenvm.Address, 0, len(addrs))
	snapshots := make(map[tokenvm.Address]*tokenvm.Account, len(addrs))
	for _, a := range addrs {
		cur := tc.loaded[a].Snapshot()
		orig := tc.original[a]
		switch {
		case orig == nil && cur.Lamports == 0:
			continue
		case orig != nil && orig.Equal(cur):
			continue
		}
		if cur.Lamports > 0 && len(cur.Data) > 0 && !tc.conf.Rent.IsExempt(cur.Lamports, len(cur.Data)) {
			return errors.Wrapf(errors.ErrInsufficientFunds, "%s is not rent exempt", a)
		}
		dirty = append(dirty, a)
		snapshots[a] = cur
	}

	for _, a := range dirty {
		if err := tc.bucket.Save(tc.store, a, snapshots[a]); err != nil {
			return errors.Wrapf(err, "save %s", a)
		}
	}
	return nil
}
