package vmtest

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/accounts"
	"github.com/iov-one/tokenvm/gconf"
	"github.com/iov-one/tokenvm/runtime"
	"github.com/iov-one/tokenvm/store"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
)

// ChainID is used to sign every transaction executed by a Chain.
const ChainID = "vmtest-chain"

// Chain executes transactions against an in-memory store. The system, token
// and associated token account programs are always registered.
type Chain struct {
	t        testing.TB
	db       tokenvm.CacheableKVStore
	runtime  *runtime.Runtime
	accounts accounts.Bucket
	now      time.Time
	mints    int
}

// NewChain returns a chain with the builtin programs.
func NewChain(t testing.TB) *Chain {
	c := &Chain{
		t:        t,
		db:       store.MemStore(),
		runtime:  runtime.New(),
		accounts: accounts.NewBucket(),
		now:      time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	c.Register(tokenvm.SystemProgramID, system.Program{})
	c.Register(token.ID, token.Program{})
	c.Register(ata.ID, ata.Program{})
	return c
}

// Register adds a program and its executable account.
func (c *Chain) Register(id tokenvm.Address, p tokenvm.Program) {
	c.t.Helper()
	c.runtime.Register(id, p)
	if id == tokenvm.SystemProgramID {
		return
	}
	c.SetAccount(id, &tokenvm.Account{
		Owner:      tokenvm.NativeLoaderID,
		Lamports:   1,
		Executable: true,
	})
}

// DB gives direct access to the state.
func (c *Chain) DB() tokenvm.KVStore {
	return c.db
}

// Now returns the block time of the next transaction.
func (c *Chain) Now() time.Time {
	return c.now
}

// Advance moves the block time forward.
func (c *Chain) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// SaveConfig stores the configuration of a package.
func (c *Chain) SaveConfig(pkg string, conf gconf.ValidMarshaler) {
	c.t.Helper()
	if err := gconf.Save(c.db, pkg, conf); err != nil {
		c.t.Fatalf("cannot save %s configuration: %+v", pkg, err)
	}
}

// SetAccount overwrites the state of an account.
func (c *Chain) SetAccount(addr tokenvm.Address, acc *tokenvm.Account) {
	c.t.Helper()
	if err := c.accounts.Save(c.db, addr, acc); err != nil {
		c.t.Fatalf("cannot save account %s: %+v", addr, err)
	}
}

// Account returns the state of an account, nil if it does not exist.
func (c *Chain) Account(addr tokenvm.Address) *tokenvm.Account {
	c.t.Helper()
	acc, err := c.accounts.Get(c.db, addr)
	if err != nil {
		c.t.Fatalf("cannot load account %s: %+v", addr, err)
	}
	return acc
}

// Exists returns true if the account holds lamports.
func (c *Chain) Exists(addr tokenvm.Address) bool {
	c.t.Helper()
	return c.Account(addr) != nil
}

// Lamports returns the native balance of an address.
func (c *Chain) Lamports(addr tokenvm.Address) uint64 {
	c.t.Helper()
	if acc := c.Account(addr); acc != nil {
		return acc.Lamports
	}
	return 0
}

// Fund credits lamports to a wallet out of thin air.
func (c *Chain) Fund(addr tokenvm.Address, lamports uint64) {
	c.t.Helper()
	acc := c.Account(addr)
	if acc == nil {
		acc = &tokenvm.Account{Owner: tokenvm.SystemProgramID}
	}
	acc.Lamports += lamports
	c.SetAccount(addr, acc)
}

// Context returns the context transactions are executed with.
func (c *Chain) Context() tokenvm.Context {
	ctx := tokenvm.WithChainID(context.Background(), ChainID)
	return tokenvm.WithBlockTime(ctx, c.now)
}

// Exec signs and delivers a transaction. State changes are written only if
// it succeeds.
func (c *Chain) Exec(signers []Key, ixs ...tokenvm.Instruction) error {
	c.t.Helper()
	tx, err := SignTx(ChainID, ixs, signers...)
	if err != nil {
		c.t.Fatalf("cannot sign: %+v", err)
	}
	cache := c.db.CacheWrap()
	if _, err := c.runtime.Deliver(c.Context(), cache, tx); err != nil {
		cache.Discard()
		return err
	}
	return cache.Write()
}

// MustExec is Exec that fails the test on error.
func (c *Chain) MustExec(signers []Key, ixs ...tokenvm.Instruction) {
	c.t.Helper()
	if err := c.Exec(signers, ixs...); err != nil {
		c.t.Fatalf("transaction failed: %+v", err)
	}
}

// Signers is a shortcut for building the signer list of Exec.
func Signers(keys ...Key) []Key {
	return keys
}
