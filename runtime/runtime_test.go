package runtime

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/accounts"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
	"github.com/iov-one/tokenvm/store"
	"github.com/iov-one/tokenvm/vmtest/assert"
	"golang.org/x/crypto/ed25519"
)

const testChainID = "runtime-test"

var (
	bankID   = tokenvm.Address{0xb0}
	callerID = tokenvm.Address{0xc0}
	signerID = tokenvm.Address{0xd0}
)

type testKey struct {
	addr tokenvm.Address
	priv ed25519.PrivateKey
}

func newKey(name string) testKey {
	seed := sha256.Sum256([]byte(name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return testKey{
		addr: tokenvm.MustAddress(priv.Public().(ed25519.PublicKey)),
		priv: priv,
	}
}

func signedTx(t testing.TB, ixs []tokenvm.Instruction, keys ...testKey) *tokenvm.Tx {
	t.Helper()
	tx := &tokenvm.Tx{Instructions: ixs}
	msg, err := tx.SignBytes(testChainID)
	assert.Nil(t, err)
	for _, k := range keys {
		tx.Signatures = append(tx.Signatures, tokenvm.Signature{
			Signer: k.addr,
			Sig:    ed25519.Sign(k.priv, msg),
		})
	}
	return tx
}

func u64(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

// bank moves lamports from the first to the second account.
var bank = tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
	if len(accs) < 2 {
		return errors.ErrNotEnoughAccountKeys
	}
	if len(data) != 8 {
		return errors.ErrInvalidInstructionData
	}
	return tokenvm.MoveLamports(accs[0], accs[1], binary.LittleEndian.Uint64(data))
})

// requireSigner fails unless the first account signed.
var requireSigner = tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
	if len(accs) == 0 || !accs[0].IsSigner {
		return errors.ErrMissingRequiredSignature
	}
	return nil
})

type fixture struct {
	db      tokenvm.CacheableKVStore
	runtime *Runtime
	ctx     tokenvm.Context
}

func newFixture(t testing.TB, progs map[tokenvm.Address]tokenvm.Program, state map[tokenvm.Address]*tokenvm.Account) *fixture {
	t.Helper()
	rt := New()
	for id, p := range progs {
		rt.Register(id, p)
	}
	db := store.MemStore()
	b := accounts.NewBucket()
	for addr, acc := range state {
		assert.Nil(t, b.Save(db, addr, acc))
	}
	ctx := tokenvm.WithChainID(context.Background(), testChainID)
	return &fixture{db: db, runtime: rt, ctx: ctx}
}

func (f *fixture) account(t testing.TB, addr tokenvm.Address) *tokenvm.Account {
	t.Helper()
	acc, err := accounts.NewBucket().Get(f.db, addr)
	assert.Nil(t, err)
	return acc
}

func TestSignatureVerification(t *testing.T) {
	alice := newKey("alice")
	bob := newKey("bob")
	ix := tokenvm.Instruction{
		ProgramID: signerID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
	}

	cases := map[string]struct {
		tx      func(t testing.TB) *tokenvm.Tx
		wantErr *errors.Error
	}{
		"signed by the signer": {
			tx: func(t testing.TB) *tokenvm.Tx {
				return signedTx(t, []tokenvm.Instruction{ix}, alice)
			},
		},
		"extra signatures are fine": {
			tx: func(t testing.TB) *tokenvm.Tx {
				return signedTx(t, []tokenvm.Instruction{ix}, alice, bob)
			},
		},
		"missing signature": {
			tx: func(t testing.TB) *tokenvm.Tx {
				return signedTx(t, []tokenvm.Instruction{ix}, bob)
			},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"forged signature": {
			tx: func(t testing.TB) *tokenvm.Tx {
				tx := signedTx(t, []tokenvm.Instruction{ix}, bob)
				tx.Signatures[0].Signer = alice.addr
				return tx
			},
			wantErr: errors.ErrUnauthorized,
		},
		"signature for another chain": {
			tx: func(t testing.TB) *tokenvm.Tx {
				tx := &tokenvm.Tx{Instructions: []tokenvm.Instruction{ix}}
				msg, err := tx.SignBytes("another-chain")
				assert.Nil(t, err)
				tx.Signatures = []tokenvm.Signature{{Signer: alice.addr, Sig: ed25519.Sign(alice.priv, msg)}}
				return tx
			},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown program": {
			tx: func(t testing.TB) *tokenvm.Tx {
				unknown := ix
				unknown.ProgramID = tokenvm.Address{0xff}
				return signedTx(t, []tokenvm.Instruction{unknown}, alice)
			},
			wantErr: errors.ErrUnsupportedProgram,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, map[tokenvm.Address]tokenvm.Program{signerID: requireSigner}, nil)
			_, err := f.runtime.Deliver(f.ctx, f.db, tc.tx(t))
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestLamportRules(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	wallet := tokenvm.Address{2}

	cases := map[string]struct {
		from, to tokenvm.AccountMeta
		amount   uint64
		wantErr  *errors.Error
	}{
		"debit owned writable": {
			from:   tokenvm.Writable(owned),
			to:     tokenvm.Writable(wallet),
			amount: 10,
		},
		"debit readonly": {
			from:    tokenvm.ReadOnly(owned),
			to:      tokenvm.Writable(wallet),
			amount:  10,
			wantErr: errors.ErrReadonlyModified,
		},
		"credit readonly": {
			from:    tokenvm.Writable(owned),
			to:      tokenvm.ReadOnly(wallet),
			amount:  10,
			wantErr: errors.ErrReadonlyModified,
		},
		"debit not owned": {
			from:    tokenvm.Writable(wallet),
			to:      tokenvm.Writable(owned),
			amount:  10,
			wantErr: errors.ErrReadonlyModified,
		},
		"insufficient funds": {
			from:    tokenvm.Writable(owned),
			to:      tokenvm.Writable(wallet),
			amount:  1001,
			wantErr: errors.ErrInsufficientFunds,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t,
				map[tokenvm.Address]tokenvm.Program{bankID: bank},
				map[tokenvm.Address]*tokenvm.Account{
					owned:  {Owner: bankID, Lamports: 1000},
					wallet: {Lamports: 1000},
				})
			tx := signedTx(t, []tokenvm.Instruction{{
				ProgramID: bankID,
				Accounts:  []tokenvm.AccountMeta{tc.from, tc.to},
				Data:      u64(tc.amount),
			}}, alice)
			res, err := f.runtime.Deliver(f.ctx, f.db, tx)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				assert.Equal(t, uint64(1000), f.account(t, owned).Lamports)
				assert.Equal(t, uint64(1000), f.account(t, wallet).Lamports)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, int64(1), res.GasUsed)
			assert.Equal(t, uint64(990), f.account(t, owned).Lamports)
			assert.Equal(t, uint64(1010), f.account(t, wallet).Lamports)
		})
	}
}

func TestUnbalancedInstruction(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	mint := tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
		accs[0].SetLamports(accs[0].Lamports() + 1)
		return nil
	})
	f := newFixture(t,
		map[tokenvm.Address]tokenvm.Program{bankID: mint},
		map[tokenvm.Address]*tokenvm.Account{owned: {Owner: bankID, Lamports: 5}})
	tx := signedTx(t, []tokenvm.Instruction{{
		ProgramID: bankID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned)},
	}}, alice)
	_, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.IsErr(t, errors.ErrUnbalancedInstruction, err)
}

func TestDataAndOwnerRules(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	foreign := tokenvm.Address{2}
	program := tokenvm.Address{3}

	writeData := tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
		buf, release, err := accs[0].MutData()
		if err != nil {
			return err
		}
		defer release()
		buf[0] = 42
		return nil
	})
	steal := tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
		return accs[0].Assign(env.ProgramID())
	})
	state := map[tokenvm.Address]*tokenvm.Account{
		owned:   {Owner: bankID, Lamports: 5000000, Data: []byte{0}},
		foreign: {Owner: signerID, Lamports: 5000000, Data: []byte{0}},
		program: {Owner: tokenvm.NativeLoaderID, Lamports: 1, Executable: true},
	}

	cases := map[string]struct {
		prog    tokenvm.Program
		meta    tokenvm.AccountMeta
		wantErr *errors.Error
	}{
		"write owned": {
			prog: writeData,
			meta: tokenvm.Writable(owned),
		},
		"write owned readonly": {
			prog:    writeData,
			meta:    tokenvm.ReadOnly(owned),
			wantErr: errors.ErrReadonlyModified,
		},
		"write foreign": {
			prog:    writeData,
			meta:    tokenvm.Writable(foreign),
			wantErr: errors.ErrReadonlyModified,
		},
		"assign foreign": {
			prog:    steal,
			meta:    tokenvm.Writable(foreign),
			wantErr: errors.ErrIllegalOwner,
		},
		"assign executable": {
			prog:    steal,
			meta:    tokenvm.Writable(program),
			wantErr: errors.ErrReadonlyModified,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, map[tokenvm.Address]tokenvm.Program{bankID: tc.prog}, state)
			tx := signedTx(t, []tokenvm.Instruction{{
				ProgramID: bankID,
				Accounts:  []tokenvm.AccountMeta{tc.meta},
			}}, alice)
			_, err := f.runtime.Deliver(f.ctx, f.db, tx)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, []byte{42}, f.account(t, owned).Data)
		})
	}
}

func TestCrossProgramInvocation(t *testing.T) {
	alice := newKey("alice")
	seeds := tokenvm.Seeds{[]byte("vault")}
	vault, bump, err := pda.FindProgramAddress(seeds, callerID)
	assert.Nil(t, err)
	signerSeeds := tokenvm.Seeds{[]byte("vault"), {bump}}

	cases := map[string]struct {
		caller  tokenvm.ProgramFunc
		metas   []tokenvm.AccountMeta
		wantErr *errors.Error
	}{
		"signature is inherited": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.Invoke(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
				}, accs)
			},
			metas: []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
		},
		"signature cannot be escalated": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.Invoke(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
				}, accs)
			},
			metas:   []tokenvm.AccountMeta{tokenvm.ReadOnly(alice.addr)},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"writable cannot be escalated": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.Invoke(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.WritableSigner(alice.addr)},
				}, accs)
			},
			metas:   []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
			wantErr: errors.ErrReadonlyModified,
		},
		"account not provided": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.Invoke(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(vault)},
				}, accs)
			},
			metas:   []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
			wantErr: errors.ErrNotEnoughAccountKeys,
		},
		"program signs for its address": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.InvokeSigned(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(vault)},
				}, accs, signerSeeds)
			},
			metas: []tokenvm.AccountMeta{tokenvm.ReadOnly(vault)},
		},
		"program signs with wrong seeds": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				return env.InvokeSigned(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(vault)},
				}, accs, tokenvm.Seeds{[]byte("other"), {bump}})
			},
			metas:   []tokenvm.AccountMeta{tokenvm.ReadOnly(vault)},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"mutably borrowed account cannot be passed": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				_, release, err := accs[0].MutData()
				if err != nil {
					return err
				}
				defer release()
				return env.Invoke(tokenvm.Instruction{
					ProgramID: signerID,
					Accounts:  []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
				}, accs)
			},
			metas:   []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
			wantErr: errors.ErrAccountBorrowFailed,
		},
		"borrow must be released": {
			caller: func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
				_, _, err := accs[0].Data()
				return err
			},
			metas:   []tokenvm.AccountMeta{tokenvm.Signer(alice.addr)},
			wantErr: errors.ErrAccountBorrowFailed,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, map[tokenvm.Address]tokenvm.Program{
				callerID: tc.caller,
				signerID: requireSigner,
			}, nil)
			tx := signedTx(t, []tokenvm.Instruction{{
				ProgramID: callerID,
				Accounts:  tc.metas,
			}}, alice)
			res, err := f.runtime.Deliver(f.ctx, f.db, tx)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, int64(2), res.GasUsed)
		})
	}
}

func TestInvokeDepth(t *testing.T) {
	alice := newKey("alice")
	var calls int
	recurse := tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
		calls++
		return env.Invoke(tokenvm.Instruction{ProgramID: callerID}, accs)
	})
	f := newFixture(t, map[tokenvm.Address]tokenvm.Program{callerID: recurse}, nil)
	tx := signedTx(t, []tokenvm.Instruction{{ProgramID: callerID}}, alice)
	_, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.IsErr(t, errors.ErrCallDepth, err)
	assert.Equal(t, DefaultMaxInvokeDepth, calls)
}

func TestCalleeChangesAreAdopted(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	wallet := tokenvm.Address{2}

	// The caller only forwards to the bank and then checks the new balance.
	caller := tokenvm.ProgramFunc(func(env tokenvm.Env, accs []*tokenvm.AccountInfo, data []byte) error {
		err := env.Invoke(tokenvm.Instruction{
			ProgramID: bankID,
			Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned), tokenvm.Writable(wallet)},
			Data:      data,
		}, accs)
		if err != nil {
			return err
		}
		if accs[1].Lamports() != 1300 {
			return errors.Wrapf(errors.ErrState, "balance %d", accs[1].Lamports())
		}
		return nil
	})
	f := newFixture(t,
		map[tokenvm.Address]tokenvm.Program{bankID: bank, callerID: caller},
		map[tokenvm.Address]*tokenvm.Account{
			owned:  {Owner: bankID, Lamports: 1000},
			wallet: {Lamports: 1000},
		})
	tx := signedTx(t, []tokenvm.Instruction{{
		ProgramID: callerID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned), tokenvm.Writable(wallet)},
		Data:      u64(300),
	}}, alice)
	_, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.Nil(t, err)
	assert.Equal(t, uint64(700), f.account(t, owned).Lamports)
	assert.Equal(t, uint64(1300), f.account(t, wallet).Lamports)
}

func TestTransactionAtomicity(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	wallet := tokenvm.Address{2}
	f := newFixture(t,
		map[tokenvm.Address]tokenvm.Program{bankID: bank},
		map[tokenvm.Address]*tokenvm.Account{
			owned:  {Owner: bankID, Lamports: 1000},
			wallet: {Lamports: 1000},
		})
	move := func(amount uint64) tokenvm.Instruction {
		return tokenvm.Instruction{
			ProgramID: bankID,
			Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned), tokenvm.Writable(wallet)},
			Data:      u64(amount),
		}
	}

	tx := signedTx(t, []tokenvm.Instruction{move(600), move(600)}, alice)
	_, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	assert.Equal(t, uint64(1000), f.account(t, owned).Lamports)

	// Draining an account removes it.
	tx = signedTx(t, []tokenvm.Instruction{move(400), move(600)}, alice)
	res, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), res.GasUsed)
	assert.Equal(t, 2, len(res.Tags))
	if acc := f.account(t, owned); acc != nil {
		t.Fatalf("drained account must be removed, got %+v", acc)
	}
	assert.Equal(t, uint64(2000), f.account(t, wallet).Lamports)
}

func TestRentExemptionOnWriteBack(t *testing.T) {
	alice := newKey("alice")
	owned := tokenvm.Address{1}
	wallet := tokenvm.Address{2}
	minimum := tokenvm.DefaultRent.MinimumBalance(10)

	f := newFixture(t,
		map[tokenvm.Address]tokenvm.Program{bankID: bank},
		map[tokenvm.Address]*tokenvm.Account{
			owned:  {Owner: bankID, Lamports: minimum + 5, Data: make([]byte, 10)},
			wallet: {Lamports: 1},
		})
	move := func(amount uint64) *tokenvm.Tx {
		return signedTx(t, []tokenvm.Instruction{{
			ProgramID: bankID,
			Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned), tokenvm.Writable(wallet)},
			Data:      u64(amount),
		}}, alice)
	}

	_, err := f.runtime.Deliver(f.ctx, f.db, move(6))
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	_, err = f.runtime.Deliver(f.ctx, f.db, move(5))
	assert.Nil(t, err)
	assert.Equal(t, minimum, f.account(t, owned).Lamports)
}

func TestFailedWriteBackPersistsNothing(t *testing.T) {
	alice := newKey("alice")
	// The credited wallet sorts before the account failing the rent check.
	wallet := tokenvm.Address{1}
	owned := tokenvm.Address{2}
	minimum := tokenvm.DefaultRent.MinimumBalance(10)

	f := newFixture(t,
		map[tokenvm.Address]tokenvm.Program{bankID: bank},
		map[tokenvm.Address]*tokenvm.Account{
			owned:  {Owner: bankID, Lamports: minimum, Data: make([]byte, 10)},
			wallet: {Lamports: 7},
		})
	tx := signedTx(t, []tokenvm.Instruction{{
		ProgramID: bankID,
		Accounts:  []tokenvm.AccountMeta{tokenvm.Writable(owned), tokenvm.Writable(wallet)},
		Data:      u64(1),
	}}, alice)

	_, err := f.runtime.Deliver(f.ctx, f.db, tx)
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	assert.Equal(t, uint64(7), f.account(t, wallet).Lamports)
	assert.Equal(t, minimum, f.account(t, owned).Lamports)
}
