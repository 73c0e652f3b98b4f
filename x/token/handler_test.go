package token_test

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/vmtest"
	"github.com/iov-one/tokenvm/vmtest/assert"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/token"
)

func TestMintAndTransfer(t *testing.T) {
	c := vmtest.NewChain(t)
	issuer := c.CreatePayer("issuer")
	alice := c.CreatePayer("alice")
	bob := c.CreatePayer("bob")

	mint := c.CreateMint(issuer, vmtest.MintOptions{Decimals: 6})
	aliceATA := c.CreateATA(alice, alice.Address, mint)
	bobATA := c.CreateATA(alice, bob.Address, mint)

	c.MintTo(issuer, mint, aliceATA, 1000)
	assert.Equal(t, uint64(1000), c.Mint(mint).Supply)
	assert.Equal(t, uint64(1000), c.Balance(aliceATA))

	err := c.Exec(vmtest.Signers(alice), token.MintTo(mint, aliceATA, alice.Address, 1))
	assert.IsErr(t, errors.ErrIllegalOwner, err)

	c.MustExec(vmtest.Signers(alice), token.Transfer(aliceATA, bobATA, alice.Address, 400))
	assert.Equal(t, uint64(600), c.Balance(aliceATA))
	assert.Equal(t, uint64(400), c.Balance(bobATA))

	c.MustExec(vmtest.Signers(bob), token.TransferChecked(bobATA, mint, aliceATA, bob.Address, 100, 6))
	assert.Equal(t, uint64(700), c.Balance(aliceATA))
	assert.Equal(t, uint64(300), c.Balance(bobATA))

	cases := map[string]struct {
		ix      tokenvm.Instruction
		signer  vmtest.Key
		wantErr *errors.Error
	}{
		"insufficient funds": {
			ix:      token.Transfer(bobATA, aliceATA, bob.Address, 301),
			signer:  bob,
			wantErr: errors.ErrInsufficientFunds,
		},
		"not the owner": {
			ix:      token.Transfer(bobATA, aliceATA, alice.Address, 1),
			signer:  alice,
			wantErr: errors.ErrIllegalOwner,
		},
		"wrong decimals": {
			ix:      token.TransferChecked(bobATA, mint, aliceATA, bob.Address, 1, 9),
			signer:  bob,
			wantErr: errors.ErrInvalidArgument,
		},
		"close with balance": {
			ix:      token.CloseAccount(bobATA, bob.Address, bob.Address),
			signer:  bob,
			wantErr: errors.ErrNonEmptyAccount,
		},
		"burn more than held": {
			ix:      token.Burn(bobATA, mint, bob.Address, 301),
			signer:  bob,
			wantErr: errors.ErrInsufficientFunds,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := c.Exec(vmtest.Signers(tc.signer), tc.ix)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, uint64(700), c.Balance(aliceATA))
			assert.Equal(t, uint64(300), c.Balance(bobATA))
		})
	}

	c.MustExec(vmtest.Signers(bob), token.Burn(bobATA, mint, bob.Address, 300))
	assert.Equal(t, uint64(700), c.Mint(mint).Supply)

	before := c.Lamports(bob.Address)
	rent := c.Lamports(bobATA)
	c.MustExec(vmtest.Signers(bob), token.CloseAccount(bobATA, bob.Address, bob.Address))
	if c.Exists(bobATA) {
		t.Fatal("closed token account must be removed")
	}
	assert.Equal(t, before+rent, c.Lamports(bob.Address))
}

func TestMintOverflow(t *testing.T) {
	c := vmtest.NewChain(t)
	issuer := c.CreatePayer("issuer")
	mint := c.CreateMint(issuer, vmtest.MintOptions{})
	dest := c.CreateATA(issuer, issuer.Address, mint)

	c.MintTo(issuer, mint, dest, ^uint64(0))
	err := c.Exec(vmtest.Signers(issuer), token.MintTo(mint, dest, issuer.Address, 1))
	assert.IsErr(t, errors.ErrArithmeticOverflow, err)
}

func TestTransferHook(t *testing.T) {
	hookID := tokenvm.Address{0x77}
	var calls []uint64
	hook := tokenvm.ProgramFunc(func(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
		if len(data) != 9 || data[0] != token.HookExecuteTag {
			return errors.ErrInvalidInstructionData
		}
		amount := binary.LittleEndian.Uint64(data[1:])
		if amount > 100 {
			return errors.Wrap(errors.ErrUnauthorized, "amount over limit")
		}
		if len(accounts) != 5 {
			return errors.ErrNotEnoughAccountKeys
		}
		calls = append(calls, amount)
		return nil
	})

	c := vmtest.NewChain(t)
	c.Register(hookID, hook)
	issuer := c.CreatePayer("issuer")
	alice := c.CreatePayer("alice")
	mint := c.CreateMint(issuer, vmtest.MintOptions{Decimals: 2, TransferHook: hookID})
	aliceATA := c.CreateATA(alice, alice.Address, mint)
	issuerATA := c.CreateATA(issuer, issuer.Address, mint)
	c.MintTo(issuer, mint, issuerATA, 1000)

	extra := tokenvm.ReadOnly(tokenvm.Address{0x78})

	err := c.Exec(vmtest.Signers(issuer), token.Transfer(issuerATA, aliceATA, issuer.Address, 10))
	assert.IsErr(t, errors.ErrInvalidArgument, err)

	c.MustExec(vmtest.Signers(issuer), token.TransferChecked(issuerATA, mint, aliceATA, issuer.Address, 10, 2, extra))
	assert.Equal(t, []uint64{10}, calls)
	assert.Equal(t, uint64(10), c.Balance(aliceATA))

	// A rejecting hook reverts the transfer.
	err = c.Exec(vmtest.Signers(issuer), token.TransferChecked(issuerATA, mint, aliceATA, issuer.Address, 500, 2, extra))
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, uint64(10), c.Balance(aliceATA))
	assert.Equal(t, uint64(990), c.Balance(issuerATA))
}

func TestPermanentDelegate(t *testing.T) {
	c := vmtest.NewChain(t)
	issuer := c.CreatePayer("issuer")
	alice := c.CreatePayer("alice")
	mint := c.CreateMint(issuer, vmtest.MintOptions{PermanentDelegate: issuer.Address})
	aliceATA := c.CreateATA(alice, alice.Address, mint)
	issuerATA := c.CreateATA(issuer, issuer.Address, mint)
	c.MintTo(issuer, mint, aliceATA, 100)

	// The delegate may not use the unchecked transfer.
	err := c.Exec(vmtest.Signers(issuer), token.Transfer(aliceATA, issuerATA, issuer.Address, 10))
	assert.IsErr(t, errors.ErrIllegalOwner, err)

	c.MustExec(vmtest.Signers(issuer), token.TransferChecked(aliceATA, mint, issuerATA, issuer.Address, 10, 0))
	c.MustExec(vmtest.Signers(issuer), token.Burn(aliceATA, mint, issuer.Address, 30))
	assert.Equal(t, uint64(60), c.Balance(aliceATA))
	assert.Equal(t, uint64(10), c.Balance(issuerATA))
	assert.Equal(t, uint64(70), c.Mint(mint).Supply)
}

func TestAssociatedAccount(t *testing.T) {
	c := vmtest.NewChain(t)
	issuer := c.CreatePayer("issuer")
	alice := c.CreatePayer("alice")
	mint := c.CreateMint(issuer, vmtest.MintOptions{})

	addr := c.CreateATA(issuer, alice.Address, mint)
	acc := c.TokenAccount(addr)
	assert.Equal(t, mint, acc.Mint)
	assert.Equal(t, alice.Address, acc.Owner)
	assert.Equal(t, token.ID, c.Account(addr).Owner)
	assert.Equal(t, tokenvm.DefaultRent.MinimumBalance(token.AccountLen), c.Lamports(addr))

	err := c.Exec(vmtest.Signers(issuer), ata.Create(issuer.Address, alice.Address, mint))
	assert.IsErr(t, errors.ErrAccountAlreadyInUse, err)
	c.MustExec(vmtest.Signers(issuer), ata.CreateIdempotent(issuer.Address, alice.Address, mint))

	// An address that is not the derived one is refused.
	ix := ata.Create(issuer.Address, alice.Address, mint)
	ix.Accounts[1].Address = tokenvm.Address{0x01}
	assert.IsErr(t, errors.ErrInvalidSeeds, c.Exec(vmtest.Signers(issuer), ix))
}
