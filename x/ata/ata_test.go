package ata_test

import (
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
	"github.com/iov-one/tokenvm/vmtest"
	"github.com/iov-one/tokenvm/vmtest/assert"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/token"
)

func TestAddress(t *testing.T) {
	wallet := vmtest.NamedKey("wallet").Address
	mint := vmtest.NamedKey("mint").Address

	addr, bump, err := ata.FindAddress(wallet, mint)
	assert.Nil(t, err)
	assert.Equal(t, addr, ata.Address(wallet, mint))

	derived, err := pda.CreateProgramAddress([][]byte{wallet[:], token.ID[:], mint[:], {bump}}, ata.ID)
	assert.Nil(t, err)
	assert.Equal(t, addr, derived)

	if ata.Address(mint, wallet) == addr {
		t.Fatal("wallet and mint must not be interchangeable")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	c := vmtest.NewChain(t)
	payer := c.CreatePayer("payer")
	mint := c.CreateMint(payer, vmtest.MintOptions{})

	cases := map[string]struct {
		mutate  func(*tokenvm.Instruction)
		wantErr *errors.Error
	}{
		"unknown tag": {
			mutate:  func(ix *tokenvm.Instruction) { ix.Data = []byte{2} },
			wantErr: errors.ErrInvalidInstructionData,
		},
		"missing accounts": {
			mutate:  func(ix *tokenvm.Instruction) { ix.Accounts = ix.Accounts[:5] },
			wantErr: errors.ErrNotEnoughAccountKeys,
		},
		"wrong token program": {
			mutate:  func(ix *tokenvm.Instruction) { ix.Accounts[5].Address = ata.ID },
			wantErr: errors.ErrIncorrectProgramID,
		},
		"wrong system program": {
			mutate:  func(ix *tokenvm.Instruction) { ix.Accounts[4].Address = token.ID },
			wantErr: errors.ErrIncorrectProgramID,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ix := ata.Create(payer.Address, payer.Address, mint)
			tc.mutate(&ix)
			assert.IsErr(t, tc.wantErr, c.Exec(vmtest.Signers(payer), ix))
			if c.Exists(ata.Address(payer.Address, mint)) {
				t.Fatal("no account must be created")
			}
		})
	}
}
