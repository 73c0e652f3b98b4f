package tokenvm

import (
	"bytes"
	"testing"

	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestTxEncoding(t *testing.T) {
	program := MustParseAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	tx := &Tx{
		Instructions: []Instruction{
			{
				ProgramID: program,
				Accounts: []AccountMeta{
					WritableSigner(Address{1}),
					ReadOnly(Address{2}),
					Writable(SystemProgramID),
				},
				Data: []byte{0, 1, 2},
			},
			{ProgramID: SystemProgramID},
		},
		Signatures: []Signature{{Signer: Address{1}, Sig: []byte{9, 9}}},
	}
	raw, err := tx.Marshal()
	assert.Nil(t, err)

	got, err := DecodeTx(raw)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(got.Instructions))
	assert.Equal(t, tx.Instructions[0].Accounts, got.Instructions[0].Accounts)
	assert.Equal(t, tx.Instructions[0].Data, got.Instructions[0].Data)
	// The zero address must survive as a program id and as an account.
	assert.Equal(t, SystemProgramID, got.Instructions[1].ProgramID)
	assert.Equal(t, tx.Signatures, got.Signatures)

	if _, err := DecodeTx([]byte{0xff}); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
}

func TestTxSignBytes(t *testing.T) {
	tx := &Tx{Instructions: []Instruction{{ProgramID: Address{3}, Data: []byte{1}}}}
	a, err := tx.SignBytes("test-chain")
	assert.Nil(t, err)
	b, err := tx.SignBytes("other-chain")
	assert.Nil(t, err)
	if bytes.Equal(a, b) {
		t.Fatal("sign bytes must depend on the chain id")
	}

	// Signatures are not part of what is signed.
	tx.Signatures = []Signature{{Signer: Address{1}, Sig: []byte{1}}}
	c, err := tx.SignBytes("test-chain")
	assert.Nil(t, err)
	assert.Equal(t, a, c)
}

func TestTxValidate(t *testing.T) {
	ix := Instruction{ProgramID: Address{3}}
	cases := map[string]struct {
		tx      Tx
		wantErr *errors.Error
	}{
		"valid": {
			tx:      Tx{Instructions: []Instruction{ix}, Signatures: []Signature{{Signer: Address{1}, Sig: []byte{1}}}},
			wantErr: nil,
		},
		"no instructions": {
			tx:      Tx{},
			wantErr: errors.ErrEmpty,
		},
		"duplicated signer": {
			tx: Tx{Instructions: []Instruction{ix}, Signatures: []Signature{
				{Signer: Address{1}, Sig: []byte{1}},
				{Signer: Address{1}, Sig: []byte{2}},
			}},
			wantErr: errors.ErrDuplicate,
		},
		"empty signature": {
			tx:      Tx{Instructions: []Instruction{ix}, Signatures: []Signature{{Signer: Address{1}}}},
			wantErr: errors.ErrEmpty,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := tc.tx.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAddressText(t *testing.T) {
	a := MustParseAddress("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	assert.Equal(t, "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb", a.String())

	raw, err := a.MarshalJSON()
	assert.Nil(t, err)
	var b Address
	assert.Nil(t, b.UnmarshalJSON(raw))
	assert.Equal(t, a, b)

	if _, err := ParseAddress("abc"); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
	if _, err := ParseAddress(""); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want empty error, got %v", err)
	}
	assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
}
