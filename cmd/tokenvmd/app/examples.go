package app

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/commands"
	"github.com/iov-one/tokenvm/crypto"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/escrow"
	"github.com/iov-one/tokenvm/x/token"
)

// ExampleChainID is the chain the example transactions are signed for.
const ExampleChainID = "testgen-chain"

// Examples returns encoded samples of the wire types used by this chain. The
// keys are derived from fixed seeds, so the output is stable.
func Examples() []commands.Example {
	maker := exampleKey(1)
	taker := exampleKey(2)
	mintA := exampleKey(3).Address()
	mintB := exampleKey(4).Address()

	record, bump, err := escrow.Find(EscrowID, maker.Address())
	if err != nil {
		panic(err)
	}
	open := escrow.OpenMsg{Bump: bump, AmountToReceive: 500, AmountToGive: 1000}
	settle := escrow.Settle(EscrowID, record, taker.Address(), maker.Address(), mintA, mintB)

	openTx := &tokenvm.Tx{Instructions: []tokenvm.Instruction{
		escrow.Open(EscrowID, record, maker.Address(), mintA, mintB, open),
	}}
	if err := crypto.SignTx(openTx, ExampleChainID, maker); err != nil {
		panic(err)
	}
	settleTx := &tokenvm.Tx{Instructions: []tokenvm.Instruction{
		ata.Create(taker.Address(), taker.Address(), mintA),
		settle,
	}}
	if err := crypto.SignTx(settleTx, ExampleChainID, taker); err != nil {
		panic(err)
	}

	mint := &token.Mint{
		MintAuthority: maker.Address(),
		Supply:        1000,
		Decimals:      6,
		IsInitialized: true,
	}

	return []commands.Example{
		{Filename: "escrow_open_msg", Obj: &open},
		{Filename: "settle_instruction", Obj: &settle},
		{Filename: "open_tx", Obj: openTx},
		{Filename: "settle_tx", Obj: settleTx},
		{Filename: "mint", Obj: mint},
	}
}

func exampleKey(n byte) crypto.PrivateKey {
	seed := make([]byte, 32)
	seed[31] = n
	key, err := crypto.PrivKeyFromSeed(seed)
	if err != nil {
		panic(err)
	}
	return key
}
