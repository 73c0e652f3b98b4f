package vmtest

import (
	"fmt"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
)

// DefaultFunding is what CreatePayer credits to a new wallet.
const DefaultFunding = 10 * 1000 * 1000 * 1000

// CreatePayer returns a new funded wallet key.
func (c *Chain) CreatePayer(name string) Key {
	c.t.Helper()
	k := NamedKey(name)
	c.Fund(k.Address, DefaultFunding)
	return k
}

// MintOptions configures CreateMint.
type MintOptions struct {
	Decimals          uint8
	TransferHook      tokenvm.Address
	PermanentDelegate tokenvm.Address
}

// CreateMint creates and initializes a mint controlled by authority, paid by
// it as well. Mint keys are numbered per chain, so two chains creating mints
// in the same order get the same addresses.
func (c *Chain) CreateMint(authority Key, opts MintOptions) tokenvm.Address {
	c.t.Helper()
	c.mints++
	mint := NamedKey(fmt.Sprintf("mint-%d", c.mints))
	rent := tokenvm.DefaultRent.MinimumBalance(token.MintLen)
	c.MustExec(Signers(authority, mint),
		system.CreateAccount(authority.Address, mint.Address, rent, token.MintLen, token.ID),
		token.InitializeMint(mint.Address, opts.Decimals, authority.Address, opts.TransferHook, opts.PermanentDelegate),
	)
	return mint.Address
}

// CreateATA creates the associated token account of wallet for mint.
func (c *Chain) CreateATA(payer Key, wallet, mint tokenvm.Address) tokenvm.Address {
	c.t.Helper()
	c.MustExec(Signers(payer), ata.Create(payer.Address, wallet, mint))
	return ata.Address(wallet, mint)
}

// MintTo issues amount of mint into a token account.
func (c *Chain) MintTo(authority Key, mint, dest tokenvm.Address, amount uint64) {
	c.t.Helper()
	c.MustExec(Signers(authority), token.MintTo(mint, dest, authority.Address, amount))
}

// TokenAccount returns the decoded token account, nil if it does not exist.
func (c *Chain) TokenAccount(addr tokenvm.Address) *token.Account {
	c.t.Helper()
	acc := c.Account(addr)
	if acc == nil {
		return nil
	}
	var ta token.Account
	if err := ta.Unmarshal(acc.Data); err != nil {
		c.t.Fatalf("%s is not a token account: %+v", addr, err)
	}
	return &ta
}

// Balance returns the token balance of a token account, zero if it does not
// exist.
func (c *Chain) Balance(addr tokenvm.Address) uint64 {
	c.t.Helper()
	if ta := c.TokenAccount(addr); ta != nil {
		return ta.Amount
	}
	return 0
}

// Mint returns the decoded mint.
func (c *Chain) Mint(addr tokenvm.Address) *token.Mint {
	c.t.Helper()
	acc := c.Account(addr)
	if acc == nil {
		c.t.Fatalf("mint %s does not exist", addr)
	}
	var m token.Mint
	if err := m.Unmarshal(acc.Data); err != nil {
		c.t.Fatalf("%s is not a mint: %+v", addr, err)
	}
	return &m
}
