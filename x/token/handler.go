package token

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Program is the token program.
type Program struct{}

var _ tokenvm.Program = Program{}

// Process implements tokenvm.Program.
func (p Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case TagInitializeMint:
		var msg InitializeMintMsg
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.initializeMint(env, accounts, &msg)
	case TagInitializeAccount:
		return p.initializeAccount(env, accounts)
	case TagTransfer:
		msg := AmountMsg{Tag: tag}
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.transfer(env, accounts, msg.Amount)
	case TagTransferChecked:
		var msg TransferCheckedMsg
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.transferChecked(env, accounts, &msg)
	case TagMintTo:
		msg := AmountMsg{Tag: tag}
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.mintTo(env, accounts, msg.Amount)
	case TagBurn:
		msg := AmountMsg{Tag: tag}
		if err := msg.Unmarshal(body); err != nil {
			return err
		}
		return p.burn(env, accounts, msg.Amount)
	case TagCloseAccount:
		return p.closeAccount(env, accounts)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

func (Program) initializeMint(env tokenvm.Env, accounts []*tokenvm.AccountInfo, msg *InitializeMintMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if len(accounts) < 1 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "initialize mint")
	}
	info := accounts[0]
	var mint Mint
	if err := read(info, &mint); err != nil {
		return err
	}
	if mint.IsInitialized {
		return errors.Wrapf(errors.ErrAccountAlreadyInitialized, "mint %s", info.Address)
	}
	mint = Mint{
		MintAuthority:     msg.MintAuthority,
		Decimals:          msg.Decimals,
		IsInitialized:     true,
		TransferHook:      msg.TransferHook,
		PermanentDelegate: msg.PermanentDelegate,
	}
	return write(info, &mint)
}

func (Program) initializeAccount(env tokenvm.Env, accounts []*tokenvm.AccountInfo) error {
	if len(accounts) < 3 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "initialize account")
	}
	info, mintInfo, owner := accounts[0], accounts[1], accounts[2]
	var acc Account
	if err := read(info, &acc); err != nil {
		return err
	}
	if acc.State != Uninitialized {
		return errors.Wrapf(errors.ErrAccountAlreadyInitialized, "token account %s", info.Address)
	}
	mint, err := LoadMint(mintInfo)
	if err != nil {
		return err
	}
	acc = Account{
		Mint:   mintInfo.Address,
		Owner:  owner.Address,
		State:  Initialized,
		Hooked: !mint.TransferHook.IsZero(),
	}
	return write(info, &acc)
}

// transfer moves tokens between accounts of a mint without a hook.
func (Program) transfer(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 3 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "transfer")
	}
	srcInfo, dstInfo, authority := accounts[0], accounts[1], accounts[2]
	src, err := LoadAccount(srcInfo)
	if err != nil {
		return err
	}
	if src.Hooked {
		return errors.Wrapf(errors.ErrInvalidArgument, "mint %s has a transfer hook, use a checked transfer", src.Mint)
	}
	if err := authorize(src, nil, authority); err != nil {
		return err
	}
	return move(srcInfo, src, dstInfo, amount)
}

// transferChecked moves tokens after checking the decimals of the mint and
// runs the transfer hook of the mint.
func (Program) transferChecked(env tokenvm.Env, accounts []*tokenvm.AccountInfo, msg *TransferCheckedMsg) error {
	if len(accounts) < 4 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "transfer checked")
	}
	srcInfo, mintInfo, dstInfo, authority := accounts[0], accounts[1], accounts[2], accounts[3]
	mint, err := LoadMint(mintInfo)
	if err != nil {
		return err
	}
	if msg.Decimals != mint.Decimals {
		return errors.Wrapf(errors.ErrInvalidArgument, "mint has %d decimals, not %d", mint.Decimals, msg.Decimals)
	}
	src, err := LoadAccount(srcInfo)
	if err != nil {
		return err
	}
	if src.Mint != mintInfo.Address {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint mismatch, want %s", mintInfo.Address)
	}
	if err := authorize(src, mint, authority); err != nil {
		return err
	}
	if err := move(srcInfo, src, dstInfo, msg.Amount); err != nil {
		return err
	}

	if mint.TransferHook.IsZero() {
		return nil
	}
	extra := accounts[4:]
	metas := make([]tokenvm.AccountMeta, 0, len(extra))
	for _, info := range extra {
		metas = append(metas, tokenvm.AccountMeta{Address: info.Address, IsWritable: info.IsWritable})
	}
	ix := HookExecute(mint.TransferHook, srcInfo.Address, mintInfo.Address, dstInfo.Address, authority.Address, msg.Amount, metas...)
	if err := env.Invoke(ix, accounts); err != nil {
		return errors.Wrap(err, "transfer hook")
	}
	return nil
}

// move debits src and credits the destination account of the same mint.
func move(srcInfo *tokenvm.AccountInfo, src *Account, dstInfo *tokenvm.AccountInfo, amount uint64) error {
	dst, err := LoadAccount(dstInfo)
	if err != nil {
		return err
	}
	if dst.Mint != src.Mint {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint mismatch, want %s", src.Mint)
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, need %d", srcInfo.Address, src.Amount, amount)
	}
	if srcInfo.SameAccount(dstInfo) {
		return nil
	}
	credited := dst.Amount + amount
	if credited < dst.Amount {
		return errors.Wrap(errors.ErrArithmeticOverflow, "destination amount")
	}
	src.Amount -= amount
	dst.Amount = credited
	if err := write(srcInfo, src); err != nil {
		return err
	}
	return write(dstInfo, dst)
}

// authorize checks that the authority may move funds of the account. The
// permanent delegate is accepted if the mint is given.
func authorize(acc *Account, mint *Mint, authority *tokenvm.AccountInfo) error {
	switch {
	case authority.Address == acc.Owner:
	case mint != nil && !mint.PermanentDelegate.IsZero() && authority.Address == mint.PermanentDelegate:
	default:
		return errors.Wrapf(errors.ErrIllegalOwner, "%s is not the owner %s", authority.Address, acc.Owner)
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "authority %s", authority.Address)
	}
	return nil
}

func (Program) mintTo(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 3 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "mint to")
	}
	mintInfo, dstInfo, authority := accounts[0], accounts[1], accounts[2]
	mint, err := LoadMint(mintInfo)
	if err != nil {
		return err
	}
	if authority.Address != mint.MintAuthority {
		return errors.Wrapf(errors.ErrIllegalOwner, "%s is not the mint authority", authority.Address)
	}
	if !authority.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "mint authority %s", authority.Address)
	}
	dst, err := LoadAccount(dstInfo)
	if err != nil {
		return err
	}
	if dst.Mint != mintInfo.Address {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint mismatch, want %s", mintInfo.Address)
	}
	supply := mint.Supply + amount
	if supply < mint.Supply {
		return errors.Wrap(errors.ErrArithmeticOverflow, "supply")
	}
	// The supply bounds every balance, no need to check the destination.
	mint.Supply = supply
	dst.Amount += amount
	if err := write(mintInfo, mint); err != nil {
		return err
	}
	return write(dstInfo, dst)
}

func (Program) burn(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 3 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "burn")
	}
	accInfo, mintInfo, authority := accounts[0], accounts[1], accounts[2]
	mint, err := LoadMint(mintInfo)
	if err != nil {
		return err
	}
	acc, err := LoadAccount(accInfo)
	if err != nil {
		return err
	}
	if acc.Mint != mintInfo.Address {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint mismatch, want %s", mintInfo.Address)
	}
	if err := authorize(acc, mint, authority); err != nil {
		return err
	}
	if acc.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%s holds %d, need %d", accInfo.Address, acc.Amount, amount)
	}
	acc.Amount -= amount
	mint.Supply -= amount
	if err := write(accInfo, acc); err != nil {
		return err
	}
	return write(mintInfo, mint)
}

func (Program) closeAccount(env tokenvm.Env, accounts []*tokenvm.AccountInfo) error {
	if len(accounts) < 3 {
		return errors.Wrap(errors.ErrNotEnoughAccountKeys, "close account")
	}
	accInfo, dest, owner := accounts[0], accounts[1], accounts[2]
	acc, err := LoadAccount(accInfo)
	if err != nil {
		return err
	}
	if owner.Address != acc.Owner {
		return errors.Wrapf(errors.ErrIllegalOwner, "%s is not the owner %s", owner.Address, acc.Owner)
	}
	if !owner.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "owner %s", owner.Address)
	}
	if acc.Amount != 0 {
		return errors.Wrapf(errors.ErrNonEmptyAccount, "%s holds %d", accInfo.Address, acc.Amount)
	}
	if accInfo.SameAccount(dest) {
		return errors.Wrap(errors.ErrInvalidArgument, "cannot close into itself")
	}
	return tokenvm.CloseAccount(accInfo, dest)
}
