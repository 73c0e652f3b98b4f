package gate

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
)

// Program is the gate program.
type Program struct {
	id tokenvm.Address
}

var _ tokenvm.Program = (*Program)(nil)

// NewProgram returns the gate program running under given identity.
func NewProgram(id tokenvm.Address) *Program {
	return &Program{id: id}
}

// ID returns the identity of the program.
func (p *Program) ID() tokenvm.Address {
	return p.id
}

// Process implements tokenvm.Program.
func (p *Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if env.ProgramID() != p.id {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "gate program is %s, invoked as %s", p.id, env.ProgramID())
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case TagInitializeVault:
		if len(body) != 0 {
			return errors.Wrap(errors.ErrInvalidInstructionData, "initialize vault takes no arguments")
		}
		return p.initializeVault(env, accounts)
	case TagCloseWhitelist:
		if len(body) != 0 {
			return errors.Wrap(errors.ErrInvalidInstructionData, "close whitelist takes no arguments")
		}
		return p.closeWhitelist(env, accounts)
	}

	msg := AmountMsg{Tag: tag}
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	switch tag {
	case TagInitializeWhitelist:
		return p.initializeWhitelist(env, accounts, msg.Amount)
	case TagDeposit:
		return p.deposit(env, accounts, msg.Amount)
	case TagWithdraw:
		return p.withdraw(env, accounts, msg.Amount)
	case TagSlash:
		return p.slash(env, accounts, msg.Amount)
	case TagMintTo:
		return p.mintTo(env, accounts, msg.Amount)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

func (p *Program) initializeVault(env tokenvm.Env, accounts []*tokenvm.AccountInfo) error {
	if len(accounts) < 7 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "initialize vault needs 7 accounts, got %d", len(accounts))
	}
	admin, config, mint, vault := accounts[0], accounts[1], accounts[2], accounts[3]
	if accounts[4].Address != tokenvm.SystemProgramID || accounts[5].Address != token.ID || accounts[6].Address != ata.ID {
		return errors.Wrap(errors.ErrIncorrectProgramID, "system, token and associated token programs expected")
	}
	if !admin.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "admin %s", admin.Address)
	}
	addr, bump, err := ConfigAddress(p.id)
	if err != nil {
		return err
	}
	if config.Address != addr {
		return errors.Wrapf(errors.ErrInvalidSeeds, "config must be %s", addr)
	}
	if config.IsOwnedBy(p.id) {
		return errors.Wrap(errors.ErrAccountAlreadyInitialized, "vault")
	}
	if _, err := token.LoadMint(mint); err != nil {
		return err
	}
	if want := ata.Address(config.Address, mint.Address); vault.Address != want {
		return errors.Wrapf(errors.ErrInvalidAccountData, "vault must be %s", want)
	}

	create := system.CreateAccount(admin.Address, config.Address, env.Rent().MinimumBalance(ConfigLen), ConfigLen, p.id)
	if err := env.InvokeSigned(create, accounts, configSigner(bump)); err != nil {
		return errors.Wrap(err, "create config")
	}
	c := Config{
		Admin: admin.Address,
		Vault: vault.Address,
		Mint:  mint.Address,
		Bump:  bump,
	}
	if err := encode(config, &c); err != nil {
		return err
	}
	if err := env.Invoke(ata.Create(admin.Address, config.Address, mint.Address), accounts); err != nil {
		return errors.Wrap(err, "create vault")
	}
	env.Logger().Debug("vault initialized", "mint", mint.Address.String(), "admin", admin.Address.String())
	return nil
}

// authorizeAdmin loads the configuration and ensures it is managed by the
// signing admin.
func (p *Program) authorizeAdmin(admin, config *tokenvm.AccountInfo) (*Config, error) {
	if !admin.IsSigner {
		return nil, errors.Wrapf(errors.ErrMissingRequiredSignature, "admin %s", admin.Address)
	}
	c, err := loadConfig(p.id, config)
	if err != nil {
		return nil, err
	}
	if c.Admin != admin.Address {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the admin", admin.Address)
	}
	return c, nil
}

func (p *Program) initializeWhitelist(env tokenvm.Env, accounts []*tokenvm.AccountInfo, limit uint64) error {
	if len(accounts) < 5 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "initialize whitelist needs 5 accounts, got %d", len(accounts))
	}
	admin, config, user, whitelist := accounts[0], accounts[1], accounts[2], accounts[3]
	c, err := p.authorizeAdmin(admin, config)
	if err != nil {
		return err
	}
	addr, bump, err := WhitelistAddress(p.id, user.Address)
	if err != nil {
		return err
	}
	if whitelist.Address != addr {
		return errors.Wrapf(errors.ErrInvalidSeeds, "whitelist of %s must be %s", user.Address, addr)
	}
	if whitelist.IsOwnedBy(p.id) {
		return errors.Wrapf(errors.ErrAccountAlreadyInitialized, "whitelist of %s", user.Address)
	}
	now, err := env.BlockTime()
	if err != nil {
		return err
	}

	create := system.CreateAccount(admin.Address, whitelist.Address, env.Rent().MinimumBalance(WhitelistLen), WhitelistLen, p.id)
	if err := env.InvokeSigned(create, accounts, whitelistSigner(user.Address, bump)); err != nil {
		return errors.Wrap(err, "create whitelist")
	}
	w := UserWhitelist{
		Vault:       c.Vault,
		User:        user.Address,
		UserLimit:   limit,
		LastUpdated: tokenvm.AsUnixTime(now),
		Bump:        bump,
	}
	return encode(whitelist, &w)
}

func (p *Program) closeWhitelist(env tokenvm.Env, accounts []*tokenvm.AccountInfo) error {
	if len(accounts) < 4 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "close whitelist needs 4 accounts, got %d", len(accounts))
	}
	admin, config, user, whitelist := accounts[0], accounts[1], accounts[2], accounts[3]
	if _, err := p.authorizeAdmin(admin, config); err != nil {
		return err
	}
	if _, err := loadWhitelist(p.id, whitelist, user.Address); err != nil {
		return err
	}
	return tokenvm.CloseAccount(whitelist, admin)
}

// userContext is the account set shared by Deposit and Withdraw.
type userContext struct {
	user, config, mint, userATA, vault, whitelist *tokenvm.AccountInfo

	conf      *Config
	list      *UserWhitelist
	decimals  uint8
	hookExtra []tokenvm.AccountMeta
}

func (p *Program) loadUserContext(accounts []*tokenvm.AccountInfo) (*userContext, error) {
	if len(accounts) < 7 {
		return nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "need 7 accounts, got %d", len(accounts))
	}
	uc := &userContext{
		user:      accounts[0],
		config:    accounts[1],
		mint:      accounts[2],
		userATA:   accounts[3],
		vault:     accounts[4],
		whitelist: accounts[5],
	}
	if accounts[6].Address != token.ID {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "token program %s", accounts[6].Address)
	}
	if !uc.user.IsSigner {
		return nil, errors.Wrapf(errors.ErrMissingRequiredSignature, "user %s", uc.user.Address)
	}
	var err error
	if uc.conf, err = loadConfig(p.id, uc.config); err != nil {
		return nil, err
	}
	if uc.mint.Address != uc.conf.Mint {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "vault holds mint %s", uc.conf.Mint)
	}
	if uc.vault.Address != uc.conf.Vault {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "vault must be %s", uc.conf.Vault)
	}
	if _, err := token.LoadAccountOf(uc.userATA, uc.conf.Mint, uc.user.Address); err != nil {
		return nil, errors.Wrap(err, "user token account")
	}
	if uc.list, err = loadWhitelist(p.id, uc.whitelist, uc.user.Address); err != nil {
		return nil, err
	}
	m, err := token.LoadMint(uc.mint)
	if err != nil {
		return nil, err
	}
	uc.decimals = m.Decimals
	// Anything past the fixed accounts belongs to the transfer hook.
	for _, info := range accounts[7:] {
		uc.hookExtra = append(uc.hookExtra, tokenvm.AccountMeta{Address: info.Address, IsWritable: info.IsWritable})
	}
	return uc, nil
}

func (p *Program) deposit(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	uc, err := p.loadUserContext(accounts)
	if err != nil {
		return err
	}
	conf, err := loadConf(env)
	if err != nil {
		return err
	}
	now, err := env.BlockTime()
	if err != nil {
		return err
	}
	if uc.list.LastUpdated.Add(conf.ResetWindow) < tokenvm.AsUnixTime(now) {
		uc.list.UserLimit = conf.ResetLimit
		if err := encode(uc.whitelist, uc.list); err != nil {
			return err
		}
	}

	ix := token.TransferChecked(uc.userATA.Address, uc.mint.Address, uc.vault.Address, uc.user.Address, amount, uc.decimals, uc.hookExtra...)
	if err := env.Invoke(ix, accounts); err != nil {
		return errors.Wrap(err, "deposit")
	}
	env.Logger().Debug("deposit", "user", uc.user.Address.String(), "amount", amount)
	return nil
}

func (p *Program) withdraw(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	uc, err := p.loadUserContext(accounts)
	if err != nil {
		return err
	}
	if uc.list.UserLimit < amount {
		return errors.Wrapf(ErrExceedUserLimit, "limit %d, requested %d", uc.list.UserLimit, amount)
	}
	now, err := env.BlockTime()
	if err != nil {
		return err
	}
	limit, err := checkedSub(uc.list.UserLimit, amount)
	if err != nil {
		return err
	}
	uc.list.UserLimit = limit
	uc.list.LastUpdated = tokenvm.AsUnixTime(now)
	if err := encode(uc.whitelist, uc.list); err != nil {
		return err
	}

	ix := token.TransferChecked(uc.vault.Address, uc.mint.Address, uc.userATA.Address, uc.config.Address, amount, uc.decimals, uc.hookExtra...)
	if err := env.InvokeSigned(ix, accounts, configSigner(uc.conf.Bump)); err != nil {
		return errors.Wrap(err, "withdraw")
	}
	env.Logger().Debug("withdraw", "user", uc.user.Address.String(), "amount", amount, "limit", limit)
	return nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Wrapf(ErrUnderflow, "%d - %d", a, b)
	}
	return a - b, nil
}

func (p *Program) slash(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 5 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "slash needs 5 accounts, got %d", len(accounts))
	}
	admin, config, account, mint := accounts[0], accounts[1], accounts[2], accounts[3]
	c, err := p.authorizeAdmin(admin, config)
	if err != nil {
		return err
	}
	if mint.Address != c.Mint {
		return errors.Wrapf(errors.ErrInvalidAccountData, "vault holds mint %s", c.Mint)
	}
	if err := env.Invoke(token.Burn(account.Address, mint.Address, admin.Address, amount), accounts); err != nil {
		return errors.Wrap(err, "slash")
	}
	env.Logger().Info("slashed", "account", account.Address.String(), "amount", amount)
	return nil
}

func (p *Program) mintTo(env tokenvm.Env, accounts []*tokenvm.AccountInfo, amount uint64) error {
	if len(accounts) < 5 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "mint to needs 5 accounts, got %d", len(accounts))
	}
	admin, config, mint, dest := accounts[0], accounts[1], accounts[2], accounts[3]
	c, err := p.authorizeAdmin(admin, config)
	if err != nil {
		return err
	}
	if mint.Address != c.Mint {
		return errors.Wrapf(errors.ErrInvalidAccountData, "vault holds mint %s", c.Mint)
	}
	if err := env.Invoke(token.MintTo(mint.Address, dest.Address, admin.Address, amount), accounts); err != nil {
		return errors.Wrap(err, "mint")
	}
	return nil
}
