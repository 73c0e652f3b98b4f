package escrow

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/token"
)

// handler processes the instruction body that follows the tag.
type handler interface {
	process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, body []byte) error
}

// Program is the escrow program.
type Program struct {
	id       tokenvm.Address
	handlers map[byte]handler
}

var _ tokenvm.Program = (*Program)(nil)

// NewProgram returns the escrow program running under given identity.
func NewProgram(id tokenvm.Address) *Program {
	return &Program{
		id: id,
		handlers: map[byte]handler{
			TagOpen:   OpenHandler{id: id, codec: ViewCodec{}},
			TagSettle: SettleHandler{id: id, codec: ViewCodec{}},
			TagCancel: CancelHandler{id: id, codec: ViewCodec{}},
			TagOpenV2: OpenHandler{id: id, codec: CopyCodec{}},
		},
	}
}

// ID returns the identity of the program.
func (p *Program) ID() tokenvm.Address {
	return p.id
}

// Process implements tokenvm.Program.
func (p *Program) Process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, data []byte) error {
	if env.ProgramID() != p.id {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "escrow program is %s, invoked as %s", p.id, env.ProgramID())
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	h, ok := p.handlers[data[0]]
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", data[0])
	}
	return h.process(env, accounts, data[1:])
}

// OpenHandler creates the escrow record and moves the deposit into the
// vault.
type OpenHandler struct {
	id    tokenvm.Address
	codec Codec
}

func (h OpenHandler) process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, body []byte) error {
	var msg OpenMsg
	if err := msg.Unmarshal(body); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if len(accounts) < 9 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "open needs 9 accounts, got %d", len(accounts))
	}
	maker, mintA, mintB, record, makerATA, vault := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4], accounts[5]
	if err := checkPrograms(accounts[6], accounts[7], accounts[8]); err != nil {
		return err
	}

	if !maker.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "maker %s", maker.Address)
	}
	if _, err := token.LoadAccountOf(makerATA, mintA.Address, maker.Address); err != nil {
		return errors.Wrap(err, "maker source")
	}
	if err := verifyAddress(h.id, record, maker.Address, msg.Bump); err != nil {
		return err
	}
	if record.IsOwnedBy(h.id) {
		return errors.Wrapf(errors.ErrIllegalOwner, "escrow %s is already open", record.Address)
	}
	if err := checkVault(vault, record, mintA.Address); err != nil {
		return err
	}

	e := &Escrow{
		Maker:           maker.Address,
		MintA:           mintA.Address,
		MintB:           mintB.Address,
		AmountToReceive: msg.AmountToReceive,
		AmountToGive:    msg.AmountToGive,
		Bump:            msg.Bump,
	}
	if err := e.Validate(); err != nil {
		return err
	}

	s := newSettler(env, accounts, record, maker.Address, msg.Bump)
	if err := s.createRecord(maker.Address); err != nil {
		return err
	}
	if err := storeRecord(record, h.codec, e); err != nil {
		return err
	}
	if err := s.createVault(maker.Address, mintA.Address); err != nil {
		return err
	}
	if err := s.deposit(makerATA.Address, vault.Address, maker.Address, msg.AmountToGive); err != nil {
		return err
	}

	env.Logger().Debug("escrow opened",
		"escrow", record.Address.String(),
		"maker", maker.Address.String(),
		"give", msg.AmountToGive,
		"receive", msg.AmountToReceive)
	return nil
}

// SettleHandler swaps the deposit for the payment of the taker.
type SettleHandler struct {
	id    tokenvm.Address
	codec Codec
}

func (h SettleHandler) process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, body []byte) error {
	if len(body) != 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "settle takes no arguments")
	}
	if len(accounts) < 11 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "settle needs 11 accounts, got %d", len(accounts))
	}
	taker, maker, mintA, mintB, record := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	takerDestA, takerSourceB, makerDestB, vault := accounts[5], accounts[6], accounts[7], accounts[8]
	if accounts[9].Address != token.ID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "token program %s", accounts[9].Address)
	}
	if accounts[10].Address != ata.ID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "associated token program %s", accounts[10].Address)
	}

	if !taker.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "taker %s", taker.Address)
	}
	if _, err := token.LoadAccountOf(makerDestB, mintB.Address, maker.Address); err != nil {
		return errors.Wrap(err, "maker destination")
	}
	if _, err := token.LoadAccountOf(takerDestA, mintA.Address, taker.Address); err != nil {
		return errors.Wrap(err, "taker destination")
	}

	e, err := loadRecord(h.id, record, h.codec)
	if err != nil {
		return err
	}
	if e.Maker != maker.Address {
		return errors.Wrapf(errors.ErrIllegalOwner, "escrow maker is %s, not %s", e.Maker, maker.Address)
	}
	if e.MintA != mintA.Address || e.MintB != mintB.Address {
		return errors.Wrap(errors.ErrInvalidAccountData, "escrow mints do not match")
	}
	if e.AmountToGive == 0 && e.AmountToReceive == 0 {
		return errors.Wrapf(errors.ErrState, "escrow %s is already settled", record.Address)
	}
	if err := verifyAddress(h.id, record, e.Maker, e.Bump); err != nil {
		return err
	}
	if err := checkVault(vault, record, e.MintA); err != nil {
		return err
	}
	conf, err := loadConf(env)
	if err != nil {
		return err
	}

	s := newSettler(env, accounts, record, e.Maker, e.Bump)
	if err := s.release(vault.Address, takerDestA.Address, e.AmountToGive); err != nil {
		return err
	}
	if err := s.collect(takerSourceB.Address, makerDestB.Address, taker.Address, e.AmountToReceive); err != nil {
		return err
	}
	if conf.CloseOnSettle {
		if err := s.closeVault(vault.Address, maker.Address); err != nil {
			return err
		}
		if err := s.closeRecord(maker); err != nil {
			return err
		}
	} else if err := zeroAmounts(record); err != nil {
		return err
	}

	env.Logger().Debug("escrow settled",
		"escrow", record.Address.String(),
		"taker", taker.Address.String(),
		"closed", conf.CloseOnSettle)
	return nil
}

// CancelHandler returns the deposit to the maker and closes the escrow.
type CancelHandler struct {
	id    tokenvm.Address
	codec Codec
}

func (h CancelHandler) process(env tokenvm.Env, accounts []*tokenvm.AccountInfo, body []byte) error {
	if len(body) != 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "cancel takes no arguments")
	}
	if len(accounts) < 7 {
		return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "cancel needs 7 accounts, got %d", len(accounts))
	}
	maker, record, vault, makerDestA := accounts[0], accounts[1], accounts[2], accounts[3]
	if err := checkPrograms(accounts[4], accounts[5], accounts[6]); err != nil {
		return err
	}

	if !maker.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "maker %s", maker.Address)
	}
	e, err := loadRecord(h.id, record, h.codec)
	if err != nil {
		return err
	}
	if e.Maker != maker.Address {
		return errors.Wrapf(errors.ErrIllegalOwner, "escrow maker is %s, not %s", e.Maker, maker.Address)
	}
	if err := verifyAddress(h.id, record, e.Maker, e.Bump); err != nil {
		return err
	}
	if err := checkVault(vault, record, e.MintA); err != nil {
		return err
	}

	s := newSettler(env, accounts, record, e.Maker, e.Bump)
	if err := s.release(vault.Address, makerDestA.Address, e.AmountToGive); err != nil {
		return err
	}
	if err := s.closeVault(vault.Address, maker.Address); err != nil {
		return err
	}
	if err := s.closeRecord(maker); err != nil {
		return err
	}

	env.Logger().Debug("escrow cancelled", "escrow", record.Address.String())
	return nil
}

func checkPrograms(sys, tok, assoc *tokenvm.AccountInfo) error {
	if sys.Address != tokenvm.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "system program %s", sys.Address)
	}
	if tok.Address != token.ID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "token program %s", tok.Address)
	}
	if assoc.Address != ata.ID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "associated token program %s", assoc.Address)
	}
	return nil
}

// checkVault ensures the vault is the associated token account of the
// record for mint.
func checkVault(vault, record *tokenvm.AccountInfo, mint tokenvm.Address) error {
	if want := ata.Address(record.Address, mint); vault.Address != want {
		return errors.Wrapf(errors.ErrInvalidAccountData, "vault must be %s, got %s", want, vault.Address)
	}
	return nil
}

// loadRecord decodes the record of an open escrow. The data borrow ends
// before returning.
func loadRecord(programID tokenvm.Address, record *tokenvm.AccountInfo, codec Codec) (*Escrow, error) {
	if !record.IsOwnedBy(programID) {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "escrow %s is owned by %s", record.Address, record.Owner())
	}
	data, release, err := record.Data()
	if err != nil {
		return nil, err
	}
	defer release()
	return codec.Load(data)
}

func storeRecord(record *tokenvm.AccountInfo, codec Codec, e *Escrow) error {
	data, release, err := record.MutData()
	if err != nil {
		return err
	}
	defer release()
	return codec.Store(data, e)
}

// zeroAmounts clears both amounts of a settled record in place.
func zeroAmounts(record *tokenvm.AccountInfo) error {
	data, release, err := record.MutData()
	if err != nil {
		return err
	}
	defer release()
	if len(data) != AccountLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "escrow account of %d bytes", len(data))
	}
	v, err := DecodeView(data[:BodyLen])
	if err != nil {
		return err
	}
	v.SetAmountToReceive(0)
	v.SetAmountToGive(0)
	return nil
}
