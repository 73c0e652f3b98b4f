package escrow

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

const (
	// BodyLen is the size of the encoded escrow record.
	BodyLen = 32 + 32 + 32 + 8 + 8 + 1
	// AccountLen is the size of an escrow account: the record body
	// followed by the schema version tag.
	AccountLen = BodyLen + 1

	// SchemaV1 tags the record layout above.
	SchemaV1 byte = 1
)

// Byte offsets of the record fields.
const (
	offMaker   = 0
	offMintA   = 32
	offMintB   = 64
	offReceive = 96
	offGive    = 104
	offBump    = 112
)

// Escrow is the state of an open escrow.
type Escrow struct {
	// Maker opened the escrow.
	Maker tokenvm.Address
	// MintA is the deposited asset.
	MintA tokenvm.Address
	// MintB is the asset the maker wants.
	MintB tokenvm.Address
	// AmountToReceive of MintB is paid by the taker to the maker.
	AmountToReceive uint64
	// AmountToGive of MintA is held by the vault.
	AmountToGive uint64
	// Bump derives the record address from the maker.
	Bump uint8
}

// Validate checks the record of an open escrow.
func (e *Escrow) Validate() error {
	if e.Maker.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "maker")
	}
	if e.MintA == e.MintB {
		return errors.Wrap(errors.ErrInvalidArgument, "both mints are the same")
	}
	if e.AmountToReceive == 0 || e.AmountToGive == 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "amounts must not be zero")
	}
	return nil
}

// Marshal encodes the record body as a fixed little endian struct.
func (e *Escrow) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(BodyLen)
	if err := binary.Write(&buf, binary.LittleEndian, e); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a record body. Any length other than BodyLen is
// rejected.
func (e *Escrow) Unmarshal(raw []byte) error {
	if len(raw) != BodyLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "escrow body of %d bytes", len(raw))
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, e); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return nil
}

// View accesses a record body in place without copying it.
type View []byte

// DecodeView returns a view over buf. The layout is made of bytes only so
// any buffer is suitably aligned; its length must be exactly BodyLen.
func DecodeView(buf []byte) (View, error) {
	if len(buf) != BodyLen {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "escrow body of %d bytes", len(buf))
	}
	return View(buf), nil
}

func (v View) address(off int) tokenvm.Address {
	var a tokenvm.Address
	copy(a[:], v[off:off+32])
	return a
}

func (v View) Maker() tokenvm.Address { return v.address(offMaker) }
func (v View) MintA() tokenvm.Address { return v.address(offMintA) }
func (v View) MintB() tokenvm.Address { return v.address(offMintB) }

func (v View) AmountToReceive() uint64 {
	return binary.LittleEndian.Uint64(v[offReceive:])
}

func (v View) AmountToGive() uint64 {
	return binary.LittleEndian.Uint64(v[offGive:])
}

func (v View) Bump() uint8 { return v[offBump] }

func (v View) SetMaker(a tokenvm.Address) { copy(v[offMaker:], a[:]) }
func (v View) SetMintA(a tokenvm.Address) { copy(v[offMintA:], a[:]) }
func (v View) SetMintB(a tokenvm.Address) { copy(v[offMintB:], a[:]) }

func (v View) SetAmountToReceive(n uint64) {
	binary.LittleEndian.PutUint64(v[offReceive:], n)
}

func (v View) SetAmountToGive(n uint64) {
	binary.LittleEndian.PutUint64(v[offGive:], n)
}

func (v View) SetBump(b uint8) { v[offBump] = b }

// Escrow copies the viewed record out.
func (v View) Escrow() *Escrow {
	return &Escrow{
		Maker:           v.Maker(),
		MintA:           v.MintA(),
		MintB:           v.MintB(),
		AmountToReceive: v.AmountToReceive(),
		AmountToGive:    v.AmountToGive(),
		Bump:            v.Bump(),
	}
}

// Set overwrites the viewed record.
func (v View) Set(e *Escrow) {
	v.SetMaker(e.Maker)
	v.SetMintA(e.MintA)
	v.SetMintB(e.MintB)
	v.SetAmountToReceive(e.AmountToReceive)
	v.SetAmountToGive(e.AmountToGive)
	v.SetBump(e.Bump)
}

// Codec reads and writes the escrow record stored in account data.
type Codec interface {
	Load(data []byte) (*Escrow, error)
	Store(data []byte, e *Escrow) error
}

var (
	_ Codec = ViewCodec{}
	_ Codec = CopyCodec{}
)

// body checks the account length and the schema tag and returns the record
// body part of the account data.
func body(data []byte) ([]byte, error) {
	if len(data) != AccountLen {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "escrow account of %d bytes", len(data))
	}
	if tag := data[BodyLen]; tag != SchemaV1 {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "escrow schema %d", tag)
	}
	return data[:BodyLen], nil
}

// ViewCodec reads and writes the record in place.
type ViewCodec struct{}

// Load implements Codec.
func (ViewCodec) Load(data []byte) (*Escrow, error) {
	b, err := body(data)
	if err != nil {
		return nil, err
	}
	v, err := DecodeView(b)
	if err != nil {
		return nil, err
	}
	return v.Escrow(), nil
}

// Store implements Codec. The schema tag is written as well so it can be
// used on freshly allocated accounts.
func (ViewCodec) Store(data []byte, e *Escrow) error {
	if len(data) != AccountLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "escrow account of %d bytes", len(data))
	}
	v, err := DecodeView(data[:BodyLen])
	if err != nil {
		return err
	}
	v.Set(e)
	data[BodyLen] = SchemaV1
	return nil
}

// CopyCodec decodes the record into a new value and encodes it back.
type CopyCodec struct{}

// Load implements Codec.
func (CopyCodec) Load(data []byte) (*Escrow, error) {
	b, err := body(data)
	if err != nil {
		return nil, err
	}
	var e Escrow
	if err := e.Unmarshal(b); err != nil {
		return nil, err
	}
	return &e, nil
}

// Store implements Codec.
func (CopyCodec) Store(data []byte, e *Escrow) error {
	if len(data) != AccountLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "escrow account of %d bytes", len(data))
	}
	raw, err := e.Marshal()
	if err != nil {
		return err
	}
	copy(data, raw)
	data[BodyLen] = SchemaV1
	return nil
}
