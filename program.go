package tokenvm

import (
	"time"

	"github.com/iov-one/tokenvm/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// SystemProgramID is the owner of every account that no program claimed.
var SystemProgramID = ZeroAddress

// NativeLoaderID owns the executable accounts of builtin programs.
var NativeLoaderID = MustParseAddress("NativeLoader1111111111111111111111111111111")

// MaxAccountDataLen limits the size of a single account.
const MaxAccountDataLen = 10 * 1024 * 1024

// Program processes instructions addressed to its identity.
type Program interface {
	Process(env Env, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc is a function implementing Program.
type ProgramFunc func(env Env, accounts []*AccountInfo, data []byte) error

// Process implements Program.
func (fn ProgramFunc) Process(env Env, accounts []*AccountInfo, data []byte) error {
	return fn(env, accounts, data)
}

// Unmarshaler is implemented by anything that can load itself from bytes.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Seeds is one set of program derived address seeds. A program presents
// them to sign for an address derived from its own identity.
type Seeds [][]byte

// Env is what a running program can access from the runtime.
type Env interface {
	// ProgramID returns the identity of the running program.
	ProgramID() Address

	// Invoke runs an instruction of another program with the privileges
	// of the calling instruction.
	Invoke(ix Instruction, accounts []*AccountInfo) error

	// InvokeSigned is Invoke that additionally grants signer privilege to
	// the addresses derived from the calling program with given seeds.
	InvokeSigned(ix Instruction, accounts []*AccountInfo, signers ...Seeds) error

	// Rent returns the rent schedule.
	Rent() Rent

	// BlockTime returns the time of the block being processed.
	BlockTime() (time.Time, error)

	// LoadConfig reads the configuration of a package into dst.
	LoadConfig(pkg string, dst Unmarshaler) error

	// Logger is scoped to the running program.
	Logger() log.Logger
}

// Rent describes the deposit an account must hold to stay alive.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionYears      uint64 `json:"exemption_years"`
}

// AccountStorageOverhead is the size accounted for every account on top of
// its data.
const AccountStorageOverhead = 128

// DefaultRent is the rent schedule used when nothing else was configured.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionYears:      2,
}

// MinimumBalance returns the lamports needed for an account holding dataLen
// bytes to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionYears
}

// IsExempt returns true if given balance covers the rent of dataLen bytes.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

// Validate checks the schedule.
func (r Rent) Validate() error {
	if r.LamportsPerByteYear == 0 {
		return errors.Wrap(errors.ErrEmpty, "lamports per byte year")
	}
	return nil
}

// ReadOnly returns a meta of an account that is only read.
func ReadOnly(a Address) AccountMeta {
	return AccountMeta{Address: a}
}

// Writable returns a meta of an account that is modified.
func Writable(a Address) AccountMeta {
	return AccountMeta{Address: a, IsWritable: true}
}

// Signer returns a meta of an account that authorizes the instruction.
func Signer(a Address) AccountMeta {
	return AccountMeta{Address: a, IsSigner: true}
}

// WritableSigner returns a meta of an account that authorizes the
// instruction and is modified by it.
func WritableSigner(a Address) AccountMeta {
	return AccountMeta{Address: a, IsSigner: true, IsWritable: true}
}

var _ Persistent = (*Instruction)(nil)
