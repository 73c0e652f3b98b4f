package tokenvm

import (
	"github.com/iov-one/tokenvm/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// TagProgram is the key of the tag added to a delivered transaction for
// every instruction, its value is the called program.
const TagProgram = "program"

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are reported as errors instead.
type DeliverResult struct {
	// Data is a machine-parseable return value
	Data []byte
	// Log is human-readable informational string
	Log string
	// Tags are indexed by tendermint for transaction search.
	Tags []common.KVPair
	// GasUsed is the number of executed instructions, including nested invocations
	GasUsed int64
}

// ToABCI converts the result into an abci response.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a transaction that passed CheckTx.
type CheckResult struct {
	// Data is a machine-parseable return value
	Data []byte
	// Log is human-readable informational string
	Log string
	// GasAllocated is the number of instructions the transaction executes.
	GasAllocated int64
}

// NewCheck returns a result with given gas and log.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{GasAllocated: gasAllocated, Log: log}
}

// ToABCI converts the result into an abci response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// ProgramTags returns one TagProgram tag per instruction of tx.
func ProgramTags(tx *Tx) []common.KVPair {
	tags := make([]common.KVPair, 0, len(tx.Instructions))
	for _, ix := range tx.Instructions {
		tags = append(tags, common.KVPair{
			Key:   []byte(TagProgram),
			Value: []byte(ix.ProgramID.String()),
		})
	}
	return tags
}

// DeliverOrError returns the abci response of a delivered transaction.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the abci response of a checked transaction.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError reports err as a failed DeliverTx. Outside of debug mode
// errors without a registered code are redacted.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := txErrorInfo("cannot deliver tx", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError reports err as a failed CheckTx. Outside of debug mode
// errors without a registered code are redacted.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := txErrorInfo("cannot check tx", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func txErrorInfo(prefix string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, prefix + ": " + log
}
