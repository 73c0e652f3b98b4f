package utils

import (
	"strings"
	"time"

	"github.com/iov-one/tokenvm"
)

// Logging logs every transaction with its duration, the programs it calls
// and its outcome. Failures are logged as errors, delivered transactions as
// info and checked ones as debug.
type Logging struct{}

var _ tokenvm.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (Logging) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Checker) (*tokenvm.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	entry := txLog{start: start, tx: tx, err: err, check: true}
	if err == nil {
		entry.msg = res.Log
	}
	entry.write(ctx)
	return res, err
}

// Deliver logs error -> error, success -> info
func (Logging) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Deliverer) (*tokenvm.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	entry := txLog{start: start, tx: tx, err: err}
	if err == nil {
		entry.msg = res.Log
		entry.gas = res.GasUsed
	}
	entry.write(ctx)
	return res, err
}

type txLog struct {
	start time.Time
	tx    *tokenvm.Tx
	msg   string
	gas   int64
	err   error
	check bool
}

// write emits the entry even when msg is empty, the key/value pairs carry
// the information.
func (l txLog) write(ctx tokenvm.Context) {
	logger := tokenvm.GetLogger(ctx).With("duration", time.Since(l.start)/time.Microsecond)
	if l.tx != nil {
		logger = logger.With(
			"instructions", len(l.tx.Instructions),
			"programs", strings.Join(programIDs(l.tx), ","))
	}
	if l.gas > 0 {
		logger = logger.With("gas", l.gas)
	}

	switch {
	case l.err != nil:
		logger.Error(l.msg, "err", l.err)
	case l.check:
		logger.Debug(l.msg)
	default:
		logger.Info(l.msg)
	}
}

// programIDs lists the programs called by the top level instructions of tx,
// each once, in order of the first call.
func programIDs(tx *tokenvm.Tx) []string {
	seen := make(map[tokenvm.Address]bool)
	var ids []string
	for _, ix := range tx.Instructions {
		if seen[ix.ProgramID] {
			continue
		}
		seen[ix.ProgramID] = true
		ids = append(ids, ix.ProgramID.String())
	}
	return ids
}
