package utils

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Recovery turns a panic inside the transaction processing into an ErrPanic
// naming the programs the transaction called.
type Recovery struct{}

var _ tokenvm.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (Recovery) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Checker) (_ *tokenvm.CheckResult, err error) {
	defer annotatePanic(tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (Recovery) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Deliverer) (_ *tokenvm.DeliverResult, err error) {
	defer annotatePanic(tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}

// annotatePanic must be deferred before errors.Recover, so that it runs after
// the panic was turned into an error.
func annotatePanic(tx *tokenvm.Tx, err *error) {
	if tx == nil || len(tx.Instructions) == 0 || !errors.ErrPanic.Is(*err) {
		return
	}
	*err = errors.Wrapf(*err, "programs %v", programIDs(tx))
}
