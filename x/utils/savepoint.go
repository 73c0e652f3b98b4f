package utils

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Savepoint runs the rest of the stack on a cache of the store and writes
// the cache only when no error was returned. It is disabled until
// OnCheck or OnDeliver is called.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ tokenvm.Decorator = Savepoint{}

// NewSavepoint creates a disabled Savepoint decorator.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a copy of the savepoint that also isolates CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a copy of the savepoint that also isolates DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

// Check isolates the checked transaction when enabled with OnCheck.
func (s Savepoint) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Checker) (*tokenvm.CheckResult, error) {
	var res *tokenvm.CheckResult
	err := isolate(s.onCheck, store, func(kv tokenvm.KVStore) (err error) {
		res, err = next.Check(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Deliver isolates the delivered transaction when enabled with OnDeliver.
func (s Savepoint) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Deliverer) (*tokenvm.DeliverResult, error) {
	var res *tokenvm.DeliverResult
	err := isolate(s.onDeliver, store, func(kv tokenvm.KVStore) (err error) {
		res, err = next.Deliver(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isolate calls fn with a cache of store and writes it back on success. A
// store that cannot be cached, or a disabled savepoint, is passed as is.
func isolate(enabled bool, store tokenvm.KVStore, fn func(tokenvm.KVStore) error) error {
	cstore, ok := store.(tokenvm.CacheableKVStore)
	if !enabled || !ok {
		return fn(store)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
