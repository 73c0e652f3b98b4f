package utils

import (
	"github.com/iov-one/tokenvm"
)

// writeHandler writes the key/value pair and returns err.
type writeHandler struct {
	key, value []byte
	err        error
}

var _ tokenvm.Handler = writeHandler{}

func (h writeHandler) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.CheckResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &tokenvm.CheckResult{Log: "checked"}, h.err
}

func (h writeHandler) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.DeliverResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &tokenvm.DeliverResult{Log: "delivered"}, h.err
}

// writeDecorator writes the key/value pair before or after calling down
// the stack.
type writeDecorator struct {
	key, value []byte
	after      bool
}

var _ tokenvm.Decorator = writeDecorator{}

func (d writeDecorator) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Checker) (*tokenvm.CheckResult, error) {
	if !d.after {
		store.Set(d.key, d.value)
	}
	res, err := next.Check(ctx, store, tx)
	if d.after {
		store.Set(d.key, d.value)
	}
	return res, err
}

func (d writeDecorator) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx, next tokenvm.Deliverer) (*tokenvm.DeliverResult, error) {
	if !d.after {
		store.Set(d.key, d.value)
	}
	res, err := next.Deliver(ctx, store, tx)
	if d.after {
		store.Set(d.key, d.value)
	}
	return res, err
}

type panicHandler struct{}

var _ tokenvm.Handler = panicHandler{}

func (p panicHandler) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.CheckResult, error) {
	panic("check panic")
}

func (p panicHandler) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.DeliverResult, error) {
	panic("deliver panic")
}
