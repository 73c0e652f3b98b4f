package app

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// countingDecorator counts every call, once on the way in and once on the
// way out.
type countingDecorator struct {
	called int
}

var _ tokenvm.Decorator = (*countingDecorator)(nil)

func (c *countingDecorator) Check(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Checker) (*tokenvm.CheckResult, error) {
	c.called++
	res, err := next.Check(ctx, store, tx)
	c.called++
	return res, err
}

func (c *countingDecorator) Deliver(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Deliverer) (*tokenvm.DeliverResult, error) {
	c.called++
	res, err := next.Deliver(ctx, store, tx)
	c.called++
	return res, err
}

// countingHandler counts calls and stores them under key.
type countingHandler struct {
	called int
}

var _ tokenvm.Handler = (*countingHandler)(nil)

func (c *countingHandler) Check(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx) (*tokenvm.CheckResult, error) {
	c.called++
	return &tokenvm.CheckResult{}, nil
}

func (c *countingHandler) Deliver(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx) (*tokenvm.DeliverResult, error) {
	c.called++
	if err := store.Set([]byte("counter"), []byte{byte(c.called)}); err != nil {
		return nil, err
	}
	return &tokenvm.DeliverResult{Log: "counted"}, nil
}

// panicAtHeightDecorator panics when the height in the context is at least
// the configured one.
type panicAtHeightDecorator int64

var _ tokenvm.Decorator = panicAtHeightDecorator(0)

func (p panicAtHeightDecorator) Check(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Checker) (*tokenvm.CheckResult, error) {
	if val, _ := tokenvm.GetHeight(ctx); val >= int64(p) {
		panic("too high")
	}
	return next.Check(ctx, store, tx)
}

func (p panicAtHeightDecorator) Deliver(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Deliverer) (*tokenvm.DeliverResult, error) {
	if val, _ := tokenvm.GetHeight(ctx); val >= int64(p) {
		panic("too high")
	}
	return next.Deliver(ctx, store, tx)
}

// recovery turns panics into errors.
type recovery struct{}

func (recovery) Check(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Checker) (_ *tokenvm.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

func (recovery) Deliver(ctx tokenvm.Context, store tokenvm.KVStore,
	tx *tokenvm.Tx, next tokenvm.Deliverer) (_ *tokenvm.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
