package app

import (
	"reflect"

	"github.com/iov-one/tokenvm"
)

// Decorators is an ordered list of decorators that still lacks the final
// handler. The first decorator is the outermost one.
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(runtime.New())
type Decorators struct {
	chain []tokenvm.Decorator
}

// ChainDecorators returns the decorators in given order. Nil values are
// skipped.
func ChainDecorators(chain ...tokenvm.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new list with the decorators appended. d is not modified.
func (d Decorators) Chain(more ...tokenvm.Decorator) Decorators {
	chain := make([]tokenvm.Decorator, len(d.chain), len(d.chain)+len(more))
	copy(chain, d.chain)
	for _, dec := range more {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d tokenvm.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler returns a handler calling the decorators in order, and h last.
func (d Decorators) WithHandler(h tokenvm.Handler) tokenvm.Handler {
	if len(d.chain) == 0 {
		return h
	}
	return stack{decorators: d.chain, handler: h}
}

// stack runs its first decorator with the rest of the stack as next.
type stack struct {
	decorators []tokenvm.Decorator
	handler    tokenvm.Handler
}

var _ tokenvm.Handler = stack{}

func (s stack) next() tokenvm.Handler {
	if len(s.decorators) == 1 {
		return s.handler
	}
	return stack{decorators: s.decorators[1:], handler: s.handler}
}

// Check implements Handler.
func (s stack) Check(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.CheckResult, error) {
	return s.decorators[0].Check(ctx, store, tx, s.next())
}

// Deliver implements Handler.
func (s stack) Deliver(ctx tokenvm.Context, store tokenvm.KVStore, tx *tokenvm.Tx) (*tokenvm.DeliverResult, error) {
	return s.decorators[0].Deliver(ctx, store, tx, s.next())
}
