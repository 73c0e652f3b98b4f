/*
Package app implements the tendermint ABCI application: the committed store,
genesis loading, queries and transaction dispatch through a decorator chain.
*/
package app

import (
	"fmt"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

// BaseApp runs transactions on top of StoreApp. Raw transactions are
// decoded and validated, then passed to the handler with the state of the
// block (DeliverTx) or of the mempool (CheckTx).
type BaseApp struct {
	*StoreApp
	decoder tokenvm.TxDecoder
	handler tokenvm.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application running transactions decoded with
// decoder through handler. In debug mode internal errors are not redacted.
func NewBaseApp(store *StoreApp, decoder tokenvm.TxDecoder, handler tokenvm.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - runs the transaction against the block state.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return tokenvm.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", txBytes, tx)
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return tokenvm.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - runs the transaction against the mempool state.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return tokenvm.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", txBytes, tx)
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return tokenvm.CheckOrError(res, err, b.debug)
}

// txContext adds the call, the transaction hash, as tendermint shows it,
// and the instruction count to the log context.
func (b BaseApp) txContext(call string, txBytes []byte, tx *tokenvm.Tx) tokenvm.Context {
	return tokenvm.WithLogInfo(b.BlockContext(),
		"call", call,
		"tx", fmt.Sprintf("%X", tmhash.Sum(txBytes)),
		"instructions", len(tx.Instructions))
}

// loadTx decodes and validates a transaction. A panicking decoder gives
// ErrPanic.
func (b BaseApp) loadTx(txBytes []byte) (tx *tokenvm.Tx, err error) {
	defer errors.Recover(&err)
	if tx, err = b.decoder(txBytes); err != nil {
		return nil, err
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}
