package utils

import (
	"context"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/store"
	"github.com/stretchr/testify/assert"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	assert.Panics(t, func() { h.Check(ctx, s, nil) })
	assert.Panics(t, func() { h.Deliver(ctx, s, nil) })

	_, err := r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	program := tokenvm.NativeLoaderID
	tx := &tokenvm.Tx{Instructions: []tokenvm.Instruction{
		{ProgramID: program},
		{ProgramID: program},
	}}
	_, err = r.Deliver(ctx, s, tx, h)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "programs ["+program.String()+"]")
	assert.Contains(t, err.Error(), "deliver panic")
}

func TestRecoveryPassesErrors(t *testing.T) {
	h := writeHandler{key: []byte("k"), value: []byte("v"), err: errors.ErrInsufficientFunds}
	tx := &tokenvm.Tx{Instructions: make([]tokenvm.Instruction, 1)}
	_, err := NewRecovery().Deliver(context.Background(), store.MemStore(), tx, h)
	assert.Equal(t, errors.ErrInsufficientFunds, err)
}
