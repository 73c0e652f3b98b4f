package escrow_test

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/x/token"
)

func transfer(from, to, owner tokenvm.Address, amount uint64) tokenvm.Instruction {
	return token.Transfer(from, to, owner, amount)
}
