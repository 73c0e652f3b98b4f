package escrow

import (
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestDerive(t *testing.T) {
	programID := tokenvm.Address{0xe5}
	maker := tokenvm.Address{0x01, 0x02}

	addr, bump, err := Find(programID, maker)
	assert.Nil(t, err)
	derived, err := Derive(programID, maker, bump)
	assert.Nil(t, err)
	assert.Equal(t, addr, derived)

	if pda.IsOnCurve(addr) {
		t.Fatal("escrow address must not be a public key")
	}

	other, _, err := Find(tokenvm.Address{0xe6}, maker)
	assert.Nil(t, err)
	if other == addr {
		t.Fatal("address must depend on the program")
	}

	record := tokenvm.NewAccountInfo(addr, nil, false, true)
	assert.Nil(t, verifyAddress(programID, record, maker, bump))
	assert.IsErr(t, errors.ErrIllegalOwner, verifyAddress(programID, record, maker, bump-1))
	assert.IsErr(t, errors.ErrIllegalOwner, verifyAddress(programID, record, tokenvm.Address{0x09}, bump))
}
