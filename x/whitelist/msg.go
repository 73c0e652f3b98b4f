package whitelist

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/x/token"
)

// Instruction tags. Execute shares the tag the token program uses to call
// transfer hooks.
const (
	TagInitialize byte = 0
	TagUpdate     byte = 1
	TagExecute         = token.HookExecuteTag
)

func mustAddress(programID, user tokenvm.Address) tokenvm.Address {
	addr, _, err := Address(programID, user)
	if err != nil {
		panic(err)
	}
	return addr
}

// Initialize returns an instruction whitelisting user.
func Initialize(programID, admin, user tokenvm.Address) tokenvm.Instruction {
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.WritableSigner(admin),
			tokenvm.ReadOnly(user),
			tokenvm.Writable(mustAddress(programID, user)),
			tokenvm.ReadOnly(tokenvm.SystemProgramID),
		},
		Data: []byte{TagInitialize},
	}
}

// Update returns an instruction enabling or disabling the record of user.
func Update(programID, admin, user tokenvm.Address, whitelisted bool) tokenvm.Instruction {
	flag := byte(0)
	if whitelisted {
		flag = 1
	}
	return tokenvm.Instruction{
		ProgramID: programID,
		Accounts: []tokenvm.AccountMeta{
			tokenvm.Signer(admin),
			tokenvm.Writable(mustAddress(programID, user)),
		},
		Data: []byte{TagUpdate, flag},
	}
}

// ExtraAccounts returns what a checked transfer authorized by owner must
// pass for this hook.
func ExtraAccounts(programID, owner tokenvm.Address) []tokenvm.AccountMeta {
	return []tokenvm.AccountMeta{tokenvm.ReadOnly(mustAddress(programID, owner))}
}

func parseFlag(body []byte) (bool, error) {
	if len(body) != 1 || body[0] > 1 {
		return false, errors.Wrap(errors.ErrInvalidInstructionData, "whitelisted flag")
	}
	return body[0] == 1, nil
}
