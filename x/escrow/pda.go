package escrow

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
)

// SeedLabel is the first seed of every escrow record address.
const SeedLabel = "escrow"

func seeds(maker tokenvm.Address) [][]byte {
	return [][]byte{[]byte(SeedLabel), maker[:]}
}

// SignerSeeds returns the seeds the program presents to sign for the record
// of maker.
func SignerSeeds(maker tokenvm.Address, bump byte) tokenvm.Seeds {
	return tokenvm.Seeds{[]byte(SeedLabel), maker[:], {bump}}
}

// Derive returns the record address of maker for given bump.
func Derive(programID, maker tokenvm.Address, bump byte) (tokenvm.Address, error) {
	return pda.CreateProgramAddress(SignerSeeds(maker, bump), programID)
}

// Find returns the record address of maker for the highest viable bump.
func Find(programID, maker tokenvm.Address) (tokenvm.Address, byte, error) {
	return pda.FindProgramAddress(seeds(maker), programID)
}

// verifyAddress checks that the record account is derived from maker and
// bump. A bump that yields no program address is a mismatch as well.
func verifyAddress(programID tokenvm.Address, record *tokenvm.AccountInfo, maker tokenvm.Address, bump byte) error {
	err := pda.Verify(record.Address, seeds(maker), bump, programID)
	if errors.ErrInvalidSeeds.Is(err) {
		return errors.Wrapf(errors.ErrIllegalOwner, "bump %d of %s: %s", bump, maker, err)
	}
	return err
}
