package whitelist

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
)

// Seed is the first seed of every whitelist record address.
const Seed = "whitelist"

// RecordLen is the size of a whitelist record account.
const RecordLen = 1 + 32 + 1

// Record tells whether a user may transfer tokens.
type Record struct {
	IsWhitelisted bool
	User          tokenvm.Address
	Bump          uint8
}

// Marshal encodes is_whitelisted(1) user(32) bump(1).
func (r *Record) Marshal() ([]byte, error) {
	raw := make([]byte, RecordLen)
	if r.IsWhitelisted {
		raw[0] = 1
	}
	copy(raw[1:33], r.User[:])
	raw[33] = r.Bump
	return raw, nil
}

// Unmarshal decodes what Marshal produced.
func (r *Record) Unmarshal(raw []byte) error {
	if len(raw) != RecordLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "whitelist record of %d bytes", len(raw))
	}
	switch raw[0] {
	case 0, 1:
	default:
		return errors.Wrapf(errors.ErrInvalidAccountData, "whitelisted flag %d", raw[0])
	}
	r.IsWhitelisted = raw[0] == 1
	copy(r.User[:], raw[1:33])
	r.Bump = raw[33]
	return nil
}

// Address returns the record address of user.
func Address(programID, user tokenvm.Address) (tokenvm.Address, byte, error) {
	return pda.FindProgramAddress(seeds(user), programID)
}

func seeds(user tokenvm.Address) [][]byte {
	return [][]byte{[]byte(Seed), user[:]}
}

func load(programID tokenvm.Address, info *tokenvm.AccountInfo) (*Record, error) {
	if !info.IsOwnedBy(programID) {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "%s is owned by %s", info.Address, info.Owner())
	}
	data, release, err := info.Data()
	if err != nil {
		return nil, err
	}
	defer release()
	var r Record
	if err := r.Unmarshal(data); err != nil {
		return nil, err
	}
	if err := pda.Verify(info.Address, seeds(r.User), r.Bump, programID); err != nil {
		return nil, errors.Wrap(err, "whitelist record")
	}
	return &r, nil
}

func store(info *tokenvm.AccountInfo, r *Record) error {
	raw, err := r.Marshal()
	if err != nil {
		return err
	}
	data, release, err := info.MutData()
	if err != nil {
		return err
	}
	defer release()
	if len(data) != RecordLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "%s holds %d bytes", info.Address, len(data))
	}
	copy(data, raw)
	return nil
}
