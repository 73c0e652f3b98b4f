package gate

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/pda"
)

// Seeds of the program derived addresses.
const (
	ConfigSeed    = "config"
	WhitelistSeed = "whitelist"
)

const (
	// ConfigLen is the size of the vault configuration account.
	ConfigLen = 32 + 32 + 32 + 1
	// WhitelistLen is the size of a user whitelist account.
	WhitelistLen = 32 + 32 + 8 + 8 + 1
)

// Config is the state of the vault. It lives at the address derived from
// ConfigSeed and signs for the vault token account.
type Config struct {
	Admin tokenvm.Address
	// Vault is the associated token account of the config for Mint.
	Vault tokenvm.Address
	Mint  tokenvm.Address
	Bump  uint8
}

// UserWhitelist is the withdrawal allowance of a single user.
type UserWhitelist struct {
	Vault       tokenvm.Address
	User        tokenvm.Address
	UserLimit   uint64
	LastUpdated tokenvm.UnixTime
	Bump        uint8
}

// ConfigAddress returns the configuration address of the gate program.
func ConfigAddress(programID tokenvm.Address) (tokenvm.Address, byte, error) {
	return pda.FindProgramAddress([][]byte{[]byte(ConfigSeed)}, programID)
}

// WhitelistAddress returns the whitelist address of user.
func WhitelistAddress(programID, user tokenvm.Address) (tokenvm.Address, byte, error) {
	return pda.FindProgramAddress(whitelistSeeds(user), programID)
}

func whitelistSeeds(user tokenvm.Address) [][]byte {
	return [][]byte{[]byte(WhitelistSeed), user[:]}
}

func configSigner(bump byte) tokenvm.Seeds {
	return tokenvm.Seeds{[]byte(ConfigSeed), {bump}}
}

func whitelistSigner(user tokenvm.Address, bump byte) tokenvm.Seeds {
	return tokenvm.Seeds{[]byte(WhitelistSeed), user[:], {bump}}
}

// Marshal encodes the fixed little endian layout.
func (c *Config) Marshal() ([]byte, error) {
	return marshalFixed(ConfigLen, c)
}

// Unmarshal decodes what Marshal produced.
func (c *Config) Unmarshal(raw []byte) error {
	return unmarshalFixed(raw, ConfigLen, c)
}

// Marshal encodes the fixed little endian layout.
func (w *UserWhitelist) Marshal() ([]byte, error) {
	return marshalFixed(WhitelistLen, w)
}

// Unmarshal decodes what Marshal produced.
func (w *UserWhitelist) Unmarshal(raw []byte) error {
	return unmarshalFixed(raw, WhitelistLen, w)
}

func marshalFixed(size int, src interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(size)
	if err := binary.Write(&buf, binary.LittleEndian, src); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return buf.Bytes(), nil
}

func unmarshalFixed(raw []byte, size int, dst interface{}) error {
	if len(raw) != size {
		return errors.Wrapf(errors.ErrInvalidAccountData, "%d bytes, want %d", len(raw), size)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, dst); err != nil {
		return errors.Wrap(errors.ErrInvalidAccountData, err.Error())
	}
	return nil
}

// encode writes a model into the account data of the same size.
func encode(info *tokenvm.AccountInfo, src tokenvm.Marshaller) error {
	raw, err := src.Marshal()
	if err != nil {
		return err
	}
	data, release, err := info.MutData()
	if err != nil {
		return err
	}
	defer release()
	if len(data) != len(raw) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "%s holds %d bytes, want %d", info.Address, len(data), len(raw))
	}
	copy(data, raw)
	return nil
}

// decode reads a model from an account owned by programID.
func decode(programID tokenvm.Address, info *tokenvm.AccountInfo, dst tokenvm.Unmarshaler) error {
	if !info.IsOwnedBy(programID) {
		return errors.Wrapf(errors.ErrIllegalOwner, "%s is owned by %s", info.Address, info.Owner())
	}
	data, release, err := info.Data()
	if err != nil {
		return err
	}
	defer release()
	return dst.Unmarshal(data)
}

// loadConfig reads the configuration and checks that it lives at its
// derived address.
func loadConfig(programID tokenvm.Address, info *tokenvm.AccountInfo) (*Config, error) {
	var c Config
	if err := decode(programID, info, &c); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if err := pda.Verify(info.Address, [][]byte{[]byte(ConfigSeed)}, c.Bump, programID); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return &c, nil
}

// loadWhitelist reads the whitelist of user and checks its address.
func loadWhitelist(programID tokenvm.Address, info *tokenvm.AccountInfo, user tokenvm.Address) (*UserWhitelist, error) {
	var w UserWhitelist
	if err := decode(programID, info, &w); err != nil {
		return nil, errors.Wrap(err, "whitelist")
	}
	if w.User != user {
		return nil, errors.Wrapf(errors.ErrIllegalOwner, "whitelist of %s, not %s", w.User, user)
	}
	if err := pda.Verify(info.Address, whitelistSeeds(user), w.Bump, programID); err != nil {
		return nil, errors.Wrap(err, "whitelist")
	}
	return &w, nil
}
