package whitelist

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
)

// PkgName is the configuration key of this package.
const PkgName = "whitelist"

// Configuration of the whitelist hook.
type Configuration struct {
	// Admin manages the whitelist records.
	Admin tokenvm.Address `json:"admin"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) {
	return gconf.MarshalJSON(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return gconf.UnmarshalJSON(raw, c)
}

func (c *Configuration) Validate() error {
	if c.Admin.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "admin")
	}
	return nil
}

// authorizeAdmin ensures that admin is the configured admin and signed.
func authorizeAdmin(env tokenvm.Env, admin *tokenvm.AccountInfo) error {
	var conf Configuration
	if err := env.LoadConfig(PkgName, &conf); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrap(errors.ErrUnauthorized, "no admin configured")
		}
		return errors.Wrap(err, "whitelist configuration")
	}
	if admin.Address != conf.Admin {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the admin", admin.Address)
	}
	if !admin.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "admin %s", admin.Address)
	}
	return nil
}
