package escrow

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
)

// PkgName is the configuration key of this package.
const PkgName = "escrow"

// Configuration of the escrow program.
type Configuration struct {
	// CloseOnSettle closes the vault and the record on settlement. If
	// unset, both stay with zeroed amounts.
	CloseOnSettle bool `json:"close_on_settle"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when genesis provided none.
func DefaultConfiguration() Configuration {
	return Configuration{CloseOnSettle: true}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return gconf.MarshalJSON(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return gconf.UnmarshalJSON(raw, c)
}

func (c *Configuration) Validate() error {
	return nil
}

func loadConf(env tokenvm.Env) (Configuration, error) {
	var conf Configuration
	switch err := env.LoadConfig(PkgName, &conf); {
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	case err != nil:
		return conf, errors.Wrap(err, "escrow configuration")
	}
	return conf, nil
}
