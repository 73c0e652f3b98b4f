package runtime

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
)

// PkgName is the configuration key of this package.
const PkgName = "runtime"

// DefaultMaxInvokeDepth caps nested cross-program invocation. A top level
// instruction runs at depth 1.
const DefaultMaxInvokeDepth = 4

// Configuration of the runtime.
type Configuration struct {
	Rent           tokenvm.Rent `json:"rent"`
	MaxInvokeDepth int          `json:"max_invoke_depth"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration is used when genesis provided none.
func DefaultConfiguration() Configuration {
	return Configuration{
		Rent:           tokenvm.DefaultRent,
		MaxInvokeDepth: DefaultMaxInvokeDepth,
	}
}

// Marshal implements gconf.Configuration.
func (c *Configuration) Marshal() ([]byte, error) {
	return gconf.MarshalJSON(c)
}

// Unmarshal implements gconf.Configuration.
func (c *Configuration) Unmarshal(raw []byte) error {
	return gconf.UnmarshalJSON(raw, c)
}

// Validate implements gconf.Configuration.
func (c *Configuration) Validate() error {
	if err := c.Rent.Validate(); err != nil {
		return errors.Wrap(err, "rent")
	}
	if c.MaxInvokeDepth < 1 {
		return errors.Wrapf(errors.ErrInput, "max invoke depth %d", c.MaxInvokeDepth)
	}
	return nil
}

func loadConfig(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, PkgName, &conf); {
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	case err != nil:
		return conf, errors.Wrap(err, "runtime configuration")
	}
	return conf, nil
}
