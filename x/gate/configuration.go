package gate

import (
	"time"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
)

// PkgName is the configuration key of this package.
const PkgName = "gate"

// Configuration of the gate program.
type Configuration struct {
	// ResetWindow is how long after the last withdrawal a deposit resets
	// the user limit.
	ResetWindow tokenvm.UnixDuration `json:"reset_window"`
	// ResetLimit is the user limit after a reset.
	ResetLimit uint64 `json:"reset_limit"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration resets the limit to zero after about one month.
func DefaultConfiguration() Configuration {
	return Configuration{
		ResetWindow: tokenvm.AsUnixDuration(30 * 24 * time.Hour),
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return gconf.MarshalJSON(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return gconf.UnmarshalJSON(raw, c)
}

func (c *Configuration) Validate() error {
	if c.ResetWindow <= 0 {
		return errors.Wrap(errors.ErrInput, "reset window must be positive")
	}
	return nil
}

func loadConf(env tokenvm.Env) (Configuration, error) {
	var conf Configuration
	switch err := env.LoadConfig(PkgName, &conf); {
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	case err != nil:
		return conf, errors.Wrap(err, "gate configuration")
	}
	return conf, nil
}
