package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// Genesis is the part of the tendermint genesis file that the application
// reads. All other fields are ignored.
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState tokenvm.Options `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	bz, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(bz, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis reads the genesis file and initializes the state the same way
// InitChain does. Useful for tests and state validation.
func (s *StoreApp) LoadGenesis(filePath string, init tokenvm.Initializer) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	if len(gen.AppState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state")
	}
	raw, err := json.Marshal(gen.AppState)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return s.parseAppState(raw, gen.ChainID, init)
}
