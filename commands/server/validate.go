package server

import (
	"context"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/app"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/store/iavl"
)

// ValidateGenesis runs InitChain for every given genesis file against an in
// memory store and returns the first failure. Chain id and app_state are
// checked exactly as a starting node would check them.
func ValidateGenesis(ini tokenvm.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrInput, "usage: tokenvmd validate <genesis.json> ...")
	}
	for _, path := range genesisPaths {
		s := app.NewStoreApp("validate", iavl.MockCommitStore(), tokenvm.NewQueryRouter(), context.Background())
		if err := s.LoadGenesis(path, ini); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}
