package app

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/accounts"
	"github.com/iov-one/tokenvm/crypto"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/runtime"
	"github.com/iov-one/tokenvm/x/escrow"
	"github.com/iov-one/tokenvm/x/gate"
	"github.com/iov-one/tokenvm/x/whitelist"
)

// GenesisLamports funds the rich account of a development genesis.
const GenesisLamports = 1000000000000

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The account also administrates the
// whitelist hook.
//
// An address can be passed as the first argument. Otherwise a new key is
// generated and printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr tokenvm.Address
	if len(args) > 0 {
		a, err := tokenvm.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	conf := map[string]interface{}{
		runtime.PkgName:   runtime.DefaultConfiguration(),
		escrow.PkgName:    escrow.DefaultConfiguration(),
		gate.PkgName:      gate.DefaultConfiguration(),
		whitelist.PkgName: whitelist.Configuration{Admin: addr},
	}
	state := map[string]interface{}{
		"accounts": []accounts.GenesisAccount{
			{Address: addr, Lamports: GenesisLamports},
		},
		"conf": conf,
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateCoinKey returns the address of a new key, along with the key file
// content needed to use it.
func GenerateCoinKey() (tokenvm.Address, string, error) {
	priv := crypto.GenPrivKeyEd25519()
	raw, err := crypto.MarshalKey(priv)
	if err != nil {
		return tokenvm.ZeroAddress, "", err
	}
	return priv.Address(), string(raw), nil
}
