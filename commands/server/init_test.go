package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/tokenvm/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// tendermintGenesis is what "tendermint init" writes, trimmed down.
const tendermintGenesis = `{
  "genesis_time": "2024-03-01T12:00:00Z",
  "chain_id": "test-chain-LgVOZ0",
  "validators": [{"address": "B2F1C4B0", "power": "10", "name": ""}],
  "app_hash": ""
}`

func setupHome(t *testing.T) (string, func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "tokenvmd-")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(home, "config"), 0755))
	genFile := filepath.Join(home, "config", "genesis.json")
	require.NoError(t, ioutil.WriteFile(genFile, []byte(tendermintGenesis), 0600))
	return home, func() { os.RemoveAll(home) }
}

func genOptions(calls *[]string) GenOptions {
	return func(args []string) (json.RawMessage, error) {
		*calls = append(*calls, args...)
		return json.RawMessage(`{"accounts": []}`), nil
	}
}

func TestInit(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()

	var calls []string
	logger := log.NewNopLogger()
	require.NoError(t, InitCmd(genOptions(&calls), logger, home, []string{"someaddress"}))
	assert.Equal(t, []string{"someaddress"}, calls)

	bz, err := ioutil.ReadFile(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	var doc genesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))
	// keep old values, and add our values
	assert.Equal(t, `"test-chain-LgVOZ0"`, string(doc["chain_id"]))
	assert.NotEmpty(t, doc["validators"])
	assert.JSONEq(t, `{"accounts": []}`, string(doc[appStateKey]))

	// a second run must not silently overwrite the state
	err = InitCmd(genOptions(&calls), logger, home, nil)
	assert.True(t, errors.ErrState.Is(err))
	require.NoError(t, InitCmd(genOptions(&calls), logger, home, []string{"-f"}))
}

func TestInitWithoutGenesis(t *testing.T) {
	home, err := ioutil.TempDir("", "tokenvmd-")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	var calls []string
	err = InitCmd(genOptions(&calls), log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrInput.Is(err))
	assert.Empty(t, calls)
}
