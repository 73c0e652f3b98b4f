/*
Package app links together all the various components
to construct the tokenvmd application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/accounts"
	"github.com/iov-one/tokenvm/app"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/gconf"
	"github.com/iov-one/tokenvm/runtime"
	"github.com/iov-one/tokenvm/store/iavl"
	"github.com/iov-one/tokenvm/x/ata"
	"github.com/iov-one/tokenvm/x/escrow"
	"github.com/iov-one/tokenvm/x/gate"
	"github.com/iov-one/tokenvm/x/system"
	"github.com/iov-one/tokenvm/x/token"
	"github.com/iov-one/tokenvm/x/utils"
	"github.com/iov-one/tokenvm/x/whitelist"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Identities of the programs deployed by this application.
var (
	EscrowID    = tokenvm.MustParseAddress("EscrowProgram1111111111111111111111111111111")
	GateID      = tokenvm.MustParseAddress("GateProgram11111111111111111111111111111111")
	WhitelistID = tokenvm.MustParseAddress("HookAccessList11111111111111111111111111111")
)

// Runtime returns a runtime with all programs of the chain registered.
func Runtime() *runtime.Runtime {
	return runtime.New().
		Register(tokenvm.SystemProgramID, system.Program{}).
		Register(token.ID, token.Program{}).
		Register(ata.ID, ata.Program{}).
		Register(EscrowID, escrow.NewProgram(EscrowID)).
		Register(GateID, gate.NewProgram(GateID)).
		Register(WhitelistID, whitelist.NewProgram(WhitelistID))
}

// Chain returns a chain of decorators, to handle logging, recovery and
// atomic state changes.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// a failed transaction leaves no trace in either state
		utils.NewSavepoint().OnCheck().OnDeliver(),
	)
}

// Stack wires up the runtime with a standard decorator chain. This can be
// passed into BaseApp.
func Stack(rt *runtime.Runtime) tokenvm.Handler {
	return Chain().WithHandler(rt)
}

// QueryRouter returns a default query router, allowing access to
// "/accounts".
func QueryRouter() tokenvm.QueryRouter {
	r := tokenvm.NewQueryRouter()
	accounts.RegisterQuery(r)
	return r
}

// Initializer loads the genesis accounts, creates the executable accounts of
// all programs of rt and stores the configuration of every package.
func Initializer(rt *runtime.Runtime) tokenvm.Initializer {
	var programs []tokenvm.Address
	for _, id := range rt.ProgramIDs() {
		if id != tokenvm.SystemProgramID {
			programs = append(programs, id)
		}
	}
	confs := gconf.NewInitializer().
		Register(runtime.PkgName, func() gconf.Configuration { return &runtime.Configuration{} }).
		Register(escrow.PkgName, func() gconf.Configuration { return &escrow.Configuration{} }).
		Register(gate.PkgName, func() gconf.Configuration { return &gate.Configuration{} }).
		Register(whitelist.PkgName, func() gconf.Configuration { return &whitelist.Configuration{} })
	return tokenvm.ChainInitializers(
		accounts.Genesis{Programs: programs},
		confs,
	)
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h tokenvm.Handler,
	tx tokenvm.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, errors.Wrap(err, "cannot create database instance")
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (tokenvm.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", path)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "tokenvm.db")
	}

	rt := Runtime()
	application, err := Application("tokenvmd", Stack(rt), tokenvm.DecodeTx, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializer(rt))
	application.WithLogger(logger)
	return application, nil
}

// InlineApp will take a previously prepared CommitStore and return a complete
// Application. It is used by the retry command to replay a block.
func InlineApp(kv tokenvm.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	rt := Runtime()
	ctx := context.Background()
	store := app.NewStoreApp("tokenvmd", kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tokenvm.DecodeTx, Stack(rt), debug)
	base.WithInit(Initializer(rt))
	base.WithLogger(logger)
	return base
}
