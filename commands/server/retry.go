package server

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/tendermint/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/types"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	iavlstore "github.com/iov-one/tokenvm/store/iavl"
)

const (
	flagUntilError = "error"
	flagMaxTries   = "max"
)

type retryArgs struct {
	dbPath     string
	blockPath  string
	debug      bool
	untilError bool
	maxTries   int
}

func parseRetryArgs(args []string) (retryArgs, error) {
	if len(args) < 2 {
		return retryArgs{}, errors.Wrap(errors.ErrInput,
			"usage: cmd retry <path to abci.db> <path to block.json> [-debug] [-error] [-max=N]")
	}
	res := retryArgs{
		dbPath:    args[0],
		blockPath: args[1],
	}
	getBlockFlags := flag.NewFlagSet("retry", flag.ContinueOnError)
	getBlockFlags.BoolVar(&res.debug, flagDebug, false, "print out debug info")
	getBlockFlags.BoolVar(&res.untilError, flagUntilError, false, "retry multiple times until an error appears")
	getBlockFlags.IntVar(&res.maxTries, flagMaxTries, 10, "maximum number of times to retry if -error is passed")
	if err := getBlockFlags.Parse(args[2:]); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// InlineAppGenerator should be implemented by the app/init.go file
type InlineAppGenerator func(tokenvm.CommitKVStore, log.Logger, bool) abci.Application

type appBuilder func(tokenvm.CommitKVStore) abci.Application

func wrapInlineAppGenerator(gen InlineAppGenerator, logger log.Logger, debug bool) appBuilder {
	return func(kv tokenvm.CommitKVStore) abci.Application {
		return gen(kv, logger, debug)
	}
}

// RetryCmd replays the last block of a node. The iavl state in abci.db must
// be at the height of the block in block.json (see getblock). The state is
// rolled back one version, the block delivered again and the resulting app
// hash compared with the original one.
//
// With -error the block is replayed up to -max times until the hash differs,
// to catch non deterministic execution.
func RetryCmd(makeApp InlineAppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseRetryArgs(args)
	if err != nil {
		return err
	}

	blockJSON, err := ioutil.ReadFile(flags.blockPath)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	var block *types.Block
	if err := blockCodec.UnmarshalJSON(blockJSON, &block); err != nil {
		return errors.Wrapf(errors.ErrInput, "block: %s", err)
	}

	tree, ver, err := readTree(flags.dbPath, 0)
	if err != nil {
		return errors.Wrap(err, "abci state")
	}
	if ver != block.Header.Height {
		return errors.Wrapf(errors.ErrState,
			"height mismatch - block=%d, abcistore=%d", block.Header.Height, ver)
	}
	logger.Info("Replaying block",
		"height", block.Header.Height,
		"txs", len(block.Txs),
		"hash", fmt.Sprintf("%X", tree.Hash()))

	r := replayer{
		build:  wrapInlineAppGenerator(makeApp, logger, flags.debug),
		tree:   tree,
		block:  block,
		logger: logger,
	}
	tries := 1
	if flags.untilError {
		tries += flags.maxTries
	}
	for i := 0; i < tries; i++ {
		same, err := r.replay()
		if err != nil {
			return err
		}
		if !same {
			return nil
		}
	}
	return nil
}

func readTree(dir string, version int) (*iavl.MutableTree, int64, error) {
	db, err := openDb(dir)
	if err != nil {
		return nil, 0, err
	}
	tree := iavl.NewMutableTree(db, iavlstore.DefaultCacheSize)
	ver, err := tree.LoadVersion(int64(version))
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if ver == 0 {
		return nil, 0, errors.Wrap(errors.ErrState, "iavl tree is empty")
	}
	return tree, ver, nil
}

// replayer delivers one block on top of the version preceding it.
type replayer struct {
	build  appBuilder
	tree   *iavl.MutableTree
	block  *types.Block
	logger log.Logger
}

// replay reports whether the replayed block gives the original app hash.
func (r replayer) replay() (bool, error) {
	origHash := r.tree.Hash()
	height := r.block.Header.Height
	if _, err := r.tree.LoadVersionForOverwriting(height - 1); err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	app := r.build(iavlstore.NewCommitStoreFromTree(r.tree))
	app.BeginBlock(abci.RequestBeginBlock{
		Hash:   r.block.Header.Hash(),
		Header: toAbciHeader(r.block.Header),
	})
	var failed int
	for i, tx := range r.block.Txs {
		res := app.DeliverTx(tx)
		if res.Code != errors.SuccessABCICode {
			failed++
			r.logger.Info("Tx failed", "index", i, "code", res.Code, "log", res.Log)
		}
	}
	app.EndBlock(abci.RequestEndBlock{Height: height})
	hash := app.Commit().Data

	same := bytes.Equal(origHash, hash)
	r.logger.Info("Block replayed",
		"height", height,
		"failed", failed,
		"hash", fmt.Sprintf("%X", hash),
		"same", same)
	return same, nil
}

func toAbciHeader(h types.Header) abci.Header {
	lb := h.LastBlockID
	return abci.Header{
		Version: abci.Version{
			Block: uint64(h.Version.Block),
			App:   uint64(h.Version.App),
		},
		ChainID:  h.ChainID,
		Height:   h.Height,
		Time:     h.Time,
		NumTxs:   h.NumTxs,
		TotalTxs: h.TotalTxs,
		LastBlockId: abci.BlockID{
			Hash: lb.Hash,
			PartsHeader: abci.PartSetHeader{
				Total: int32(lb.PartsHeader.Total),
				Hash:  lb.PartsHeader.Hash,
			},
		},
		LastCommitHash:     h.LastCommitHash,
		DataHash:           h.DataHash,
		ValidatorsHash:     h.ValidatorsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		ConsensusHash:      h.ConsensusHash,
		AppHash:            h.AppHash,
		LastResultsHash:    h.LastResultsHash,
		EvidenceHash:       h.EvidenceHash,
		ProposerAddress:    h.ProposerAddress,
	}
}
