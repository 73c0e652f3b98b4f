package server

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iov-one/tokenvm/errors"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// blockCodec renders tendermint blocks the way the rpc endpoints do, so the
// output of getblock can be fed back into retry.
var blockCodec = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(blockCodec)
}

type getBlockArgs struct {
	db string
	// height of the block. Zero is the tip, negative values count back
	// from the tip.
	height int64
}

func parseGetBlockArgs(args []string) (getBlockArgs, error) {
	if len(args) == 0 {
		return getBlockArgs{}, errors.Wrap(errors.ErrInput, "usage: tokenvmd getblock <blockstore.db> [-height=H]")
	}
	fs := flag.NewFlagSet("getblock", flag.ContinueOnError)
	height := fs.Int64("height", 0, "block height, 0 for the latest, negative to count back from the latest")
	if err := fs.Parse(args[1:]); err != nil {
		return getBlockArgs{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return getBlockArgs{db: args[0], height: *height}, nil
}

// GetBlockCmd prints one block of a tendermint blockstore as amino JSON.
func GetBlockCmd(out io.Writer, args []string) error {
	a, err := parseGetBlockArgs(args)
	if err != nil {
		return err
	}
	db, err := openDb(a.db)
	if err != nil {
		return err
	}
	defer db.Close()
	return writeBlock(out, blockchain.NewBlockStore(db), a.height)
}

// openDb opens the goleveldb directory at path. Tendermint names its
// directories <name>.db and goleveldb wants the bare name.
func openDb(path string) (dbm.DB, error) {
	path = strings.TrimSuffix(path, "/")
	name := strings.TrimSuffix(filepath.Base(path), ".db")
	if name == filepath.Base(path) {
		return nil, errors.Wrapf(errors.ErrInput, "not a .db directory: %s", path)
	}
	db, err := dbm.NewGoLevelDB(name, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return db, nil
}

func resolveHeight(tip, height int64) (int64, error) {
	if height <= 0 {
		height += tip
	}
	if height < 1 || height > tip {
		return 0, errors.Wrapf(errors.ErrNotFound, "height %d outside of 1..%d", height, tip)
	}
	return height, nil
}

func writeBlock(out io.Writer, bs *blockchain.BlockStore, height int64) error {
	h, err := resolveHeight(bs.Height(), height)
	if err != nil {
		return err
	}
	block := bs.LoadBlock(h)
	if block == nil {
		return errors.Wrapf(errors.ErrNotFound, "block %d", h)
	}
	raw, err := blockCodec.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
