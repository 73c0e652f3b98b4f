package app

import (
	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// CommitStore keeps the three views of the application state: the committed
// iavl tree, the cache transactions of the current block are delivered to,
// and the cache the mempool checks transactions against.
type CommitStore struct {
	committed tokenvm.CommitKVStore
	last      tokenvm.CommitID
	deliver   tokenvm.KVCacheWrap
	check     tokenvm.KVCacheWrap
}

// NewCommitStore loads the latest version of store. It panics if the store
// cannot be loaded, as the node cannot start without its state.
func NewCommitStore(store tokenvm.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	last, err := store.LatestVersion()
	if err != nil {
		panic(err)
	}
	cs := &CommitStore{committed: store, last: last}
	cs.resetCaches()
	return cs
}

func (cs *CommitStore) resetCaches() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the height and app hash of the last commit.
func (cs *CommitStore) CommitInfo() (tokenvm.CommitID, error) {
	return cs.last, nil
}

// Commit writes the delivered block to the tree and saves a new version.
// Pending checks are dropped, the next block starts from fresh caches.
func (cs *CommitStore) Commit() (tokenvm.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return tokenvm.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.last = id
	cs.resetCaches()
	return id, nil
}

// CheckStore is the state CheckTx runs against.
func (cs *CommitStore) CheckStore() tokenvm.CacheableKVStore {
	return cs.check
}

// DeliverStore is the state of the block being delivered.
func (cs *CommitStore) DeliverStore() tokenvm.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() tokenvm.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// Keys under "_vm:" hold data of the application itself, never of accounts.
const chainIDKey = "_vm:chainID"

// loadChainID returns the stored chain id, or "" before genesis.
func loadChainID(kv tokenvm.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores the chain id once. Transactions are signed for it, so
// it cannot change after genesis.
func saveChainID(kv tokenvm.KVStore, chainID string) error {
	if !tokenvm.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	current, err := loadChainID(kv)
	if err != nil {
		return err
	}
	if current != "" {
		return errors.Wrapf(errors.ErrUnauthorized, "chain id already set to %q", current)
	}
	if err := kv.Set([]byte(chainIDKey), []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
