package store

import "github.com/iov-one/tokenvm"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = tokenvm.ReadOnlyKVStore
	SetDeleter       = tokenvm.SetDeleter
	KVStore          = tokenvm.KVStore
	Batch            = tokenvm.Batch
	Iterator         = tokenvm.Iterator
	CacheableKVStore = tokenvm.CacheableKVStore
	KVCacheWrap      = tokenvm.KVCacheWrap
	CommitKVStore    = tokenvm.CommitKVStore
	CommitID         = tokenvm.CommitID
	Model            = tokenvm.Model
)

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return tokenvm.Pair(key, value)
}
