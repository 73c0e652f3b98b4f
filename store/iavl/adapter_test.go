package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/store"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func makeCommitStore(t testing.TB) (CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	assert.Nil(t, err)
	cleanup := func() { os.RemoveAll(tmpDir) }
	return NewCommitStore(tmpDir, "base"), cleanup
}

func assertGetHas(t testing.TB, kv store.ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func TestCacheGetSet(t *testing.T) {
	commit := MockCommitStore()
	base := commit.Adapter()

	k, v := []byte("french"), []byte("fry")
	assertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	assertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assert.Nil(t, cache.Set(k2, v2))
	assert.Nil(t, cache.Delete(k))
	assertGetHas(t, cache, k, nil, false)
	assertGetHas(t, base, k, v, true)
	assertGetHas(t, base, k2, nil, false)

	assert.Nil(t, cache.Write())
	assertGetHas(t, base, k, nil, false)
	assertGetHas(t, base, k2, v2, true)
}

func TestCommitVisibility(t *testing.T) {
	commit := MockCommitStore()
	k, v := []byte("key"), []byte("value")

	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set(k, v))
	assert.Nil(t, cache.Write())

	// Only committed data is visible through the commit store.
	got, err := commit.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)

	id, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("commit must produce a hash")
	}

	got, err = commit.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	latest, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, id, latest)
}

func TestPersistence(t *testing.T) {
	commit, cleanup := makeCommitStore(t)
	defer cleanup()

	cache := commit.CacheWrap()
	for _, k := range []string{"a", "b", "c"} {
		assert.Nil(t, cache.Set([]byte(k), []byte("v-"+k)))
	}
	assert.Nil(t, cache.Write())
	id, err := commit.Commit()
	assert.Nil(t, err)

	// Iterate the working tree in both directions.
	it, err := commit.Adapter().ReverseIterator(nil, nil)
	assert.Nil(t, err)
	var keys []string
	for {
		k, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		assert.Nil(t, err)
		keys = append(keys, string(k))
	}
	it.Release()
	assert.Equal(t, []string{"c", "b", "a"}, keys)
	assert.Equal(t, int64(1), id.Version)

	got, err := commit.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v-b"), got)
}
