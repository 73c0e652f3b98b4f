package accounts

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/store"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestBucketSaveGet(t *testing.T) {
	db := store.MemStore()
	b := NewBucket()
	addr := tokenvm.Address{1}

	acc, err := b.Get(db, addr)
	assert.Nil(t, err)
	assert.Nil(t, acc)

	want := &tokenvm.Account{Owner: tokenvm.Address{2}, Lamports: 10, Data: []byte{1, 2}}
	assert.Nil(t, b.Save(db, addr, want))
	got, err := b.Get(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, want, got)

	bal, err := b.Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), bal)

	// Draining the lamports removes the account.
	assert.Nil(t, b.Save(db, addr, &tokenvm.Account{Owner: tokenvm.Address{2}}))
	got, err = b.Get(db, addr)
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestGenesis(t *testing.T) {
	program := tokenvm.Address{9}
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"funded accounts": {
			genesis: `{"accounts": [{"address": "11111111111111111111111111111112", "lamports": 100}]}`,
		},
		"no section": {
			genesis: `{}`,
		},
		"empty account": {
			genesis: `{"accounts": [{"address": "11111111111111111111111111111112", "lamports": 0}]}`,
			wantErr: errors.ErrInput,
		},
		"duplicated account": {
			genesis: `{"accounts": [
				{"address": "11111111111111111111111111111112", "lamports": 1},
				{"address": "11111111111111111111111111111112", "lamports": 2}
			]}`,
			wantErr: errors.ErrDuplicate,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var opts tokenvm.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))
			db := store.MemStore()
			err := Genesis{Programs: []tokenvm.Address{program}}.FromGenesis(opts, db)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			acc, err := NewBucket().Get(db, program)
			assert.Nil(t, err)
			assert.Equal(t, true, acc.Executable)
			assert.Equal(t, tokenvm.NativeLoaderID, acc.Owner)
		})
	}
}
