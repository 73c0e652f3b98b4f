package app

import (
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinResults(t *testing.T) {
	models := []tokenvm.Model{
		tokenvm.Pair([]byte("a"), []byte("1")),
		tokenvm.Pair([]byte("b"), []byte{}),
	}
	rawKeys, err := ResultsFromKeys(models).Marshal()
	require.NoError(t, err)
	rawValues, err := ResultsFromValues(models).Marshal()
	require.NoError(t, err)

	var keys, values ResultSet
	require.NoError(t, keys.Unmarshal(rawKeys))
	require.NoError(t, values.Unmarshal(rawValues))
	joined, err := JoinResults(&keys, &values)
	require.NoError(t, err)
	require.Len(t, joined, 2)
	assert.Equal(t, []byte("a"), joined[0].Key)
	assert.Equal(t, []byte("1"), joined[0].Value)
	assert.Len(t, joined[1].Value, 0)

	_, err = JoinResults(&keys, &ResultSet{})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestResultSetMalformed(t *testing.T) {
	cases := map[string][]byte{
		"wrong field":      {2<<3 | 2, 1, 'a'},
		"truncated value":  {resultsTag, 5, 'a'},
		"truncated length": {resultsTag, 0x80},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var rs ResultSet
			assert.True(t, errors.ErrInput.Is(rs.Unmarshal(raw)))
		})
	}

	var rs ResultSet
	require.NoError(t, rs.Unmarshal(nil))
	assert.Len(t, rs.Results, 0)
	assert.NoError(t, UnmarshalOneResult(nil, &tokenvm.Account{}))
}
