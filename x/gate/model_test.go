package gate

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestWhitelistLayout(t *testing.T) {
	w := UserWhitelist{
		Vault:       tokenvm.Address{1},
		User:        tokenvm.Address{2},
		UserLimit:   300,
		LastUpdated: 1709294400,
		Bump:        254,
	}
	raw, err := w.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, WhitelistLen, len(raw))
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, byte(2), raw[32])
	assert.Equal(t, uint64(300), binary.LittleEndian.Uint64(raw[64:]))
	assert.Equal(t, int64(1709294400), int64(binary.LittleEndian.Uint64(raw[72:])))
	assert.Equal(t, byte(254), raw[80])

	var got UserWhitelist
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, w, got)

	assert.IsErr(t, errors.ErrInvalidAccountData, got.Unmarshal(raw[:80]))
}

func TestConfigLayout(t *testing.T) {
	c := Config{
		Admin: tokenvm.Address{1},
		Vault: tokenvm.Address{2},
		Mint:  tokenvm.Address{3},
		Bump:  7,
	}
	raw, err := c.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, ConfigLen, len(raw))
	assert.Equal(t, byte(3), raw[64])
	assert.Equal(t, byte(7), raw[96])

	var got Config
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, c, got)
}

func TestCheckedSub(t *testing.T) {
	got, err := checkedSub(10, 10)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), got)

	_, err = checkedSub(10, 11)
	assert.IsErr(t, ErrUnderflow, err)
}

func TestConfigurationValidate(t *testing.T) {
	def := DefaultConfiguration()
	assert.Nil(t, def.Validate())
	assert.Equal(t, tokenvm.UnixDuration(30*24*60*60), def.ResetWindow)

	var conf Configuration
	assert.Nil(t, conf.Unmarshal([]byte(`{"reset_window": "1h", "reset_limit": 5}`)))
	assert.Equal(t, Configuration{ResetWindow: 3600, ResetLimit: 5}, conf)

	conf.ResetWindow = 0
	assert.IsErr(t, errors.ErrInput, conf.Validate())
}
