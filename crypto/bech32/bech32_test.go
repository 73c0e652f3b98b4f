package bech32

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
	"github.com/iov-one/tokenvm/vmtest/assert"
)

func TestBech32EncodeDecode(t *testing.T) {
	// bech32  -e -h tiov 746573742d7061796c6f6164
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`

	want, err := hex.DecodeString("746573742d7061796c6f6164")
	if err != nil {
		t.Fatal(err)
	}

	hrp, payload, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(want, payload) {
		t.Logf("want %d", want)
		t.Logf("got  %d", payload)
		t.Fatal("invalid decode")
	}

	raw, err := Encode(hrp, payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if raw != enc {
		t.Fatalf("invalid encoding: %q", raw)
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := tokenvm.Address{1, 2, 3, 4, 5}
	raw, err := EncodeAddress(DefaultHRP, addr)
	assert.Nil(t, err)

	got, err := DecodeAddress(DefaultHRP, raw)
	assert.Nil(t, err)
	assert.Equal(t, addr, got)

	_, err = DecodeAddress("tiov", raw)
	assert.IsErr(t, errors.ErrInput, err)

	_, err = DecodeAddress(DefaultHRP, "tiov1w3jhxapdwpshjmr0v9jqymqq4y")
	assert.IsErr(t, errors.ErrInput, err)
}
