package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func loadRecord() error {
	return Wrapf(ErrInvalidAccountData, "record of %d bytes", 7)
}

func TestStackTrace(t *testing.T) {
	cases := map[string]struct {
		err     error
		wantMsg string
	}{
		"registered error": {
			err:     Wrap(ErrInsufficientFunds, "vault"),
			wantMsg: "vault: insufficient funds",
		},
		"created by a helper function": {
			err:     loadRecord(),
			wantMsg: "record of 7 bytes: invalid account data",
		},
		"stdlib error": {
			err:     Wrap(stderrors.New("disk full"), "commit"),
			wantMsg: "commit: disk full",
		},
		"formatted stdlib error": {
			err:     Wrap(fmt.Errorf("height %d", 3), "load"),
			wantMsg: "load: height 3",
		},
	}

	const thisFile = "stacktrace_test.go"
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.wantMsg, tc.err.Error())
			st := stackTrace(tc.err)
			if assert.NotEmpty(t, st) {
				top := fmt.Sprintf("%+v", st[0])
				assert.False(t, strings.Contains(top, "tokenvm/errors.Wrap"), "wrapping frames must be trimmed: %s", top)
			}

			full := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, full, tc.wantMsg)
			assert.Contains(t, full, thisFile)

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.wantMsg), short)
			assert.NotContains(t, short, "\n")
			assert.Contains(t, short, thisFile+":")
		})
	}
}

func TestStackTraceOfPlainError(t *testing.T) {
	assert.Nil(t, stackTrace(stderrors.New("no frames")))
}
