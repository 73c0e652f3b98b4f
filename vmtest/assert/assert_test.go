package assert

import (
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/tokenvm/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant:  errors.ErrEmpty,
			ErrGot:   errors.ErrEmpty,
			WantFail: false,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrEmpty,
			WantFail: true,
		},
		"both nil": {
			ErrWant:  nil,
			ErrGot:   nil,
			WantFail: false,
		},
		"wrapped": {
			ErrWant:  errors.ErrIllegalOwner,
			ErrGot:   errors.Wrap(errors.ErrIllegalOwner, "test"),
			WantFail: false,
		},
		"different": {
			ErrWant:  errors.ErrIllegalOwner,
			ErrGot:   errors.ErrInvalidSeeds,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var nilErr *errors.Error
	mock := &tmock{TB: t}
	Nil(mock, nil)
	Nil(mock, nilErr)
	if mock.failcalls != 0 {
		t.Fatalf("nil values must pass, got %d failures", mock.failcalls)
	}
	Nil(mock, 1)
	if mock.failcalls != 1 {
		t.Fatalf("non nil value must fail, got %d failures", mock.failcalls)
	}
}

func TestEqualPrintsBytesInHex(t *testing.T) {
	mock := &tmock{TB: t}
	Equal(mock, []byte{0xca, 0xfe}, []byte{0xca, 0xfe})
	if mock.failcalls != 0 {
		t.Fatalf("equal slices must pass, got %d failures", mock.failcalls)
	}
	Equal(mock, []byte{0xca, 0xfe}, []byte{0xbe, 0xef})
	if mock.failcalls != 1 {
		t.Fatalf("different slices must fail, got %d failures", mock.failcalls)
	}
	if !strings.Contains(mock.last, "cafe") || !strings.Contains(mock.last, "beef") {
		t.Fatalf("bytes must be shown in hex: %s", mock.last)
	}
}

// tmock mocks testing.TB and only counts failure calls. It ignores all other
// input.
type tmock struct {
	testing.TB
	failcalls int
	last      string
}

func (t *tmock) Error(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Errorf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}

func (t *tmock) Fatal(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.last = fmt.Sprintf(s, args...)
	t.failcalls++
}
