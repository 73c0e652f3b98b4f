package errors

import (
	"errors"
	"reflect"
)

// SuccessABCICode is the code of a transaction or query that did not fail.
const SuccessABCICode = 0

// Errors that carry no registered code are reported to clients under code 1
// with a fixed log, so that internal details do not leak into blocks.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo translates err into the code and log of an ABCI response. Only
// errors rooted in a registered error expose their message. Anything else is
// reported as an internal error and, outside of debug mode, loses its
// message.
func ABCIInfo(err error, debug bool) (uint32, string) {
	code := abciCode(err)
	switch {
	case code == SuccessABCICode:
		return SuccessABCICode, ""
	case code != internalABCICode, debug:
		return code, err.Error()
	default:
		return internalABCICode, internalABCILog
	}
}

// ABCIError rebuilds an error from the code and log of an ABCI response, so
// that clients can compare it with the registered errors using Is. Codes
// that are not registered give an internal error.
func ABCIError(code uint32, log string) error {
	if root := usedCodes[code]; root != nil {
		return Wrap(root, log)
	}
	return Wrap(errors.New(internalABCILog), log)
}

// Redact hides the message of every error that is not rooted in a registered
// error, and of recovered panics. In debug mode err is returned untouched.
func Redact(err error, debug bool) error {
	if debug || errIsNil(err) {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the cause chain of err that
// declares one.
func abciCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessABCICode
	}
	for err != nil {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}

// errIsNil also catches typed nil pointers stored in an error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Ptr && val.IsNil()
}
