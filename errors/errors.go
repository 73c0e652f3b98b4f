package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Generic root errors shared by the runtime and all programs.
var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned whenever an instruction is invalid and cannot be
	// handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned whenever a model is invalid and cannot be
	// persisted.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when there is a record already that has the
	// same unique key.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when application reaches a code path which
	// should not ever be reached if the code was written as expected.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an object is in invalid state.
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(11, "invalid type")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(14, "invalid input")

	// ErrIteratorDone is returned by an iterator that has no more items.
	ErrIteratorDone = Register(15, "iterator done")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result value exceeds the type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase is returned when the underlying store fails.
	ErrDatabase = Register(17, "database")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Program errors. These mirror the failure classes an on-chain program
// reports to the transaction layer.
var (
	// ErrInvalidArgument is returned when an instruction argument is
	// inconsistent with the passed accounts.
	ErrInvalidArgument = Register(100, "invalid argument")

	// ErrInvalidInstructionData is returned when instruction bytes cannot be
	// decoded.
	ErrInvalidInstructionData = Register(101, "invalid instruction data")

	// ErrInvalidAccountData is returned when an account holds data of the
	// wrong size, layout or kind.
	ErrInvalidAccountData = Register(102, "invalid account data")

	// ErrAccountDataTooSmall is returned when an account is too small for
	// the requested layout.
	ErrAccountDataTooSmall = Register(103, "account data too small")

	// ErrInsufficientFunds is returned when a balance cannot cover a debit.
	ErrInsufficientFunds = Register(104, "insufficient funds")

	// ErrIncorrectProgramID is returned when an account passed in place of
	// a program is not the expected program.
	ErrIncorrectProgramID = Register(105, "incorrect program id")

	// ErrMissingRequiredSignature is returned when an account that must
	// authorize an instruction did not sign.
	ErrMissingRequiredSignature = Register(106, "missing required signature")

	// ErrAccountAlreadyInitialized is returned when initializing an account
	// twice.
	ErrAccountAlreadyInitialized = Register(107, "account already initialized")

	// ErrUninitializedAccount is returned when using an account that was
	// never initialized.
	ErrUninitializedAccount = Register(108, "uninitialized account")

	// ErrNotEnoughAccountKeys is returned when an instruction receives
	// fewer accounts than its account list requires.
	ErrNotEnoughAccountKeys = Register(109, "not enough account keys")

	// ErrAccountBorrowFailed is returned when account data is borrowed
	// while a conflicting borrow is outstanding.
	ErrAccountBorrowFailed = Register(110, "account borrow failed")

	// ErrIllegalOwner is returned when an account is owned by someone else
	// than required, including a mismatch between a derived and a supplied
	// address.
	ErrIllegalOwner = Register(111, "illegal owner")

	// ErrArithmeticOverflow is returned by checked arithmetic.
	ErrArithmeticOverflow = Register(112, "arithmetic overflow")

	// ErrInvalidSeeds is returned when seeds cannot produce a program
	// derived address.
	ErrInvalidSeeds = Register(113, "invalid seeds")

	// ErrAccountAlreadyInUse is returned when creating an account that
	// already holds lamports or data.
	ErrAccountAlreadyInUse = Register(114, "account already in use")

	// ErrReadonlyModified is returned when an instruction writes to an
	// account it was not allowed to write.
	ErrReadonlyModified = Register(115, "readonly account modified")

	// ErrUnbalancedInstruction is returned when an instruction creates or
	// destroys lamports.
	ErrUnbalancedInstruction = Register(116, "sum of account balances changed")

	// ErrNonEmptyAccount is returned when closing an account that still
	// holds tokens.
	ErrNonEmptyAccount = Register(117, "non-empty account")

	// ErrCallDepth is returned when cross-program invocation nests too
	// deep.
	ErrCallDepth = Register(118, "call depth exceeded")

	// ErrUnsupportedProgram is returned when an instruction targets an
	// address without a registered program.
	ErrUnsupportedProgram = Register(119, "unsupported program")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but extensions may want to
// declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for non coded errors and must not be used.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the client
// in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the code registered for this root error.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide ABCICode method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType is a helper to augment an error with a corresponding type message
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// Append clubs together errors, returning the first non nil error. Later
// errors are kept in the message so that no information is lost.
func Append(errs ...error) error {
	var res error
	for _, e := range errs {
		if e == nil {
			continue
		}
		if res == nil {
			res = e
			continue
		}
		res = Wrap(res, e.Error())
	}
	return res
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}
