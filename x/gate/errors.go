package gate

import "github.com/iov-one/tokenvm/errors"

var (
	// ErrExceedUserLimit is returned when a withdrawal is above the
	// remaining limit of the user.
	ErrExceedUserLimit = errors.Register(6000, "withdrawal amount exceeds user limit")

	// ErrUnderflow is returned when the user limit cannot be decreased.
	ErrUnderflow = errors.Register(6001, "underflow occurred while updating user limit")
)
