package receiver

import (
	"context"

	"github.com/pkg/errors"
)

type invalidArgument interface {
	InvalidArgument() bool
}

type errInvalidArgument struct {
	err error
}

func (e errInvalidArgument) Error() string {
	return e.err.Error()
}

func (e errInvalidArgument) InvalidArgument() bool {
	return true
}

// NewInvalidArgument creates an error that reports a malformed
// caller-supplied argument. These never reach the network.
func NewInvalidArgument(msg string) error {
	return errInvalidArgument{errors.New(msg)}
}

// ErrInvalidArgument tests to see if the error passed is an invalid
// argument error or not.
func ErrInvalidArgument(err error) bool {
	if err != nil {
		if _, ok := err.(invalidArgument); ok {
			return true
		}
	}
	return false
}

type invalidMode interface {
	InvalidMode() bool
}

type errInvalidMode struct {
	err error
}

func (e errInvalidMode) Error() string {
	return e.err.Error()
}

func (e errInvalidMode) InvalidMode() bool {
	return true
}

// ErrInvalidMode tests to see if the error passed is an invalid mode
// error or not.
func ErrInvalidMode(err error) bool {
	if err != nil {
		if _, ok := err.(invalidMode); ok {
			return true
		}
	}
	return false
}

type notSupported interface {
	NotSupported() bool
}

type errNotSupported struct {
	err error
}

func (e errNotSupported) Error() string {
	return e.err.Error()
}

func (e errNotSupported) NotSupported() bool {
	return true
}

// NewNotSupported creates an error that reports an operation the
// underlying transport cannot express.
func NewNotSupported(msg string) error {
	return errNotSupported{errors.New(msg)}
}

// ErrNotSupported tests to see if the error passed is a not supported
// error or not.
func ErrNotSupported(err error) bool {
	if err != nil {
		if _, ok := err.(notSupported); ok {
			return true
		}
	}
	return false
}

type timeout interface {
	Timeout() bool
}

// ErrTimeout tests to see if the error passed describes an operation
// that exceeded its deadline. Transport errors carrying their own
// timeout behaviour pass this check untouched.
func ErrTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Cause(err) == context.DeadlineExceeded {
		return true
	}
	if t, ok := errors.Cause(err).(timeout); ok {
		return t.Timeout()
	}
	return false
}
