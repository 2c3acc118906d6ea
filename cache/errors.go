package cache

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by clients used after Close.
var ErrClosed = errors.New("cache: client closed")

// Error describes a failed cache operation. It is the only error type a
// Client returns.
type Error struct {
	Op  string
	Key string
	Err error
}

// NewError wraps err for the given operation. err must not be nil.
func NewError(op, key string, err error) *Error {
	return &Error{Op: op, Key: key, Err: err}
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCacheError reports whether err originated in a cache Client.
func IsCacheError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}
