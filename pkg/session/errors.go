package session

import (
	"errors"
	"fmt"

	"github.com/mash-protocol/buspanel/pkg/transport"
)

// Error categories. Every synchronous failure of Request, Broadcast and
// Subscribe matches exactly one of them with errors.Is.
var (
	ErrPrecondition  = errors.New("precondition failed")
	ErrConfiguration = errors.New("invalid configuration")
)

// Specific errors.
var (
	// ErrAnonymous is returned by Request and Broadcast while the local
	// node has no ID. It also matches transport.ErrAnonymous.
	ErrAnonymous = fmt.Errorf("%w: %w", ErrPrecondition, transport.ErrAnonymous)

	// ErrIntervalRequired is returned by Broadcast when a count or
	// duration is given without an interval.
	ErrIntervalRequired = fmt.Errorf("%w: count or duration requires an interval", ErrConfiguration)

	// ErrOnEndWithoutTermination is returned by Subscribe when OnEnd is
	// set but neither count nor duration is.
	ErrOnEndWithoutTermination = fmt.Errorf("%w: onEnd requires a count or duration", ErrConfiguration)

	// ErrNegativeLimit is returned for a negative count, duration or interval.
	ErrNegativeLimit = fmt.Errorf("%w: negative limit", ErrConfiguration)

	// ErrMissingType is returned for an empty message type.
	ErrMissingType = fmt.Errorf("%w: missing message type", ErrConfiguration)

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session closed")
)

// CallbackError reports a failure in caller-supplied code: an error
// returned by a subscription callback, or a panic in any callback.
type CallbackError struct {
	// Callback names the failing hook ("callback", "onEnd", "response").
	Callback string

	// Err is the returned error, or the recovered panic as an error.
	Err error

	// Panicked is true if the callback panicked.
	Panicked bool
}

func (e *CallbackError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("%s panicked: %v", e.Callback, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Callback, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// guard runs fn and converts a returned error or a panic into a
// *CallbackError.
func guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			err = &CallbackError{Callback: name, Err: perr, Panicked: true}
		}
	}()
	if cbErr := fn(); cbErr != nil {
		return &CallbackError{Callback: name, Err: cbErr}
	}
	return nil
}
