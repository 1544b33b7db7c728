package fetch

import (
	"errors"
	"fmt"
)

// ErrFetchFailed is the single user-facing failure class: anything that goes
// wrong between handing a URL to a backend and the backend finishing.
var ErrFetchFailed = errors.New("fetch failed")

// Cause sentinels. Each is reported through an *Error, so errors.Is matches
// both the cause and ErrFetchFailed.
var (
	ErrEmptyURL           = errors.New("empty URL")
	ErrUnsupportedURL     = errors.New("unsupported URL")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrUnavailable        = errors.New("media unavailable")
	ErrNoFormat           = errors.New("no suitable format")
	ErrOutsideOutputDir   = errors.New("path escapes output directory")
)

// Error is returned by every fetch failure.
type Error struct {
	URL     string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("fetch %q: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%s: fetch %q: %v", e.Backend, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports every *Error as ErrFetchFailed.
func (e *Error) Is(target error) bool { return target == ErrFetchFailed }

// Wrap returns err as an *Error, leaving existing *Error values untouched.
// A nil err yields nil.
func Wrap(backend, url string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{URL: url, Backend: backend, Err: err}
}

// causeError attaches a cause sentinel to a library error so that both stay
// reachable through errors.Is.
type causeError struct {
	cause error
	err   error
}

func (c *causeError) Error() string   { return fmt.Sprintf("%v: %v", c.cause, c.err) }
func (c *causeError) Unwrap() []error { return []error{c.cause, c.err} }

func withCause(cause, err error) error {
	if err == nil || errors.Is(err, cause) {
		return err
	}
	return &causeError{cause: cause, err: err}
}
