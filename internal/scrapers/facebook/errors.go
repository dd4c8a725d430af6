package facebook

import (
	"errors"
	"fmt"
	"net/http"
)

type FailureKind int

const (
	// FAILURE_RECOVERABLE failures are logged and the crawl moves on to the next page.
	FAILURE_RECOVERABLE FailureKind = iota
	// FAILURE_FATAL failures stop the crawl, every following page would fail the same way.
	FAILURE_FATAL
)

func (k FailureKind) String() string {
	switch k {
	case FAILURE_RECOVERABLE:
		return "recoverable"
	case FAILURE_FATAL:
		return "fatal"
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

var (
	ErrCookieExpired    = errors.New("cookie expired, login form returned")
	ErrPageUnavailable  = errors.New("page temporarily unavailable, link may be broken or expired")
	ErrUnrecognizedPage = errors.New("failed to parse page")
)

// ParseError is returned by every parser when a page could not be turned
// into a result.
type ParseError struct {
	Kind   FailureKind
	Reason error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse (%s): %s", e.Kind, e.Reason)
}

func (e ParseError) Unwrap() error {
	return e.Reason
}

func recoverable(reason error) error {
	return ParseError{Kind: FAILURE_RECOVERABLE, Reason: reason}
}

func unrecognized(format string, args ...any) error {
	return recoverable(fmt.Errorf("%w: %s", ErrUnrecognizedPage, fmt.Sprintf(format, args...)))
}

// IsFatal reports whether err carries a ParseError of kind FAILURE_FATAL.
func IsFatal(err error) bool {
	var pe ParseError
	if errors.As(err, &pe) {
		return pe.Kind == FAILURE_FATAL
	}
	return false
}

// TransportError is returned by a Downloader when a page could not be
// fetched, Status is 0 when no response was received.
type TransportError struct {
	Url    string
	Status int
	Cause  error
}

func (e TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.Url, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %d %s: %v", e.Url, e.Status, http.StatusText(e.Status), e.Cause)
}

func (e TransportError) Unwrap() error {
	return e.Cause
}
