package httpclient

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("transport error")
	ErrTimeout   = errors.New("request timed out")
	ErrHTTP      = errors.New("unexpected HTTP status")
	ErrParse     = errors.New("failed to decode response")
	ErrNotFound  = errors.New("not found")
)

// Kind classifies a FetchError.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindHTTP
	KindParse
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindNotFound:
		return "not_found"
	default:
		return "transport"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindHTTP:
		return ErrHTTP
	case KindParse:
		return ErrParse
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrTransport
	}
}

// FetchError describes a failed outbound fetch. errors.Is matches it against
// the sentinel for its Kind as well as the underlying cause.
type FetchError struct {
	Kind     Kind
	Endpoint string
	Status   int // set for KindHTTP
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Endpoint, e.Kind.sentinel())
	if e.Kind == KindHTTP {
		msg = fmt.Sprintf("%s %d", msg, e.Status)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// NotFound builds a KindNotFound error for lookups that succeeded on the wire
// but carried no usable value.
func NotFound(endpoint, format string, args ...any) *FetchError {
	return &FetchError{
		Kind:     KindNotFound,
		Endpoint: endpoint,
		Err:      fmt.Errorf(format, args...),
	}
}

// KindOf returns the Kind of err, or KindTransport for foreign errors.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransport
}
