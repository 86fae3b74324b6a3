package resource

import (
	"errors"
	"fmt"
)

// Kind classifies why a resource could not be produced.
type Kind int

const (
	// KindTransport covers failures before a body was retrieved: request
	// construction, connection errors, cancellation and HTTP error statuses.
	KindTransport Kind = iota + 1
	// KindEmptyBody means the request succeeded but returned no bytes.
	KindEmptyBody
	// KindDeserialize means the body was not well-formed for the expected
	// encoding (for example invalid JSON).
	KindDeserialize
	// KindDecode means the parsed body did not have the expected shape.
	KindDecode
)

// Sentinel errors usable with errors.Is against any *Error of the same kind.
var (
	ErrTransport   = errors.New("transport failure")
	ErrEmptyBody   = errors.New("empty body")
	ErrDeserialize = errors.New("deserialization failure")
	ErrDecode      = errors.New("decode failure")
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEmptyBody:
		return "empty body"
	case KindDeserialize:
		return "deserialize"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindEmptyBody:
		return ErrEmptyBody
	case KindDeserialize:
		return ErrDeserialize
	case KindDecode:
		return ErrDecode
	default:
		return nil
	}
}

// Error is the tagged failure returned by every stage of a load.
type Error struct {
	Kind     Kind
	Location string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.Location != "" {
		msg += " " + e.Location
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Errorf builds an *Error of the given kind with a formatted cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind. An err that already carries a kind keeps it, so
// the original classification survives. When err only wraps a tagged error
// further down its chain, the whole chain is kept as the cause.
func Wrap(kind Kind, location string, err error) error {
	if err == nil {
		return nil
	}
	if tagged, ok := err.(*Error); ok && tagged != nil {
		if tagged.Location == "" && location != "" {
			dup := *tagged
			dup.Location = location
			return &dup
		}
		return err
	}
	var inner *Error
	if errors.As(err, &inner) && inner != nil {
		if location == "" {
			return err
		}
		return &Error{Kind: inner.Kind, Location: location, Err: err}
	}
	return &Error{Kind: kind, Location: location, Err: err}
}

// KindOf returns the kind of err, or zero when err is not tagged.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return 0
}
