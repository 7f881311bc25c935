package message

import (
	"errors"
	"fmt"
)

// Kind tags a pipeline error with the recovery policy that applies to it.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnect
	KindFetch
	KindUnsubscribe
	KindDisposition
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindFetch:
		return "fetch"
	case KindUnsubscribe:
		return "unsubscribe"
	case KindDisposition:
		return "disposition"
	default:
		return "unknown"
	}
}

// Error is a failure of one pipeline operation.
type Error struct {
	Kind Kind
	Op   string
	Ref  Ref
	Err  error
}

func (e *Error) Error() string {
	if e.Ref != 0 {
		return fmt.Sprintf("%s %s (ref %d): %v", e.Kind, e.Op, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an Error of the given kind wrapping a formatted cause.
func Errorf(kind Kind, op string, ref Ref, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Ref: ref, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
