package roster

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConnection means the table could not be reached.
	KindConnection
	// KindNormalization means the stored rows could not be mapped to the canonical schema.
	KindNormalization
	// KindValidation means the request itself was rejected (empty name, unknown sort mode).
	KindValidation
	// KindNotFound means no participant has the requested number.
	KindNotFound
	// KindSave means the full-table replace failed.
	KindSave
	// KindConflict means the table changed between load and save.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "CONNECTION_FAILURE"
	case KindNormalization:
		return "NORMALIZATION_FAILURE"
	case KindValidation:
		return "VALIDATION_FAILURE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindSave:
		return "SAVE_FAILURE"
	case KindConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type returned by every roster operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

// KindOf reports the Kind of err, or KindUnknown if err is not a roster error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
