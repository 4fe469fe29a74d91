package reconcile

import (
	"errors"
	"fmt"
)

// Kind classifies reconciliation failures so the HTTP layer can map them to
// status codes without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing/malformed input, box-weight count mismatch,
	// non-positive quantities.
	KindValidation
	// KindNotFound: a referenced client, remission, detail or payment does
	// not exist.
	KindNotFound
	// KindConsistency: the request contradicts stored state, e.g. a payment
	// allocated against another client's remission.
	KindConsistency
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Consistencyf(format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
