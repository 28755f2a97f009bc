package attendance

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindMalformedToken     Kind = "malformed_token"
	KindUnknownDirection   Kind = "unknown_direction"
	KindActivityNotFound   Kind = "activity_not_found"
	KindDuplicateEntry     Kind = "duplicate_entry"
	KindAlreadyClosed      Kind = "already_closed"
	KindAlreadyComplete    Kind = "already_complete"
	KindEntryRequiredFirst Kind = "entry_required_first"
	KindNotAuthorized      Kind = "not_authorized"
	KindInvalidRequest     Kind = "invalid_request"
	KindInternal           Kind = "internal"
)

// Error is what the service returns for every failed scan or report.
// Everything except KindInternal is a business rejection: safe to show
// to the caller and pointless to retry unchanged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func internal(msg string, err error) *Error {
	return newError(KindInternal, msg, err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRejection separates business-rule outcomes from infrastructure failures.
func IsRejection(err error) bool {
	return err != nil && KindOf(err) != KindInternal
}

// IsAlreadyRegistered covers the repeat-scan outcomes.
func IsAlreadyRegistered(err error) bool {
	switch KindOf(err) {
	case KindDuplicateEntry, KindAlreadyClosed, KindAlreadyComplete:
		return true
	}
	return false
}
