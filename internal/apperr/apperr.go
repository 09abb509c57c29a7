// Package apperr defines the application error taxonomy. Every failure that
// crosses a package boundary is one of these kinds; the handler layer is the
// single place where kinds become HTTP statuses.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks a required field missing or malformed input.
	KindValidation
	// KindUnauthenticated marks a missing or invalid identity.
	KindUnauthenticated
	// KindForbidden marks a valid identity with insufficient privilege.
	KindForbidden
	// KindNotFound marks a lookup that matched no row.
	KindNotFound
	// KindConflict marks a duplicate unique key.
	KindConflict
	// KindStorage marks an unexpected store failure. The cause is logged and
	// never surfaced to callers.
	KindStorage
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error      { return &Error{Kind: KindValidation, Message: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool      { return KindOf(err) == KindValidation }
func IsUnauthenticated(err error) bool { return KindOf(err) == KindUnauthenticated }
func IsForbidden(err error) bool       { return KindOf(err) == KindForbidden }
func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }
