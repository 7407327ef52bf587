// Package apierr defines the closed taxonomy of errors the administrative
// surface (§6) returns to its caller. These never become FIX messages —
// spec §7 "Administrative errors: returned to the admin caller only".
package apierr

import (
	"fmt"
	"net/http"
)

// Kind is one of the administrative error categories spec §6 enumerates
// for submit_fill/admin_cancel/admin_reject.
type Kind string

const (
	NotFound   Kind = "NotFound"
	BadState   Kind = "BadState"
	Overfill   Kind = "Overfill"
	Validation Kind = "Validation"
)

// Error is a typed administrative error. It intentionally carries no stack
// trace or wrapped cause beyond Detail — the dispatcher and store produce
// these directly, they are not a wrapping layer over arbitrary failures.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func NewNotFound(detail string) *Error   { return New(NotFound, detail) }
func NewBadState(detail string) *Error   { return New(BadState, detail) }
func NewOverfill(detail string) *Error   { return New(Overfill, detail) }
func NewValidation(detail string) *Error { return New(Validation, detail) }

// As recovers an *Error when err is itself an *Error, following the same
// pattern finalex's common/errors package uses to normalize heterogeneous
// error types before mapping them to a transport status. Wrapped errors
// are not unwrapped.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// HTTPStatus maps a Kind to the status code the admin HTTP surface answers
// with.
func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case BadState, Overfill, Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
