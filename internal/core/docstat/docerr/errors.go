// Package docerr defines the typed error surface raised by the docstat,
// kernel, entity, and driver packages. Every failure is fatal to the
// current operation (spec §7) — there is no recovery path inside the core,
// only at the host boundary that converts a *docerr.Error into its own
// error-raising convention (see internal/host/httperr for the HTTP mapping).
package docerr

import "fmt"

// Kind is a machine-readable error category, stable across releases.
type Kind string

const (
	// UnknownStatType: a stat document carries a type not in the allowed set.
	UnknownStatType Kind = "UnknownStatType"
	// UnknownAggType: a stats_agg entry carries a type not in the allowed set.
	UnknownAggType Kind = "UnknownAggType"
	// MalformedDocument: structural corruption — missing value, wrong shape,
	// missing required field of an aggregate entry.
	MalformedDocument Kind = "MalformedDocument"
	// TypeMismatch: an observation's kind is incompatible with the existing
	// accumulator bound to that name, or a stats_agg merge sees mismatched
	// variants on the same key.
	TypeMismatch Kind = "TypeMismatch"
	// InvalidScalar: the value codec cannot represent the host scalar.
	InvalidScalar Kind = "InvalidScalar"
	// NegativeNat: a nat observation is negative.
	NegativeNat Kind = "NegativeNat"
)

// Error is the typed error value raised by every public operation in the core.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind. It does not use the
// standard errors.Is chain because *Error never wraps another error — every
// core failure originates here, it does not propagate one.
func Is(err error, kind Kind) bool {
	var de *Error
	if e, ok := err.(*Error); ok {
		de = e
	}
	return de != nil && de.Kind == kind
}
