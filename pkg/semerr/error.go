// Package semerr defines SemanticError, the first-class error value that
// flows through the Reactor's attribute store alongside ordinary values.
package semerr

// SemanticError is an immutable record of a failed computation. Equality
// is by instance identity (two SemanticErrors built from the same text are
// distinct errors) — compare pointers, not Error() strings, when a test
// needs to assert "this exact error".
type SemanticError struct {
	description string
	cause       *SemanticError
	location    any
}

// New constructs a root SemanticError (no cause) with an optional location.
// Pass nil for location when none is known.
func New(description string, location any) *SemanticError {
	return &SemanticError{description: description, location: location}
}

// Wrap constructs a SemanticError derived from an older one. cause must be
// non-nil; callers deriving an error from another must always pass a
// strictly older SemanticError so the cause graph stays acyclic by
// construction — Wrap does not and cannot check this itself.
func Wrap(description string, cause *SemanticError, location any) *SemanticError {
	return &SemanticError{description: description, cause: cause, location: location}
}

// Description returns the human-readable text of this error.
func (e *SemanticError) Description() string {
	return e.description
}

// Cause returns the error that triggered this one, or nil if this is a
// root error.
func (e *SemanticError) Cause() *SemanticError {
	return e.cause
}

// Location returns this error's own location, which may be nil even when
// EffectiveLocation is not (see EffectiveLocation).
func (e *SemanticError) Location() any {
	return e.location
}

// IsRoot reports whether this error has no cause.
func (e *SemanticError) IsRoot() bool {
	return e.cause == nil
}

// EffectiveLocation returns this error's own location if set, else walks
// the cause chain for the first non-nil location, else nil. The walk
// terminates because the cause chain is acyclic and finite by
// construction (Wrap only ever points at a strictly older error).
func (e *SemanticError) EffectiveLocation() any {
	for cur := e; cur != nil; cur = cur.cause {
		if cur.location != nil {
			return cur.location
		}
	}
	return nil
}

// Error implements the standard error interface so a SemanticError can be
// passed to code expecting one. It does not participate in errors.Is/As cause
// matching — SemanticError's own cause chain is the source of truth for
// that, since it carries locations Go's error-wrapping does not.
func (e *SemanticError) Error() string {
	if e.cause == nil {
		return e.description
	}
	return e.description + ": " + e.cause.Error()
}
