// Package calerr defines the error taxonomy shared across the
// ephemeris, root-solving, and calendar-synthesis layers, so callers can
// distinguish fatal preconditions (an unreachable kernel) from
// per-task failures (one root that failed to converge) without string
// matching.
package calerr

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a calendar-computation failure.
type Kind int

const (
	// EphemerisUnavailable means the underlying ephemeris kernel could
	// not be loaded, or a requested state could not be read from it.
	// Always fatal: nothing downstream can proceed without ephemeris
	// access.
	EphemerisUnavailable Kind = iota
	// DidNotConverge means a Newton root search (and its bracket
	// fallback) failed to find a root within the allotted iterations.
	DidNotConverge
	// UnknownCode means a solar-term or lunar-phase code was not
	// recognized.
	UnknownCode
	// MissingRoot means a required anchor root (the prior year's winter
	// solstice) could not be resolved, so the year's lunar months cannot
	// be reckoned.
	MissingRoot
	// SparseNewMoonList means the new moons found around a
	// winter-solstice pair do not bracket both solstices or do not form
	// exactly 12 or 13 lunations between them.
	SparseNewMoonList
	// LeapNotFound means a 13-new-moon year had no term-lacking
	// interval, so no leap month could be identified.
	LeapNotFound
	// InvalidInput means a caller-supplied argument (a code, a body, a
	// date range) was malformed before any computation was attempted.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case EphemerisUnavailable:
		return "EphemerisUnavailable"
	case DidNotConverge:
		return "DidNotConverge"
	case UnknownCode:
		return "UnknownCode"
	case MissingRoot:
		return "MissingRoot"
	case SparseNewMoonList:
		return "SparseNewMoonList"
	case LeapNotFound:
		return "LeapNotFound"
	case InvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// Error is a calendar-computation error tagged with its Kind, wrapping
// an underlying cause where one exists.
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given Kind with a plain message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Wrap builds an Error of the given Kind wrapping an existing error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, Err: pkgerrors.Wrap(err, msg)}
}

// Is reports whether err, or any calendar Error it wraps, is a calendar
// Error of the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	for errors.As(err, &ce) {
		if ce.Kind == kind {
			return true
		}
		err = ce.Err
	}
	return false
}
