package repository

import "errors"

var (
	// ErrNotFound signals an expected-absent condition (no active session,
	// no open activity, empty stats period). Callers branch on it with
	// errors.Is; it never indicates a fault.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a broken store invariant, e.g. closing an
	// activity touched more than one row. Treated as a bug, not retried.
	ErrConflict = errors.New("data integrity conflict")
)
