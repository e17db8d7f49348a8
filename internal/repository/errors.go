// Package repository holds the MySQL data access layer.  The sentinel
// errors below let handlers tell failure scenarios apart without looking
// at driver errors.
package repository

import "errors"

// ErrConflict signals that an operation cannot proceed because of the
// current state, e.g. ordering a sold-out dish.  Handlers translate it
// into 409.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when the requested row does not exist (or is not
// visible to the caller).
var ErrNotFound = errors.New("not found")

// ErrClientNotFound is returned when an auth identity has no client_db row.
var ErrClientNotFound = errors.New("client profile not found")
