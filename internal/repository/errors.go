// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// booking manager and handlers to distinguish failure scenarios: a missing
// student, a missing slot, or a booking conflict each map to a different
// user-facing message, and only unexpected errors are treated as internal.
package repository

import "errors"

// ErrStudentExists is returned on signup when the student number is
// already registered.
var ErrStudentExists = errors.New("student number already exists")

// ErrUserNotFound is returned when no user matches the given student
// number.
var ErrUserNotFound = errors.New("student not found")

// ErrSlotNotFound is returned when no parking slot matches the given name.
var ErrSlotNotFound = errors.New("slot does not exist")

// ErrSlotUnavailable is returned when the requested slot cannot be booked
// for the requested window.  This is an expected, frequent outcome of
// concurrent booking attempts and must not be logged as exceptional.
var ErrSlotUnavailable = errors.New("slot unavailable for the requested period")
