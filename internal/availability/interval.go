// Package availability computes per-slot free/occupied status for a
// requested parking window.  Everything in this package is a pure function
// over in-memory slot and booking data: it reads no storage, holds no state
// and is safe for unlimited concurrent callers.
package availability

import (
    "errors"
    "time"
)

// ErrInvalidInterval is returned when an interval's exit instant is not
// strictly after its entry instant.
var ErrInvalidInterval = errors.New("exit must be after entry")

// Interval is a half-open time window [Entry, Exit): entry inclusive, exit
// exclusive.  All instants are UTC.
type Interval struct {
    Entry time.Time
    Exit  time.Time
}

// NewInterval validates and builds an Interval.  Exit must be strictly
// after Entry; equal instants are rejected because a zero-length window
// cannot occupy a slot.
func NewInterval(entry, exit time.Time) (Interval, error) {
    if !exit.After(entry) {
        return Interval{}, ErrInvalidInterval
    }
    return Interval{Entry: entry.UTC(), Exit: exit.UTC()}, nil
}

// Overlaps reports whether two half-open intervals share any instant:
// [a,b) and [c,d) overlap iff a < d && c < b.  Back-to-back windows
// ([10,12) then [12,14)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
    return iv.Entry.Before(other.Exit) && other.Entry.Before(iv.Exit)
}

// Wire formats for the split date and time fields.  Clients send the date
// and clock separately; they are combined into one instant server-side.
const (
    dateLayout      = "2006-01-02"
    clockLayout     = "15:04"
    clockLayoutSecs = "15:04:05"
)

// CombineDateTime parses a "YYYY-MM-DD" date and a 24-hour "HH:MM" clock
// (seconds tolerated) into a single UTC instant.
func CombineDateTime(date, clock string) (time.Time, error) {
    layout := dateLayout + " " + clockLayout
    if len(clock) > len(clockLayout) {
        layout = dateLayout + " " + clockLayoutSecs
    }
    return time.ParseInLocation(layout, date+" "+clock, time.UTC)
}

// FormatDate renders the date half of an instant in wire format.
func FormatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

// FormatClock renders the clock half of an instant in wire format.
func FormatClock(t time.Time) string { return t.UTC().Format(clockLayout) }
