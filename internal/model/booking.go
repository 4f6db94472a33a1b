package model

import "time"

// Booking statuses.  Only "active" bookings participate in conflict
// detection; the other values exist for external data correction and the
// admin dashboard, this service never writes them.
const (
    BookingActive    = "active"
    BookingCompleted = "completed"
    BookingCancelled = "cancelled"
)

// Booking represents one reservation of one slot by one user for one
// half-open time interval [EntryAt, ExitAt).  Bookings are created only by
// the booking transaction manager and are never updated or deleted here.
type Booking struct {
    ID       uint64    // bookings.booking_id
    UserID   uint64    // bookings.user_id
    SlotID   uint64    // bookings.slot_id
    EntryAt  time.Time // bookings.entry_at (UTC)
    ExitAt   time.Time // bookings.exit_at (UTC)
    Status   string    // bookings.status
    BookedAt time.Time // bookings.booked_at
}
