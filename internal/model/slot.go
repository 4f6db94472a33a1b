package model

// Slot describes a single physical parking space.  Slots are uniquely
// named (P01..P10) and carry a denormalized availability flag.
//
// IsAvailable is a cached summary of "no active booking occupies this
// slot"; it is flipped to false by the booking transaction and never
// flipped back by this service (there is no release operation).  The
// availability resolver answers window queries from the booking set
// instead, so the flag can be corrected externally without breaking
// conflict detection.
type Slot struct {
    ID          uint64 // parking_slots.slot_id
    Name        string // parking_slots.slot_name
    IsAvailable bool   // parking_slots.is_available
    Location    string // parking_slots.location
}
