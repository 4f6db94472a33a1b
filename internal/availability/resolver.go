package availability

import (
    "sort"
    "time"

    "github.com/nwssu-ccis/campus-parking/internal/model"
)

// State classifies a slot for display purposes.
type State string

const (
    StateAvailable State = "available" // free for the requested window
    StateReserved  State = "reserved"  // blocked by a booking that has not started yet
    StateOccupied  State = "occupied"  // blocked by a booking already in progress
)

// EarlyArrivalGrace is how far before its entry instant a booking already
// counts as occupying its slot on the live dashboard.  Students routinely
// arrive a few minutes early.
const EarlyArrivalGrace = 15 * time.Minute

// SlotStatus is the per-slot answer for a requested window.
type SlotStatus struct {
    SlotName    string `json:"slot_name"`
    IsAvailable bool   `json:"is_available"`
    State       State  `json:"state"`
}

// KPIs are the aggregate counts over a resolved slot set.  Available and
// Occupied partition the total; Reserved is the sub-count of occupied slots
// whose blocking booking had not started at resolve time.
type KPIs struct {
    Total     int `json:"total"`
    Available int `json:"available"`
    Reserved  int `json:"reserved"`
    Occupied  int `json:"occupied"`
}

// Resolve answers, for every known slot, whether it is free for the
// requested interval.  A slot is available iff no active booking for that
// slot overlaps the request under the half-open rule.  The result covers
// each slot exactly once, sorted by slot name, and Available+Occupied
// always equals Total.
//
// now is passed explicitly (rather than read from the clock) so repeated
// calls with identical inputs yield identical output.
func Resolve(req Interval, now time.Time, slots []model.Slot, bookings []model.Booking) ([]SlotStatus, KPIs) {
    bySlot := activeBySlot(bookings)

    statuses := make([]SlotStatus, 0, len(slots))
    for _, s := range slots {
        statuses = append(statuses, resolveSlot(req, now, s, bySlot[s.ID]))
    }
    sort.Slice(statuses, func(i, j int) bool { return statuses[i].SlotName < statuses[j].SlotName })

    kpis := KPIs{Total: len(statuses)}
    for _, st := range statuses {
        switch {
        case st.IsAvailable:
            kpis.Available++
        default:
            kpis.Occupied++
            if st.State == StateReserved {
                kpis.Reserved++
            }
        }
    }
    return statuses, kpis
}

func resolveSlot(req Interval, now time.Time, s model.Slot, bookings []model.Booking) SlotStatus {
    var blocking *model.Booking
    for i := range bookings {
        b := bookings[i]
        iv := Interval{Entry: b.EntryAt, Exit: b.ExitAt}
        if !req.Overlaps(iv) {
            continue
        }
        // Remember the earliest-starting conflict; it decides the
        // reserved-vs-occupied classification below.
        if blocking == nil || b.EntryAt.Before(blocking.EntryAt) {
            blocking = &bookings[i]
        }
    }
    if blocking == nil {
        return SlotStatus{SlotName: s.Name, IsAvailable: true, State: StateAvailable}
    }
    state := StateOccupied
    if blocking.EntryAt.After(now) {
        state = StateReserved
    }
    return SlotStatus{SlotName: s.Name, IsAvailable: false, State: state}
}

// CurrentState classifies a single active booking against the present
// moment for the live dashboard: occupied when the window covers now (with
// the early-arrival grace), reserved when the window is still ahead, and
// available once the window has passed.
func CurrentState(now, entry, exit time.Time) State {
    if !entry.After(now.Add(EarlyArrivalGrace)) && now.Before(exit) {
        return StateOccupied
    }
    if entry.After(now.Add(EarlyArrivalGrace)) {
        return StateReserved
    }
    return StateAvailable
}

// activeBySlot groups active bookings by slot ID.  Cancelled and completed
// bookings never block a slot.
func activeBySlot(bookings []model.Booking) map[uint64][]model.Booking {
    bySlot := make(map[uint64][]model.Booking)
    for _, b := range bookings {
        if b.Status != "" && b.Status != model.BookingActive {
            continue
        }
        bySlot[b.SlotID] = append(bySlot[b.SlotID], b)
    }
    return bySlot
}
