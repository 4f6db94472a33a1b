package queue

// BookingConfirmedEvent is published when a parking booking commits.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type BookingConfirmedEvent struct {
    BookingID     uint64 `json:"booking_id"`
    StudentNumber string `json:"student_number"`
    SlotName      string `json:"slot_name"`
    Location      string `json:"location"`
    EntryAt       string `json:"entry_at"`
    ExitAt        string `json:"exit_at"`
    ConfirmedAt   string `json:"confirmed_at"`
}
