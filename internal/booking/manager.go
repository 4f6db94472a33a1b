// Package booking implements the atomic check-and-reserve operation.  The
// manager serializes the read-check-write sequence for a slot behind a
// row-level exclusive lock so that two concurrent attempts on the same slot
// cannot both observe "available" and both commit.  Attempts on different
// slots do not block each other.
package booking

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "strings"
    "time"

    "github.com/nwssu-ccis/campus-parking/internal/availability"
    "github.com/nwssu-ccis/campus-parking/internal/model"
    "github.com/nwssu-ccis/campus-parking/internal/queue"
    "github.com/nwssu-ccis/campus-parking/internal/repository"
)

// ErrMissingField is returned when a required booking field is empty.
var ErrMissingField = errors.New("all booking fields are required")

// Confirmation is returned to the client after a successful booking.
type Confirmation struct {
    BookingID     uint64
    StudentNumber string
    SlotName      string
    Location      string
    EntryAt       time.Time
    ExitAt        time.Time
}

// PublishFunc delivers a confirmed-booking event to the message broker.
// Publishing is best effort: a broker failure never fails the booking.
type PublishFunc func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// Manager orchestrates the booking transaction.  It owns no state of its
// own; every call reads a fresh snapshot under the transaction and writes
// back atomically.
type Manager struct {
    db       *sql.DB
    users    *repository.UserRepo
    slots    *repository.SlotRepo
    bookings *repository.BookingRepo
    publish  PublishFunc // may be nil when no broker is configured
}

// NewManager constructs a Manager.  All repositories must be non-nil;
// publish may be nil to disable event publishing.
func NewManager(db *sql.DB, users *repository.UserRepo, slots *repository.SlotRepo, bookings *repository.BookingRepo, publish PublishFunc) *Manager {
    if db == nil || users == nil || slots == nil || bookings == nil {
        panic("nil dependency passed to booking.NewManager")
    }
    return &Manager{db: db, users: users, slots: slots, bookings: bookings, publish: publish}
}

// Book reserves slotName for studentNumber over [entryAt, exitAt).
//
// Preconditions are checked in order, each a distinct failure mode:
// ErrMissingField, availability.ErrInvalidInterval,
// repository.ErrUserNotFound, repository.ErrSlotNotFound,
// repository.ErrSlotUnavailable.  The availability re-check, the booking
// insert and the slot flag update all happen inside one transaction; any
// failure rolls the whole thing back so no partial state is observable.
//
// Note the slot's cached is_available flag is authoritative here and never
// flips back (there is no release operation), so a slot stays unbookable
// after its booking's exit time until the flag is corrected externally.
// The interval-overlap check still runs so that an externally reset flag
// cannot reintroduce a double booking.
func (m *Manager) Book(ctx context.Context, studentNumber, slotName string, entryAt, exitAt time.Time) (*Confirmation, error) {
    if strings.TrimSpace(studentNumber) == "" || strings.TrimSpace(slotName) == "" {
        return nil, ErrMissingField
    }
    iv, err := availability.NewInterval(entryAt, exitAt)
    if err != nil {
        return nil, err
    }

    tx, err := m.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    userID, err := m.users.GetIDByStudentNumberTx(ctx, tx, studentNumber)
    if err != nil {
        return nil, err
    }

    // Exclusive lock on the slot row, held until commit or rollback.
    slot, err := m.slots.LockByNameTx(ctx, tx, slotName)
    if err != nil {
        return nil, err
    }
    if !slot.IsAvailable {
        return nil, repository.ErrSlotUnavailable
    }
    conflicts, err := m.bookings.CountOverlappingTx(ctx, tx, slot.ID, iv.Entry, iv.Exit)
    if err != nil {
        return nil, err
    }
    if conflicts > 0 {
        return nil, repository.ErrSlotUnavailable
    }

    rec := &model.Booking{
        UserID:  userID,
        SlotID:  slot.ID,
        EntryAt: iv.Entry,
        ExitAt:  iv.Exit,
    }
    if err := m.bookings.CreateTx(ctx, tx, rec); err != nil {
        return nil, err
    }
    if err := m.slots.MarkUnavailableTx(ctx, tx, slot.ID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    conf := &Confirmation{
        BookingID:     rec.ID,
        StudentNumber: strings.TrimSpace(studentNumber),
        SlotName:      slot.Name,
        Location:      slot.Location,
        EntryAt:       iv.Entry,
        ExitAt:        iv.Exit,
    }
    m.publishConfirmed(ctx, conf)
    return conf, nil
}

func (m *Manager) publishConfirmed(ctx context.Context, conf *Confirmation) {
    if m.publish == nil {
        return
    }
    ev := queue.BookingConfirmedEvent{
        BookingID:     conf.BookingID,
        StudentNumber: conf.StudentNumber,
        SlotName:      conf.SlotName,
        Location:      conf.Location,
        EntryAt:       conf.EntryAt.Format(time.RFC3339),
        ExitAt:        conf.ExitAt.Format(time.RFC3339),
        ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    if err := m.publish(ctx, ev); err != nil {
        log.Printf("booking: publish confirmed event failed: %v", err)
    }
}
