package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/nwssu-ccis/campus-parking/internal/model"
)

// dbTimeLayout is the DATETIME format used for interval columns (UTC).
const dbTimeLayout = "2006-01-02 15:04:05"

// BookingRepo provides access to the bookings table.  Bookings are only
// ever created through the booking transaction manager; there is no update
// or delete path in this service.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the scope of an existing transaction
// and populates the generated ID and booked_at timestamp on the record.
// The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings (user_id, slot_id, entry_at, exit_at, status) VALUES (?, ?, ?, ?, 'active')`
    res, err := tx.ExecContext(ctx, q, b.UserID, b.SlotID,
        b.EntryAt.UTC().Format(dbTimeLayout), b.ExitAt.UTC().Format(dbTimeLayout))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    b.Status = model.BookingActive
    // Query back the row to populate the DB-default timestamp.
    return tx.QueryRowContext(ctx,
        `SELECT booked_at FROM bookings WHERE booking_id = ?`, b.ID).Scan(&b.BookedAt)
}

// CountOverlappingTx counts active bookings for a slot whose interval
// overlaps [entry, exit) under the half-open rule.  It must run inside the
// same transaction that holds the slot's row lock so the answer cannot be
// invalidated by a concurrent commit.
func (r *BookingRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, slotID uint64, entry, exit time.Time) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings
               WHERE slot_id = ?
                 AND status = 'active'
                 AND entry_at < ?
                 AND exit_at > ?`
    var n int
    err := tx.QueryRowContext(ctx, q, slotID,
        exit.UTC().Format(dbTimeLayout), entry.UTC().Format(dbTimeLayout)).Scan(&n)
    return n, err
}

// ListActive returns every active booking, for feeding the availability
// resolver.
func (r *BookingRepo) ListActive(ctx context.Context) ([]model.Booking, error) {
    const q = `SELECT booking_id, user_id, slot_id, entry_at, exit_at, status, booked_at
               FROM bookings WHERE status = 'active'`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(&b.ID, &b.UserID, &b.SlotID, &b.EntryAt, &b.ExitAt, &b.Status, &b.BookedAt); err != nil {
            return nil, err
        }
        bookings = append(bookings, b)
    }
    return bookings, rows.Err()
}

// ActiveBookingDetail joins an active booking with its slot and occupant
// for the admin dashboard.
type ActiveBookingDetail struct {
    BookingID     uint64    `json:"booking_id"`
    SlotName      string    `json:"slot_name"`
    StudentNumber string    `json:"student_number"`
    EntryAt       time.Time `json:"entry_at"`
    ExitAt        time.Time `json:"exit_at"`
}

// UserBookingDetail joins a booking with its slot for a student's own
// booking history.
type UserBookingDetail struct {
    BookingID uint64    `json:"booking_id"`
    SlotName  string    `json:"slot_name"`
    Location  string    `json:"location"`
    EntryAt   time.Time `json:"entry_at"`
    ExitAt    time.Time `json:"exit_at"`
    Status    string    `json:"status"`
    BookedAt  time.Time `json:"booked_at"`
}

// ListByUserDetailed returns a user's bookings with slot info, newest
// first.
func (r *BookingRepo) ListByUserDetailed(ctx context.Context, userID uint64) ([]UserBookingDetail, error) {
    const q = `SELECT b.booking_id, ps.slot_name, ps.location, b.entry_at, b.exit_at, b.status, b.booked_at
               FROM bookings b
               JOIN parking_slots ps ON ps.slot_id = b.slot_id
               WHERE b.user_id = ?
               ORDER BY b.booked_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]UserBookingDetail, 0)
    for rows.Next() {
        var d UserBookingDetail
        if err := rows.Scan(&d.BookingID, &d.SlotName, &d.Location, &d.EntryAt, &d.ExitAt, &d.Status, &d.BookedAt); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

// ListActiveDetailed returns active bookings with slot and occupant info,
// ordered by entry time so the earliest booking per slot comes first.
func (r *BookingRepo) ListActiveDetailed(ctx context.Context) ([]ActiveBookingDetail, error) {
    const q = `SELECT b.booking_id, ps.slot_name, u.student_number, b.entry_at, b.exit_at
               FROM bookings b
               JOIN parking_slots ps ON ps.slot_id = b.slot_id
               JOIN users u ON u.user_id = b.user_id
               WHERE b.status = 'active'
               ORDER BY b.entry_at`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ActiveBookingDetail, 0)
    for rows.Next() {
        var d ActiveBookingDetail
        if err := rows.Scan(&d.BookingID, &d.SlotName, &d.StudentNumber, &d.EntryAt, &d.ExitAt); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    return details, rows.Err()
}
