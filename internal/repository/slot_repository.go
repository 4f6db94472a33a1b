package repository

import (
    "context"
    "database/sql"

    "github.com/nwssu-ccis/campus-parking/internal/model"
)

// SlotRepo provides access to the fixed parking_slots set.  Slots are
// provisioned once at startup; the only mutation this service performs is
// flipping the cached availability flag inside a booking transaction.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// List returns every slot ordered by name.
func (r *SlotRepo) List(ctx context.Context) ([]model.Slot, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT slot_id, slot_name, is_available, location FROM parking_slots ORDER BY slot_name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    slots := make([]model.Slot, 0)
    for rows.Next() {
        var s model.Slot
        if err := rows.Scan(&s.ID, &s.Name, &s.IsAvailable, &s.Location); err != nil {
            return nil, err
        }
        slots = append(slots, s)
    }
    return slots, rows.Err()
}

// LockByNameTx loads a slot by name and takes a row-level exclusive lock on
// it for the lifetime of the transaction.  Concurrent booking attempts on
// the same slot serialize here; attempts on different slots do not block
// each other.  ErrSlotNotFound is returned when the name is unknown.
func (r *SlotRepo) LockByNameTx(ctx context.Context, tx *sql.Tx, name string) (model.Slot, error) {
    var s model.Slot
    err := tx.QueryRowContext(ctx,
        `SELECT slot_id, slot_name, is_available, location FROM parking_slots WHERE slot_name = ? FOR UPDATE`,
        name).Scan(&s.ID, &s.Name, &s.IsAvailable, &s.Location)
    if err == sql.ErrNoRows {
        return model.Slot{}, ErrSlotNotFound
    }
    if err != nil {
        return model.Slot{}, err
    }
    return s, nil
}

// MarkUnavailableTx flips the cached availability flag to 0 within the
// caller's transaction.  The caller must already hold the row lock.
func (r *SlotRepo) MarkUnavailableTx(ctx context.Context, tx *sql.Tx, slotID uint64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE parking_slots SET is_available = 0 WHERE slot_id = ?`, slotID)
    return err
}
