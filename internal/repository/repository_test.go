package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserCreateDuplicateStudentNumber(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '2021-00123' for key 'users.uniq_student_number'"))

	_, err := users.Create(context.Background(), "2021-00123", "secret123", "user", 4)
	assert.ErrorIs(t, err, ErrStudentExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotListOrderedByName(t *testing.T) {
	db, mock := newMockDB(t)
	slots := NewSlotRepo(db)

	mock.ExpectQuery(`SELECT slot_id, slot_name, is_available, location FROM parking_slots ORDER BY slot_name`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, "CCIS Building - Front Row, Left Side").
			AddRow(2, "P02", false, "CCIS Building - Front Row, Left Center"))

	got, err := slots.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P01", got[0].Name)
	assert.True(t, got[0].IsAvailable)
	assert.False(t, got[1].IsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockByNameTxUnknownSlot(t *testing.T) {
	db, mock := newMockDB(t)
	slots := NewSlotRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM parking_slots WHERE slot_name = \? FOR UPDATE`).
		WithArgs("P99").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = slots.LockByNameTx(context.Background(), tx, "P99")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCountOverlappingArgOrder(t *testing.T) {
	// The half-open condition entry_at < ? AND exit_at > ? binds the
	// requested exit first, then the requested entry, both in UTC.
	db, mock := newMockDB(t)
	bookings := NewBookingRepo(db)

	entry := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(5), "2026-03-10 12:00:00", "2026-03-10 10:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	n, err := bookings.CountOverlappingTx(context.Background(), tx, 5, entry, exit)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetIDByStudentNumberTxMapsNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users WHERE student_number=\? LIMIT 1`).
		WithArgs("2099-99999").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = users.GetIDByStudentNumberTx(context.Background(), tx, "2099-99999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
