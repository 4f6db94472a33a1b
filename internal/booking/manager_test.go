package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwssu-ccis/campus-parking/internal/availability"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
)

const (
	qUserID   = `SELECT user_id FROM users WHERE student_number=\? LIMIT 1`
	qLockSlot = `SELECT slot_id, slot_name, is_available, location FROM parking_slots WHERE slot_name = \? FOR UPDATE`
	qOverlap  = `SELECT COUNT\(\*\) FROM bookings`
	qInsert   = `INSERT INTO bookings \(user_id, slot_id, entry_at, exit_at, status\)`
	qBookedAt = `SELECT booked_at FROM bookings WHERE booking_id = \?`
	qFlagOff  = `UPDATE parking_slots SET is_available = 0 WHERE slot_id = \?`
)

func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewManager(db,
		repository.NewUserRepo(db),
		repository.NewSlotRepo(db),
		repository.NewBookingRepo(db),
		nil)
	return m, mock
}

func window() (time.Time, time.Time) {
	entry := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return entry, entry.Add(2 * time.Hour)
}

func TestBookSuccess(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, "CCIS Building - Front Row, Left Side"))
	mock.ExpectQuery(qOverlap).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(qInsert).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(qBookedAt).WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"booked_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec(qFlagOff).WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	conf, err := m.Book(context.Background(), "2021-00123", "P01", entry, exit)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), conf.BookingID)
	assert.Equal(t, "P01", conf.SlotName)
	assert.Equal(t, entry, conf.EntryAt)
	assert.Equal(t, exit, conf.ExitAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookMissingFieldSkipsDatabase(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	_, err := m.Book(context.Background(), "  ", "P01", entry, exit)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = m.Book(context.Background(), "2021-00123", "", entry, exit)
	assert.ErrorIs(t, err, ErrMissingField)

	assert.NoError(t, mock.ExpectationsWereMet(), "no queries expected")
}

func TestBookInvalidIntervalSkipsDatabase(t *testing.T) {
	m, mock := newTestManager(t)
	entry, _ := window()

	_, err := m.Book(context.Background(), "2021-00123", "P01", entry, entry)
	assert.ErrorIs(t, err, availability.ErrInvalidInterval)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookUnknownStudentRollsBack(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2099-99999").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"})) // no rows
	mock.ExpectRollback()

	_, err := m.Book(context.Background(), "2099-99999", "P01", entry, exit)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookUnknownSlotRollsBack(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P99").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}))
	mock.ExpectRollback()

	_, err := m.Book(context.Background(), "2021-00123", "P99", entry, exit)
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookFlagAlreadyClearedRollsBack(t *testing.T) {
	// Once a slot's flag has been flipped by any booking, every later
	// attempt fails, even for a window that does not overlap. The flag is
	// never flipped back.
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", false, ""))
	mock.ExpectRollback()

	_, err := m.Book(context.Background(), "2021-00123", "P01", entry, exit)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookOverlapConflictRollsBack(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, ""))
	mock.ExpectQuery(qOverlap).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := m.Book(context.Background(), "2021-00123", "P01", entry, exit)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookInsertFailureRollsBack(t *testing.T) {
	m, mock := newTestManager(t)
	entry, exit := window()

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, ""))
	mock.ExpectQuery(qOverlap).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(qInsert).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := m.Book(context.Background(), "2021-00123", "P01", entry, exit)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookFormatsIntervalArgsAsUTC(t *testing.T) {
	m, mock := newTestManager(t)
	loc := time.FixedZone("PHT", 8*3600)
	entry := time.Date(2026, 3, 10, 18, 0, 0, 0, loc) // 10:00 UTC
	exit := entry.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(qUserID).WithArgs("2021-00123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(qLockSlot).WithArgs("P01").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, ""))
	mock.ExpectQuery(qOverlap).
		WithArgs(uint64(1), "2026-03-10 12:00:00", "2026-03-10 10:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(qInsert).
		WithArgs(uint64(7), uint64(1), "2026-03-10 10:00:00", "2026-03-10 12:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(qBookedAt).
		WillReturnRows(sqlmock.NewRows([]string{"booked_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec(qFlagOff).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	conf, err := m.Book(context.Background(), "2021-00123", "P01", entry, exit)
	require.NoError(t, err)
	assert.True(t, regexp.MustCompile(`^P\d{2}$`).MatchString(conf.SlotName))
	assert.NoError(t, mock.ExpectationsWereMet())
}
