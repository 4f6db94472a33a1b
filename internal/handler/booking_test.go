package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwssu-ccis/campus-parking/internal/booking"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookings := repository.NewBookingRepo(db)
	m := booking.NewManager(db,
		repository.NewUserRepo(db),
		repository.NewSlotRepo(db),
		bookings,
		nil)
	return NewBookingHandler(m, bookings), mock
}

func postBooking(t *testing.T, h *BookingHandler, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Create(e.NewContext(req, rec)))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestCreateBookingMissingFields(t *testing.T) {
	h, mock := newBookingHandler(t)

	rec, resp := postBooking(t, h, `{"student_number":"2021-00123","slot_name":"P01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "All booking fields are required.", resp.Message)
	assert.NoError(t, mock.ExpectationsWereMet(), "no queries expected")
}

func TestCreateBookingInvalidInterval(t *testing.T) {
	h, mock := newBookingHandler(t)

	rec, resp := postBooking(t, h, `{
		"student_number":"2021-00123","slot_name":"P01",
		"entry_date":"2026-03-10","entry_time":"12:00",
		"exit_date":"2026-03-10","exit_time":"10:00"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Exit must be after entry.", resp.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingMalformedDate(t *testing.T) {
	h, mock := newBookingHandler(t)

	rec, resp := postBooking(t, h, `{
		"student_number":"2021-00123","slot_name":"P01",
		"entry_date":"10/03/2026","entry_time":"10:00",
		"exit_date":"2026-03-10","exit_time":"12:00"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingConflictMapsTo409(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", false, ""))
	mock.ExpectRollback()

	rec, resp := postBooking(t, h, `{
		"student_number":"2021-00123","slot_name":"P01",
		"entry_date":"2026-03-10","entry_time":"10:00",
		"exit_date":"2026-03-10","exit_time":"12:00"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "already booked for the selected time period")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingSuccess(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "slot_name", "is_available", "location"}).
			AddRow(1, "P01", true, "CCIS Building - Front Row, Left Side"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT booked_at FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booked_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec(`UPDATE parking_slots SET is_available = 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, resp := postBooking(t, h, `{
		"student_number":"2021-00123","slot_name":"P01",
		"entry_date":"2026-03-10","entry_time":"10:00",
		"exit_date":"2026-03-10","exit_time":"12:00"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Booking confirmed.", resp.Message)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(42), data["booking_id"])
	assert.Equal(t, "P01", data["slot_name"])
	assert.Equal(t, "2026-03-10", data["entry_date"])
	assert.Equal(t, "10:00", data["entry_time"])
	assert.Equal(t, "12:00", data["exit_time"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
