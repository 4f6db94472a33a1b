package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nwssu-ccis/campus-parking/internal/availability"
	"github.com/nwssu-ccis/campus-parking/internal/booking"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
)

// BookingHandler turns booking requests into manager calls and maps the
// manager's failure modes onto HTTP statuses.
type BookingHandler struct {
	Manager  *booking.Manager
	Bookings *repository.BookingRepo
}

func NewBookingHandler(m *booking.Manager, b *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Manager: m, Bookings: b}
}

type bookReq struct {
	StudentNumber string `json:"student_number"`
	SlotName      string `json:"slot_name"`
	EntryDate     string `json:"entry_date"`
	EntryTime     string `json:"entry_time"`
	ExitDate      string `json:"exit_date"`
	ExitTime      string `json:"exit_time"`
}

type bookData struct {
	BookingID uint64 `json:"booking_id"`
	SlotName  string `json:"slot_name"`
	Location  string `json:"location"`
	EntryDate string `json:"entry_date"`
	EntryTime string `json:"entry_time"`
	ExitDate  string `json:"exit_date"`
	ExitTime  string `json:"exit_time"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body.")
	}
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	req.SlotName = strings.TrimSpace(req.SlotName)
	req.EntryDate = strings.TrimSpace(req.EntryDate)
	req.EntryTime = strings.TrimSpace(req.EntryTime)
	req.ExitDate = strings.TrimSpace(req.ExitDate)
	req.ExitTime = strings.TrimSpace(req.ExitTime)

	// Field presence is checked before any parsing so an empty field is
	// reported as missing, not malformed.
	if req.StudentNumber == "" || req.SlotName == "" ||
		req.EntryDate == "" || req.EntryTime == "" ||
		req.ExitDate == "" || req.ExitTime == "" {
		return respondErr(c, http.StatusBadRequest, "All booking fields are required.")
	}

	entry, err := availability.CombineDateTime(req.EntryDate, req.EntryTime)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid entry date or time format.")
	}
	exit, err := availability.CombineDateTime(req.ExitDate, req.ExitTime)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid exit date or time format.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	conf, err := h.Manager.Book(ctx, req.StudentNumber, req.SlotName, entry, exit)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrMissingField):
			return respondErr(c, http.StatusBadRequest, "All booking fields are required.")
		case errors.Is(err, availability.ErrInvalidInterval):
			return respondErr(c, http.StatusBadRequest, "Exit must be after entry.")
		case errors.Is(err, repository.ErrUserNotFound):
			return respondErr(c, http.StatusNotFound, "Student not found. Please sign up.")
		case errors.Is(err, repository.ErrSlotNotFound):
			return respondErr(c, http.StatusNotFound, "Slot does not exist.")
		case errors.Is(err, repository.ErrSlotUnavailable):
			return respondErr(c, http.StatusConflict,
				"This slot is already booked for the selected time period. Please choose a different time or slot.")
		}
		return respondErr(c, http.StatusInternalServerError, "Booking failed. Please try again.")
	}

	return respondOK(c, http.StatusCreated, "Booking confirmed.", bookData{
		BookingID: conf.BookingID,
		SlotName:  conf.SlotName,
		Location:  conf.Location,
		EntryDate: availability.FormatDate(conf.EntryAt),
		EntryTime: availability.FormatClock(conf.EntryAt),
		ExitDate:  availability.FormatDate(conf.ExitAt),
		ExitTime:  availability.FormatClock(conf.ExitAt),
	})
}

type myBookingItem struct {
	BookingID uint64 `json:"booking_id"`
	SlotName  string `json:"slot_name"`
	Location  string `json:"location"`
	EntryDate string `json:"entry_date"`
	EntryTime string `json:"entry_time"`
	ExitDate  string `json:"exit_date"`
	ExitTime  string `json:"exit_time"`
	Status    string `json:"status"`
	BookedAt  string `json:"booked_at"`
}

// MyBookings returns the authenticated student's booking history, newest
// first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Invalid session.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Bookings.ListByUserDetailed(ctx, userID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load bookings.")
	}
	items := make([]myBookingItem, 0, len(details))
	for _, d := range details {
		items = append(items, myBookingItem{
			BookingID: d.BookingID,
			SlotName:  d.SlotName,
			Location:  d.Location,
			EntryDate: availability.FormatDate(d.EntryAt),
			EntryTime: availability.FormatClock(d.EntryAt),
			ExitDate:  availability.FormatDate(d.ExitAt),
			ExitTime:  availability.FormatClock(d.ExitAt),
			Status:    d.Status,
			BookedAt:  d.BookedAt.UTC().Format(time.RFC3339),
		})
	}
	return respondOK(c, http.StatusOK, "Bookings retrieved.", items)
}
