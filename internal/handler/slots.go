package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nwssu-ccis/campus-parking/internal/availability"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
)

// SlotHandler serves slot listing and availability resolution.
type SlotHandler struct {
	Slots    *repository.SlotRepo
	Bookings *repository.BookingRepo
}

func NewSlotHandler(s *repository.SlotRepo, b *repository.BookingRepo) *SlotHandler {
	return &SlotHandler{Slots: s, Bookings: b}
}

type slotItem struct {
	SlotName    string `json:"slot_name"`
	Location    string `json:"location"`
	IsAvailable bool   `json:"is_available"`
}

// List returns every parking slot with its cached availability flag.
func (h *SlotHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.List(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load slots.")
	}
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{SlotName: s.Name, Location: s.Location, IsAvailable: s.IsAvailable})
	}
	return respondOK(c, http.StatusOK, "Slot list retrieved.", items)
}

type availabilityReq struct {
	EntryDate string `json:"entry_date"`
	EntryTime string `json:"entry_time"`
	ExitDate  string `json:"exit_date"`
	ExitTime  string `json:"exit_time"`
}

type availabilityData struct {
	Slots []availability.SlotStatus `json:"slots"`
	KPIs  availability.KPIs         `json:"kpis"`
}

// CheckAvailability resolves per-slot availability for a requested window.
// The window arrives as split date and time fields and is interpreted under
// the half-open rule, so a booking ending at 12:00 does not block a request
// starting at 12:00.
func (h *SlotHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body.")
	}
	req.EntryDate = strings.TrimSpace(req.EntryDate)
	req.EntryTime = strings.TrimSpace(req.EntryTime)
	req.ExitDate = strings.TrimSpace(req.ExitDate)
	req.ExitTime = strings.TrimSpace(req.ExitTime)
	if req.EntryDate == "" || req.EntryTime == "" || req.ExitDate == "" || req.ExitTime == "" {
		return respondErr(c, http.StatusBadRequest, "entry_date, entry_time, exit_date and exit_time are required.")
	}

	entry, err := availability.CombineDateTime(req.EntryDate, req.EntryTime)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid entry date or time format.")
	}
	exit, err := availability.CombineDateTime(req.ExitDate, req.ExitTime)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid exit date or time format.")
	}
	iv, err := availability.NewInterval(entry, exit)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Exit must be after entry.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.List(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load slots.")
	}
	bookings, err := h.Bookings.ListActive(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load bookings.")
	}

	statuses, kpis := availability.Resolve(iv, time.Now().UTC(), slots, bookings)
	return respondOK(c, http.StatusOK, "Availability resolved.", availabilityData{Slots: statuses, KPIs: kpis})
}
