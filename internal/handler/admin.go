package handler

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nwssu-ccis/campus-parking/internal/availability"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
)

// AdminHandler serves the staff dashboard: live slot states with occupant
// details and the student roster.
type AdminHandler struct {
	Slots    *repository.SlotRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
}

func NewAdminHandler(s *repository.SlotRepo, b *repository.BookingRepo, u *repository.UserRepo) *AdminHandler {
	return &AdminHandler{Slots: s, Bookings: b, Users: u}
}

type dashboardSlot struct {
	SlotName      string             `json:"slot_name"`
	Location      string             `json:"location"`
	State         availability.State `json:"state"`
	StudentNumber string             `json:"student_number,omitempty"`
	EntryAt       string             `json:"entry_at,omitempty"`
	ExitAt        string             `json:"exit_at,omitempty"`
}

type dashboardData struct {
	Slots []dashboardSlot   `json:"slots"`
	KPIs  availability.KPIs `json:"kpis"`
}

// DashboardSlots classifies every slot against the present moment.  A slot
// with both an in-progress and a future booking shows as occupied; occupied
// wins over reserved, reserved over available.
func (h *AdminHandler) DashboardSlots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.List(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load slots.")
	}
	active, err := h.Bookings.ListActiveDetailed(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load bookings.")
	}

	now := time.Now().UTC()

	// Strongest current classification per slot, with the booking that
	// produced it.
	type claim struct {
		state   availability.State
		booking *repository.ActiveBookingDetail
	}
	claims := make(map[string]claim)
	for i := range active {
		b := &active[i]
		st := availability.CurrentState(now, b.EntryAt, b.ExitAt)
		if st == availability.StateAvailable {
			continue // window already passed
		}
		cur, ok := claims[b.SlotName]
		if !ok || (st == availability.StateOccupied && cur.state == availability.StateReserved) {
			claims[b.SlotName] = claim{state: st, booking: b}
		}
	}

	out := make([]dashboardSlot, 0, len(slots))
	kpis := availability.KPIs{Total: len(slots)}
	for _, s := range slots {
		ds := dashboardSlot{SlotName: s.Name, Location: s.Location, State: availability.StateAvailable}
		if cl, ok := claims[s.Name]; ok {
			ds.State = cl.state
			ds.StudentNumber = cl.booking.StudentNumber
			ds.EntryAt = cl.booking.EntryAt.UTC().Format(time.RFC3339)
			ds.ExitAt = cl.booking.ExitAt.UTC().Format(time.RFC3339)
		}
		switch ds.State {
		case availability.StateAvailable:
			kpis.Available++
		case availability.StateReserved:
			kpis.Occupied++
			kpis.Reserved++
		case availability.StateOccupied:
			kpis.Occupied++
		}
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotName < out[j].SlotName })

	return respondOK(c, http.StatusOK, "Dashboard retrieved.", dashboardData{Slots: out, KPIs: kpis})
}

type studentItem struct {
	UserID        uint64 `json:"user_id"`
	StudentNumber string `json:"student_number"`
	CreatedAt     string `json:"created_at"`
}

// ListUsers lists the most recently registered students.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListStudents(ctx, limit)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load students.")
	}
	items := make([]studentItem, 0, len(users))
	for _, u := range users {
		items = append(items, studentItem{
			UserID:        u.ID,
			StudentNumber: u.StudentNumber,
			CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return respondOK(c, http.StatusOK, "Students retrieved.", items)
}
